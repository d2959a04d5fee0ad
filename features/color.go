package features

import (
	"strings"

	"github.com/YuminosukeSato/shelterml/dataset"
)

// ParseColor returns the colour tags of a Color cell and its part count.
// Each part contributes its base colour and, when present, its descriptor
// ("Brown Tabby" gives "Brown" and "Tabby").
func ParseColor(s string) (tags []string, parts int) {
	ps := SplitParts(s)
	for _, p := range ps {
		words := strings.Fields(p)
		tags = append(tags, words[0])
		if len(words) > 1 {
			tags = append(tags, strings.Join(words[1:], " "))
		}
	}
	return uniqueTags(tags), len(ps)
}

// ColorTags is the Tagger used to learn the colour vocabulary.
func ColorTags(rec dataset.Record) []string {
	tags, _ := ParseColor(rec.Color)
	return tags
}

// ColorStep emits one indicator per vocabulary tag and Color_num_mix.
type ColorStep struct {
	Vocab *Vocabulary
}

func (ColorStep) Name() string { return "color" }

func (s ColorStep) Columns() []string {
	cols := make([]string, 0, s.Vocab.Len()+1)
	for _, t := range s.Vocab.Tags() {
		cols = append(cols, TagColumn("Color", t, "num_mix"))
	}
	return append(cols, "Color_num_mix")
}

func (s ColorStep) Extract(rec dataset.Record, dst []float64) error {
	tags, parts := ParseColor(rec.Color)
	n := s.Vocab.Len()
	for i := 0; i < n; i++ {
		dst[i] = 0
	}
	for _, t := range tags {
		if i, ok := s.Vocab.Index(t); ok {
			dst[i] = 1
		}
	}
	dst[n] = float64(parts)
	return nil
}
