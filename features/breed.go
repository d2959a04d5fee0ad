package features

import (
	"strings"

	"github.com/YuminosukeSato/shelterml/dataset"
)

const mixSuffix = " Mix"

// breedFixed are the column suffixes BreedStep emits after the tag indicators.
var breedFixed = []string{"Mix", "Crosses", "Other"}

// Breed is the parsed form of a Breed cell.
type Breed struct {
	Tags  []string
	Mix   bool
	Parts int
}

// ParseBreed splits a breed cell into tags, stripping the " Mix" suffix.
func ParseBreed(s string) Breed {
	parts := SplitParts(s)
	b := Breed{Parts: len(parts)}
	for _, p := range parts {
		if p == strings.TrimSpace(mixSuffix) {
			b.Mix = true
			continue
		}
		if strings.HasSuffix(p, mixSuffix) {
			b.Mix = true
			p = strings.TrimSpace(strings.TrimSuffix(p, mixSuffix))
		}
		if p != "" {
			b.Tags = append(b.Tags, p)
		}
	}
	b.Tags = uniqueTags(b.Tags)
	return b
}

// BreedTags is the Tagger used to learn the breed vocabulary.
func BreedTags(rec dataset.Record) []string {
	return ParseBreed(rec.Breed).Tags
}

// BreedStep emits one indicator per vocabulary tag, Breed_Mix and
// Breed_Crosses. With Other set, Breed_Other flags tags outside the vocabulary.
type BreedStep struct {
	Vocab *Vocabulary
	Other bool
}

func (BreedStep) Name() string { return "breed" }

func (s BreedStep) Columns() []string {
	cols := make([]string, 0, s.Vocab.Len()+3)
	for _, t := range s.Vocab.Tags() {
		cols = append(cols, TagColumn("Breed", t, breedFixed...))
	}
	cols = append(cols, "Breed_Mix", "Breed_Crosses")
	if s.Other {
		cols = append(cols, "Breed_Other")
	}
	return cols
}

func (s BreedStep) Extract(rec dataset.Record, dst []float64) error {
	b := ParseBreed(rec.Breed)
	n := s.Vocab.Len()
	for i := 0; i < n; i++ {
		dst[i] = 0
	}

	other := false
	for _, t := range b.Tags {
		if i, ok := s.Vocab.Index(t); ok {
			dst[i] = 1
		} else {
			other = true
		}
	}
	dst[n] = boolValue(b.Mix)
	dst[n+1] = float64(b.Parts)
	if s.Other {
		dst[n+2] = boolValue(other)
	}
	return nil
}
