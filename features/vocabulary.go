package features

import (
	"sort"
	"strings"

	"github.com/YuminosukeSato/shelterml/dataset"
)

// Vocabulary is an immutable, sorted tag set learned from the training records.
type Vocabulary struct {
	tags  []string
	index map[string]int
}

// NewVocabulary deduplicates and sorts tags. Empty tags are ignored.
func NewVocabulary(tags []string) *Vocabulary {
	seen := make(map[string]struct{}, len(tags))
	uniq := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		uniq = append(uniq, t)
	}
	sort.Strings(uniq)

	index := make(map[string]int, len(uniq))
	for i, t := range uniq {
		index[t] = i
	}
	return &Vocabulary{tags: uniq, index: index}
}

// Index returns the column offset of tag.
func (v *Vocabulary) Index(tag string) (int, bool) {
	i, ok := v.index[tag]
	return i, ok
}

// Len returns the number of tags.
func (v *Vocabulary) Len() int { return len(v.tags) }

// Tags returns a copy of the sorted tags.
func (v *Vocabulary) Tags() []string {
	out := make([]string, len(v.tags))
	copy(out, v.tags)
	return out
}

// Tagger extracts the tags of one record.
type Tagger func(rec dataset.Record) []string

// LearnVocabulary collects every tag produced by tagger over records.
func LearnVocabulary(records []dataset.Record, tagger Tagger) *Vocabulary {
	var all []string
	for _, rec := range records {
		all = append(all, tagger(rec)...)
	}
	return NewVocabulary(all)
}

// LearnTopVocabulary keeps the n tags present in the most records.
// Ties are broken by tag name.
func LearnTopVocabulary(records []dataset.Record, tagger Tagger, n int) *Vocabulary {
	counts := make(map[string]int)
	for _, rec := range records {
		for _, t := range uniqueTags(tagger(rec)) {
			counts[t]++
		}
	}

	tags := make([]string, 0, len(counts))
	for t := range counts {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool {
		if counts[tags[i]] != counts[tags[j]] {
			return counts[tags[i]] > counts[tags[j]]
		}
		return tags[i] < tags[j]
	})
	if n < len(tags) {
		tags = tags[:n]
	}
	return NewVocabulary(tags)
}

// SplitParts splits a multi-valued cell on '/' and ','.
func SplitParts(s string) []string {
	raw := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == ',' })
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts
}

func uniqueTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := tags[:0:0]
	for _, t := range tags {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
