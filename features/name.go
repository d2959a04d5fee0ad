package features

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/YuminosukeSato/shelterml/dataset"
)

// NameStep emits has_name.
type NameStep struct{}

func (NameStep) Name() string { return "name" }

func (NameStep) Columns() []string { return []string{"has_name"} }

func (NameStep) Extract(rec dataset.Record, dst []float64) error {
	dst[0] = boolValue(strings.TrimSpace(rec.Name) != "")
	return nil
}

// NameInitial maps the first letter of name to 1..26 after accent folding.
// It returns 0 for an empty name or a non-letter initial.
func NameInitial(name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0
	}
	fold := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(fold, name)
	if err != nil || folded == "" {
		return 0
	}
	r := unicode.ToUpper([]rune(folded)[0])
	if r < 'A' || r > 'Z' {
		return 0
	}
	return int(r-'A') + 1
}

// NameInitialStep emits NameInitial.
type NameInitialStep struct{}

func (NameInitialStep) Name() string { return "name_initial" }

func (NameInitialStep) Columns() []string { return []string{"NameInitial"} }

func (NameInitialStep) Extract(rec dataset.Record, dst []float64) error {
	dst[0] = float64(NameInitial(rec.Name))
	return nil
}
