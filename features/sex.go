package features

import (
	"strings"

	"github.com/YuminosukeSato/shelterml/dataset"
	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
)

// KnownSexValues is the closed set of accepted SexuponOutcome values.
var KnownSexValues = []string{
	"Neutered Male",
	"Spayed Female",
	"Intact Male",
	"Intact Female",
	"Unknown",
}

// sexTypes are the status prefixes of KnownSexValues, sorted.
var sexTypes = []string{"Intact", "Neutered", "Spayed", "Unknown"}

// Sex is the parsed form of a SexuponOutcome value.
type Sex struct {
	Male   bool
	Female bool
	Type   string
}

// ParseSex parses a value from KnownSexValues. ok is false for anything else.
func ParseSex(s string) (sex Sex, ok bool) {
	known := false
	for _, v := range KnownSexValues {
		if s == v {
			known = true
			break
		}
	}
	if !known {
		return Sex{}, false
	}
	return Sex{
		Male:   strings.HasSuffix(s, "Male"),
		Female: strings.HasSuffix(s, "Female"),
		Type:   strings.SplitN(s, " ", 2)[0],
	}, true
}

// SexFilter drops rows whose sex value is outside KnownSexValues.
type SexFilter struct{}

func (SexFilter) Name() string { return "sex" }

func (SexFilter) Keep(rec dataset.Record) bool {
	_, ok := ParseSex(rec.Sex)
	return ok
}

// SexStep emits Male/Female flags and a one-hot of the status prefix.
// The one-hot columns come from the closed value set, not from the data.
type SexStep struct{}

func (SexStep) Name() string { return "sex" }

func (SexStep) Columns() []string {
	cols := []string{"Male", "Female"}
	for _, t := range sexTypes {
		cols = append(cols, ColumnName("SexType", t))
	}
	return cols
}

func (SexStep) Extract(rec dataset.Record, dst []float64) error {
	sex, ok := ParseSex(rec.Sex)
	if !ok {
		return perrors.NewMalformedValueError(dataset.ColSex, rec.Sex, "not a known sex value")
	}
	dst[0] = boolValue(sex.Male)
	dst[1] = boolValue(sex.Female)
	for i, t := range sexTypes {
		dst[2+i] = boolValue(sex.Type == t)
	}
	return nil
}
