package features

import (
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/YuminosukeSato/shelterml/dataset"
	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
)

// MissingAge marks a record without an age.
const MissingAge = -1.0

var ageUnits = []struct {
	unit string
	days float64
}{
	{"year", 365},
	{"month", 30.5},
	{"week", 7},
	{"day", 1},
}

// ParseAge converts "<n> <unit>[s]" into days. An empty string yields
// MissingAge. Anything else that does not parse is a malformed value.
func ParseAge(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MissingAge, nil
	}

	fields := strings.Fields(s)
	if len(fields) != 2 {
		return 0, perrors.NewMalformedValueError(dataset.ColAge, s, `expected "<n> <unit>"`)
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return 0, perrors.NewMalformedValueError(dataset.ColAge, s, "count is not a non-negative integer")
	}

	unit := strings.TrimSuffix(strings.ToLower(fields[1]), "s")
	for _, u := range ageUnits {
		if unit == u.unit {
			return float64(n) * u.days, nil
		}
	}
	return 0, perrors.NewMalformedValueError(dataset.ColAge, s, "no recognised unit (year, month, week, day)")
}

// AgeImputer replaces MissingAge with train-set means: per outcome for
// labelled rows, overall for unlabelled rows or unseen outcomes.
type AgeImputer struct {
	ByOutcome map[string]float64 `yaml:"by_outcome"`
	Overall   float64            `yaml:"overall"`
}

// FitAgeImputer computes the imputation means from training records.
func FitAgeImputer(train []dataset.Record) (*AgeImputer, error) {
	groups := make(map[string][]float64)
	var all []float64
	for _, rec := range train {
		days, err := ParseAge(rec.Age)
		if err != nil {
			return nil, perrors.WithRow(err, rec.ID)
		}
		if days == MissingAge {
			continue
		}
		groups[rec.Outcome] = append(groups[rec.Outcome], days)
		all = append(all, days)
	}

	imp := &AgeImputer{ByOutcome: make(map[string]float64, len(groups)), Overall: MissingAge}
	if len(all) > 0 {
		imp.Overall = stat.Mean(all, nil)
	}
	for outcome, values := range groups {
		imp.ByOutcome[outcome] = stat.Mean(values, nil)
	}
	return imp, nil
}

// Impute returns the replacement for a missing age.
func (a *AgeImputer) Impute(outcome string) float64 {
	if v, ok := a.ByOutcome[outcome]; ok && outcome != "" {
		return v
	}
	return a.Overall
}

// AgeStep emits the age in days. With a nil Imputer missing ages stay MissingAge.
type AgeStep struct {
	Imputer *AgeImputer
}

func (AgeStep) Name() string { return "age" }

func (AgeStep) Columns() []string { return []string{dataset.ColAge} }

func (s AgeStep) Extract(rec dataset.Record, dst []float64) error {
	days, err := ParseAge(rec.Age)
	if err != nil {
		return err
	}
	if days == MissingAge && s.Imputer != nil {
		days = s.Imputer.Impute(rec.Outcome)
	}
	dst[0] = days
	return nil
}
