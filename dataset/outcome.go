package dataset

import (
	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
)

// Outcome is the dense class index of a shelter outcome label.
type Outcome int

// The order is fixed: it defines the class index used by the classifier
// and the column order of the submission file.
const (
	Adoption Outcome = iota
	Died
	Euthanasia
	ReturnToOwner
	Transfer
)

// NumOutcomes is the size of the closed outcome label set.
const NumOutcomes = 5

var outcomeNames = [NumOutcomes]string{
	"Adoption",
	"Died",
	"Euthanasia",
	"Return_to_owner",
	"Transfer",
}

// OutcomeNames returns the label names in class-index order.
func OutcomeNames() []string {
	out := make([]string, NumOutcomes)
	copy(out, outcomeNames[:])
	return out
}

// String returns the label as it appears in the raw files.
func (o Outcome) String() string {
	if o < 0 || int(o) >= NumOutcomes {
		return "Unknown"
	}
	return outcomeNames[o]
}

// ParseOutcome maps a raw label to its class index.
func ParseOutcome(label string) (Outcome, error) {
	for i, name := range outcomeNames {
		if name == label {
			return Outcome(i), nil
		}
	}
	return -1, perrors.NewMalformedValueError(ColOutcome, label, "not one of Adoption, Died, Euthanasia, Return_to_owner, Transfer")
}

// EncodeOutcomes maps labels to class indices, failing on the first unknown label.
func EncodeOutcomes(labels []string) ([]int, error) {
	out := make([]int, len(labels))
	for i, label := range labels {
		o, err := ParseOutcome(label)
		if err != nil {
			return nil, err
		}
		out[i] = int(o)
	}
	return out, nil
}
