// Package dataset reads raw shelter intake files and reads/writes the cleaned
// numeric feature tables exchanged between the two pipeline stages.
package dataset

// Raw column names.
const (
	ColAnimalID       = "AnimalID"
	ColTestID         = "ID"
	ColName           = "Name"
	ColDateTime       = "DateTime"
	ColOutcome        = "OutcomeType"
	ColOutcomeSubtype = "OutcomeSubtype"
	ColAnimalType     = "AnimalType"
	ColSex            = "SexuponOutcome"
	ColAge            = "AgeuponOutcome"
	ColBreed          = "Breed"
	ColColor          = "Color"
)

// Kind distinguishes labelled training files from unlabelled test files.
type Kind int

const (
	Train Kind = iota
	Test
)

func (k Kind) String() string {
	if k == Train {
		return "train"
	}
	return "test"
}

// IDColumn returns the identifier column of the raw file kind.
func (k Kind) IDColumn() string {
	if k == Train {
		return ColAnimalID
	}
	return ColTestID
}

// RequiredColumns lists the raw columns that must be present in the header.
func (k Kind) RequiredColumns() []string {
	cols := []string{k.IDColumn(), ColName, ColDateTime}
	if k == Train {
		cols = append(cols, ColOutcome)
	}
	return append(cols, ColAnimalType, ColSex, ColAge, ColBreed, ColColor)
}

// Record is one raw intake row.
type Record struct {
	ID             string
	Name           string
	DateTime       string
	Outcome        string // empty for test rows
	OutcomeSubtype string
	AnimalType     string
	Sex            string
	Age            string
	Breed          string
	Color          string
}
