package features

import (
	"strings"

	"github.com/YuminosukeSato/shelterml/dataset"
)

// AnimalStep emits animal_is_dog.
type AnimalStep struct{}

func (AnimalStep) Name() string { return "animal" }

func (AnimalStep) Columns() []string { return []string{"animal_is_dog"} }

func (AnimalStep) Extract(rec dataset.Record, dst []float64) error {
	dst[0] = boolValue(strings.TrimSpace(rec.AnimalType) == "Dog")
	return nil
}
