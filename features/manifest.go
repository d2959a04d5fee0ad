package features

import (
	"os"

	"gopkg.in/yaml.v3"

	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
)

// RowCounts summarises what happened to one input file.
type RowCounts struct {
	Read    int `yaml:"read"`
	Kept    int `yaml:"kept"`
	Dropped int `yaml:"dropped"`
}

// Manifest describes a feature build so the trainer can check its inputs.
type Manifest struct {
	RunID           string      `yaml:"run_id"`
	Options         Options     `yaml:"options"`
	Columns         []string    `yaml:"columns"`
	BreedVocabulary []string    `yaml:"breed_vocabulary"`
	ColorVocabulary []string    `yaml:"color_vocabulary"`
	AgeImputation   *AgeImputer `yaml:"age_imputation,omitempty"`
	Train           RowCounts   `yaml:"train"`
	Test            RowCounts   `yaml:"test"`
}

// Manifest returns the manifest of the fitted builder. Row counts and run id
// are filled in by the caller.
func (b *Builder) Manifest() *Manifest {
	return &Manifest{
		Options:         b.opts,
		Columns:         b.Columns(),
		BreedVocabulary: b.breeds.Tags(),
		ColorVocabulary: b.colors.Tags(),
		AgeImputation:   b.imputer,
	}
}

// CheckColumns fails with a SchemaMismatchError when cols differ from the
// manifest columns, order included.
func (m *Manifest) CheckColumns(cols []string) error {
	return perrors.NewSchemaMismatchError(m.Columns, cols)
}

// WriteManifest writes m as YAML.
func WriteManifest(path string, m *Manifest) error {
	data, err := yaml.Marshal(m)
	if err != nil {
		return perrors.Wrap(err, "features: encode manifest")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return perrors.Wrapf(err, "features: write manifest %s", path)
	}
	return nil
}

// ReadManifest reads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perrors.Wrapf(err, "features: read manifest %s", path)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, perrors.Wrapf(err, "features: decode manifest %s", path)
	}
	return &m, nil
}
