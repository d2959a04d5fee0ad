package features

import (
	"time"

	"github.com/YuminosukeSato/shelterml/dataset"
	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
	"github.com/YuminosukeSato/shelterml/pkg/log"
)

// Options toggles the optional feature steps.
type Options struct {
	ImputeAge   bool `yaml:"impute_age" mapstructure:"impute_age"`
	BreedTopN   int  `yaml:"breed_top_n" mapstructure:"breed_top_n"`
	NameInitial bool `yaml:"name_initial" mapstructure:"name_initial"`
}

// Builder holds every piece of state learned from the training records.
// It is immutable after Fit and safe for concurrent Transform calls.
type Builder struct {
	opts    Options
	filters []Filter
	steps   []Step
	columns []string
	offsets []int

	breeds  *Vocabulary
	colors  *Vocabulary
	imputer *AgeImputer
}

// Fit learns vocabularies and imputation means from train and assembles the
// feature steps. Rows rejected by the filters do not contribute any state.
func Fit(train []dataset.Record, opts Options) (*Builder, error) {
	if opts.BreedTopN < 0 {
		return nil, perrors.NewValidationError("features.breed_top_n", "must be >= 0", opts.BreedTopN)
	}
	if len(train) == 0 {
		return nil, perrors.Wrap(perrors.ErrEmptyData, "features: fit")
	}

	b := &Builder{opts: opts, filters: []Filter{SexFilter{}}}
	kept := b.filter(train, nil)

	if opts.BreedTopN > 0 {
		b.breeds = LearnTopVocabulary(kept, BreedTags, opts.BreedTopN)
	} else {
		b.breeds = LearnVocabulary(kept, BreedTags)
	}
	b.colors = LearnVocabulary(kept, ColorTags)

	if opts.ImputeAge {
		imp, err := FitAgeImputer(kept)
		if err != nil {
			return nil, err
		}
		b.imputer = imp
	}

	b.steps = []Step{
		SexStep{},
		AgeStep{Imputer: b.imputer},
		BreedStep{Vocab: b.breeds, Other: opts.BreedTopN > 0},
		ColorStep{Vocab: b.colors},
		AnimalStep{},
		DateTimeStep{},
		NameStep{},
	}
	if opts.NameInitial {
		b.steps = append(b.steps, NameInitialStep{})
	}

	seen := make(map[string]string)
	for _, s := range b.steps {
		b.offsets = append(b.offsets, len(b.columns))
		for _, c := range s.Columns() {
			if prev, dup := seen[c]; dup {
				return nil, perrors.Newf("features: column %q produced by both %s and %s steps", c, prev, s.Name())
			}
			seen[c] = s.Name()
			b.columns = append(b.columns, c)
		}
	}

	log.GetLoggerWithName("features").Info("feature builder fitted",
		log.OperationKey, log.OperationFit,
		log.SamplesKey, len(kept),
		log.FeaturesKey, len(b.columns),
		"vocab.breed", b.breeds.Len(),
		"vocab.color", b.colors.Len(),
	)
	return b, nil
}

// Columns returns the output column names in order.
func (b *Builder) Columns() []string {
	out := make([]string, len(b.columns))
	copy(out, b.columns)
	return out
}

// Options returns the options the builder was fitted with.
func (b *Builder) Options() Options { return b.opts }

// BreedVocabulary returns the learned breed tags.
func (b *Builder) BreedVocabulary() *Vocabulary { return b.breeds }

// ColorVocabulary returns the learned colour tags.
func (b *Builder) ColorVocabulary() *Vocabulary { return b.colors }

// AgeImputer returns the fitted imputer, or nil when imputation is off.
func (b *Builder) AgeImputer() *AgeImputer { return b.imputer }

// Transform filters records and runs every step over the survivors. Row order
// is preserved. Train tables carry the raw outcome labels.
func (b *Builder) Transform(records []dataset.Record, kind dataset.Kind) (*dataset.Table, error) {
	start := time.Now()
	logger := log.GetLoggerWithName("features").With(
		log.OperationKey, log.OperationTransform,
		log.PhaseKey, log.PhasePreprocessing,
		"kind", kind.String(),
	)

	dropped := make(map[string]int)
	kept := b.filter(records, dropped)
	for name, n := range dropped {
		logger.Info("rows dropped by filter", "filter", name, log.RowsDroppedKey, n)
	}

	t := &dataset.Table{
		IDs:     make([]string, 0, len(kept)),
		Columns: b.Columns(),
		Rows:    make([][]float64, 0, len(kept)),
	}
	if kind == dataset.Train {
		t.Labels = make([]string, 0, len(kept))
	}

	for _, rec := range kept {
		row := make([]float64, len(b.columns))
		for i, s := range b.steps {
			n := len(s.Columns())
			if err := s.Extract(rec, row[b.offsets[i]:b.offsets[i]+n]); err != nil {
				return nil, perrors.WithRow(err, rec.ID)
			}
		}
		t.IDs = append(t.IDs, rec.ID)
		t.Rows = append(t.Rows, row)
		if t.Labels != nil {
			t.Labels = append(t.Labels, rec.Outcome)
		}
	}

	logger.Info("records transformed",
		log.SamplesKey, t.NumRows(),
		log.FeaturesKey, len(t.Columns),
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return t, nil
}

func (b *Builder) filter(records []dataset.Record, dropped map[string]int) []dataset.Record {
	kept := make([]dataset.Record, 0, len(records))
next:
	for _, rec := range records {
		for _, f := range b.filters {
			if !f.Keep(rec) {
				if dropped != nil {
					dropped[f.Name()]++
				}
				continue next
			}
		}
		kept = append(kept, rec)
	}
	return kept
}
