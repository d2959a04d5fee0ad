package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/shelterml/dataset"
	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
)

func extract(t *testing.T, s Step, rec dataset.Record) []float64 {
	t.Helper()
	dst := make([]float64, len(s.Columns()))
	require.NoError(t, s.Extract(rec, dst))
	return dst
}

func TestSexStep(t *testing.T) {
	tests := []struct {
		sex  string
		want []float64 // Male, Female, Intact, Neutered, Spayed, Unknown
	}{
		{"Neutered Male", []float64{1, 0, 0, 1, 0, 0}},
		{"Spayed Female", []float64{0, 1, 0, 0, 1, 0}},
		{"Intact Male", []float64{1, 0, 1, 0, 0, 0}},
		{"Intact Female", []float64{0, 1, 1, 0, 0, 0}},
		{"Unknown", []float64{0, 0, 0, 0, 0, 1}},
	}

	step := SexStep{}
	assert.Equal(t, []string{"Male", "Female", "SexType_Intact", "SexType_Neutered", "SexType_Spayed", "SexType_Unknown"}, step.Columns())
	for _, tt := range tests {
		t.Run(tt.sex, func(t *testing.T) {
			got := extract(t, step, dataset.Record{Sex: tt.sex})
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, got[0]+got[1], 1.0, "Male and Female are mutually exclusive")
		})
	}
}

func TestSexFilter(t *testing.T) {
	f := SexFilter{}
	assert.True(t, f.Keep(dataset.Record{Sex: "Spayed Female"}))
	assert.False(t, f.Keep(dataset.Record{Sex: "Bisexual"}))
	assert.False(t, f.Keep(dataset.Record{Sex: ""}))

	err := SexStep{}.Extract(dataset.Record{Sex: "Bisexual"}, make([]float64, 6))
	var mv *perrors.MalformedValueError
	assert.True(t, perrors.As(err, &mv))
}

func TestParseAge(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2 years", 730},
		{"1 year", 365},
		{"3 months", 91.5},
		{"1 month", 30.5},
		{"2 weeks", 14},
		{"5 days", 5},
		{"0 years", 0},
		{"", MissingAge},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAge(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}

	for _, bad := range []string{"two years", "3 fortnights", "3", "-1 years", "1.5 years"} {
		_, err := ParseAge(bad)
		var mv *perrors.MalformedValueError
		require.Error(t, err, bad)
		assert.True(t, perrors.As(err, &mv), bad)
		assert.Equal(t, dataset.ColAge, mv.Column)
	}
}

func TestAgeImputer(t *testing.T) {
	train := []dataset.Record{
		{ID: "a", Age: "1 year", Outcome: "Adoption"},
		{ID: "b", Age: "3 years", Outcome: "Adoption"},
		{ID: "c", Age: "1 week", Outcome: "Transfer"},
		{ID: "d", Age: "", Outcome: "Adoption"},
		{ID: "e", Age: "", Outcome: "Died"},
	}
	imp, err := FitAgeImputer(train)
	require.NoError(t, err)
	assert.InDelta(t, 730.0, imp.ByOutcome["Adoption"], 1e-9)
	assert.InDelta(t, 7.0, imp.ByOutcome["Transfer"], 1e-9)
	assert.InDelta(t, (365.0+1095+7)/3, imp.Overall, 1e-9)

	step := AgeStep{Imputer: imp}
	assert.InDelta(t, 730.0, extract(t, step, train[3])[0], 1e-9)
	// 学習データに年齢の無いラベルは全体平均
	assert.InDelta(t, imp.Overall, extract(t, step, train[4])[0], 1e-9)
	assert.InDelta(t, imp.Overall, extract(t, step, dataset.Record{Age: ""})[0], 1e-9)

	assert.Equal(t, MissingAge, extract(t, AgeStep{}, dataset.Record{Age: ""})[0])

	_, err = FitAgeImputer([]dataset.Record{{ID: "x", Age: "old"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row x")
}

func TestParseBreed(t *testing.T) {
	b := ParseBreed("Pit Bull Mix")
	assert.Equal(t, []string{"Pit Bull"}, b.Tags)
	assert.True(t, b.Mix)
	assert.Equal(t, 1, b.Parts)

	b = ParseBreed("German Shepherd/Siberian Husky")
	assert.Equal(t, []string{"German Shepherd", "Siberian Husky"}, b.Tags)
	assert.False(t, b.Mix)
	assert.Equal(t, 2, b.Parts)

	b = ParseBreed("Labrador Retriever, Border Collie Mix")
	assert.Equal(t, []string{"Labrador Retriever", "Border Collie"}, b.Tags)
	assert.True(t, b.Mix)
}

func TestBreedStep(t *testing.T) {
	vocab := NewVocabulary([]string{"Pit Bull", "Beagle", "Pit Bull"})
	assert.Equal(t, []string{"Beagle", "Pit Bull"}, vocab.Tags())

	step := BreedStep{Vocab: vocab}
	assert.Equal(t, []string{"Breed_Beagle", "Breed_Pit_Bull", "Breed_Mix", "Breed_Crosses"}, step.Columns())
	assert.Equal(t, []float64{1, 1, 0, 2}, extract(t, step, dataset.Record{Breed: "Beagle/Pit Bull"}))
	// 語彙に無いタグは無視される
	assert.Equal(t, []float64{0, 0, 1, 1}, extract(t, step, dataset.Record{Breed: "Poodle Mix"}))

	other := BreedStep{Vocab: vocab, Other: true}
	assert.Equal(t, "Breed_Other", other.Columns()[4])
	assert.Equal(t, []float64{1, 0, 0, 2, 1}, extract(t, other, dataset.Record{Breed: "Beagle/Poodle"}))
}

func TestBreedTagsAvoidFixedColumns(t *testing.T) {
	b := ParseBreed("Mix")
	assert.Empty(t, b.Tags)
	assert.True(t, b.Mix)
	assert.Equal(t, 1, b.Parts)

	b = ParseBreed("Beagle/Mix")
	assert.Equal(t, []string{"Beagle"}, b.Tags)
	assert.True(t, b.Mix)
	assert.Equal(t, 2, b.Parts)

	step := BreedStep{Vocab: NewVocabulary([]string{"Other", "Crosses"}), Other: true}
	assert.Equal(t, []string{"Breed_Crosses_tag", "Breed_Other_tag", "Breed_Mix", "Breed_Crosses", "Breed_Other"}, step.Columns())
	assert.Equal(t, []float64{0, 1, 0, 1, 0}, extract(t, step, dataset.Record{Breed: "Other"}))

	color := ColorStep{Vocab: NewVocabulary([]string{"num mix"})}
	assert.Equal(t, []string{"Color_num_mix_tag", "Color_num_mix"}, color.Columns())
}

func TestFitWithReservedTagNames(t *testing.T) {
	rec := dataset.Record{ID: "A1", DateTime: "2014-02-12 18:22:00", Outcome: "Adoption", AnimalType: "Dog", Sex: "Neutered Male", Age: "2 years", Color: "Black"}

	mix := rec
	mix.Breed = "Mix"
	b, err := Fit([]dataset.Record{mix}, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, b.BreedVocabulary().Len())
	assert.Contains(t, b.Columns(), "Breed_Mix")

	other := rec
	other.Breed = "Other"
	b, err = Fit([]dataset.Record{other}, Options{BreedTopN: 5})
	require.NoError(t, err)
	assert.Contains(t, b.Columns(), "Breed_Other_tag")
	assert.Contains(t, b.Columns(), "Breed_Other")
}

func TestLearnTopVocabulary(t *testing.T) {
	records := []dataset.Record{
		{Breed: "Beagle"},
		{Breed: "Beagle/Beagle"},
		{Breed: "Poodle"},
		{Breed: "Poodle Mix"},
		{Breed: "Akita"},
		{Breed: "Boxer"},
	}
	vocab := LearnTopVocabulary(records, BreedTags, 3)
	assert.Equal(t, []string{"Akita", "Beagle", "Poodle"}, vocab.Tags())

	assert.Equal(t, 4, LearnTopVocabulary(records, BreedTags, 10).Len())
}

func TestColorStep(t *testing.T) {
	tags, parts := ParseColor("Brown Tabby/White")
	assert.Equal(t, []string{"Brown", "Tabby", "White"}, tags)
	assert.Equal(t, 2, parts)

	vocab := LearnVocabulary([]dataset.Record{{Color: "Brown Tabby/White"}, {Color: "Black"}}, ColorTags)
	step := ColorStep{Vocab: vocab}
	assert.Equal(t, []string{"Color_Black", "Color_Brown", "Color_Tabby", "Color_White", "Color_num_mix"}, step.Columns())
	assert.Equal(t, []float64{1, 0, 0, 1, 2}, extract(t, step, dataset.Record{Color: "Black/White"}))
	assert.Equal(t, []float64{0, 0, 1, 0, 1}, extract(t, step, dataset.Record{Color: "Orange Tabby"}))
}

func TestAnimalAndNameSteps(t *testing.T) {
	assert.Equal(t, []float64{1}, extract(t, AnimalStep{}, dataset.Record{AnimalType: "Dog"}))
	assert.Equal(t, []float64{0}, extract(t, AnimalStep{}, dataset.Record{AnimalType: "Cat"}))

	assert.Equal(t, []float64{1}, extract(t, NameStep{}, dataset.Record{Name: "Max"}))
	assert.Equal(t, []float64{0}, extract(t, NameStep{}, dataset.Record{Name: " "}))
}

func TestNameInitial(t *testing.T) {
	tests := map[string]int{
		"Abby":   1,
		"max":    13,
		"Zeus":   26,
		"Élodie": 5,
		"Ñandú":  14,
		"":       0,
		"*Bella": 0,
		"9Lives": 0,
	}
	for name, want := range tests {
		assert.Equal(t, want, NameInitial(name), name)
	}
	assert.Equal(t, []float64{5}, extract(t, NameInitialStep{}, dataset.Record{Name: "Émile"}))
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("2014-02-12 18:22:00")
	require.NoError(t, err)
	assert.Equal(t, Timestamp{2014, 2, 12, 18, 22, 0}, ts)
	assert.Equal(t, 2, ts.Weekday()) // Wednesday

	ts, err = ParseTimestamp("2015-01-31 12:28")
	require.NoError(t, err)
	assert.Equal(t, 28, ts.Minute)

	for _, bad := range []string{"", "2014-02-12", "2014/02/12 18:22", "1900-02-29 00:00", "2014-13-01 00:00", "2014-01-01 24:00"} {
		_, err := ParseTimestamp(bad)
		var mv *perrors.MalformedValueError
		assert.True(t, perrors.As(err, &mv), bad)
	}
}

func TestWeekday(t *testing.T) {
	tests := []struct {
		date string
		want int
	}{
		{"1970-01-01 00:00", 3},
		{"2000-02-29 00:00", 1},
		{"1900-03-01 00:00", 3},
		{"1900-01-01 00:00", 0},
		{"2016-02-21 10:00", 6},
		{"0001-01-01 00:00", 0},
	}
	for _, tt := range tests {
		t.Run(tt.date, func(t *testing.T) {
			ts, err := ParseTimestamp(tt.date)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ts.Weekday())
		})
	}

	got := extract(t, DateTimeStep{}, dataset.Record{DateTime: "2000-02-29 13:45:10"})
	assert.Equal(t, []float64{2000, 2, 29, 13, 45, 1}, got)
}
