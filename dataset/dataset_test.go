package dataset

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
)

const trainCSV = `AnimalID,Name,DateTime,OutcomeType,OutcomeSubtype,AnimalType,SexuponOutcome,AgeuponOutcome,Breed,Color
A671945,Hambone,2014-02-12 18:22:00,Return_to_owner,,Dog,Neutered Male,1 year,Shetland Sheepdog Mix,Brown/White
A656520,Emily,2013-10-13 12:44:00,Euthanasia,Suffering,Cat,Spayed Female,1 year,Domestic Shorthair Mix,Cream Tabby
A686464,,2015-01-31 12:28:00,Adoption,Foster,Dog,Neutered Male,2 years,Pit Bull Mix,Blue/White
`

const testCSV = `ID,Name,DateTime,AnimalType,SexuponOutcome,AgeuponOutcome,Breed,Color
1,Summer,2015-10-12 12:15:00,Dog,Intact Female,10 months,Labrador Retriever Mix,Red/White
2,Cheyenne,2014-07-26 17:59:00,Dog,Spayed Female,2 years,German Shepherd/Siberian Husky,Black/Tan
`

func TestDecodeRecordsTrain(t *testing.T) {
	records, err := DecodeRecords(strings.NewReader(trainCSV), "train.csv", Train)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, Record{
		ID:         "A671945",
		Name:       "Hambone",
		DateTime:   "2014-02-12 18:22:00",
		Outcome:    "Return_to_owner",
		AnimalType: "Dog",
		Sex:        "Neutered Male",
		Age:        "1 year",
		Breed:      "Shetland Sheepdog Mix",
		Color:      "Brown/White",
	}, records[0])
	assert.Equal(t, "", records[2].Name)
	assert.Equal(t, "Suffering", records[1].OutcomeSubtype)
}

func TestDecodeRecordsTest(t *testing.T) {
	records, err := DecodeRecords(strings.NewReader(testCSV), "test.csv", Test)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2", records[1].ID)
	assert.Equal(t, "", records[1].Outcome)
}

func TestDecodeRecordsMissingColumn(t *testing.T) {
	in := strings.Replace(trainCSV, ",Color\n", "\n", 1)
	_, err := DecodeRecords(strings.NewReader(in), "train.csv", Train)
	require.Error(t, err)

	var schemaErr *perrors.SchemaError
	require.True(t, perrors.As(err, &schemaErr))
	assert.Equal(t, ColColor, schemaErr.Column)

	// a test file is not a train file
	_, err = DecodeRecords(strings.NewReader(testCSV), "test.csv", Train)
	require.True(t, perrors.As(err, &schemaErr))
	assert.Equal(t, ColAnimalID, schemaErr.Column)
}

func TestDecodeRecordsUnknownOutcome(t *testing.T) {
	in := strings.Replace(trainCSV, "Return_to_owner", "Escaped", 1)
	_, err := DecodeRecords(strings.NewReader(in), "train.csv", Train)

	var mv *perrors.MalformedValueError
	require.True(t, perrors.As(err, &mv))
	assert.Equal(t, "A671945", mv.Row)
	assert.Equal(t, "Escaped", mv.Value)
}

func TestDecodeRecordsEmpty(t *testing.T) {
	_, err := DecodeRecords(strings.NewReader(""), "empty.csv", Test)
	assert.True(t, perrors.Is(err, perrors.ErrEmptyData))

	header := strings.SplitN(testCSV, "\n", 2)[0] + "\n"
	_, err = DecodeRecords(strings.NewReader(header), "header-only.csv", Test)
	assert.True(t, perrors.Is(err, perrors.ErrEmptyData))
}

func TestParseOutcome(t *testing.T) {
	for i, name := range OutcomeNames() {
		o, err := ParseOutcome(name)
		require.NoError(t, err)
		assert.Equal(t, Outcome(i), o)
		assert.Equal(t, name, o.String())
	}
	assert.Equal(t, ReturnToOwner, Outcome(3))

	_, err := ParseOutcome("adoption")
	assert.Error(t, err)

	encoded, err := EncodeOutcomes([]string{"Transfer", "Adoption", "Died"})
	require.NoError(t, err)
	assert.Equal(t, []int{4, 0, 1}, encoded)
}

func TestTableRoundTrip(t *testing.T) {
	tbl := &Table{
		IDs:     []string{"A1", "A2"},
		Labels:  []string{"Adoption", "Transfer"},
		Columns: []string{"Male", "AgeuponOutcome"},
		Rows:    [][]float64{{1, 730}, {0, math.NaN()}},
	}

	path := filepath.Join(t.TempDir(), "train_clean.csv")
	require.NoError(t, WriteTable(path, tbl))

	got, err := ReadTable(path)
	require.NoError(t, err)
	assert.Equal(t, tbl.IDs, got.IDs)
	assert.Equal(t, tbl.Labels, got.Labels)
	assert.Equal(t, tbl.Columns, got.Columns)
	assert.Equal(t, 730.0, got.Rows[0][1])
	assert.True(t, math.IsNaN(got.Rows[1][1]))
	assert.Equal(t, 1, got.MissingCount())

	assert.Equal(t, 1, got.FillMissing(-1))
	assert.Equal(t, -1.0, got.Rows[1][1])
	assert.Equal(t, 0, got.MissingCount())
}

func TestEncodeTableWithoutLabels(t *testing.T) {
	tbl := &Table{
		IDs:     []string{"1"},
		Columns: []string{"Male", "Female"},
		Rows:    [][]float64{{0, 1}},
	}
	var buf bytes.Buffer
	require.NoError(t, EncodeTable(&buf, tbl))
	assert.Equal(t, "ID,Male,Female\n1,0,1\n", buf.String())

	got, err := DecodeTable(&buf, "test_clean.csv")
	require.NoError(t, err)
	assert.False(t, got.HasLabels())
}

func TestDecodeTableErrors(t *testing.T) {
	_, err := DecodeTable(strings.NewReader("AnimalID,Male\nA1,1\n"), "x.csv")
	var schemaErr *perrors.SchemaError
	assert.True(t, perrors.As(err, &schemaErr))

	_, err = DecodeTable(strings.NewReader("ID,Male\n1,yes\n"), "x.csv")
	var mv *perrors.MalformedValueError
	require.True(t, perrors.As(err, &mv))
	assert.Equal(t, "Male", mv.Column)
	assert.Equal(t, "1", mv.Row)
}

func TestTableDense(t *testing.T) {
	tbl := &Table{
		IDs:     []string{"1", "2"},
		Columns: []string{"a", "b", "c"},
		Rows:    [][]float64{{1, 2, 3}, {4, 5, 6}},
	}
	m, err := tbl.Dense()
	require.NoError(t, err)
	r, c := m.Dims()
	assert.Equal(t, 2, r)
	assert.Equal(t, 3, c)
	assert.Equal(t, 6.0, m.At(1, 2))

	tbl.Rows[1] = []float64{1}
	_, err = tbl.Dense()
	var dimErr *perrors.DimensionError
	assert.True(t, perrors.As(err, &dimErr))

	_, err = (&Table{}).Dense()
	assert.True(t, perrors.Is(err, perrors.ErrEmptyData))
}
