package errors

import (
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSchemaError(t *testing.T) {
	err := NewSchemaError("data/train.csv", "Breed")

	assert.Equal(t, `shelterml: schema error: data/train.csv is missing required column "Breed"`, err.Error())

	var schemaErr *SchemaError
	require.True(t, As(err, &schemaErr))
	assert.Equal(t, "Breed", schemaErr.Column)

	// スタックトレースの存在確認
	formatted := fmt.Sprintf("%+v", err)
	assert.Contains(t, formatted, "errors_test.go")
}

func TestNewSchemaMismatchError(t *testing.T) {
	tests := []struct {
		name      string
		left      []string
		right     []string
		wantNil   bool
		onlyLeft  []string
		onlyRight []string
		reordered bool
	}{
		{
			name:    "identical",
			left:    []string{"a", "b"},
			right:   []string{"a", "b"},
			wantNil: true,
		},
		{
			name:      "missing on each side",
			left:      []string{"a", "b", "c"},
			right:     []string{"a", "d"},
			onlyLeft:  []string{"b", "c"},
			onlyRight: []string{"d"},
		},
		{
			name:      "reordered",
			left:      []string{"a", "b"},
			right:     []string{"b", "a"},
			reordered: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewSchemaMismatchError(tt.left, tt.right)
			if tt.wantNil {
				assert.NoError(t, err)
				return
			}
			var mismatch *SchemaMismatchError
			require.True(t, As(err, &mismatch))
			assert.Equal(t, tt.onlyLeft, mismatch.OnlyLeft)
			assert.Equal(t, tt.onlyRight, mismatch.OnlyRight)
			assert.Equal(t, tt.reordered, mismatch.Reordered)
			assert.Contains(t, err.Error(), "schema mismatch")
		})
	}
}

func TestMalformedValueErrorWithRow(t *testing.T) {
	err := NewMalformedValueError("AgeuponOutcome", "2 fortnights", "no recognised unit")
	err = WithRow(err, "A671945")

	var mv *MalformedValueError
	require.True(t, As(err, &mv))
	assert.Equal(t, "A671945", mv.Row)
	assert.Equal(t,
		`shelterml: malformed value in column "AgeuponOutcome" (row A671945): "2 fortnights": no recognised unit`,
		err.Error())

	// MalformedValueError以外はそのまま返す
	plain := New("plain")
	assert.Equal(t, plain, WithRow(plain, "x"))
}

func TestNewDimensionError(t *testing.T) {
	err := NewDimensionError("PredictProba", 10, 9, 1)

	want := "shelterml: PredictProba: dimension mismatch on axis 1 (features). Expected 10, got 9"
	assert.Equal(t, want, err.Error())

	var dimErr *DimensionError
	assert.True(t, As(err, &dimErr))
}

func TestNewValidationError(t *testing.T) {
	err := NewValidationError("learning_rate", "must be in (0, 1]", 1.5)
	assert.Equal(t, "shelterml: validation failed for parameter 'learning_rate': must be in (0, 1] (got: 1.5)", err.Error())
}

func TestNewModelError(t *testing.T) {
	cause := fmt.Errorf("test error")
	err := NewModelError("Fit", "invalid input", cause)

	assert.Equal(t, "shelterml: Fit: invalid input: test error", err.Error())
	assert.True(t, Is(err, cause))
}

func TestWrapAndIs(t *testing.T) {
	wrapped := Wrap(ErrEmptyData, "read train table")
	assert.True(t, Is(wrapped, ErrEmptyData))
	assert.True(t, strings.HasPrefix(wrapped.Error(), "read train table"))

	wrappedf := Wrapf(ErrEmptyData, "read %s", "test.csv")
	assert.Equal(t, "read test.csv: empty data", wrappedf.Error())
}

func TestWarnUsesConfiguredHandler(t *testing.T) {
	var got []error
	SetWarningHandler(func(w error) { got = append(got, w) })
	defer SetWarningHandler(func(error) {})

	Warn(NewDataConversionWarning("NaN", "float64", "fill_value=0"))
	require.Len(t, got, 1)
	assert.Contains(t, got[0].Error(), "fill_value=0")
}

func TestCheckMatrix(t *testing.T) {
	m := [][]float64{{1, math.NaN()}, {3, 4}}
	at := atFunc(func(i, j int) float64 { return m[i][j] })

	assert.Error(t, CheckMatrix("fit", at, 2, 2, false))
	assert.NoError(t, CheckMatrix("fit", at, 2, 2, true))

	m[1][1] = math.Inf(1)
	assert.Error(t, CheckMatrix("fit", at, 2, 2, true))
}

func TestLogSumExp(t *testing.T) {
	assert.InDelta(t, math.Log(3), LogSumExp([]float64{0, 0, 0}), 1e-12)
	assert.InDelta(t, 1000+math.Log(2), LogSumExp([]float64{1000, 1000}), 1e-9)
	assert.True(t, math.IsInf(LogSumExp(nil), -1))
}

type atFunc func(i, j int) float64

func (f atFunc) At(i, j int) float64 { return f(i, j) }
