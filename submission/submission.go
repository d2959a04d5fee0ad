// Package submission aligns the cleaned train/test schemas, applies the
// missing-value policy and writes the class-probability submission file.
package submission

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/shelterml/dataset"
	"github.com/YuminosukeSato/shelterml/metrics"
	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
	"github.com/YuminosukeSato/shelterml/pkg/log"
)

// SumTolerance is the allowed deviation of a probability row sum from 1.
const SumTolerance = 1e-6

// Header returns the submission header: ID followed by the outcomes in label order.
func Header() []string {
	return append([]string{dataset.ColTestID}, dataset.OutcomeNames()...)
}

var columnReplacer = strings.NewReplacer(" ", "_", ".", "_")

// NormalizeColumn maps spaces and dots in a feature name to underscores.
func NormalizeColumn(name string) string {
	return columnReplacer.Replace(name)
}

// NormalizeColumns applies NormalizeColumn to every name.
func NormalizeColumns(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = NormalizeColumn(n)
	}
	return out
}

// AlignColumns checks that train and test carry the same feature columns in
// the same order after normalisation. Nothing is reordered or dropped.
func AlignColumns(train, test []string) error {
	return perrors.NewSchemaMismatchError(NormalizeColumns(train), NormalizeColumns(test))
}

// MissingPolicy selects how NaN feature cells are handled before training.
type MissingPolicy string

const (
	MissingError  MissingPolicy = "error"
	MissingFill   MissingPolicy = "fill"
	MissingNative MissingPolicy = "native"
)

// ErrMissingValues is returned under MissingError when a table has NaN cells.
var ErrMissingValues = perrors.New("missing feature values")

// ParseMissingPolicy validates a policy name.
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch p := MissingPolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case MissingError, MissingFill, MissingNative:
		return p, nil
	case "":
		return MissingError, nil
	default:
		return "", perrors.NewValidationError("train.missing", "must be error, fill or native", s)
	}
}

// ApplyMissing enforces policy on t. name identifies the table in errors and logs.
func ApplyMissing(t *dataset.Table, policy MissingPolicy, fillValue float64, name string) error {
	n := t.MissingCount()
	if n == 0 {
		return nil
	}
	logger := log.GetLoggerWithName("submission").With("table", name)

	switch policy {
	case MissingError:
		return perrors.Wrapf(ErrMissingValues, "%s has %d empty cells (set train.missing to fill or native)", name, n)
	case MissingFill:
		t.FillMissing(fillValue)
		perrors.Warn(perrors.NewDataConversionWarning("empty cell", "float64",
			fmt.Sprintf("%s: %d cells set to %g", name, n, fillValue)))
	case MissingNative:
		logger.Info("missing values left for default tree direction", log.MissingKey, n)
	default:
		return perrors.NewValidationError("train.missing", "must be error, fill or native", string(policy))
	}
	return nil
}

// Write writes the submission file to path.
func Write(path string, ids []string, proba mat.Matrix) error {
	f, err := os.Create(path)
	if err != nil {
		return perrors.Wrapf(err, "submission: create %s", path)
	}
	if err := Encode(f, ids, proba); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return perrors.Wrapf(err, "submission: close %s", path)
	}
	return nil
}

// Encode writes one row per id with the class probabilities in label order.
// Every row must sum to 1 within SumTolerance.
func Encode(w io.Writer, ids []string, proba mat.Matrix) error {
	rows, cols := proba.Dims()
	if rows != len(ids) {
		return perrors.NewDimensionError("submission.Encode", len(ids), rows, 0)
	}
	if cols != dataset.NumOutcomes {
		return perrors.NewDimensionError("submission.Encode", dataset.NumOutcomes, cols, 1)
	}
	if d := metrics.RowSumDeviation(proba); !(d <= SumTolerance) {
		return perrors.NewValidationError("probabilities", fmt.Sprintf("rows must sum to 1 within %g", SumTolerance), d)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return perrors.Wrap(err, "submission: write header")
	}
	record := make([]string, cols+1)
	for i, id := range ids {
		record[0] = id
		for k := 0; k < cols; k++ {
			record[k+1] = strconv.FormatFloat(proba.At(i, k), 'g', -1, 64)
		}
		if err := cw.Write(record); err != nil {
			return perrors.Wrapf(err, "submission: write row %s", id)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return perrors.Wrap(err, "submission: flush")
	}
	return nil
}
