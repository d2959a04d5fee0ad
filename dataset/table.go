package dataset

import (
	"encoding/csv"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"

	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
)

// Table is a cleaned feature table: one identifier per row, an optional
// label per row (train only) and a dense block of numeric features.
type Table struct {
	IDs     []string
	Labels  []string
	Columns []string
	Rows    [][]float64
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	return len(t.Rows)
}

// HasLabels reports whether the table carries an outcome column.
func (t *Table) HasLabels() bool {
	return t.Labels != nil
}

// Validate checks that every row matches the column list and the id/label slices.
func (t *Table) Validate() error {
	if len(t.IDs) != len(t.Rows) {
		return perrors.NewDimensionError("Table.Validate", len(t.Rows), len(t.IDs), 0)
	}
	if t.Labels != nil && len(t.Labels) != len(t.Rows) {
		return perrors.NewDimensionError("Table.Validate", len(t.Rows), len(t.Labels), 0)
	}
	for _, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return perrors.NewDimensionError("Table.Validate", len(t.Columns), len(row), 1)
		}
	}
	return nil
}

// MissingCount returns the number of NaN cells.
func (t *Table) MissingCount() int {
	n := 0
	for _, row := range t.Rows {
		for _, v := range row {
			if math.IsNaN(v) {
				n++
			}
		}
	}
	return n
}

// FillMissing replaces every NaN cell with value and returns how many were replaced.
func (t *Table) FillMissing(value float64) int {
	n := 0
	for _, row := range t.Rows {
		for j, v := range row {
			if math.IsNaN(v) {
				row[j] = value
				n++
			}
		}
	}
	return n
}

// Dense copies the feature block into a gonum matrix.
func (t *Table) Dense() (*mat.Dense, error) {
	if len(t.Rows) == 0 || len(t.Columns) == 0 {
		return nil, perrors.Wrap(perrors.ErrEmptyData, "dataset: table has no rows or columns")
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	cols := len(t.Columns)
	data := make([]float64, 0, len(t.Rows)*cols)
	for _, row := range t.Rows {
		data = append(data, row...)
	}
	return mat.NewDense(len(t.Rows), cols, data), nil
}

// WriteTable writes t as CSV: ID[,OutcomeType],features... NaN cells are written empty.
func WriteTable(path string, t *Table) error {
	f, err := os.Create(path)
	if err != nil {
		return perrors.Wrapf(err, "dataset: create %s", path)
	}
	if err := EncodeTable(f, t); err != nil {
		f.Close()
		return err
	}
	return perrors.Wrapf(f.Close(), "dataset: close %s", path)
}

// EncodeTable writes t to w as CSV.
func EncodeTable(w io.Writer, t *Table) error {
	if err := t.Validate(); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	header := []string{ColTestID}
	if t.HasLabels() {
		header = append(header, ColOutcome)
	}
	header = append(header, t.Columns...)
	if err := cw.Write(header); err != nil {
		return perrors.Wrap(err, "dataset: write header")
	}

	record := make([]string, len(header))
	for i, row := range t.Rows {
		record = record[:0]
		record = append(record, t.IDs[i])
		if t.HasLabels() {
			record = append(record, t.Labels[i])
		}
		for _, v := range row {
			record = append(record, formatValue(v))
		}
		if err := cw.Write(record); err != nil {
			return perrors.Wrapf(err, "dataset: write row %s", t.IDs[i])
		}
	}
	cw.Flush()
	return perrors.Wrap(cw.Error(), "dataset: flush table")
}

// ReadTable reads a cleaned table written by WriteTable.
func ReadTable(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perrors.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	return DecodeTable(f, path)
}

// DecodeTable reads a cleaned table from r. Empty cells and "NaN" become NaN.
func DecodeTable(r io.Reader, source string) (*Table, error) {
	reader := csv.NewReader(r)

	header, err := reader.Read()
	if err == io.EOF {
		return nil, perrors.Wrapf(perrors.ErrEmptyData, "dataset: %s has no header", source)
	}
	if err != nil {
		return nil, perrors.Wrapf(err, "dataset: read header of %s", source)
	}
	if len(header) == 0 || strings.TrimSpace(header[0]) != ColTestID {
		return nil, perrors.NewSchemaError(source, ColTestID)
	}

	offset := 1
	t := &Table{}
	if len(header) > 1 && header[1] == ColOutcome {
		offset = 2
		t.Labels = []string{}
	}
	t.Columns = append([]string(nil), header[offset:]...)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, perrors.Wrapf(err, "dataset: read %s", source)
		}

		id := row[0]
		values := make([]float64, len(t.Columns))
		for j, cell := range row[offset:] {
			v, err := parseValue(cell)
			if err != nil {
				mv := perrors.NewMalformedValueError(t.Columns[j], cell, "not a number")
				return nil, perrors.WithRow(mv, id)
			}
			values[j] = v
		}
		t.IDs = append(t.IDs, id)
		if t.Labels != nil {
			t.Labels = append(t.Labels, row[1])
		}
		t.Rows = append(t.Rows, values)
	}
	return t, nil
}

func formatValue(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func parseValue(cell string) (float64, error) {
	cell = strings.TrimSpace(cell)
	switch strings.ToLower(cell) {
	case "", "nan", "na":
		return math.NaN(), nil
	case "true":
		return 1, nil
	case "false":
		return 0, nil
	}
	return strconv.ParseFloat(cell, 64)
}
