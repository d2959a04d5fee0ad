package dataset

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
)

// ReadRecords reads a raw intake file. Every required column for kind must be
// present in the header; train rows must carry a known outcome label.
// Row order is preserved.
func ReadRecords(path string, kind Kind) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, perrors.Wrapf(err, "dataset: open %s", path)
	}
	defer f.Close()

	return DecodeRecords(f, path, kind)
}

// DecodeRecords reads raw records from r. source names the input in errors.
func DecodeRecords(r io.Reader, source string, kind Kind) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, perrors.Wrapf(perrors.ErrEmptyData, "dataset: %s has no header", source)
	}
	if err != nil {
		return nil, perrors.Wrapf(err, "dataset: read header of %s", source)
	}

	colIdx := make(map[string]int, len(header))
	for i, col := range header {
		colIdx[strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))] = i
	}
	for _, col := range kind.RequiredColumns() {
		if _, ok := colIdx[col]; !ok {
			return nil, perrors.NewSchemaError(source, col)
		}
	}

	var records []Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, perrors.Wrapf(err, "dataset: read %s", source)
		}

		rec := Record{
			ID:             getCol(row, colIdx, kind.IDColumn()),
			Name:           getCol(row, colIdx, ColName),
			DateTime:       getCol(row, colIdx, ColDateTime),
			OutcomeSubtype: getCol(row, colIdx, ColOutcomeSubtype),
			AnimalType:     getCol(row, colIdx, ColAnimalType),
			Sex:            getCol(row, colIdx, ColSex),
			Age:            getCol(row, colIdx, ColAge),
			Breed:          getCol(row, colIdx, ColBreed),
			Color:          getCol(row, colIdx, ColColor),
		}
		if kind == Train {
			rec.Outcome = getCol(row, colIdx, ColOutcome)
			if _, err := ParseOutcome(rec.Outcome); err != nil {
				return nil, perrors.WithRow(err, rec.ID)
			}
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, perrors.Wrapf(perrors.ErrEmptyData, "dataset: %s has no data rows", source)
	}
	return records, nil
}

func getCol(row []string, colIdx map[string]int, name string) string {
	i, ok := colIdx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
