// Package features turns raw shelter intake records into a numeric feature table.
//
// Every piece of state that depends on the training set (tag vocabularies,
// imputation means, the top-N breed list) is derived once by Fit and carried
// by the immutable Builder, so train and test are transformed with exactly the
// same columns.
package features

import (
	"strings"

	"github.com/YuminosukeSato/shelterml/dataset"
)

// Step derives a fixed block of feature columns from one record.
// Extract writes exactly len(Columns()) values into dst.
type Step interface {
	Name() string
	Columns() []string
	Extract(rec dataset.Record, dst []float64) error
}

// Filter decides whether a record enters the feature steps at all.
type Filter interface {
	Name() string
	Keep(rec dataset.Record) bool
}

// ColumnName builds a feature column name from a prefix and a raw tag.
// Spaces and dots become underscores so names survive CSV tooling unchanged.
func ColumnName(prefix, tag string) string {
	r := strings.NewReplacer(" ", "_", ".", "_")
	return prefix + "_" + r.Replace(tag)
}

// TagColumn is ColumnName for vocabulary tags. A tag whose name would equal
// one of the step's fixed columns gets a "_tag" suffix.
func TagColumn(prefix, tag string, reserved ...string) string {
	name := ColumnName(prefix, tag)
	for _, r := range reserved {
		if name == prefix+"_"+r {
			return name + "_tag"
		}
	}
	return name
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
