package main

import (
	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
	"github.com/YuminosukeSato/shelterml/pkg/log"
)

// errorFields maps a command failure to an error code and a hint for the
// final log line. Unclassified errors get no extra fields.
func errorFields(err error) []any {
	var (
		mismatch  *perrors.SchemaMismatchError
		schema    *perrors.SchemaError
		malformed *perrors.MalformedValueError
		invalid   *perrors.ValidationError
	)
	switch {
	case perrors.As(err, &mismatch):
		return []any{log.ErrorCodeKey, log.ErrorSchemaMismatch,
			log.SuggestionKey, "rerun `shelterml features` so train, test and manifest share one column list"}
	case perrors.As(err, &schema):
		return []any{log.ErrorCodeKey, log.ErrorSchemaMismatch,
			log.SuggestionKey, "check that the input file has the expected header (raw files for features, cleaned files for train)"}
	case perrors.As(err, &malformed):
		return []any{log.ErrorCodeKey, log.ErrorMalformedValue,
			log.SuggestionKey, "fix or remove the row named in the error"}
	case perrors.As(err, &invalid):
		return []any{log.ErrorCodeKey, log.ErrorInvalidInput,
			log.SuggestionKey, "check shelterml.yaml, SHELTERML_* variables and flags"}
	}
	return nil
}
