// Package log defines standard attribute keys for pipeline operations.
//
// The keys follow a hierarchical naming convention (e.g., "data.samples",
// "features.dropped") to enable structured log analysis and filtering.

package log

// Operation Context
const (
	// ModelNameKey identifies the type of model or transformer.
	// Examples: "GBDTClassifier", "FeatureBuilder"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	// Standard values: "fit", "predict", "transform"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the pipeline phase.
	// Examples: "preprocessing", "training", "inference"
	PhaseKey = "ml.phase"

	// RunIDKey carries the per-invocation run identifier.
	RunIDKey = "run.id"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows) in the dataset.
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns) in the dataset.
	FeaturesKey = "data.features"

	// ClassesKey indicates the number of target classes.
	ClassesKey = "data.classes"

	// PathKey records the file a table was read from or written to.
	PathKey = "data.path"

	// RowsDroppedKey records rows removed by a filter.
	RowsDroppedKey = "features.dropped"

	// MissingKey records the number of missing cells found in a table.
	MissingKey = "data.missing"
)

// Performance Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records training accuracy.
	AccuracyKey = "metrics.accuracy"

	// LossKey records the loss value during training or evaluation.
	LossKey = "metrics.loss"

	// IterationKey records the current boosting round.
	IterationKey = "training.iteration"
)

// Error Context
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides helpful suggestions for resolving issues.
	SuggestionKey = "error.suggestion"
)

// Hyperparameters
const (
	// LearningRateKey records the boosting learning rate (eta).
	LearningRateKey = "hyperparams.learning_rate"

	// MaxDepthKey records the maximum tree depth.
	MaxDepthKey = "hyperparams.max_depth"

	// RoundsKey records the number of boosting rounds.
	RoundsKey = "hyperparams.num_rounds"
)

// Standard attribute values.
const (
	OperationFit       = "fit"
	OperationPredict   = "predict"
	OperationTransform = "transform"

	PhasePreprocessing = "preprocessing"
	PhaseTraining      = "training"
	PhaseInference     = "inference"

	ErrorSchemaMismatch = "SCHEMA_MISMATCH"
	ErrorMalformedValue = "MALFORMED_VALUE"
	ErrorInvalidInput   = "INVALID_INPUT"
)
