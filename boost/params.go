package boost

import (
	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
)

// TrainingParams contains all training hyperparameters
type TrainingParams struct {
	// Basic parameters
	NumRounds     int     `json:"num_rounds" mapstructure:"num_rounds"`
	LearningRate  float64 `json:"learning_rate" mapstructure:"learning_rate"`
	MaxDepth      int     `json:"max_depth" mapstructure:"max_depth"`
	NumClass      int     `json:"num_class" mapstructure:"num_class"`
	MinDataInLeaf int     `json:"min_data_in_leaf" mapstructure:"min_data_in_leaf"`

	// Regularization
	Lambda              float64 `json:"lambda_l2" mapstructure:"lambda"`
	MinGainToSplit      float64 `json:"min_gain_to_split" mapstructure:"min_gain_to_split"`
	MinSumHessianInLeaf float64 `json:"min_sum_hessian_in_leaf" mapstructure:"min_sum_hessian_in_leaf"`

	// Histogram parameters
	MaxBin int `json:"max_bin" mapstructure:"max_bin"`

	// Other
	NumThreads int `json:"num_threads" mapstructure:"num_threads"` // 0 = runtime.NumCPU()
	Verbosity  int `json:"verbosity" mapstructure:"verbosity"`
}

// DefaultParams returns the multi:softprob setup used by the shelter pipeline.
func DefaultParams() TrainingParams {
	return TrainingParams{
		NumRounds:           500,
		LearningRate:        0.05,
		MaxDepth:            6,
		NumClass:            5,
		MinDataInLeaf:       1,
		Lambda:              1.0,
		MinGainToSplit:      0,
		MinSumHessianInLeaf: 1e-3,
		MaxBin:              255,
	}
}

// Validate checks the parameters before training.
func (p TrainingParams) Validate() error {
	switch {
	case p.NumRounds <= 0:
		return perrors.NewValidationError("num_rounds", "must be positive", p.NumRounds)
	case p.LearningRate <= 0 || p.LearningRate > 1:
		return perrors.NewValidationError("learning_rate", "must be in (0, 1]", p.LearningRate)
	case p.MaxDepth <= 0:
		return perrors.NewValidationError("max_depth", "must be positive", p.MaxDepth)
	case p.NumClass < 2:
		return perrors.NewValidationError("num_class", "must be at least 2", p.NumClass)
	case p.MinDataInLeaf < 1:
		return perrors.NewValidationError("min_data_in_leaf", "must be at least 1", p.MinDataInLeaf)
	case p.Lambda < 0:
		return perrors.NewValidationError("lambda", "must be non-negative", p.Lambda)
	case p.MinGainToSplit < 0:
		return perrors.NewValidationError("min_gain_to_split", "must be non-negative", p.MinGainToSplit)
	case p.MinSumHessianInLeaf < 0:
		return perrors.NewValidationError("min_sum_hessian_in_leaf", "must be non-negative", p.MinSumHessianInLeaf)
	case p.MaxBin < 2 || p.MaxBin > 65535:
		return perrors.NewValidationError("max_bin", "must be in [2, 65535]", p.MaxBin)
	case p.NumThreads < 0:
		return perrors.NewValidationError("num_threads", "must be non-negative", p.NumThreads)
	}
	return nil
}
