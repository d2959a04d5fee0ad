// Package config loads pipeline settings from shelterml.yaml, SHELTERML_*
// environment variables and command-line flags, in increasing priority.
package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/YuminosukeSato/shelterml/boost"
	"github.com/YuminosukeSato/shelterml/features"
	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
	"github.com/YuminosukeSato/shelterml/pkg/log"
	"github.com/YuminosukeSato/shelterml/submission"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "SHELTERML"

// Config is the complete pipeline configuration.
type Config struct {
	Paths    PathsConfig          `mapstructure:"paths"`
	Features features.Options     `mapstructure:"features"`
	Boost    boost.TrainingParams `mapstructure:"boost"`
	Train    TrainConfig          `mapstructure:"train"`
	Log      LogConfig            `mapstructure:"log"`
}

// PathsConfig lists every file the pipeline reads or writes.
type PathsConfig struct {
	RawTrain       string `mapstructure:"raw_train"`
	RawTest        string `mapstructure:"raw_test"`
	CleanTrain     string `mapstructure:"clean_train"`
	CleanTest      string `mapstructure:"clean_test"`
	Manifest       string `mapstructure:"manifest"`
	Submission     string `mapstructure:"submission"`
	Model          string `mapstructure:"model"`           // optional
	ImportancePlot string `mapstructure:"importance_plot"` // optional
}

// TrainConfig controls the trainer stage outside the boosting parameters.
type TrainConfig struct {
	Missing        string  `mapstructure:"missing"`
	FillValue      float64 `mapstructure:"fill_value"`
	LogPeriod      int     `mapstructure:"log_period"`
	ImportanceTopN int     `mapstructure:"importance_top_n"`
}

// LogConfig selects the log level and output format.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NewViper returns a viper instance with defaults and environment binding.
// Callers may bind command-line flags to it before calling Load.
func NewViper() *viper.Viper {
	v := viper.New()

	// Config file
	v.SetConfigName("shelterml")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("paths.raw_train", "data/train.csv")
	v.SetDefault("paths.raw_test", "data/test.csv")
	v.SetDefault("paths.clean_train", "data/train_clean.csv")
	v.SetDefault("paths.clean_test", "data/test_clean.csv")
	v.SetDefault("paths.manifest", "data/features.yaml")
	v.SetDefault("paths.submission", "submission.csv")
	v.SetDefault("paths.model", "")
	v.SetDefault("paths.importance_plot", "")

	v.SetDefault("features.impute_age", false)
	v.SetDefault("features.breed_top_n", 0)
	v.SetDefault("features.name_initial", false)

	d := boost.DefaultParams()
	v.SetDefault("boost.num_rounds", d.NumRounds)
	v.SetDefault("boost.learning_rate", d.LearningRate)
	v.SetDefault("boost.max_depth", d.MaxDepth)
	v.SetDefault("boost.num_class", d.NumClass)
	v.SetDefault("boost.min_data_in_leaf", d.MinDataInLeaf)
	v.SetDefault("boost.lambda", d.Lambda)
	v.SetDefault("boost.min_gain_to_split", d.MinGainToSplit)
	v.SetDefault("boost.min_sum_hessian_in_leaf", d.MinSumHessianInLeaf)
	v.SetDefault("boost.max_bin", d.MaxBin)
	v.SetDefault("boost.num_threads", d.NumThreads)
	v.SetDefault("boost.verbosity", d.Verbosity)

	v.SetDefault("train.missing", string(submission.MissingError))
	v.SetDefault("train.fill_value", 0.0)
	v.SetDefault("train.log_period", 50)
	v.SetDefault("train.importance_top_n", 30)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	return v
}

// Load reads the optional config file into v and decodes the result.
// configFile overrides the ./shelterml.yaml lookup; a missing explicit file
// is an error.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || configFile != "" {
			return nil, perrors.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, perrors.Wrap(err, "config: unmarshal")
	}
	return &cfg, nil
}

// Validate checks enumerations and numeric ranges.
func (c *Config) Validate() error {
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return perrors.NewValidationError("log.format", "must be json or console", c.Log.Format)
	}
	if _, err := submission.ParseMissingPolicy(c.Train.Missing); err != nil {
		return err
	}
	if c.Train.LogPeriod < 0 {
		return perrors.NewValidationError("train.log_period", "must be non-negative", c.Train.LogPeriod)
	}
	if c.Features.BreedTopN < 0 {
		return perrors.NewValidationError("features.breed_top_n", "must be non-negative", c.Features.BreedTopN)
	}
	return c.Boost.Validate()
}
