package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/shelterml/pkg/config"
	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
	"github.com/YuminosukeSato/shelterml/pkg/log"
)

var (
	cfgFile string
	cfg     *config.Config
	runID   string
	v       = config.NewViper()
)

// flagKeys maps command-line flags to config keys. Bindings are made for the
// executing command only, since several commands share a key.
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",

	"raw-train":   "paths.raw_train",
	"raw-test":    "paths.raw_test",
	"clean-train": "paths.clean_train",
	"clean-test":  "paths.clean_test",
	"manifest":    "paths.manifest",
	"submission":  "paths.submission",
	"model":       "paths.model",
	"importance":  "paths.importance_plot",

	"impute-age":   "features.impute_age",
	"breed-top-n":  "features.breed_top_n",
	"name-initial": "features.name_initial",

	"num-rounds":    "boost.num_rounds",
	"learning-rate": "boost.learning_rate",
	"max-depth":     "boost.max_depth",
	"threads":       "boost.num_threads",
	"missing":       "train.missing",
	"fill-value":    "train.fill_value",
	"log-period":    "train.log_period",
}

var rootCmd = &cobra.Command{
	Use:           "shelterml",
	Short:         "Animal shelter outcome prediction pipeline",
	Long:          "Builds numeric features from shelter intake records and trains a multiclass boosted-tree model that writes outcome probabilities.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		for name, key := range flagKeys {
			if f := cmd.Flags().Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return perrors.Wrapf(err, "bind flag --%s", name)
				}
			}
		}

		c, err := config.Load(v, cfgFile)
		if err != nil {
			return perrors.Wrap(err, "load config")
		}
		if err := c.Validate(); err != nil {
			return err
		}

		runID = uuid.NewString()
		if err := log.Setup(c.Log.Level, c.Log.Format, log.RunIDKey, runID); err != nil {
			return perrors.Wrap(err, "init logger")
		}
		cfg = c
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./shelterml.yaml)")
	pf.String("log-level", "info", "log level: debug, info, warn, error")
	pf.String("log-format", "json", "log format: json or console")

	rootCmd.AddCommand(featuresCmd, trainCmd, runCmd)
}

func addFeatureFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("raw-train", "", "raw training CSV")
	f.String("raw-test", "", "raw test CSV")
	f.Bool("impute-age", false, "replace missing ages with train-set means")
	f.Int("breed-top-n", 0, "keep only the N most frequent breeds (0 = all)")
	f.Bool("name-initial", false, "add the NameInitial feature")
}

func addCleanFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("clean-train", "", "cleaned training table")
	f.String("clean-test", "", "cleaned test table")
	f.String("manifest", "", "feature manifest (YAML)")
}

func addTrainFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("submission", "", "submission CSV to write")
	f.String("model", "", "optional path to save the model as JSON")
	f.String("importance", "", "optional path for the feature-importance chart (.png, .svg)")
	f.Int("num-rounds", 0, "boosting rounds")
	f.Float64("learning-rate", 0, "learning rate (eta)")
	f.Int("max-depth", 0, "maximum tree depth")
	f.Int("threads", 0, "histogram worker goroutines (0 = NumCPU)")
	f.String("missing", "", "missing-value policy: error, fill, native")
	f.Float64("fill-value", 0, "value used by the fill policy")
	f.Int("log-period", 0, "log training metrics every N rounds (0 = off)")
}
