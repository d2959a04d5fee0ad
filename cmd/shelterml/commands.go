package main

import (
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/shelterml/dataset"
	"github.com/YuminosukeSato/shelterml/pipeline"
)

var featuresCmd = &cobra.Command{
	Use:   "features",
	Short: "Build cleaned feature tables from the raw intake files",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := pipeline.BuildFeatures(cmd.Context(), cfg, runID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "features: %d columns, train %d/%d rows kept, test %d/%d rows kept\n",
			len(m.Columns), m.Train.Kept, m.Train.Read, m.Test.Kept, m.Test.Read)
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s, %s, %s\n", cfg.Paths.CleanTrain, cfg.Paths.CleanTest, cfg.Paths.Manifest)
		return nil
	},
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the model on the cleaned tables and write the submission",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := pipeline.TrainAndPredict(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		printTrainResult(cmd, res)
		return nil
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the feature build and training stages back to back",
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := pipeline.Run(cmd.Context(), cfg, runID)
		if err != nil {
			return err
		}
		printTrainResult(cmd, res)
		return nil
	},
}

func printTrainResult(cmd *cobra.Command, res *pipeline.TrainResult) {
	fmt.Fprintf(cmd.OutOrStdout(), "trained %d rounds: train logloss %.5f, accuracy %.4f\n",
		res.Model.NumRounds, res.TrainLogLoss, res.TrainAccuracy)
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d rows)\n", cfg.Paths.Submission, res.TestRows)

	if res.Confusion == nil {
		return
	}
	names := dataset.OutcomeNames()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 1, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "true\\pred\t%s\t\n", strings.Join(names, "\t"))
	for i, name := range names {
		row := mat.Row(nil, i, res.Confusion)
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = strconv.Itoa(int(v))
		}
		fmt.Fprintf(w, "%s\t%s\t\n", name, strings.Join(cells, "\t"))
	}
	w.Flush()
}

func init() {
	addFeatureFlags(featuresCmd)
	addCleanFlags(featuresCmd)

	addCleanFlags(trainCmd)
	addTrainFlags(trainCmd)

	addFeatureFlags(runCmd)
	addCleanFlags(runCmd)
	addTrainFlags(runCmd)
}
