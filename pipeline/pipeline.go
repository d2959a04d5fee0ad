// Package pipeline wires the two batch stages together: the feature build
// (raw intake CSV to cleaned tables and a manifest) and the trainer/predictor
// (cleaned tables to a probability submission).
package pipeline

import (
	"context"
	"os"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/shelterml/boost"
	"github.com/YuminosukeSato/shelterml/dataset"
	"github.com/YuminosukeSato/shelterml/features"
	"github.com/YuminosukeSato/shelterml/metrics"
	"github.com/YuminosukeSato/shelterml/pkg/config"
	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
	"github.com/YuminosukeSato/shelterml/pkg/log"
	"github.com/YuminosukeSato/shelterml/submission"
)

// BuildFeatures reads the raw train and test files, fits the feature builder
// on train, writes both cleaned tables and the manifest.
func BuildFeatures(ctx context.Context, cfg *config.Config, runID string) (*features.Manifest, error) {
	start := time.Now()
	logger := log.GetLoggerWithName("pipeline").With(log.PhaseKey, log.PhasePreprocessing)

	rawTrain, err := dataset.ReadRecords(cfg.Paths.RawTrain, dataset.Train)
	if err != nil {
		return nil, err
	}
	rawTest, err := dataset.ReadRecords(cfg.Paths.RawTest, dataset.Test)
	if err != nil {
		return nil, err
	}
	logger.Info("raw files read",
		"train."+log.SamplesKey, len(rawTrain),
		"test."+log.SamplesKey, len(rawTest),
	)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	builder, err := features.Fit(rawTrain, cfg.Features)
	if err != nil {
		return nil, err
	}
	train, err := builder.Transform(rawTrain, dataset.Train)
	if err != nil {
		return nil, perrors.Wrapf(err, "transform %s", cfg.Paths.RawTrain)
	}
	test, err := builder.Transform(rawTest, dataset.Test)
	if err != nil {
		return nil, perrors.Wrapf(err, "transform %s", cfg.Paths.RawTest)
	}
	if err := perrors.NewSchemaMismatchError(train.Columns, test.Columns); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := dataset.WriteTable(cfg.Paths.CleanTrain, train); err != nil {
		return nil, err
	}
	if err := dataset.WriteTable(cfg.Paths.CleanTest, test); err != nil {
		return nil, err
	}

	m := builder.Manifest()
	m.RunID = runID
	m.Train = features.RowCounts{Read: len(rawTrain), Kept: train.NumRows(), Dropped: len(rawTrain) - train.NumRows()}
	m.Test = features.RowCounts{Read: len(rawTest), Kept: test.NumRows(), Dropped: len(rawTest) - test.NumRows()}
	if err := features.WriteManifest(cfg.Paths.Manifest, m); err != nil {
		return nil, err
	}

	logger.Info("features written",
		log.FeaturesKey, len(m.Columns),
		log.PathKey, cfg.Paths.CleanTrain,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return m, nil
}

// TrainResult summarises a trainer run.
type TrainResult struct {
	Model         *boost.Model
	TrainLogLoss  float64
	TrainAccuracy float64
	// Confusion は学習データの混同行列（行 = 正解、列 = 予測）
	Confusion *mat.Dense
	History   map[string][]float64
	TestRows  int
}

// TrainAndPredict reads the cleaned tables, checks them against the manifest
// when one exists, fits the boosting model and writes the submission.
func TrainAndPredict(ctx context.Context, cfg *config.Config) (*TrainResult, error) {
	start := time.Now()
	logger := log.GetLoggerWithName("pipeline").With(log.PhaseKey, log.PhaseTraining)

	train, err := dataset.ReadTable(cfg.Paths.CleanTrain)
	if err != nil {
		return nil, err
	}
	if !train.HasLabels() {
		return nil, perrors.NewSchemaError(cfg.Paths.CleanTrain, dataset.ColOutcome)
	}
	test, err := dataset.ReadTable(cfg.Paths.CleanTest)
	if err != nil {
		return nil, err
	}

	if err := checkManifest(cfg.Paths.Manifest, train, test); err != nil {
		return nil, err
	}
	if err := submission.AlignColumns(train.Columns, test.Columns); err != nil {
		return nil, err
	}

	policy, err := submission.ParseMissingPolicy(cfg.Train.Missing)
	if err != nil {
		return nil, err
	}
	if err := submission.ApplyMissing(train, policy, cfg.Train.FillValue, cfg.Paths.CleanTrain); err != nil {
		return nil, err
	}
	if err := submission.ApplyMissing(test, policy, cfg.Train.FillValue, cfg.Paths.CleanTest); err != nil {
		return nil, err
	}

	y, err := dataset.EncodeOutcomes(train.Labels)
	if err != nil {
		return nil, err
	}
	X, err := train.Dense()
	if err != nil {
		return nil, err
	}
	Xtest, err := test.Dense()
	if err != nil {
		return nil, err
	}
	if cfg.Boost.NumClass != dataset.NumOutcomes {
		return nil, perrors.NewValidationError("boost.num_class", "must equal the number of outcomes", cfg.Boost.NumClass)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var history map[string][]float64
	trainer := boost.NewTrainer(cfg.Boost).WithCallbacks(
		boost.LogEvaluation(cfg.Train.LogPeriod),
		boost.RecordEvaluation(&history),
		cancelOn(ctx),
	)
	if err := trainer.Fit(X, y); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	model := trainer.Model()

	res := &TrainResult{Model: model, History: history, TestRows: test.NumRows()}
	trainProba, err := model.PredictProba(X)
	if err != nil {
		return nil, err
	}
	if res.TrainLogLoss, err = metrics.MultiLogLoss(y, trainProba); err != nil {
		return nil, err
	}
	trainPred, err := model.Predict(X)
	if err != nil {
		return nil, err
	}
	if res.TrainAccuracy, err = metrics.Accuracy(y, trainPred); err != nil {
		return nil, err
	}
	if res.Confusion, err = metrics.ConfusionMatrix(y, trainPred, dataset.NumOutcomes); err != nil {
		return nil, err
	}
	for k, name := range dataset.OutcomeNames() {
		logger.Debug("train confusion row", "outcome", name, "predicted", mat.Row(nil, k, res.Confusion))
	}

	inference := log.GetLoggerWithName("pipeline").With(
		log.PhaseKey, log.PhaseInference,
		log.OperationKey, log.OperationPredict,
		log.ModelNameKey, "boost.Model",
	)
	inference.Info("predicting test rows", log.SamplesKey, test.NumRows(), log.FeaturesKey, len(test.Columns))
	proba, err := model.PredictProba(Xtest)
	if err != nil {
		return nil, err
	}
	if err := submission.Write(cfg.Paths.Submission, test.IDs, proba); err != nil {
		return nil, err
	}

	if cfg.Paths.Model != "" {
		if err := model.Save(cfg.Paths.Model); err != nil {
			return nil, err
		}
	}
	if cfg.Paths.ImportancePlot != "" {
		err := perrors.SafeExecute("boost.PlotImportance", func() error {
			return boost.PlotImportance(model, train.Columns, cfg.Train.ImportanceTopN, cfg.Paths.ImportancePlot)
		})
		if err != nil {
			// 図の失敗で提出ファイルは無効にしない
			logger.Warn("importance plot skipped", "error", err, log.PathKey, cfg.Paths.ImportancePlot)
		}
	}

	logger.Info("submission written",
		log.PathKey, cfg.Paths.Submission,
		log.SamplesKey, res.TestRows,
		log.LossKey, res.TrainLogLoss,
		log.AccuracyKey, res.TrainAccuracy,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return res, nil
}

// Run executes BuildFeatures followed by TrainAndPredict.
func Run(ctx context.Context, cfg *config.Config, runID string) (*TrainResult, error) {
	if _, err := BuildFeatures(ctx, cfg, runID); err != nil {
		return nil, err
	}
	return TrainAndPredict(ctx, cfg)
}

// checkManifest compares the cleaned tables against the manifest, if present.
func checkManifest(path string, train, test *dataset.Table) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.GetLoggerWithName("pipeline").Warn("no feature manifest, skipping column check", log.PathKey, path)
		return nil
	}
	m, err := features.ReadManifest(path)
	if err != nil {
		return err
	}
	if err := m.CheckColumns(train.Columns); err != nil {
		return perrors.Wrap(err, "cleaned train table does not match manifest")
	}
	if err := m.CheckColumns(test.Columns); err != nil {
		return perrors.Wrap(err, "cleaned test table does not match manifest")
	}
	return nil
}

// cancelOn stops boosting early when ctx is cancelled.
func cancelOn(ctx context.Context) boost.Callback {
	return func(env *boost.CallbackEnv) error {
		if ctx.Err() != nil {
			env.StopTraining = true
		}
		return nil
	}
}
