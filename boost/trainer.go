package boost

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/mat"

	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
	"github.com/YuminosukeSato/shelterml/pkg/log"
)

// Trainer fits a multiclass boosting model
type Trainer struct {
	params    TrainingParams
	callbacks *CallbackList
	model     *Model
}

// NewTrainer creates a trainer. Parameters are validated by Fit.
func NewTrainer(params TrainingParams) *Trainer {
	return &Trainer{params: params}
}

// WithCallbacks sets the callbacks for training
func (t *Trainer) WithCallbacks(callbacks ...Callback) *Trainer {
	t.callbacks = NewCallbackList(callbacks...)
	return t
}

// Model returns the fitted model, or nil before a successful Fit.
func (t *Trainer) Model() *Model {
	return t.model
}

// Fit trains NumRounds × NumClass trees on X and labels y in [0, NumClass).
// NaN entries of X are treated as missing; infinite values are rejected.
func (t *Trainer) Fit(X *mat.Dense, y []int) (err error) {
	defer perrors.Recover(&err, "boost.Fit")

	p := t.params
	if err := p.Validate(); err != nil {
		return err
	}
	rows, cols := X.Dims()
	if rows == 0 || cols == 0 {
		return perrors.Wrap(perrors.ErrEmptyData, "boost: fit")
	}
	if len(y) != rows {
		return perrors.NewDimensionError("Fit", rows, len(y), 0)
	}
	for i, c := range y {
		if c < 0 || c >= p.NumClass {
			return perrors.NewValidationError("y", fmt.Sprintf("label at row %d outside [0, %d)", i, p.NumClass), c)
		}
	}
	if err := perrors.CheckMatrix("boost.Fit", X, rows, cols, true); err != nil {
		return err
	}

	logger := log.GetLoggerWithName("boost").With(
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
	)
	logger.Info("training started",
		log.SamplesKey, rows,
		log.FeaturesKey, cols,
		log.ClassesKey, p.NumClass,
		log.RoundsKey, p.NumRounds,
		log.LearningRateKey, p.LearningRate,
		log.MaxDepthKey, p.MaxDepth,
	)
	start := time.Now()

	data := newBinnedData(X, p.MaxBin, p.NumThreads)
	obj := softmaxObjective{numClass: p.NumClass}

	model := &Model{
		Version:      modelVersion,
		NumClass:     p.NumClass,
		NumFeature:   cols,
		LearningRate: p.LearningRate,
		InitScores:   obj.initScores(y),
		Params:       p,
	}

	scores := make([]float64, rows*p.NumClass)
	for i := 0; i < rows; i++ {
		copy(scores[i*p.NumClass:], model.InitScores)
	}
	grad := make([][]float64, p.NumClass)
	hess := make([][]float64, p.NumClass)
	for k := range grad {
		grad[k] = make([]float64, rows)
		hess[k] = make([]float64, rows)
	}
	all := make([]int, rows)
	for i := range all {
		all[i] = i
	}
	if t.callbacks != nil {
		t.callbacks.begin(p.NumRounds)
	}

	for iter := 0; iter < p.NumRounds; iter++ {
		obj.gradients(scores, y, grad, hess)

		for k := 0; k < p.NumClass; k++ {
			g := &grower{
				data:     data,
				params:   p,
				grad:     grad[k],
				hess:     hess[k],
				workers:  p.NumThreads,
				class:    k,
				numClass: p.NumClass,
				scores:   scores,
			}
			model.Trees = append(model.Trees, g.growTree(all))
		}
		model.NumRounds = iter + 1

		loss := obj.logLoss(scores, y)
		if err := perrors.CheckNumericalStability("boost.Fit", []float64{loss}, iter); err != nil {
			return err
		}
		evalResults := map[string]float64{
			MetricLogLoss:  loss,
			MetricAccuracy: obj.accuracy(scores, y),
		}

		if p.Verbosity > 0 {
			logger.Debug("Training progress", log.IterationKey, iter, log.LossKey, loss)
		}

		if t.callbacks != nil {
			if err := t.callbacks.AfterIteration(iter, evalResults); err != nil {
				return perrors.Wrapf(err, "boost: callback at iteration %d", iter)
			}
			if t.callbacks.ShouldStop() {
				logger.Info("Training stopped by callback", log.IterationKey, iter)
				break
			}
		}
	}

	t.model = model
	logger.Info("training finished",
		log.RoundsKey, model.NumRounds,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)
	return nil
}
