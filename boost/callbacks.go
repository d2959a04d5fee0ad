package boost

import (
	"time"

	"github.com/YuminosukeSato/shelterml/pkg/log"
)

// Names of the training metrics reported to callbacks.
const (
	MetricLogLoss  = "multi_logloss"
	MetricAccuracy = "accuracy"
)

// CallbackEnv contains the environment for callbacks
type CallbackEnv struct {
	Iteration    int
	NumRounds    int
	BeginTime    time.Time
	EvalResults  map[string]float64
	StopTraining bool
}

// Callback is a function that can be called after every boosting round
type Callback func(env *CallbackEnv) error

// LogEvaluation logs the training metrics every period rounds and after the
// last round.
func LogEvaluation(period int) Callback {
	logger := log.GetLoggerWithName("boost")
	return func(env *CallbackEnv) error {
		if period <= 0 {
			return nil
		}
		if env.Iteration%period != 0 && env.Iteration != env.NumRounds-1 {
			return nil
		}
		logger.Info("boosting round",
			log.IterationKey, env.Iteration,
			log.LossKey, env.EvalResults[MetricLogLoss],
			log.AccuracyKey, env.EvalResults[MetricAccuracy],
			log.DurationMsKey, time.Since(env.BeginTime).Milliseconds(),
		)
		return nil
	}
}

// RecordEvaluation records evaluation history
func RecordEvaluation(history *map[string][]float64) Callback {
	return func(env *CallbackEnv) error {
		if *history == nil {
			*history = make(map[string][]float64)
		}
		for name, value := range env.EvalResults {
			(*history)[name] = append((*history)[name], value)
		}
		return nil
	}
}

// CallbackList manages multiple callbacks
type CallbackList struct {
	callbacks []Callback
	env       *CallbackEnv
}

// NewCallbackList creates a new callback list
func NewCallbackList(callbacks ...Callback) *CallbackList {
	return &CallbackList{
		callbacks: callbacks,
		env:       &CallbackEnv{EvalResults: make(map[string]float64)},
	}
}

func (cl *CallbackList) begin(numRounds int) {
	cl.env.NumRounds = numRounds
	cl.env.BeginTime = time.Now()
	cl.env.StopTraining = false
}

// AfterIteration calls callbacks after each iteration
func (cl *CallbackList) AfterIteration(iteration int, evalResults map[string]float64) error {
	cl.env.Iteration = iteration
	cl.env.EvalResults = evalResults

	for _, cb := range cl.callbacks {
		if err := cb(cl.env); err != nil {
			return err
		}
		if cl.env.StopTraining {
			break
		}
	}
	return nil
}

// ShouldStop returns whether training should stop
func (cl *CallbackList) ShouldStop() bool {
	return cl.env.StopTraining
}
