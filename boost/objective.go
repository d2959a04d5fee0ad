package boost

import (
	"math"

	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
)

const (
	minHessian = 1e-16
	probEps    = 1e-15
)

// softmaxObjective is the multiclass log loss on K raw scores per row.
// Raw scores are stored row-major: scores[i*K+k].
type softmaxObjective struct {
	numClass int
}

// initScores returns log class priors. Unseen classes get log(probEps).
func (o softmaxObjective) initScores(y []int) []float64 {
	counts := make([]float64, o.numClass)
	for _, c := range y {
		counts[c]++
	}
	init := make([]float64, o.numClass)
	for k, c := range counts {
		init[k] = perrors.StabilizeLog(c / float64(len(y)))
	}
	return init
}

// gradients fills grad/hess[k][i] with p_ik - y_ik and p_ik(1 - p_ik).
func (o softmaxObjective) gradients(scores []float64, y []int, grad, hess [][]float64) {
	K := o.numClass
	p := make([]float64, K)
	for i, label := range y {
		softmax(scores[i*K:(i+1)*K], p)
		for k := 0; k < K; k++ {
			target := 0.0
			if label == k {
				target = 1.0
			}
			grad[k][i] = p[k] - target
			hess[k][i] = math.Max(p[k]*(1-p[k]), minHessian)
		}
	}
}

// logLoss returns the mean multiclass log loss of the raw scores.
func (o softmaxObjective) logLoss(scores []float64, y []int) float64 {
	K := o.numClass
	maxLoss := -math.Log(probEps)
	sum := 0.0
	for i, label := range y {
		row := scores[i*K : (i+1)*K]
		// -log p = logsumexp(row) - row[label]
		sum += math.Min(perrors.LogSumExp(row)-row[label], maxLoss)
	}
	return sum / float64(len(y))
}

// accuracy returns the share of rows whose arg-max class equals the label.
func (o softmaxObjective) accuracy(scores []float64, y []int) float64 {
	K := o.numClass
	hit := 0
	for i, label := range y {
		row := scores[i*K : (i+1)*K]
		best := 0
		for k := 1; k < K; k++ {
			if row[k] > row[best] {
				best = k
			}
		}
		if best == label {
			hit++
		}
	}
	return float64(hit) / float64(len(y))
}

// softmax writes the normalised exponentials of raw into out.
func softmax(raw, out []float64) {
	maxVal := raw[0]
	for _, v := range raw[1:] {
		if v > maxVal {
			maxVal = v
		}
	}
	sum := 0.0
	for k, v := range raw {
		out[k] = math.Exp(v - maxVal)
		sum += out[k]
	}
	for k := range out {
		out[k] /= sum
	}
}
