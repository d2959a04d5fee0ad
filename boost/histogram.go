package boost

import (
	"math"

	"github.com/YuminosukeSato/shelterml/core/parallel"
)

type histBin struct {
	grad  float64
	hess  float64
	count int
}

// histogram holds the gradient statistics of every bin of every feature,
// laid out by binnedData.offsets.
type histogram []histBin

// buildHistogram accumulates grad/hess over indices, one feature per task.
func (d *binnedData) buildHistogram(indices []int, grad, hess []float64, workers int) histogram {
	h := make(histogram, d.totalBins)
	parallel.ForEach(len(d.bins), workers, func(j int) {
		bins := d.bins[j]
		fh := h[d.offsets[j] : d.offsets[j]+d.mappers[j].numBins()+1]
		for _, i := range indices {
			b := &fh[bins[i]]
			b.grad += grad[i]
			b.hess += hess[i]
			b.count++
		}
	})
	return h
}

// subtract turns h (a parent histogram) into the histogram of its other child.
func (h histogram) subtract(child histogram) {
	for i := range h {
		h[i].grad -= child[i].grad
		h[i].hess -= child[i].hess
		h[i].count -= child[i].count
	}
}

// splitInfo describes the best split found for a node.
type splitInfo struct {
	feature     int
	bin         int // last finite bin routed left
	defaultLeft bool
	gain        float64
	leftCount   int
}

// leafWeight is the L2-regularised Newton step -G/(H+lambda).
func leafWeight(sumGrad, sumHess, lambda float64) float64 {
	return -sumGrad / (sumHess + lambda)
}

func leafScore(sumGrad, sumHess, lambda float64) float64 {
	return sumGrad * sumGrad / (sumHess + lambda)
}

// bestSplit scans every feature's bins for the split with the largest gain.
// For each threshold the missing bin is tried on both sides.
func (d *binnedData) bestSplit(h histogram, sumGrad, sumHess float64, count int, p TrainingParams) (splitInfo, bool) {
	best := splitInfo{feature: -1, gain: math.Inf(-1)}
	parent := leafScore(sumGrad, sumHess, p.Lambda)

	consider := func(f, b int, defaultLeft bool, gl, hl float64, cl int) {
		gr, hr, cr := sumGrad-gl, sumHess-hl, count-cl
		if cl < p.MinDataInLeaf || cr < p.MinDataInLeaf {
			return
		}
		if hl < p.MinSumHessianInLeaf || hr < p.MinSumHessianInLeaf {
			return
		}
		gain := 0.5 * (leafScore(gl, hl, p.Lambda) + leafScore(gr, hr, p.Lambda) - parent)
		if gain > best.gain {
			best = splitInfo{feature: f, bin: b, defaultLeft: defaultLeft, gain: gain, leftCount: cl}
		}
	}

	for f, m := range d.mappers {
		nb := m.numBins()
		fh := h[d.offsets[f] : d.offsets[f]+nb+1]
		missing := fh[nb]

		var gl, hl float64
		var cl int
		for b := 0; b < nb-1; b++ {
			gl += fh[b].grad
			hl += fh[b].hess
			cl += fh[b].count
			if missing.count > 0 {
				consider(f, b, false, gl, hl, cl)
				consider(f, b, true, gl+missing.grad, hl+missing.hess, cl+missing.count)
			} else {
				consider(f, b, true, gl, hl, cl)
			}
		}
	}

	if best.feature < 0 || best.gain <= p.MinGainToSplit {
		return splitInfo{}, false
	}
	return best, true
}

// goesLeft reports whether training row i follows the left branch of s.
func (d *binnedData) goesLeft(s splitInfo, i int) bool {
	b := int(d.bins[s.feature][i])
	if b == d.mappers[s.feature].numBins() {
		return s.defaultLeft
	}
	return b <= s.bin
}

// threshold returns the raw-value threshold of s: x <= threshold goes left.
func (d *binnedData) threshold(s splitInfo) float64 {
	return d.mappers[s.feature].upper[s.bin]
}
