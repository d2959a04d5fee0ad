package boost

import (
	"math"

	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
)

// Node is one node of a regression tree. Leaves carry Value, already scaled
// by the learning rate.
type Node struct {
	Feature     int     `json:"feature"`
	Threshold   float64 `json:"threshold"`
	DefaultLeft bool    `json:"default_left"`
	Left        int     `json:"left"`
	Right       int     `json:"right"`
	Leaf        bool    `json:"leaf"`
	Value       float64 `json:"value"`
	Gain        float64 `json:"gain,omitempty"`
	Count       int     `json:"count"`
}

// Tree is a regression tree fitted to the gradients of one class.
type Tree struct {
	Class int    `json:"class"`
	Nodes []Node `json:"nodes"`
}

// Predict returns the leaf value reached by row.
func (t *Tree) Predict(row []float64) float64 {
	idx := 0
	for {
		n := &t.Nodes[idx]
		if n.Leaf {
			return n.Value
		}
		v := row[n.Feature]
		switch {
		case math.IsNaN(v):
			if n.DefaultLeft {
				idx = n.Left
			} else {
				idx = n.Right
			}
		case v <= n.Threshold:
			idx = n.Left
		default:
			idx = n.Right
		}
	}
}

// validate checks every node reference so Predict cannot index out of range
// or loop. Children always follow their parent in Nodes.
func (t *Tree) validate(numFeature int) error {
	if len(t.Nodes) == 0 {
		return perrors.New("tree has no nodes")
	}
	for i, n := range t.Nodes {
		if n.Leaf {
			continue
		}
		if n.Feature < 0 || n.Feature >= numFeature {
			return perrors.Newf("node %d: feature %d outside [0, %d)", i, n.Feature, numFeature)
		}
		for _, c := range [2]int{n.Left, n.Right} {
			if c <= i || c >= len(t.Nodes) {
				return perrors.Newf("node %d: child %d outside (%d, %d)", i, c, i, len(t.Nodes))
			}
		}
	}
	return nil
}

// NumLeaves returns the number of leaves.
func (t *Tree) NumLeaves() int {
	n := 0
	for _, node := range t.Nodes {
		if node.Leaf {
			n++
		}
	}
	return n
}

// grower grows one depth-wise tree and adds its leaf values to the cached
// raw scores of the rows that reach each leaf.
type grower struct {
	data       *binnedData
	params     TrainingParams
	grad, hess []float64
	workers    int

	class    int
	numClass int
	scores   []float64

	tree Tree
}

func (g *grower) growTree(indices []int) Tree {
	g.tree = Tree{Class: g.class}
	hist := g.data.buildHistogram(indices, g.grad, g.hess, g.workers)
	g.grow(indices, hist, 0)
	return g.tree
}

// grow builds the subtree over indices and returns its node index.
// hist is owned by the call and reused for the larger child.
func (g *grower) grow(indices []int, hist histogram, depth int) int {
	var sumGrad, sumHess float64
	for _, i := range indices {
		sumGrad += g.grad[i]
		sumHess += g.hess[i]
	}

	idx := len(g.tree.Nodes)
	g.tree.Nodes = append(g.tree.Nodes, Node{Count: len(indices)})

	if depth < g.params.MaxDepth && len(indices) >= 2*g.params.MinDataInLeaf {
		if split, ok := g.data.bestSplit(hist, sumGrad, sumHess, len(indices), g.params); ok {
			left, right := g.partition(indices, split)

			small, large := left, right
			if len(small) > len(large) {
				small, large = large, small
			}
			smallHist := g.data.buildHistogram(small, g.grad, g.hess, g.workers)
			hist.subtract(smallHist)
			leftHist, rightHist := smallHist, hist
			if len(left) > len(right) {
				leftHist, rightHist = hist, smallHist
			}

			l := g.grow(left, leftHist, depth+1)
			r := g.grow(right, rightHist, depth+1)
			g.tree.Nodes[idx] = Node{
				Feature:     split.feature,
				Threshold:   g.data.threshold(split),
				DefaultLeft: split.defaultLeft,
				Left:        l,
				Right:       r,
				Gain:        split.gain,
				Count:       len(indices),
			}
			return idx
		}
	}

	value := leafWeight(sumGrad, sumHess, g.params.Lambda) * g.params.LearningRate
	g.tree.Nodes[idx].Leaf = true
	g.tree.Nodes[idx].Value = value
	for _, i := range indices {
		g.scores[i*g.numClass+g.class] += value
	}
	return idx
}

func (g *grower) partition(indices []int, s splitInfo) (left, right []int) {
	left = make([]int, 0, s.leftCount)
	right = make([]int, 0, len(indices)-s.leftCount)
	for _, i := range indices {
		if g.data.goesLeft(s, i) {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}
	return left, right
}
