package boost

import (
	"encoding/json"
	"os"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/shelterml/core/parallel"
	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
)

const modelVersion = 1

// predictSerialRows 以下の行数では並列化しない
const predictSerialRows = 1000

// Model is a fitted multiclass ensemble.
type Model struct {
	Version      int            `json:"version"`
	NumClass     int            `json:"num_class"`
	NumFeature   int            `json:"num_feature"`
	NumRounds    int            `json:"num_rounds"`
	LearningRate float64        `json:"learning_rate"`
	InitScores   []float64      `json:"init_scores"`
	Trees        []Tree         `json:"trees"` // round-major, NumClass trees per round
	Params       TrainingParams `json:"params"`
}

// PredictRaw returns the raw (pre-softmax) class scores, rows × NumClass.
func (m *Model) PredictRaw(X mat.Matrix) (*mat.Dense, error) {
	if m.NumClass == 0 || len(m.InitScores) != m.NumClass {
		return nil, perrors.NewNotFittedError("boost.Model", "PredictRaw")
	}
	rows, cols := X.Dims()
	if cols != m.NumFeature {
		return nil, perrors.NewDimensionError("PredictRaw", m.NumFeature, cols, 1)
	}
	if rows == 0 {
		return nil, perrors.Wrap(perrors.ErrEmptyData, "boost: predict")
	}

	out := mat.NewDense(rows, m.NumClass, nil)
	// 行ごとに独立なのでチャンク単位で並列化
	parallel.ParallelizeWithThreshold(rows, predictSerialRows, m.Params.NumThreads, func(start, end int) {
		row := make([]float64, cols)
		for i := start; i < end; i++ {
			for j := 0; j < cols; j++ {
				row[j] = X.At(i, j)
			}
			scores := out.RawRowView(i)
			copy(scores, m.InitScores)
			for t := range m.Trees {
				tree := &m.Trees[t]
				scores[tree.Class] += tree.Predict(row)
			}
		}
	})
	return out, nil
}

// PredictProba returns class probabilities, rows × NumClass. Every row sums to 1.
func (m *Model) PredictProba(X mat.Matrix) (*mat.Dense, error) {
	raw, err := m.PredictRaw(X)
	if err != nil {
		return nil, err
	}
	rows, _ := raw.Dims()
	for i := 0; i < rows; i++ {
		r := raw.RawRowView(i)
		softmax(r, r)
	}
	return raw, nil
}

// Predict returns the most probable class of every row.
func (m *Model) Predict(X mat.Matrix) ([]int, error) {
	raw, err := m.PredictRaw(X)
	if err != nil {
		return nil, err
	}
	rows, _ := raw.Dims()
	labels := make([]int, rows)
	for i := range labels {
		r := raw.RawRowView(i)
		for k := 1; k < len(r); k++ {
			if r[k] > r[labels[i]] {
				labels[i] = k
			}
		}
	}
	return labels, nil
}

// FeatureImportance returns per-feature importance. kind is "gain" (total
// split gain) or "split" (number of splits).
func (m *Model) FeatureImportance(kind string) ([]float64, error) {
	if kind != "gain" && kind != "split" {
		return nil, perrors.NewValidationError("importance_type", "must be gain or split", kind)
	}
	imp := make([]float64, m.NumFeature)
	for _, tree := range m.Trees {
		for _, n := range tree.Nodes {
			if n.Leaf {
				continue
			}
			if kind == "gain" {
				imp[n.Feature] += n.Gain
			} else {
				imp[n.Feature]++
			}
		}
	}
	return imp, nil
}

// Save writes the model as JSON.
func (m *Model) Save(path string) error {
	data, err := json.Marshal(m)
	if err != nil {
		return perrors.Wrap(err, "boost: encode model")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return perrors.Wrapf(err, "boost: write model %s", path)
	}
	return nil
}

// Load reads a model written by Save.
func Load(path string) (*Model, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, perrors.Wrapf(err, "boost: read model %s", path)
	}
	var m Model
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, perrors.Wrapf(err, "boost: decode model %s", path)
	}
	if m.Version != modelVersion {
		return nil, perrors.NewModelError("Load", "unsupported version",
			perrors.Newf("model version %d, want %d", m.Version, modelVersion))
	}
	if len(m.InitScores) != m.NumClass {
		return nil, perrors.NewDimensionError("Load", m.NumClass, len(m.InitScores), 0)
	}
	if m.NumFeature <= 0 {
		return nil, perrors.NewModelError("Load", "corrupt model", perrors.Newf("num_feature %d", m.NumFeature))
	}
	for k := range m.Trees {
		t := &m.Trees[k]
		if t.Class < 0 || t.Class >= m.NumClass {
			return nil, perrors.NewModelError("Load", "corrupt tree", perrors.Newf("tree %d: class %d", k, t.Class))
		}
		if err := t.validate(m.NumFeature); err != nil {
			return nil, perrors.NewModelError("Load", "corrupt tree", perrors.Wrapf(err, "tree %d", k))
		}
	}
	return &m, nil
}
