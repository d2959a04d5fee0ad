package boost

import (
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	perrors "github.com/YuminosukeSato/shelterml/pkg/errors"
)

// Importance pairs a feature name with its importance score.
type Importance struct {
	Feature string
	Score   float64
}

// TopImportances returns the topN features by gain, highest first. Features
// that were never split on are left out.
func TopImportances(m *Model, names []string, topN int) ([]Importance, error) {
	if len(names) != m.NumFeature {
		return nil, perrors.NewDimensionError("TopImportances", m.NumFeature, len(names), 1)
	}
	gain, err := m.FeatureImportance("gain")
	if err != nil {
		return nil, err
	}

	var out []Importance
	for j, g := range gain {
		if g > 0 {
			out = append(out, Importance{Feature: names[j], Score: g})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })
	if topN > 0 && topN < len(out) {
		out = out[:topN]
	}
	return out, nil
}

// PlotImportance renders the topN gain importances as a horizontal bar chart.
// The image format follows the file extension (.png, .svg, .pdf).
func PlotImportance(m *Model, names []string, topN int, path string) error {
	top, err := TopImportances(m, names, topN)
	if err != nil {
		return err
	}
	if len(top) == 0 {
		return perrors.New("boost: no feature was used in any split")
	}

	// 上から重要度の高い順に並べる
	values := make(plotter.Values, len(top))
	labels := make([]string, len(top))
	for i, imp := range top {
		values[len(top)-1-i] = imp.Score
		labels[len(top)-1-i] = imp.Feature
	}

	p := plot.New()
	p.Title.Text = "Feature importance (gain)"
	p.X.Label.Text = "Total gain"

	bars, err := plotter.NewBarChart(values, vg.Points(10))
	if err != nil {
		return perrors.Wrap(err, "boost: build bar chart")
	}
	bars.Horizontal = true
	p.Add(bars)
	p.NominalY(labels...)

	height := vg.Length(len(top))*5*vg.Millimeter + 3*vg.Centimeter
	if err := p.Save(6*vg.Inch, height, path); err != nil {
		return perrors.Wrapf(err, "boost: save importance plot %s", path)
	}
	return nil
}
