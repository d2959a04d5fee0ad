// Package metrics は多クラス分類の評価指標を提供する
package metrics

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/shelterml/pkg/errors"
)

// logLossEps は log(0) を避けるためのクリッピング幅
const logLossEps = 1e-15

// MultiLogLoss は多クラス対数損失を計算する
// proba は行ごとのクラス確率（n × K）、yTrue は 0..K-1 のクラス番号
func MultiLogLoss(yTrue []int, proba mat.Matrix) (float64, error) {
	n, k := proba.Dims()
	if len(yTrue) == 0 || n == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "MultiLogLoss")
	}
	if len(yTrue) != n {
		return 0, errors.NewDimensionError("MultiLogLoss", n, len(yTrue), 0)
	}

	// LogLoss = -(1/n) * Σ log(p_i,y_i)
	var sum float64
	for i, c := range yTrue {
		if c < 0 || c >= k {
			return 0, errors.NewValidationError("yTrue", "class index out of range", c)
		}
		p := math.Min(math.Max(proba.At(i, c), logLossEps), 1-logLossEps)
		sum -= math.Log(p)
	}
	return sum / float64(n), nil
}

// Accuracy は正解率を計算する
func Accuracy(yTrue, yPred []int) (float64, error) {
	n := len(yTrue)
	if n == 0 {
		return 0, errors.Wrap(errors.ErrEmptyData, "Accuracy")
	}
	if len(yPred) != n {
		return 0, errors.NewDimensionError("Accuracy", n, len(yPred), 0)
	}

	correct := 0
	for i := range yTrue {
		if yTrue[i] == yPred[i] {
			correct++
		}
	}
	return float64(correct) / float64(n), nil
}

// ConfusionMatrix は混同行列を返す（行 = 正解クラス、列 = 予測クラス）
func ConfusionMatrix(yTrue, yPred []int, numClass int) (*mat.Dense, error) {
	if len(yTrue) == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, "ConfusionMatrix")
	}
	if len(yPred) != len(yTrue) {
		return nil, errors.NewDimensionError("ConfusionMatrix", len(yTrue), len(yPred), 0)
	}

	cm := mat.NewDense(numClass, numClass, nil)
	for i := range yTrue {
		t, p := yTrue[i], yPred[i]
		if t < 0 || t >= numClass || p < 0 || p >= numClass {
			return nil, errors.NewValidationError("labels", "class index out of range", [2]int{t, p})
		}
		cm.Set(t, p, cm.At(t, p)+1)
	}
	return cm, nil
}

// RowSumDeviation は各行の合計と 1 との差の最大値を返す
// 確率行列の検証に使う
func RowSumDeviation(proba mat.Matrix) float64 {
	n, k := proba.Dims()
	row := make([]float64, k)
	worst := 0.0
	for i := 0; i < n; i++ {
		mat.Row(row, i, proba)
		d := math.Abs(floats.Sum(row) - 1)
		if math.IsNaN(d) {
			return math.NaN()
		}
		if d > worst {
			worst = d
		}
	}
	return worst
}
