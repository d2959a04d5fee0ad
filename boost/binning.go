package boost

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/shelterml/core/parallel"
)

// binMapper quantises one feature. upper holds the inclusive upper bound of
// every finite bin; the last bound is +Inf. NaN maps to the extra missing bin.
type binMapper struct {
	upper []float64
}

func newBinMapper(values []float64, maxBin int) binMapper {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return binMapper{upper: []float64{math.Inf(1)}}
	}
	sort.Float64s(sorted)

	unique := []float64{sorted[0]}
	counts := []int{1}
	for _, v := range sorted[1:] {
		if v != unique[len(unique)-1] {
			unique = append(unique, v)
			counts = append(counts, 0)
		}
		counts[len(counts)-1]++
	}

	var upper []float64
	if len(unique) <= maxBin {
		for i := 0; i < len(unique)-1; i++ {
			upper = append(upper, (unique[i]+unique[i+1])/2)
		}
	} else {
		// 等頻度ビン
		per := float64(len(sorted)) / float64(maxBin)
		next := per
		acc := 0
		for i := 0; i < len(unique)-1 && len(upper) < maxBin-1; i++ {
			acc += counts[i]
			if float64(acc) >= next {
				upper = append(upper, (unique[i]+unique[i+1])/2)
				for float64(acc) >= next {
					next += per
				}
			}
		}
	}
	return binMapper{upper: append(upper, math.Inf(1))}
}

// numBins returns the number of finite bins. The missing bin follows them.
func (m binMapper) numBins() int { return len(m.upper) }

func (m binMapper) bin(v float64) int {
	if math.IsNaN(v) {
		return len(m.upper)
	}
	return sort.SearchFloat64s(m.upper, v)
}

// binnedData is the quantised training matrix, stored feature-major.
type binnedData struct {
	numRows   int
	mappers   []binMapper
	bins      [][]uint16
	offsets   []int // histogram offset of each feature
	totalBins int
}

func newBinnedData(X *mat.Dense, maxBin, workers int) *binnedData {
	rows, cols := X.Dims()
	d := &binnedData{
		numRows: rows,
		mappers: make([]binMapper, cols),
		bins:    make([][]uint16, cols),
		offsets: make([]int, cols),
	}

	parallel.ForEach(cols, workers, func(j int) {
		values := mat.Col(nil, j, X)
		m := newBinMapper(values, maxBin)
		b := make([]uint16, rows)
		for i, v := range values {
			b[i] = uint16(m.bin(v))
		}
		d.mappers[j] = m
		d.bins[j] = b
	})

	for j, m := range d.mappers {
		d.offsets[j] = d.totalBins
		d.totalBins += m.numBins() + 1
	}
	return d
}
