package dataset

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/zpam/classifier/pkg/shape"
)

// Bins maps continuous columns onto equal-width buckets fitted on training data
type Bins struct {
	count int
	min   []float64
	width []float64
}

// FitBins computes per-column ranges for count equal-width bins
func FitBins(values [][]float64, count int) (*Bins, error) {
	if count < 1 {
		return nil, errors.Errorf("bin count must be >= 1, got %d", count)
	}
	dims, err := shape.Of(values)
	if err != nil {
		return nil, err
	}
	if len(dims) != 2 {
		return nil, errors.New("bins need two-dimensional data")
	}

	cols := dims[1]
	b := &Bins{
		count: count,
		min:   make([]float64, cols),
		width: make([]float64, cols),
	}

	column := make([]float64, len(values))
	for j := 0; j < cols; j++ {
		for i, row := range values {
			column[i] = row[j]
		}
		lo, hi := floats.Min(column), floats.Max(column)
		b.min[j] = lo
		b.width[j] = (hi - lo) / float64(count)
	}
	return b, nil
}

// Transform assigns every value its bin index. Values outside the fitted
// range are clamped to the first or last bin.
func (b *Bins) Transform(values [][]float64) ([][]int, error) {
	out := make([][]int, len(values))
	for i, row := range values {
		if len(row) != len(b.min) {
			return nil, errors.Errorf("row %d has %d columns, bins were fitted on %d", i, len(row), len(b.min))
		}
		binned := make([]int, len(row))
		for j, v := range row {
			binned[j] = b.bin(j, v)
		}
		out[i] = binned
	}
	return out, nil
}

// Count returns the number of bins per column
func (b *Bins) Count() int { return b.count }

func (b *Bins) bin(j int, v float64) int {
	if b.width[j] == 0 {
		return 0
	}
	idx := int(math.Floor((v - b.min[j]) / b.width[j]))
	if idx < 0 {
		return 0
	}
	if idx >= b.count {
		return b.count - 1
	}
	return idx
}
