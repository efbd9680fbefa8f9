package knn

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/zpam/classifier/pkg/shape"
)

// Distance measures how far apart two feature vectors are
type Distance func(a, b []float64) float64

// Euclidean is the L2 distance
func Euclidean(a, b []float64) float64 {
	return floats.Distance(a, b, 2)
}

// Manhattan is the L1 distance
func Manhattan(a, b []float64) float64 {
	return floats.Distance(a, b, 1)
}

// Chebyshev is the L-infinity distance
func Chebyshev(a, b []float64) float64 {
	return floats.Distance(a, b, math.Inf(1))
}

// DistanceByName resolves a configured distance name
func DistanceByName(name string) (Distance, error) {
	switch name {
	case "", "euclidean":
		return Euclidean, nil
	case "manhattan":
		return Manhattan, nil
	case "chebyshev":
		return Chebyshev, nil
	default:
		return nil, fmt.Errorf("unknown distance: %s", name)
	}
}

// KNeighbors classifies a point by majority vote of its k nearest training
// points. Training data is kept as-is; every prediction scans it linearly.
type KNeighbors[L comparable] struct {
	inputs   [][]float64
	outputs  []L
	distance Distance
	k        int
	features int
}

// New stores the training data
func New[L comparable](inputs [][]float64, outputs []L, distance Distance, k int) (*KNeighbors[L], error) {
	if _, err := shape.Match(inputs, outputs); err != nil {
		return nil, err
	}
	dims, err := shape.Of(inputs)
	if err != nil {
		return nil, err
	}
	if k < 1 {
		return nil, fmt.Errorf("k must be >= 1, got %d", k)
	}
	if distance == nil {
		return nil, fmt.Errorf("distance is required")
	}

	return &KNeighbors[L]{
		inputs:   inputs,
		outputs:  outputs,
		distance: distance,
		k:        k,
		features: dims[1],
	}, nil
}

// Make creates a classifier using Euclidean distance
func Make[L comparable](inputs [][]float64, outputs []L, k int) (*KNeighbors[L], error) {
	return New(inputs, outputs, Euclidean, k)
}

// Predict returns the most common label among the k nearest training points.
// Equal distances keep training order; a tied vote goes to the label whose
// first voter is nearest.
func (m *KNeighbors[L]) Predict(input []float64) (L, error) {
	var zero L
	if len(input) != m.features {
		return zero, fmt.Errorf("input has %d features, model was trained on %d", len(input), m.features)
	}

	type neighbour struct {
		d     float64
		index int
	}

	neighbours := make([]neighbour, len(m.inputs))
	for i, point := range m.inputs {
		neighbours[i] = neighbour{d: m.distance(input, point), index: i}
	}
	sort.SliceStable(neighbours, func(a, b int) bool {
		return neighbours[a].d < neighbours[b].d
	})

	k := m.k
	if k > len(neighbours) {
		k = len(neighbours)
	}

	votes := make(map[L]int)
	var order []L
	for _, n := range neighbours[:k] {
		label := m.outputs[n.index]
		if _, ok := votes[label]; !ok {
			order = append(order, label)
		}
		votes[label]++
	}

	best := order[0]
	for _, label := range order[1:] {
		if votes[label] > votes[best] {
			best = label
		}
	}
	return best, nil
}

// Score returns the fraction of rows predicted correctly
func (m *KNeighbors[L]) Score(inputs [][]float64, outputs []L) (float64, error) {
	predictions, err := m.PredictAll(inputs, outputs)
	if err != nil {
		return 0, err
	}

	var correct int
	for i, predicted := range predictions {
		if predicted == outputs[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(predictions)), nil
}

// PredictAll predicts every row after validating inputs against outputs.
// Observers run after each row.
func (m *KNeighbors[L]) PredictAll(inputs [][]float64, outputs []L, observers ...func()) ([]L, error) {
	if _, err := shape.Match(inputs, outputs); err != nil {
		return nil, err
	}

	predictions := make([]L, len(inputs))
	for i, input := range inputs {
		predicted, err := m.Predict(input)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		predictions[i] = predicted
		for _, observe := range observers {
			observe()
		}
	}
	return predictions, nil
}

// K returns the number of neighbours consulted
func (m *KNeighbors[L]) K() int { return m.k }
