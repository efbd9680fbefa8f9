// Package posterior estimates P(B|A): the likelihood of a feature vector given
// a class, under the naive independence assumption.
package posterior

import (
	"fmt"

	"github.com/zpam/classifier/pkg/shape"
)

// Posterior holds one frequency table per feature position. Tables are built
// once and never mutated.
type Posterior[F, L comparable] struct {
	features int
	zero     float64

	// frequencies[j][label][value]
	frequencies []map[L]map[F]float64

	// rows seen per label
	totals map[L]int
	labels []L
}

// Build counts feature values per class and converts them to conditional
// frequencies. zero is returned for any feature value never seen with a class.
func Build[F, L comparable](inputs [][]F, outputs []L, zero float64) (*Posterior[F, L], error) {
	if _, err := shape.Match(inputs, outputs); err != nil {
		return nil, err
	}
	dims, err := shape.Of(inputs)
	if err != nil {
		return nil, err
	}
	features := dims[1]

	totals := make(map[L]int)
	var labels []L
	for _, output := range outputs {
		if _, seen := totals[output]; !seen {
			labels = append(labels, output)
		}
		totals[output]++
	}

	counts := make([]map[L]map[F]int, features)
	for j := range counts {
		counts[j] = make(map[L]map[F]int, len(labels))
	}
	for i, output := range outputs {
		for j, value := range inputs[i] {
			byValue, ok := counts[j][output]
			if !ok {
				byValue = make(map[F]int)
				counts[j][output] = byValue
			}
			byValue[value]++
		}
	}

	frequencies := make([]map[L]map[F]float64, features)
	for j, byLabel := range counts {
		frequencies[j] = make(map[L]map[F]float64, len(byLabel))
		for label, byValue := range byLabel {
			total := float64(totals[label])
			table := make(map[F]float64, len(byValue))
			for value, count := range byValue {
				table[value] = float64(count) / total
			}
			frequencies[j][label] = table
		}
	}

	return &Posterior[F, L]{
		features:    features,
		zero:        zero,
		frequencies: frequencies,
		totals:      totals,
		labels:      labels,
	}, nil
}

// Scalars builds a posterior over single-valued inputs
func Scalars[F, L comparable](inputs []F, outputs []L, zero float64) (*Posterior[F, L], error) {
	if _, err := shape.Match(inputs, outputs); err != nil {
		return nil, err
	}

	rows := make([][]F, len(inputs))
	for i, v := range inputs {
		rows[i] = []F{v}
	}
	return Build(rows, outputs, zero)
}

// Probability returns Π_j P(input[j] | label). input must have Features()
// values; use Check first for untrusted input.
func (p *Posterior[F, L]) Probability(input []F, label L) float64 {
	prob := 1.0
	for j := 0; j < p.features; j++ {
		prob *= p.Frequency(j, label, input[j])
	}
	return prob
}

// Frequency returns P(value | label) for feature j
func (p *Posterior[F, L]) Frequency(j int, label L, value F) float64 {
	if freq, ok := p.frequencies[j][label][value]; ok {
		return freq
	}
	return p.zero
}

// Check validates the length of an input vector
func (p *Posterior[F, L]) Check(input []F) error {
	if len(input) != p.features {
		return fmt.Errorf("input has %d features, model was trained on %d", len(input), p.features)
	}
	return nil
}

// Features returns the feature vector length seen during training
func (p *Posterior[F, L]) Features() int { return p.features }

// Zero returns the substitute frequency for unseen values
func (p *Posterior[F, L]) Zero() float64 { return p.zero }

// Labels returns the distinct training labels in order of first appearance
func (p *Posterior[F, L]) Labels() []L {
	out := make([]L, len(p.labels))
	copy(out, p.labels)
	return out
}

// Support returns the number of training rows labelled label
func (p *Posterior[F, L]) Support(label L) int {
	return p.totals[label]
}

// Values returns the number of distinct values seen for feature j under label
func (p *Posterior[F, L]) Values(j int, label L) int {
	return len(p.frequencies[j][label])
}
