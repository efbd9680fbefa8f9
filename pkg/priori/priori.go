// Package priori provides a priori class distributions, the P(A) term of
// Bayes' theorem.
package priori

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Prior maps a value to its a priori probability (or density)
type Prior[L comparable] interface {
	Probability(label L) float64
}

// Func adapts an ordinary function to a Prior
type Func[L comparable] func(label L) float64

// Probability calls f(label)
func (f Func[L]) Probability(label L) float64 {
	return f(label)
}

// UniformPrior assigns the same weight to every known value
type UniformPrior[L comparable] struct {
	values map[L]struct{}
	weight float64
}

// Uniform assumes the values follow a uniform distribution. Duplicates are
// counted once.
func Uniform[L comparable](values []L) *UniformPrior[L] {
	set := make(map[L]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}

	var weight float64
	if len(set) > 0 {
		weight = 1.0 / float64(len(set))
	}

	return &UniformPrior[L]{values: set, weight: weight}
}

// Probability returns 1/|values| for known values and 0 otherwise
func (u *UniformPrior[L]) Probability(label L) float64 {
	if _, ok := u.values[label]; ok {
		return u.weight
	}
	return 0
}

// MultinomialPrior models the outputs as draws from a multinomial distribution
type MultinomialPrior[L comparable] struct {
	frequencies map[L]float64
	zero        float64
}

// Multinomial fits outcome frequencies from samples. A non-nil frequencies
// map is used as-is instead. zero substitutes the frequency of outcomes that
// were never sampled.
func Multinomial[L comparable](samples []L, frequencies map[L]float64, zero float64) *MultinomialPrior[L] {
	if frequencies == nil {
		frequencies, _ = Frequencies(samples)
	} else {
		frequencies = cloneFrequencies(frequencies)
	}

	return &MultinomialPrior[L]{frequencies: frequencies, zero: zero}
}

// Probability is the probability of drawing label in a single trial
func (m *MultinomialPrior[L]) Probability(label L) float64 {
	return m.Outcomes(label)
}

// Outcomes returns the probability of observing exactly this multiset of
// outcomes in len(outcomes) draws: n! * Π f(v)^c(v) / c(v)!
func (m *MultinomialPrior[L]) Outcomes(outcomes ...L) float64 {
	counts, order := Counts(outcomes)

	logProb := logFactorial(len(outcomes))
	for _, outcome := range order {
		count := counts[outcome]
		freq, ok := m.frequencies[outcome]
		if !ok {
			freq = m.zero
		}
		if freq == 0 {
			return 0
		}
		logProb += float64(count)*math.Log(freq) - logFactorial(count)
	}
	return math.Exp(logProb)
}

// Frequency returns the fitted frequency of label, or zero when unseen
func (m *MultinomialPrior[L]) Frequency(label L) float64 {
	if freq, ok := m.frequencies[label]; ok {
		return freq
	}
	return m.zero
}

// NormalPrior is a Gaussian density over scalar values
type NormalPrior struct {
	dist distuv.Normal
}

// Normal fits mean and sample standard deviation from samples
func Normal(samples []float64) (*NormalPrior, error) {
	if len(samples) < 2 {
		return nil, fmt.Errorf("normal prior needs at least 2 samples, got %d", len(samples))
	}

	mu, sigma := stat.MeanStdDev(samples, nil)
	return NormalWith(mu, sigma)
}

// NormalWith uses the given distribution parameters
func NormalWith(mu, sigma float64) (*NormalPrior, error) {
	if !(sigma > 0) || math.IsInf(sigma, 0) {
		return nil, fmt.Errorf("normal prior needs a positive finite sigma, got %v", sigma)
	}
	if math.IsNaN(mu) || math.IsInf(mu, 0) {
		return nil, fmt.Errorf("normal prior needs a finite mu, got %v", mu)
	}

	return &NormalPrior{dist: distuv.Normal{Mu: mu, Sigma: sigma}}, nil
}

// Probability returns the density at x. This is not a probability mass.
func (n *NormalPrior) Probability(x float64) float64 {
	return n.dist.Prob(x)
}

// Mean returns the fitted mean
func (n *NormalPrior) Mean() float64 { return n.dist.Mu }

// StdDev returns the fitted standard deviation
func (n *NormalPrior) StdDev() float64 { return n.dist.Sigma }

// Counts tallies items. The second result lists distinct items in order of
// first appearance.
func Counts[L comparable](items []L) (map[L]int, []L) {
	counts := make(map[L]int)
	var order []L
	for _, item := range items {
		if _, seen := counts[item]; !seen {
			order = append(order, item)
		}
		counts[item]++
	}
	return counts, order
}

// Frequencies returns the relative frequency of each item
func Frequencies[L comparable](items []L) (map[L]float64, []L) {
	counts, order := Counts(items)
	n := float64(len(items))

	frequencies := make(map[L]float64, len(counts))
	for item, count := range counts {
		frequencies[item] = float64(count) / n
	}
	return frequencies, order
}

func cloneFrequencies[L comparable](in map[L]float64) map[L]float64 {
	out := make(map[L]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func logFactorial(n int) float64 {
	lg, _ := math.Lgamma(float64(n) + 1)
	return lg
}
