// Package bayes implements a Naive Bayes classifier.
//
// Bayes' theorem: P(A|B) = P(B|A) * P(A) / P(B)
//
// P(A) is supplied by a priori distribution and P(B|A) by a per-feature
// posterior estimate. P(B) is never estimated: it cancels when the joint
// probabilities are normalized over the classifier's buckets.
package bayes

import (
	"fmt"

	"github.com/zpam/classifier/pkg/posterior"
	"github.com/zpam/classifier/pkg/priori"
	"github.com/zpam/classifier/pkg/shape"
)

// DefaultZero is the substitute frequency for feature values never seen with
// a class. Pass a small epsilon to keep a single unseen value from zeroing
// out a class.
const DefaultZero = 0.0

// Distribution maps every bucket to its probability
type Distribution[L comparable] map[L]float64

// Classifier combines a prior and a posterior over a fixed set of buckets.
// It is immutable and safe for concurrent use.
type Classifier[F, L comparable] struct {
	prior     priori.Prior[L]
	posterior *posterior.Posterior[F, L]
	buckets   []L
}

// New composes a classifier from its parts. Buckets keep the given order,
// which decides ties in Classify.
func New[F, L comparable](prior priori.Prior[L], post *posterior.Posterior[F, L], buckets []L) (*Classifier[F, L], error) {
	if prior == nil {
		return nil, fmt.Errorf("prior is required")
	}
	if post == nil {
		return nil, fmt.Errorf("posterior is required")
	}

	buckets = distinct(buckets)
	if len(buckets) == 0 {
		return nil, fmt.Errorf("at least one bucket is required")
	}

	return &Classifier[F, L]{
		prior:     prior,
		posterior: post,
		buckets:   buckets,
	}, nil
}

// Uniform creates a classifier with a uniform a priori distribution over the
// buckets. nil buckets are inferred from outputs.
func Uniform[F, L comparable](inputs [][]F, outputs []L, buckets []L, zero float64) (*Classifier[F, L], error) {
	post, err := posterior.Build(inputs, outputs, zero)
	if err != nil {
		return nil, err
	}

	if buckets == nil {
		buckets = post.Labels()
	}

	return New[F, L](priori.Uniform(buckets), post, buckets)
}

// Multinomial creates a classifier with a multinomial a priori distribution
// fitted from outputs, or taken from frequencies when non-nil.
func Multinomial[F, L comparable](inputs [][]F, outputs []L, buckets []L, frequencies map[L]float64, zero float64) (*Classifier[F, L], error) {
	post, err := posterior.Build(inputs, outputs, zero)
	if err != nil {
		return nil, err
	}

	if buckets == nil {
		buckets = post.Labels()
	}

	return New[F, L](priori.Multinomial(outputs, frequencies, zero), post, buckets)
}

// Predict returns the probability of each bucket given input. When every
// joint probability is zero the uniform distribution is returned.
func (c *Classifier[F, L]) Predict(input []F) (Distribution[L], error) {
	if err := c.posterior.Check(input); err != nil {
		return nil, err
	}

	joint := make(Distribution[L], len(c.buckets))
	var total float64
	for _, bucket := range c.buckets {
		p := c.prior.Probability(bucket) * c.posterior.Probability(input, bucket)
		joint[bucket] = p
		total += p
	}

	if total == 0 {
		uniform := 1.0 / float64(len(c.buckets))
		for _, bucket := range c.buckets {
			joint[bucket] = uniform
		}
		return joint, nil
	}

	for bucket, p := range joint {
		joint[bucket] = p / total
	}
	return joint, nil
}

// Classify returns the most probable bucket for input. Ties go to the bucket
// listed first.
func (c *Classifier[F, L]) Classify(input []F) (L, error) {
	dist, err := c.Predict(input)
	if err != nil {
		var zero L
		return zero, err
	}
	return c.best(dist), nil
}

// Score returns the fraction of rows whose predicted bucket matches the
// expected output.
func (c *Classifier[F, L]) Score(inputs [][]F, outputs []L) (float64, error) {
	predictions, err := c.ClassifyAll(inputs, outputs)
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

// ClassifyAll classifies every row after validating inputs against outputs.
// Observers run after each row, e.g. to advance a progress bar.
func (c *Classifier[F, L]) ClassifyAll(inputs [][]F, outputs []L, observers ...func()) ([]L, error) {
	if _, err := shape.Match(inputs, outputs); err != nil {
		return nil, err
	}

	predictions := make([]L, len(inputs))
	for i, input := range inputs {
		predicted, err := c.Classify(input)
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

// Buckets returns the classes the classifier predicts, in tie-break order
func (c *Classifier[F, L]) Buckets() []L {
	out := make([]L, len(c.buckets))
	copy(out, c.buckets)
	return out
}

// Posterior exposes the trained frequency tables
func (c *Classifier[F, L]) Posterior() *posterior.Posterior[F, L] {
	return c.posterior
}

// Prior returns the a priori weight of a bucket
func (c *Classifier[F, L]) Prior(bucket L) float64 {
	return c.prior.Probability(bucket)
}

func (c *Classifier[F, L]) best(dist Distribution[L]) L {
	best := c.buckets[0]
	bestProb := dist[best]
	for _, bucket := range c.buckets[1:] {
		if p := dist[bucket]; p > bestProb {
			best, bestProb = bucket, p
		}
	}
	return best
}

func distinct[L comparable](items []L) []L {
	seen := make(map[L]struct{}, len(items))
	out := make([]L, 0, len(items))
	for _, item := range items {
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
