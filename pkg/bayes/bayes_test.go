package bayes

import (
	"math"
	"sync"
	"testing"

	"github.com/zpam/classifier/pkg/posterior"
	"github.com/zpam/classifier/pkg/priori"
	"github.com/zpam/classifier/pkg/shape"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func parityData() ([][]int, []int) {
	inputs := make([][]int, 30)
	outputs := make([]int, 30)
	for i := range inputs {
		inputs[i] = []int{i, i * i}
		outputs[i] = i % 2
	}
	return inputs, outputs
}

func sum[L comparable](dist Distribution[L]) float64 {
	var total float64
	for _, p := range dist {
		total += p
	}
	return total
}

func TestUniformParity(t *testing.T) {
	inputs, outputs := parityData()
	classifier, err := Uniform(inputs, outputs, nil, DefaultZero)
	if err != nil {
		t.Fatalf("Uniform failed: %v", err)
	}

	dist, err := classifier.Predict([]int{5, 25})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if dist[1] != 1.0 || dist[0] != 0.0 {
		t.Errorf("Predict((5, 25)) = %v, expected {0: 0, 1: 1}", dist)
	}

	// Unseen combination falls back to uniform
	dist, err = classifier.Predict([]int{5, 26})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if dist[0] != 0.5 || dist[1] != 0.5 {
		t.Errorf("Predict((5, 26)) = %v, expected uniform", dist)
	}
}

func TestPredictSumsToOne(t *testing.T) {
	inputs := [][]string{
		{"sunny", "hot"}, {"sunny", "mild"}, {"rain", "mild"},
		{"rain", "cool"}, {"overcast", "hot"}, {"overcast", "cool"},
		{"sunny", "cool"}, {"rain", "hot"},
	}
	outputs := []string{"no", "no", "yes", "yes", "yes", "yes", "yes", "no"}

	uniform, err := Uniform(inputs, outputs, nil, DefaultZero)
	if err != nil {
		t.Fatalf("Uniform failed: %v", err)
	}
	smoothed, err := Multinomial(inputs, outputs, nil, nil, 1e-3)
	if err != nil {
		t.Fatalf("Multinomial failed: %v", err)
	}

	queries := [][]string{
		{"sunny", "hot"}, {"rain", "mild"}, {"overcast", "mild"},
		{"snow", "hot"}, {"snow", "freezing"},
	}

	for _, classifier := range []*Classifier[string, string]{uniform, smoothed} {
		for _, query := range queries {
			dist, err := classifier.Predict(query)
			if err != nil {
				t.Fatalf("Predict(%v) failed: %v", query, err)
			}
			if len(dist) != 2 {
				t.Errorf("expected 2 buckets, got %v", dist)
			}
			if total := sum(dist); !almostEqual(total, 1) {
				t.Errorf("Predict(%v) sums to %v, expected 1", query, total)
			}
			for bucket, p := range dist {
				if p < 0 || math.IsNaN(p) {
					t.Errorf("Predict(%v)[%s] = %v, expected non-negative", query, bucket, p)
				}
			}
		}
	}
}

func TestAllUnseenIsExactlyUniform(t *testing.T) {
	inputs := [][]int{{1, 1}, {2, 2}, {3, 3}}
	outputs := []string{"a", "b", "c"}

	classifier, err := Uniform(inputs, outputs, nil, 0)
	if err != nil {
		t.Fatalf("Uniform failed: %v", err)
	}

	dist, err := classifier.Predict([]int{9, 9})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	for _, bucket := range []string{"a", "b", "c"} {
		if dist[bucket] != 1.0/3.0 {
			t.Errorf("dist[%s] = %v, expected exactly 1/3", bucket, dist[bucket])
		}
	}
}

func TestExplicitBuckets(t *testing.T) {
	inputs := [][]int{{1}, {2}}
	outputs := []string{"a", "b"}

	// A bucket that never appears in training gets zero joint probability
	classifier, err := Uniform(inputs, outputs, []string{"a", "b", "c"}, 0)
	if err != nil {
		t.Fatalf("Uniform failed: %v", err)
	}

	dist, err := classifier.Predict([]int{1})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if dist["a"] != 1 || dist["b"] != 0 || dist["c"] != 0 {
		t.Errorf("unexpected distribution %v", dist)
	}
	if classifier.Prior("c") != 1.0/3.0 {
		t.Errorf("prior of c = %v, expected 1/3", classifier.Prior("c"))
	}

	// Duplicate buckets collapse
	classifier, err = Uniform(inputs, outputs, []string{"b", "a", "b"}, 0)
	if err != nil {
		t.Fatalf("Uniform failed: %v", err)
	}
	buckets := classifier.Buckets()
	if len(buckets) != 2 || buckets[0] != "b" || buckets[1] != "a" {
		t.Errorf("expected buckets [b a], got %v", buckets)
	}
}

func TestMultinomialPriorWeighs(t *testing.T) {
	// Identical features; only the prior separates the classes
	inputs := [][]string{{"x"}, {"x"}, {"x"}, {"x"}}
	outputs := []string{"common", "common", "common", "rare"}

	classifier, err := Multinomial(inputs, outputs, nil, nil, 0)
	if err != nil {
		t.Fatalf("Multinomial failed: %v", err)
	}

	dist, err := classifier.Predict([]string{"x"})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if !almostEqual(dist["common"], 0.75) || !almostEqual(dist["rare"], 0.25) {
		t.Errorf("expected {common: 0.75, rare: 0.25}, got %v", dist)
	}

	// Supplied frequencies override the sample
	classifier, err = Multinomial(inputs, outputs, nil, map[string]float64{"common": 0.5, "rare": 0.5}, 0)
	if err != nil {
		t.Fatalf("Multinomial failed: %v", err)
	}
	dist, _ = classifier.Predict([]string{"x"})
	if !almostEqual(dist["common"], 0.5) {
		t.Errorf("expected supplied frequencies to give 0.5, got %v", dist)
	}
}

func TestNormalPrior(t *testing.T) {
	inputs := [][]string{{"low"}, {"low"}, {"high"}, {"high"}}
	outputs := []float64{1, 1, 3, 3}

	post, err := posterior.Build(inputs, outputs, 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	normal, err := priori.NormalWith(1, 1)
	if err != nil {
		t.Fatalf("NormalWith failed: %v", err)
	}

	classifier, err := New[string, float64](normal, post, []float64{1, 3})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	dist, err := classifier.Predict([]string{"low"})
	if err != nil {
		t.Fatalf("Predict failed: %v", err)
	}
	if dist[1] != 1 {
		t.Errorf("expected class 1 with certainty, got %v", dist)
	}
}

func TestClassifyTieBreak(t *testing.T) {
	inputs := [][]int{{1}, {1}}
	outputs := []string{"first", "second"}

	classifier, err := Uniform(inputs, outputs, nil, 0)
	if err != nil {
		t.Fatalf("Uniform failed: %v", err)
	}
	label, err := classifier.Classify([]int{1})
	if err != nil {
		t.Fatalf("Classify failed: %v", err)
	}
	if label != "first" {
		t.Errorf("tie should go to the first bucket, got %s", label)
	}

	classifier, _ = Uniform(inputs, outputs, []string{"second", "first"}, 0)
	label, _ = classifier.Classify([]int{1})
	if label != "second" {
		t.Errorf("tie should follow explicit bucket order, got %s", label)
	}
}

func TestScore(t *testing.T) {
	inputs, outputs := parityData()
	classifier, err := Uniform(inputs, outputs, nil, 0)
	if err != nil {
		t.Fatalf("Uniform failed: %v", err)
	}

	score, err := classifier.Score(inputs, outputs)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if score != 1.0 {
		t.Errorf("score on separable training set = %v, expected 1.0", score)
	}

	// Flip half of the expected labels
	flipped := make([]int, len(outputs))
	for i, o := range outputs {
		if i < 15 {
			flipped[i] = 1 - o
		} else {
			flipped[i] = o
		}
	}
	score, err = classifier.Score(inputs, flipped)
	if err != nil {
		t.Fatalf("Score failed: %v", err)
	}
	if score != 0.5 {
		t.Errorf("score = %v, expected 0.5", score)
	}
}

func TestShapeErrors(t *testing.T) {
	_, err := Uniform([][]int{{1}, {2}, {3}}, []int{0, 1}, nil, 0)
	if !shape.IsMismatch(err) {
		t.Errorf("Uniform: expected MismatchError, got %v", err)
	}
	_, err = Multinomial([][]int{{1}}, []int{0, 1}, nil, nil, 0)
	if !shape.IsMismatch(err) {
		t.Errorf("Multinomial: expected MismatchError, got %v", err)
	}

	inputs, outputs := parityData()
	classifier, err := Uniform(inputs, outputs, nil, 0)
	if err != nil {
		t.Fatalf("Uniform failed: %v", err)
	}

	_, err = classifier.Score(inputs, outputs[:10])
	if !shape.IsMismatch(err) {
		t.Errorf("Score: expected MismatchError, got %v", err)
	}
	_, err = classifier.Score([][]int{}, []int{})
	if !shape.IsShapeError(err) {
		t.Errorf("Score on empty data: expected ShapeError, got %v", err)
	}
	if _, err := classifier.Predict([]int{1}); err == nil {
		t.Error("Predict with wrong feature count should fail")
	}
}

func TestNewValidation(t *testing.T) {
	post, err := posterior.Build([][]int{{1}}, []int{0}, 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if _, err := New[int, int](nil, post, []int{0}); err == nil {
		t.Error("New without prior should fail")
	}
	if _, err := New[int, int](priori.Uniform([]int{0}), nil, []int{0}); err == nil {
		t.Error("New without posterior should fail")
	}
	if _, err := New[int, int](priori.Uniform([]int{0}), post, nil); err == nil {
		t.Error("New without buckets should fail")
	}
}

func TestConcurrentPredict(t *testing.T) {
	inputs, outputs := parityData()
	classifier, err := Uniform(inputs, outputs, nil, 0)
	if err != nil {
		t.Fatalf("Uniform failed: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := classifier.Score(inputs, outputs); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent Score failed: %v", err)
	}
}
