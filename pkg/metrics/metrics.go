package metrics

import (
	"fmt"
	"io"

	"github.com/zpam/classifier/pkg/shape"
)

// Accuracy returns the fraction of predictions equal to the expected labels
func Accuracy[L comparable](expected, predicted []L) (float64, error) {
	rows, err := shape.Match(predicted, expected)
	if err != nil {
		return 0, err
	}

	var correct int
	for i := range expected {
		if expected[i] == predicted[i] {
			correct++
		}
	}
	return float64(correct) / float64(rows), nil
}

// ClassReport holds per-class counts and rates
type ClassReport[L comparable] struct {
	Label     L
	Support   int
	TP        int
	FP        int
	FN        int
	Precision float64
	Recall    float64
	F1        float64
}

// Report summarizes a set of predictions
type Report[L comparable] struct {
	Accuracy float64
	Classes  []ClassReport[L]

	// Support-weighted averages
	Precision float64
	Recall    float64
	F1        float64

	// Confusion[expected][predicted]
	Confusion map[L]map[L]int
}

// Evaluate builds a report over labels. Labels missing from the list are
// appended in order of first appearance in expected, then predicted.
func Evaluate[L comparable](expected, predicted []L, labels []L) (*Report[L], error) {
	accuracy, err := Accuracy(expected, predicted)
	if err != nil {
		return nil, err
	}

	labels = withObserved(labels, expected, predicted)

	confusion := make(map[L]map[L]int, len(labels))
	for _, label := range labels {
		confusion[label] = make(map[L]int, len(labels))
	}
	for i := range expected {
		confusion[expected[i]][predicted[i]]++
	}

	report := &Report[L]{
		Accuracy:  accuracy,
		Confusion: confusion,
	}

	for _, label := range labels {
		cls := ClassReport[L]{Label: label}
		for _, other := range labels {
			n := confusion[label][other]
			cls.Support += n
			if other == label {
				cls.TP = n
			} else {
				cls.FN += n
				cls.FP += confusion[other][label]
			}
		}

		if cls.TP+cls.FP > 0 {
			cls.Precision = float64(cls.TP) / float64(cls.TP+cls.FP)
		}
		if cls.TP+cls.FN > 0 {
			cls.Recall = float64(cls.TP) / float64(cls.TP+cls.FN)
		}
		if cls.Precision+cls.Recall > 0 {
			cls.F1 = 2 * cls.Precision * cls.Recall / (cls.Precision + cls.Recall)
		}

		weight := float64(cls.Support) / float64(len(expected))
		report.Precision += cls.Precision * weight
		report.Recall += cls.Recall * weight
		report.F1 += cls.F1 * weight

		report.Classes = append(report.Classes, cls)
	}

	return report, nil
}

// Print writes a plain-text classification report
func (r *Report[L]) Print(w io.Writer) {
	fmt.Fprintf(w, "%-16s %10s %10s %10s %8s\n", "Class", "Precision", "Recall", "F1", "Support")
	for _, cls := range r.Classes {
		fmt.Fprintf(w, "%-16v %10.3f %10.3f %10.3f %8d\n",
			cls.Label, cls.Precision, cls.Recall, cls.F1, cls.Support)
	}
	fmt.Fprintf(w, "%-16s %10.3f %10.3f %10.3f\n", "weighted avg", r.Precision, r.Recall, r.F1)
	fmt.Fprintf(w, "Accuracy: %.2f%%\n", r.Accuracy*100)
}

func withObserved[L comparable](labels []L, observed ...[]L) []L {
	seen := make(map[L]struct{}, len(labels))
	out := make([]L, 0, len(labels))
	add := func(label L) {
		if _, ok := seen[label]; !ok {
			seen[label] = struct{}{}
			out = append(out, label)
		}
	}
	for _, label := range labels {
		add(label)
	}
	for _, list := range observed {
		for _, label := range list {
			add(label)
		}
	}
	return out
}
