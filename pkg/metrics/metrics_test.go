package metrics

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/zpam/classifier/pkg/shape"
)

func TestAccuracy(t *testing.T) {
	acc, err := Accuracy([]int{1, 0, 1, 1}, []int{1, 1, 1, 0})
	if err != nil {
		t.Fatalf("Accuracy failed: %v", err)
	}
	if acc != 0.5 {
		t.Errorf("Accuracy = %v, expected 0.5", acc)
	}

	if _, err := Accuracy([]int{1, 0}, []int{1}); !shape.IsMismatch(err) {
		t.Errorf("expected MismatchError, got %v", err)
	}
	if _, err := Accuracy([]int{}, []int{}); !shape.IsShapeError(err) {
		t.Errorf("expected ShapeError for empty input, got %v", err)
	}
}

func TestEvaluate(t *testing.T) {
	expected := []string{"spam", "spam", "spam", "ham", "ham"}
	predicted := []string{"spam", "spam", "ham", "ham", "spam"}

	report, err := Evaluate(expected, predicted, []string{"ham", "spam"})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	if report.Accuracy != 0.6 {
		t.Errorf("Accuracy = %v, expected 0.6", report.Accuracy)
	}
	if len(report.Classes) != 2 || report.Classes[0].Label != "ham" {
		t.Fatalf("unexpected classes: %+v", report.Classes)
	}

	spam := report.Classes[1]
	if spam.TP != 2 || spam.FP != 1 || spam.FN != 1 || spam.Support != 3 {
		t.Errorf("unexpected spam counts: %+v", spam)
	}
	if math.Abs(spam.Precision-2.0/3.0) > 1e-12 || math.Abs(spam.Recall-2.0/3.0) > 1e-12 {
		t.Errorf("unexpected spam rates: %+v", spam)
	}

	ham := report.Classes[0]
	if ham.TP != 1 || ham.Support != 2 || ham.Precision != 0.5 || ham.Recall != 0.5 {
		t.Errorf("unexpected ham stats: %+v", ham)
	}

	if report.Confusion["spam"]["ham"] != 1 || report.Confusion["ham"]["spam"] != 1 {
		t.Errorf("unexpected confusion matrix: %v", report.Confusion)
	}

	wantF1 := (2.0/3.0)*0.6 + 0.5*0.4
	if math.Abs(report.F1-wantF1) > 1e-12 {
		t.Errorf("weighted F1 = %v, expected %v", report.F1, wantF1)
	}
}

func TestEvaluateUnlistedLabels(t *testing.T) {
	report, err := Evaluate([]int{1, 2, 3}, []int{1, 2, 4}, nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if len(report.Classes) != 4 {
		t.Errorf("expected 4 classes including predicted-only label, got %d", len(report.Classes))
	}
}

func TestPrint(t *testing.T) {
	report, err := Evaluate([]int{0, 1}, []int{0, 1}, nil)
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}

	var buf bytes.Buffer
	report.Print(&buf)
	if !strings.Contains(buf.String(), "Accuracy: 100.00%") {
		t.Errorf("report missing accuracy line:\n%s", buf.String())
	}
}
