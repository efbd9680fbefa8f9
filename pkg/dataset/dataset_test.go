package dataset

import (
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/zpam/classifier/pkg/shape"
)

const weatherCSV = `outlook,temp,play
sunny,hot,no
rain,mild,yes
overcast,cool,yes
`

func TestReadCSV(t *testing.T) {
	opts := DefaultCSVOptions()
	opts.Header = true

	ds, err := ReadCSV(strings.NewReader(weatherCSV), opts)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}

	if ds.Rows() != 3 || ds.Features() != 2 {
		t.Errorf("expected 3x2 dataset, got %dx%d", ds.Rows(), ds.Features())
	}
	if !reflect.DeepEqual(ds.Header, []string{"outlook", "temp", "play"}) {
		t.Errorf("unexpected header %v", ds.Header)
	}
	if !reflect.DeepEqual(ds.Inputs[1], []string{"rain", "mild"}) {
		t.Errorf("unexpected row %v", ds.Inputs[1])
	}
	if !reflect.DeepEqual(ds.Labels(), []string{"no", "yes"}) {
		t.Errorf("unexpected labels %v", ds.Labels())
	}
}

func TestReadCSVLabelFirst(t *testing.T) {
	opts := CSVOptions{LabelColumn: 0, Delimiter: ';'}

	ds, err := ReadCSV(strings.NewReader("a;1;2\nb;3;4\n"), opts)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if !reflect.DeepEqual(ds.Outputs, []string{"a", "b"}) {
		t.Errorf("unexpected outputs %v", ds.Outputs)
	}
	if !reflect.DeepEqual(ds.Inputs, [][]string{{"1", "2"}, {"3", "4"}}) {
		t.Errorf("unexpected inputs %v", ds.Inputs)
	}
}

func TestReadCSVErrors(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), DefaultCSVOptions())
	if !shape.IsShapeError(err) {
		t.Errorf("empty csv: expected ShapeError, got %v", err)
	}

	_, err = ReadCSV(strings.NewReader("1,2\n"), CSVOptions{LabelColumn: 5})
	if err == nil {
		t.Error("out of range label column should fail")
	}
}

func TestCSVRoundTrip(t *testing.T) {
	original := Parity(6)

	path := filepath.Join(t.TempDir(), "parity.csv")
	var buf bytes.Buffer
	if err := original.WriteCSV(&buf); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	opts := DefaultCSVOptions()
	opts.Header = true
	loaded, err := LoadCSV(path, opts)
	if err != nil {
		t.Fatalf("LoadCSV failed: %v", err)
	}
	if !reflect.DeepEqual(loaded.Inputs, original.Inputs) || !reflect.DeepEqual(loaded.Outputs, original.Outputs) {
		t.Errorf("round trip mismatch: %+v vs %+v", loaded, original)
	}

	if _, err := LoadCSV(filepath.Join(t.TempDir(), "missing.csv"), opts); err == nil {
		t.Error("missing file should fail")
	}
}

func TestFloats(t *testing.T) {
	ds := &Dataset{Inputs: [][]string{{"1.5", "2"}}, Outputs: []string{"a"}}
	values, err := ds.Floats()
	if err != nil {
		t.Fatalf("Floats failed: %v", err)
	}
	if !reflect.DeepEqual(values, [][]float64{{1.5, 2}}) {
		t.Errorf("unexpected values %v", values)
	}

	ds.Inputs[0][1] = "two"
	if _, err := ds.Floats(); err == nil {
		t.Error("non-numeric field should fail")
	}
}

func TestSplit(t *testing.T) {
	ds := Parity(100)

	train, test, err := ds.Split(0.25, 7)
	if err != nil {
		t.Fatalf("Split failed: %v", err)
	}
	if train.Rows() != 75 || test.Rows() != 25 {
		t.Errorf("expected 75/25 split, got %d/%d", train.Rows(), test.Rows())
	}

	// Same seed, same split
	train2, _, _ := ds.Split(0.25, 7)
	if !reflect.DeepEqual(train.Outputs, train2.Outputs) || !reflect.DeepEqual(train.Inputs, train2.Inputs) {
		t.Error("split should be deterministic for a fixed seed")
	}

	seen := make(map[string]bool)
	for _, part := range []*Dataset{train, test} {
		for _, row := range part.Inputs {
			if seen[row[0]] {
				t.Fatalf("row %v appears twice", row)
			}
			seen[row[0]] = true
		}
	}
	if len(seen) != 100 {
		t.Errorf("expected all 100 rows across splits, got %d", len(seen))
	}

	for _, ratio := range []float64{0, 1, 0.001} {
		if _, _, err := ds.Split(ratio, 1); err == nil {
			t.Errorf("Split(%v) should fail", ratio)
		}
	}
}

func TestBins(t *testing.T) {
	train := [][]float64{{0, 5}, {10, 5}, {5, 5}}
	bins, err := FitBins(train, 2)
	if err != nil {
		t.Fatalf("FitBins failed: %v", err)
	}

	out, err := bins.Transform([][]float64{{0, 5}, {4.9, 1}, {5, 5}, {10, 5}, {-3, 9}, {42, 5}})
	if err != nil {
		t.Fatalf("Transform failed: %v", err)
	}
	expected := [][]int{{0, 0}, {0, 0}, {1, 0}, {1, 0}, {0, 0}, {1, 0}}
	if !reflect.DeepEqual(out, expected) {
		t.Errorf("Transform = %v, expected %v", out, expected)
	}

	if _, err := bins.Transform([][]float64{{1}}); err == nil {
		t.Error("wrong column count should fail")
	}
	if _, err := FitBins(train, 0); err == nil {
		t.Error("zero bins should fail")
	}
	if _, err := FitBins([][]float64{}, 2); !shape.IsShapeError(err) {
		t.Errorf("empty data: expected ShapeError, got %v", err)
	}
}

func TestVectorizer(t *testing.T) {
	config := DefaultTextConfig()
	config.MinWordCount = 1
	vectorizer := NewVectorizer(config)

	words := vectorizer.Words("The FILM was great, the film was GREAT!")
	if !reflect.DeepEqual(words, []string{"the", "film", "was", "great"}) {
		t.Errorf("unexpected words %v", words)
	}

	vectorizer.Fit([]string{"great film", "awful film", "film"})
	vocabulary := vectorizer.Vocabulary()
	if !reflect.DeepEqual(vocabulary, []string{"film", "awful", "great"}) {
		t.Errorf("unexpected vocabulary %v", vocabulary)
	}

	vectors := vectorizer.Transform([]string{"a great great film", "nothing here"})
	if !reflect.DeepEqual(vectors, [][]int{{1, 0, 1}, {0, 0, 0}}) {
		t.Errorf("unexpected vectors %v", vectors)
	}
}

func TestVectorizerLimits(t *testing.T) {
	config := DefaultTextConfig()
	config.MinWordCount = 2
	config.MaxVocabularySize = 1
	vectorizer := NewVectorizer(config)

	vectorizer.Fit([]string{"apple banana", "apple banana cherry", "apple"})
	if vocabulary := vectorizer.Vocabulary(); !reflect.DeepEqual(vocabulary, []string{"apple"}) {
		t.Errorf("expected [apple], got %v", vocabulary)
	}
}

func TestSynthetic(t *testing.T) {
	parity := Parity(30)
	if parity.Rows() != 30 || parity.Inputs[5][1] != "25" || parity.Outputs[5] != "1" {
		t.Errorf("unexpected parity data: %v -> %v", parity.Inputs[5], parity.Outputs[5])
	}

	clusters := Clusters(100, 5, 1)
	if err := clusters.Validate(); err != nil {
		t.Fatalf("clusters invalid: %v", err)
	}
	if clusters.Features() != 5 || len(clusters.Header) != 6 {
		t.Errorf("unexpected clusters layout: %d features, header %v", clusters.Features(), clusters.Header)
	}
	if _, err := clusters.Floats(); err != nil {
		t.Errorf("clusters should be numeric: %v", err)
	}

	reviews := Reviews(10, 1)
	if !reflect.DeepEqual(reviews.Labels(), []string{"positive", "negative"}) {
		t.Errorf("unexpected review labels %v", reviews.Labels())
	}
}
