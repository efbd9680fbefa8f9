package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/zpam/classifier/pkg/bayes"
	"github.com/zpam/classifier/pkg/config"
	"github.com/zpam/classifier/pkg/dataset"
	"github.com/zpam/classifier/pkg/knn"
	"github.com/zpam/classifier/pkg/store"
)

// loadDataset reads a CSV file, or a stored dataset when name is set
func loadDataset(ctx context.Context, cfg *config.Config, path, name string) (*dataset.Dataset, error) {
	if name != "" {
		st, err := store.Open(&cfg.Store)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %v", err)
		}
		defer st.Close()
		return st.LoadDataset(ctx, name)
	}

	if path == "" {
		path = cfg.Dataset.Path
	}
	if path == "" {
		return nil, fmt.Errorf("either --input or --dataset is required")
	}

	ds, err := dataset.LoadCSV(path, cfg.CSVOptions())
	if err != nil {
		return nil, err
	}
	ds.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return ds, nil
}

// Feature encodings
const (
	modeCategorical = "categorical"
	modeBinned      = "binned"
	modeText        = "text"
)

// encoder turns raw string rows into model features. It is fitted on
// training rows only and reused for test and prediction rows.
type encoder struct {
	mode       string
	binCount   int
	bins       *dataset.Bins
	vectorizer *dataset.Vectorizer
}

func newEncoder(cfg *config.Config) *encoder {
	e := &encoder{mode: modeCategorical, binCount: cfg.Dataset.Bins}
	switch {
	case cfg.Dataset.Text.Enabled:
		e.mode = modeText
		textConfig := cfg.Dataset.Text.TextConfig
		e.vectorizer = dataset.NewVectorizer(&textConfig)
	case cfg.Dataset.Bins > 0:
		e.mode = modeBinned
	}
	return e
}

func (e *encoder) fit(rows [][]string) error {
	switch e.mode {
	case modeText:
		e.vectorizer.Fit(documents(rows))
		if len(e.vectorizer.Vocabulary()) == 0 {
			return fmt.Errorf("no word appears often enough to build a vocabulary")
		}
	case modeBinned:
		values, err := parseFloats(rows)
		if err != nil {
			return err
		}
		bins, err := dataset.FitBins(values, e.binCount)
		if err != nil {
			return err
		}
		e.bins = bins
	}
	return nil
}

// discrete encodes rows for binned and text modes
func (e *encoder) discrete(rows [][]string) ([][]int, error) {
	switch e.mode {
	case modeText:
		return e.vectorizer.Transform(documents(rows)), nil
	case modeBinned:
		values, err := parseFloats(rows)
		if err != nil {
			return nil, err
		}
		return e.bins.Transform(values)
	default:
		return nil, fmt.Errorf("%s features are not discretized", e.mode)
	}
}

// numeric encodes rows for distance-based models
func (e *encoder) numeric(rows [][]string) ([][]float64, error) {
	if e.mode != modeText {
		return parseFloats(rows)
	}
	vectors := e.vectorizer.Transform(documents(rows))
	out := make([][]float64, len(vectors))
	for i, vec := range vectors {
		out[i] = make([]float64, len(vec))
		for j, v := range vec {
			out[i][j] = float64(v)
		}
	}
	return out, nil
}

func (e *encoder) describe() string {
	switch e.mode {
	case modeText:
		return fmt.Sprintf("text (%d words)", len(e.vectorizer.Vocabulary()))
	case modeBinned:
		return fmt.Sprintf("binned (%d bins)", e.bins.Count())
	default:
		return modeCategorical
	}
}

func documents(rows [][]string) []string {
	docs := make([]string, len(rows))
	for i, row := range rows {
		docs[i] = strings.Join(row, " ")
	}
	return docs
}

func parseFloats(rows [][]string) ([][]float64, error) {
	ds := &dataset.Dataset{Inputs: rows}
	return ds.Floats()
}

// bayesModel classifies raw rows with whatever feature type the encoder produces
type bayesModel interface {
	Predict(row []string) (bayes.Distribution[string], error)
	ClassifyAll(rows [][]string, outputs []string, observers ...func()) ([]string, error)
	Buckets() []string
	// Features is the length of the encoded feature vector
	Features() int
}

type encodedBayes[F comparable] struct {
	classifier *bayes.Classifier[F, string]
	encode     func([][]string) ([][]F, error)
}

func (m *encodedBayes[F]) Predict(row []string) (bayes.Distribution[string], error) {
	encoded, err := m.encode([][]string{row})
	if err != nil {
		return nil, err
	}
	return m.classifier.Predict(encoded[0])
}

func (m *encodedBayes[F]) ClassifyAll(rows [][]string, outputs []string, observers ...func()) ([]string, error) {
	encoded, err := m.encode(rows)
	if err != nil {
		return nil, err
	}
	return m.classifier.ClassifyAll(encoded, outputs, observers...)
}

func (m *encodedBayes[F]) Buckets() []string {
	return m.classifier.Buckets()
}

func (m *encodedBayes[F]) Features() int {
	return m.classifier.Posterior().Features()
}

// trainBayes fits the encoder and a Naive Bayes model on the training rows
func trainBayes(cfg *config.Config, enc *encoder, rows [][]string, outputs []string) (bayesModel, error) {
	if err := enc.fit(rows); err != nil {
		return nil, err
	}

	if enc.mode == modeCategorical {
		identity := func(rows [][]string) ([][]string, error) { return rows, nil }
		return newEncodedBayes(cfg, identity, rows, outputs)
	}
	return newEncodedBayes(cfg, enc.discrete, rows, outputs)
}

func newEncodedBayes[F comparable](cfg *config.Config, encode func([][]string) ([][]F, error), rows [][]string, outputs []string) (bayesModel, error) {
	inputs, err := encode(rows)
	if err != nil {
		return nil, err
	}
	classifier, err := newClassifier(cfg.Classifier, inputs, outputs)
	if err != nil {
		return nil, err
	}
	return &encodedBayes[F]{classifier: classifier, encode: encode}, nil
}

func newClassifier[F comparable](cfg config.ClassifierConfig, inputs [][]F, outputs []string) (*bayes.Classifier[F, string], error) {
	var buckets []string
	if len(cfg.Buckets) > 0 {
		buckets = cfg.Buckets
	}

	switch cfg.Prior {
	case "multinomial":
		var frequencies map[string]float64
		if len(cfg.Frequencies) > 0 {
			frequencies = cfg.Frequencies
		}
		return bayes.Multinomial(inputs, outputs, buckets, frequencies, cfg.Zero)
	case "", "uniform":
		return bayes.Uniform(inputs, outputs, buckets, cfg.Zero)
	default:
		return nil, fmt.Errorf("unknown prior: %s", cfg.Prior)
	}
}

// knnModel predicts raw rows through the encoder's numeric view
type knnModel struct {
	neighbours *knn.KNeighbors[string]
	encode     func([][]string) ([][]float64, error)
}

// trainKNN expects an encoder already fitted by trainBayes
func trainKNN(cfg *config.Config, enc *encoder, rows [][]string, outputs []string) (*knnModel, error) {
	inputs, err := enc.numeric(rows)
	if err != nil {
		return nil, fmt.Errorf("knn needs numeric features: %v", err)
	}
	distance, err := knn.DistanceByName(cfg.KNN.Distance)
	if err != nil {
		return nil, err
	}
	neighbours, err := knn.New(inputs, outputs, distance, cfg.KNN.K)
	if err != nil {
		return nil, err
	}
	return &knnModel{neighbours: neighbours, encode: enc.numeric}, nil
}

func (m *knnModel) Predict(row []string) (string, error) {
	encoded, err := m.encode([][]string{row})
	if err != nil {
		return "", err
	}
	return m.neighbours.Predict(encoded[0])
}

func (m *knnModel) PredictAll(rows [][]string, outputs []string, observers ...func()) ([]string, error) {
	encoded, err := m.encode(rows)
	if err != nil {
		return nil, err
	}
	return m.neighbours.PredictAll(encoded, outputs, observers...)
}

func bayesModelName(cfg *config.Config) string {
	return "bayes-" + cfg.Classifier.Prior
}

func (m *knnModel) Name() string {
	return "knn-" + strconv.Itoa(m.neighbours.K())
}
