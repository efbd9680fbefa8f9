// Package dataset loads, transforms and splits labelled tabular data.
package dataset

import (
	"encoding/csv"
	"io"
	"math/rand"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/zpam/classifier/pkg/shape"
)

// Dataset is a table of categorical features with one label per row
type Dataset struct {
	Name    string     `json:"name" yaml:"name"`
	Header  []string   `json:"header,omitempty" yaml:"header,omitempty"`
	Inputs  [][]string `json:"inputs" yaml:"inputs"`
	Outputs []string   `json:"outputs" yaml:"outputs"`
}

// CSVOptions describes the layout of a CSV file
type CSVOptions struct {
	// LabelColumn is the index of the label column; negative counts from the end
	LabelColumn int
	Header      bool
	Delimiter   rune
}

// DefaultCSVOptions returns options for a headerless, comma separated file
// with the label in the last column
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{
		LabelColumn: -1,
		Header:      false,
		Delimiter:   ',',
	}
}

// LoadCSV reads a dataset from a file
func LoadCSV(path string, opts CSVOptions) (*Dataset, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open dataset")
	}
	defer file.Close()

	ds, err := ReadCSV(file, opts)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}
	return ds, nil
}

// ReadCSV parses a dataset from r
func ReadCSV(r io.Reader, opts CSVOptions) (*Dataset, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "malformed csv")
	}

	ds := &Dataset{}
	if opts.Header && len(records) > 0 {
		ds.Header = records[0]
		records = records[1:]
	}

	for i, record := range records {
		label := opts.LabelColumn
		if label < 0 {
			label += len(record)
		}
		if label < 0 || label >= len(record) {
			return nil, errors.Errorf("record %d: label column %d out of range (%d columns)", i+1, opts.LabelColumn, len(record))
		}

		row := make([]string, 0, len(record)-1)
		for j, field := range record {
			if j == label {
				continue
			}
			row = append(row, strings.TrimSpace(field))
		}
		ds.Inputs = append(ds.Inputs, row)
		ds.Outputs = append(ds.Outputs, strings.TrimSpace(record[label]))
	}

	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// WriteCSV writes the dataset with the label in the last column
func (ds *Dataset) WriteCSV(w io.Writer) error {
	writer := csv.NewWriter(w)
	if len(ds.Header) > 0 {
		if err := writer.Write(ds.Header); err != nil {
			return errors.Wrap(err, "failed to write header")
		}
	}
	for i, row := range ds.Inputs {
		record := append(append(make([]string, 0, len(row)+1), row...), ds.Outputs[i])
		if err := writer.Write(record); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i)
		}
	}
	writer.Flush()
	return writer.Error()
}

// Validate checks that the dataset has a usable shape
func (ds *Dataset) Validate() error {
	if _, err := shape.Match(ds.Inputs, ds.Outputs); err != nil {
		return err
	}
	_, err := shape.Of(ds.Inputs)
	return err
}

// Rows returns the number of rows
func (ds *Dataset) Rows() int { return len(ds.Outputs) }

// Features returns the number of feature columns
func (ds *Dataset) Features() int {
	if len(ds.Inputs) == 0 {
		return 0
	}
	return len(ds.Inputs[0])
}

// Labels returns the distinct labels in order of first appearance
func (ds *Dataset) Labels() []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, label := range ds.Outputs {
		if _, ok := seen[label]; !ok {
			seen[label] = struct{}{}
			labels = append(labels, label)
		}
	}
	return labels
}

// Floats parses every feature as a number
func (ds *Dataset) Floats() ([][]float64, error) {
	out := make([][]float64, len(ds.Inputs))
	for i, row := range ds.Inputs {
		values := make([]float64, len(row))
		for j, field := range row {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, errors.Wrapf(err, "row %d column %d", i, j)
			}
			values[j] = v
		}
		out[i] = values
	}
	return out, nil
}

// Split shuffles rows with the given seed and holds out testRatio of them
func (ds *Dataset) Split(testRatio float64, seed int64) (train, test *Dataset, err error) {
	if testRatio <= 0 || testRatio >= 1 {
		return nil, nil, errors.Errorf("test ratio must be in (0, 1), got %v", testRatio)
	}

	n := ds.Rows()
	nTest := int(float64(n) * testRatio)
	if nTest == 0 || nTest == n {
		return nil, nil, errors.Errorf("cannot split %d rows with test ratio %v", n, testRatio)
	}

	indices := rand.New(rand.NewSource(seed)).Perm(n)
	train = &Dataset{Name: ds.Name + ":train", Header: ds.Header}
	test = &Dataset{Name: ds.Name + ":test", Header: ds.Header}
	for i, idx := range indices {
		target := train
		if i < nTest {
			target = test
		}
		target.Inputs = append(target.Inputs, ds.Inputs[idx])
		target.Outputs = append(target.Outputs, ds.Outputs[idx])
	}
	return train, test, nil
}
