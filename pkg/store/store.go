// Package store keeps datasets and evaluation runs between CLI invocations.
package store

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/zpam/classifier/pkg/dataset"
)

// ErrNotFound is returned when a dataset does not exist
var ErrNotFound = errors.New("not found")

// Run records one model evaluation
type Run struct {
	ID        string        `json:"id"`
	Dataset   string        `json:"dataset"`
	Model     string        `json:"model"`
	Accuracy  float64       `json:"accuracy"`
	F1        float64       `json:"f1"`
	TrainRows int           `json:"train_rows"`
	TestRows  int           `json:"test_rows"`
	Duration  time.Duration `json:"duration"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store persists datasets and evaluation history
type Store interface {
	SaveDataset(ctx context.Context, ds *dataset.Dataset) error
	LoadDataset(ctx context.Context, name string) (*dataset.Dataset, error)
	ListDatasets(ctx context.Context) ([]string, error)
	DeleteDataset(ctx context.Context, name string) error

	RecordRun(ctx context.Context, run *Run) error
	// Runs returns the most recent runs for a dataset, newest first
	Runs(ctx context.Context, datasetName string, limit int) ([]*Run, error)

	Close() error
}

// Config selects and configures a backend
type Config struct {
	Backend string       `yaml:"backend"` // memory or redis
	Redis   *RedisConfig `yaml:"redis"`
}

// Open creates the configured backend
func Open(config *Config) (Store, error) {
	if config == nil {
		return NewMemoryStore(), nil
	}

	switch config.Backend {
	case "", "memory":
		return NewMemoryStore(), nil
	case "redis":
		rs, err := NewRedisStore(config.Redis)
		if err != nil {
			return nil, err
		}
		return rs, nil
	default:
		return nil, fmt.Errorf("unknown store backend: %s", config.Backend)
	}
}

func validateDataset(ds *dataset.Dataset) error {
	if ds == nil {
		return errors.New("dataset is nil")
	}
	if ds.Name == "" {
		return errors.New("dataset name is required")
	}
	return ds.Validate()
}

func newRunID(run *Run) string {
	return fmt.Sprintf("%s-%s-%d", run.Dataset, run.Model, run.CreatedAt.UnixNano())
}
