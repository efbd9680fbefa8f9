package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/zpam/classifier/pkg/dataset"
)

// MemoryStore keeps everything in process memory
type MemoryStore struct {
	mu       sync.RWMutex
	datasets map[string]*dataset.Dataset
	runs     map[string][]*Run
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		datasets: make(map[string]*dataset.Dataset),
		runs:     make(map[string][]*Run),
	}
}

func (m *MemoryStore) SaveDataset(ctx context.Context, ds *dataset.Dataset) error {
	if err := validateDataset(ds); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets[ds.Name] = cloneDataset(ds)
	return nil
}

func (m *MemoryStore) LoadDataset(ctx context.Context, name string) (*dataset.Dataset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ds, ok := m.datasets[name]
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "dataset %s", name)
	}
	return cloneDataset(ds), nil
}

func (m *MemoryStore) ListDatasets(ctx context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.datasets))
	for name := range m.datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (m *MemoryStore) DeleteDataset(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.datasets[name]; !ok {
		return errors.Wrapf(ErrNotFound, "dataset %s", name)
	}
	delete(m.datasets, name)
	delete(m.runs, name)
	return nil
}

func (m *MemoryStore) RecordRun(ctx context.Context, run *Run) error {
	if run == nil || run.Dataset == "" {
		return errors.New("run needs a dataset name")
	}

	r := *run
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	if r.ID == "" {
		r.ID = newRunID(&r)
	}

	m.mu.Lock()
	m.runs[r.Dataset] = append(m.runs[r.Dataset], &r)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Runs(ctx context.Context, datasetName string, limit int) ([]*Run, error) {
	m.mu.RLock()
	runs := make([]*Run, len(m.runs[datasetName]))
	copy(runs, m.runs[datasetName])
	m.mu.RUnlock()

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].CreatedAt.After(runs[j].CreatedAt)
	})
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

func (m *MemoryStore) Close() error { return nil }

func cloneDataset(ds *dataset.Dataset) *dataset.Dataset {
	out := &dataset.Dataset{
		Name:    ds.Name,
		Header:  append([]string(nil), ds.Header...),
		Inputs:  make([][]string, len(ds.Inputs)),
		Outputs: append([]string(nil), ds.Outputs...),
	}
	for i, row := range ds.Inputs {
		out.Inputs[i] = append([]string(nil), row...)
	}
	return out
}

var _ Store = (*MemoryStore)(nil)
