package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
)

// Ensure DatasetStore implements the interface.
var _ driven.DatasetStore = (*DatasetStore)(nil)

type storedDataset struct {
	info domain.DatasetInfo
	set  domain.RecordSet
}

// DatasetStore is an in-memory implementation of driven.DatasetStore.
type DatasetStore struct {
	mu       sync.RWMutex
	datasets map[string]storedDataset
}

// NewDatasetStore creates a new in-memory dataset store.
func NewDatasetStore() *DatasetStore {
	return &DatasetStore{
		datasets: make(map[string]storedDataset),
	}
}

// Save replaces the rows of name and returns a fresh import id.
func (s *DatasetStore) Save(_ context.Context, name, location string, set domain.RecordSet) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: dataset name is required", domain.ErrInvalidInput)
	}
	importID := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[name] = storedDataset{
		info: domain.DatasetInfo{
			Name:     name,
			Location: location,
			Rows:     len(set.Records),
			ImportID: importID,
			LoadedAt: time.Now(),
		},
		set: copySet(set),
	}
	return importID, nil
}

// Get returns the stored rows of name.
func (s *DatasetStore) Get(_ context.Context, name string) (domain.RecordSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored, ok := s.datasets[name]
	if !ok {
		return domain.RecordSet{}, fmt.Errorf("stored dataset %s: %w", name, domain.ErrNotFound)
	}
	return copySet(stored.set), nil
}

// List returns every stored dataset ordered by name.
func (s *DatasetStore) List(_ context.Context) ([]domain.DatasetInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DatasetInfo, 0, len(s.datasets))
	for _, stored := range s.datasets {
		out = append(out, stored.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a stored dataset.
func (s *DatasetStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.datasets, name)
	return nil
}
