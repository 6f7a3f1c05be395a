package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
)

// Ensure RefreshStore implements the interface.
var _ driven.RefreshStore = (*RefreshStore)(nil)

// RefreshStore is an in-memory implementation of driven.RefreshStore.
type RefreshStore struct {
	mu      sync.RWMutex
	tasks   map[string]domain.RefreshTask
	history []domain.RefreshResult
}

// NewRefreshStore creates a new in-memory refresh store.
func NewRefreshStore() *RefreshStore {
	return &RefreshStore{
		tasks: make(map[string]domain.RefreshTask),
	}
}

// GetTask returns the task of dataset, or nil if none exists.
func (s *RefreshStore) GetTask(_ context.Context, dataset string) (*domain.RefreshTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[dataset]
	if !ok {
		return nil, nil
	}
	return &task, nil
}

// ListTasks returns all tasks ordered by dataset.
func (s *RefreshStore) ListTasks(_ context.Context) ([]domain.RefreshTask, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.RefreshTask, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Dataset < out[j].Dataset })
	return out, nil
}

// SaveTask creates or updates a task.
func (s *RefreshStore) SaveTask(_ context.Context, task *domain.RefreshTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks[task.Dataset] = *task
	return nil
}

// DeleteTask removes a task.
func (s *RefreshStore) DeleteTask(_ context.Context, dataset string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, dataset)
	return nil
}

// RecordResult appends a result to the history.
func (s *RefreshStore) RecordResult(_ context.Context, result *domain.RefreshResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, *result)
	return nil
}

// GetHistory returns up to limit results for dataset, most recent first.
func (s *RefreshStore) GetHistory(_ context.Context, dataset string, limit int) ([]domain.RefreshResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := s.recent(dataset)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *RefreshStore) recent(dataset string) []domain.RefreshResult {
	var out []domain.RefreshResult
	for _, r := range s.history {
		if r.Dataset == dataset {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })
	return out
}

// PruneHistory keeps the most recent keep results per dataset.
func (s *RefreshStore) PruneHistory(_ context.Context, keep int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	datasets := make(map[string]struct{})
	for _, r := range s.history {
		datasets[r.Dataset] = struct{}{}
	}
	var kept []domain.RefreshResult
	for dataset := range datasets {
		recent := s.recent(dataset)
		if len(recent) > keep {
			recent = recent[:keep]
		}
		kept = append(kept, recent...)
	}
	s.history = kept
	return nil
}
