package memory

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
)

// Ensure RecordSource implements the interface.
var _ driven.RecordSource = (*RecordSource)(nil)

// RecordSource serves record sets registered in process under
// memory://<name>. Used by tests and by callers that build records in code.
type RecordSource struct {
	mu   sync.RWMutex
	sets map[string]domain.RecordSet
}

// NewRecordSource creates an empty in-memory record source.
func NewRecordSource() *RecordSource {
	return &RecordSource{
		sets: make(map[string]domain.RecordSet),
	}
}

// Scheme returns "memory".
func (s *RecordSource) Scheme() string {
	return domain.SchemeMemory
}

// Put registers or replaces the record set served under name.
func (s *RecordSource) Put(name string, set domain.RecordSet) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sets[name] = copySet(set)
}

// Load returns a copy of the record set registered under path.
func (s *RecordSource) Load(_ context.Context, path string) (domain.RecordSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.sets[path]
	if !ok {
		return domain.RecordSet{}, fmt.Errorf("memory://%s: %w", path, domain.ErrNotFound)
	}
	return copySet(set), nil
}

func copySet(set domain.RecordSet) domain.RecordSet {
	out := domain.RecordSet{
		Columns: slices.Clone(set.Columns),
		Records: make([]domain.Record, len(set.Records)),
	}
	for i, rec := range set.Records {
		out.Records[i] = maps.Clone(rec)
	}
	return out
}
