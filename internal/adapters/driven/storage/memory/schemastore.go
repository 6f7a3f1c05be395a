package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
)

// Ensure SchemaStore implements the interface.
var _ driven.SchemaStore = (*SchemaStore)(nil)

// SchemaStore is an in-memory implementation of driven.SchemaStore.
type SchemaStore struct {
	mu      sync.RWMutex
	schemas map[string]domain.Schema
}

// NewSchemaStore creates a new in-memory schema store.
func NewSchemaStore() *SchemaStore {
	return &SchemaStore{
		schemas: make(map[string]domain.Schema),
	}
}

// Get returns the schema of name, or nil if none is stored.
func (s *SchemaStore) Get(_ context.Context, name string) (*domain.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	schema, ok := s.schemas[name]
	if !ok {
		return nil, nil
	}
	schema.Fields = slices.Clone(schema.Fields)
	return &schema, nil
}

// Save stores or replaces a schema.
func (s *SchemaStore) Save(_ context.Context, schema domain.Schema) error {
	if err := schema.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	schema.Fields = slices.Clone(schema.Fields)
	s.schemas[schema.Name] = schema
	return nil
}

// List returns every stored schema ordered by name.
func (s *SchemaStore) List(_ context.Context) ([]domain.Schema, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Schema, 0, len(s.schemas))
	for _, schema := range s.schemas {
		out = append(out, schema)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// Delete removes a stored schema. Deleting a missing schema is not an error.
func (s *SchemaStore) Delete(_ context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.schemas, name)
	return nil
}
