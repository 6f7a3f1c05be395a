package driven

import (
	"context"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

// DatasetStore persists imported datasets locally.
// Backed by SQLite.
type DatasetStore interface {
	// Save replaces the stored rows of a dataset and returns the import
	// batch id.
	Save(ctx context.Context, name, location string, set domain.RecordSet) (string, error)

	// Get returns the stored rows of a dataset in import order.
	// Returns domain.ErrNotFound if the dataset was never imported.
	Get(ctx context.Context, name string) (domain.RecordSet, error)

	// List returns every stored dataset ordered by name.
	List(ctx context.Context) ([]domain.DatasetInfo, error)

	// Delete removes a stored dataset.
	Delete(ctx context.Context, name string) error
}

// SchemaStore persists dataset schemas.
type SchemaStore interface {
	// Get returns the schema of a dataset.
	// Returns nil and no error if none is stored.
	Get(ctx context.Context, name string) (*domain.Schema, error)

	// Save stores or replaces a schema.
	Save(ctx context.Context, schema domain.Schema) error

	// List returns every stored schema ordered by name.
	List(ctx context.Context) ([]domain.Schema, error)

	// Delete removes a stored schema.
	Delete(ctx context.Context, name string) error
}
