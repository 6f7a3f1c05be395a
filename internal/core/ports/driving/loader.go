package driving

import (
	"context"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

// Loader brings records from sources into the DatasetService.
type Loader interface {
	// Load reads location, registers the dataset (using the stored schema,
	// or inferring one) and publishes its records.
	Load(ctx context.Context, name, location string) (domain.DatasetInfo, error)

	// LoadAll loads several datasets concurrently, keyed by name. The first
	// failure cancels the remaining loads.
	LoadAll(ctx context.Context, locations map[string]string) ([]domain.DatasetInfo, error)

	// Reload reads a dataset again from the location it was last loaded from.
	Reload(ctx context.Context, name string) (domain.DatasetInfo, error)

	// Import copies the records at location into the local dataset store so
	// they can later be loaded from sqlite://name.
	Import(ctx context.Context, name, location string) (domain.DatasetInfo, error)

	// InferSchema reads location and derives a schema from its records.
	InferSchema(ctx context.Context, name, location string) (domain.Schema, error)

	// Watch reloads file-backed datasets whenever their file changes.
	// Blocks until ctx is cancelled.
	Watch(ctx context.Context) error
}
