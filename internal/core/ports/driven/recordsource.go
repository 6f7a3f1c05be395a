package driven

import (
	"context"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

// RecordSource reads raw records from one kind of location. Sources are
// registered with the loader by scheme.
type RecordSource interface {
	// Scheme returns the location scheme the source handles (e.g. "s3").
	Scheme() string

	// Load reads every record at path. Path is the location with its scheme
	// stripped. Values may be any decoded scalar; the loader normalizes them.
	Load(ctx context.Context, path string) (domain.RecordSet, error)
}

// ChangeNotifier reports modifications to local files.
type ChangeNotifier interface {
	// Watch calls onChange with the path of each watched file that changes.
	// Blocks until ctx is cancelled or the watch fails.
	Watch(ctx context.Context, paths []string, onChange func(path string)) error
}
