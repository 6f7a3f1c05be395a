package driving

import (
	"context"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

// Scheduler reloads datasets on cron schedules.
type Scheduler interface {
	// Start begins running scheduled reloads.
	// Blocks until context is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops all running reloads.
	Stop() error

	// Schedule adds or replaces the reload task of a dataset.
	Schedule(ctx context.Context, dataset, location, expr string) error

	// Unschedule removes the reload task of a dataset.
	Unschedule(ctx context.Context, dataset string) error

	// Tasks returns the known reload tasks.
	Tasks(ctx context.Context) ([]domain.RefreshTask, error)

	// History returns recent results of a dataset, newest first.
	// A limit of zero or less returns every recorded result.
	History(ctx context.Context, dataset string, limit int) ([]domain.RefreshResult, error)

	// Run reloads a scheduled dataset immediately and records the outcome.
	Run(ctx context.Context, dataset string) domain.RefreshResult
}
