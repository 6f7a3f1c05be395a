package driven

import (
	"context"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

// RefreshStore persists scheduled reload state for crash recovery.
// It stores task state and execution history.
type RefreshStore interface {
	// GetTask retrieves the reload task of a dataset.
	// Returns nil and no error if the task does not exist.
	GetTask(ctx context.Context, dataset string) (*domain.RefreshTask, error)

	// ListTasks returns all reload tasks.
	ListTasks(ctx context.Context) ([]domain.RefreshTask, error)

	// SaveTask persists a task's state.
	// Creates or updates the task based on its dataset.
	SaveTask(ctx context.Context, task *domain.RefreshTask) error

	// DeleteTask removes a task from storage.
	DeleteTask(ctx context.Context, dataset string) error

	// RecordResult logs a reload result.
	RecordResult(ctx context.Context, result *domain.RefreshResult) error

	// GetHistory returns recent results for a dataset.
	// Results are ordered by start time descending (most recent first).
	GetHistory(ctx context.Context, dataset string, limit int) ([]domain.RefreshResult, error)

	// PruneHistory removes old results beyond the retention limit.
	// Keeps the most recent 'keep' results per dataset.
	PruneHistory(ctx context.Context, keep int) error
}
