package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
)

// refreshStore implements driven.RefreshStore.
type refreshStore struct {
	store *Store
}

var _ driven.RefreshStore = (*refreshStore)(nil)

const taskColumns = "dataset, location, schedule, last_run, next_run, last_error, last_success, enabled"

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// GetTask retrieves the reload task of a dataset.
// Returns nil and no error if the task does not exist.
func (s *refreshStore) GetTask(ctx context.Context, dataset string) (*domain.RefreshTask, error) {
	row := s.store.db.QueryRowContext(ctx,
		"SELECT "+taskColumns+" FROM refresh_tasks WHERE dataset = ?", dataset)

	task, err := scanRefreshTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// ListTasks returns all reload tasks ordered by dataset.
func (s *refreshStore) ListTasks(ctx context.Context) ([]domain.RefreshTask, error) {
	rows, err := s.store.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM refresh_tasks ORDER BY dataset")
	if err != nil {
		return nil, fmt.Errorf("querying refresh tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.RefreshTask //nolint:prealloc // size unknown from query
	for rows.Next() {
		task, err := scanRefreshTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating refresh tasks: %w", err)
	}

	return tasks, nil
}

// SaveTask creates or updates a task keyed by dataset.
func (s *refreshStore) SaveTask(ctx context.Context, task *domain.RefreshTask) error {
	if task == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO refresh_tasks (`+taskColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(dataset) DO UPDATE SET
			location = excluded.location,
			schedule = excluded.schedule,
			last_run = excluded.last_run,
			next_run = excluded.next_run,
			last_error = excluded.last_error,
			last_success = excluded.last_success,
			enabled = excluded.enabled
	`, task.Dataset, task.Location, task.Schedule,
		formatNullableTime(task.LastRun), formatNullableTime(task.NextRun),
		nullString(task.LastError), formatNullableTime(task.LastSuccess),
		boolToInt(task.Enabled))

	if err != nil {
		return fmt.Errorf("saving refresh task: %w", err)
	}
	return nil
}

// DeleteTask removes a task from storage.
func (s *refreshStore) DeleteTask(ctx context.Context, dataset string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM refresh_tasks WHERE dataset = ?", dataset)
	if err != nil {
		return fmt.Errorf("deleting refresh task: %w", err)
	}
	return nil
}

// RecordResult logs a reload result.
func (s *refreshStore) RecordResult(ctx context.Context, result *domain.RefreshResult) error {
	if result == nil {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO refresh_results (dataset, started_at, ended_at, success, error, row_count)
		VALUES (?, ?, ?, ?, ?, ?)
	`, result.Dataset,
		formatTime(result.StartedAt),
		formatTime(result.EndedAt),
		boolToInt(result.Success),
		nullString(result.Error),
		result.Rows)

	if err != nil {
		return fmt.Errorf("recording refresh result: %w", err)
	}
	return nil
}

// GetHistory returns recent results for a dataset, most recent first.
// A non-positive limit returns every result.
func (s *refreshStore) GetHistory(ctx context.Context, dataset string, limit int) ([]domain.RefreshResult, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT dataset, started_at, ended_at, success, error, row_count
		FROM refresh_results
		WHERE dataset = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`, dataset, limit)
	if err != nil {
		return nil, fmt.Errorf("querying refresh history: %w", err)
	}
	defer rows.Close()

	var results []domain.RefreshResult //nolint:prealloc // size unknown from query
	for rows.Next() {
		var result domain.RefreshResult
		var startedAt, endedAt string
		var success int
		var errMsg sql.NullString

		if err := rows.Scan(&result.Dataset, &startedAt, &endedAt,
			&success, &errMsg, &result.Rows); err != nil {
			return nil, fmt.Errorf("scanning refresh result: %w", err)
		}
		result.StartedAt = parseTime(startedAt)
		result.EndedAt = parseTime(endedAt)
		result.Success = success == 1
		result.Error = errMsg.String
		results = append(results, result)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating refresh history: %w", err)
	}

	return results, nil
}

// PruneHistory keeps the most recent 'keep' results per dataset.
func (s *refreshStore) PruneHistory(ctx context.Context, keep int) error {
	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM refresh_results
		WHERE id NOT IN (
			SELECT id FROM (
				SELECT id, ROW_NUMBER() OVER (PARTITION BY dataset ORDER BY started_at DESC, id DESC) as rn
				FROM refresh_results
			) WHERE rn <= ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning refresh history: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

func scanRefreshTask(row rowScanner) (*domain.RefreshTask, error) {
	var task domain.RefreshTask
	var lastRun, nextRun, lastError, lastSuccess sql.NullString
	var enabled int

	if err := row.Scan(&task.Dataset, &task.Location, &task.Schedule,
		&lastRun, &nextRun, &lastError, &lastSuccess, &enabled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning refresh task: %w", err)
	}

	task.LastRun = parseNullableTime(lastRun)
	task.NextRun = parseNullableTime(nextRun)
	task.LastError = lastError.String
	task.LastSuccess = parseNullableTime(lastSuccess)
	task.Enabled = enabled == 1

	return &task, nil
}

// formatTime formats t as a UTC RFC3339 string, which sorts lexically.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// formatNullableTime formats a time to RFC3339 string, or returns nil for zero time.
func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

// parseNullableTime parses a nullable RFC3339 string to time.Time.
// Returns zero time if the string is empty or invalid.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	return parseTime(s.String)
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// boolToInt converts a bool to 1 (true) or 0 (false).
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
