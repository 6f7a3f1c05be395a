package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
)

// datasetStore implements driven.DatasetStore. Rows are stored as JSON
// objects in import order.
type datasetStore struct {
	store *Store
}

var _ driven.DatasetStore = (*datasetStore)(nil)

// Save replaces the stored rows of a dataset in a single transaction.
func (s *datasetStore) Save(ctx context.Context, name, location string, set domain.RecordSet) (string, error) {
	if name == "" {
		return "", fmt.Errorf("%w: dataset name is required", domain.ErrInvalidInput)
	}

	columnsJSON, err := json.Marshal(set.Columns)
	if err != nil {
		return "", fmt.Errorf("marshalling columns: %w", err)
	}
	if set.Columns == nil {
		columnsJSON = []byte("[]")
	}

	importID := uuid.New().String()

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("beginning import: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := deleteDataset(ctx, tx, name); err != nil {
		return "", err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO datasets (name, location, import_id, columns, row_count, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, name, location, importID, string(columnsJSON), len(set.Records), time.Now().UTC())
	if err != nil {
		return "", fmt.Errorf("saving dataset %s: %w", name, err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO dataset_rows (dataset, position, data) VALUES (?, ?, ?)")
	if err != nil {
		return "", fmt.Errorf("preparing row insert: %w", err)
	}
	defer stmt.Close()

	for i, rec := range set.Records {
		data, err := json.Marshal(rec)
		if err != nil {
			return "", fmt.Errorf("marshalling row %d: %w", i+1, err)
		}
		if _, err := stmt.ExecContext(ctx, name, i, string(data)); err != nil {
			return "", fmt.Errorf("saving row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing import: %w", err)
	}
	return importID, nil
}

// Get returns the stored rows of a dataset in import order.
func (s *datasetStore) Get(ctx context.Context, name string) (domain.RecordSet, error) {
	var columnsJSON string
	err := s.store.db.QueryRowContext(ctx, "SELECT columns FROM datasets WHERE name = ?", name).Scan(&columnsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.RecordSet{}, fmt.Errorf("stored dataset %s: %w", name, domain.ErrNotFound)
	}
	if err != nil {
		return domain.RecordSet{}, fmt.Errorf("getting dataset %s: %w", name, err)
	}

	var set domain.RecordSet
	if err := json.Unmarshal([]byte(columnsJSON), &set.Columns); err != nil {
		return domain.RecordSet{}, fmt.Errorf("unmarshalling columns: %w", err)
	}
	if len(set.Columns) == 0 {
		set.Columns = nil
	}

	rows, err := s.store.db.QueryContext(ctx,
		"SELECT data FROM dataset_rows WHERE dataset = ? ORDER BY position", name)
	if err != nil {
		return domain.RecordSet{}, fmt.Errorf("querying rows of %s: %w", name, err)
	}
	defer rows.Close()

	set.Records = []domain.Record{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return domain.RecordSet{}, fmt.Errorf("scanning row: %w", err)
		}
		var rec domain.Record
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			return domain.RecordSet{}, fmt.Errorf("unmarshalling row: %w", err)
		}
		set.Records = append(set.Records, rec)
	}
	if err := rows.Err(); err != nil {
		return domain.RecordSet{}, fmt.Errorf("iterating rows: %w", err)
	}
	return set, nil
}

// List returns every stored dataset ordered by name.
func (s *datasetStore) List(ctx context.Context) ([]domain.DatasetInfo, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT name, location, import_id, row_count, imported_at
		FROM datasets ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("querying datasets: %w", err)
	}
	defer rows.Close()

	var infos []domain.DatasetInfo //nolint:prealloc // size unknown from query
	for rows.Next() {
		var info domain.DatasetInfo
		var importedAt sql.NullTime
		if err := rows.Scan(&info.Name, &info.Location, &info.ImportID, &info.Rows, &importedAt); err != nil {
			return nil, fmt.Errorf("scanning dataset: %w", err)
		}
		if importedAt.Valid {
			info.LoadedAt = importedAt.Time
		}
		infos = append(infos, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating datasets: %w", err)
	}
	return infos, nil
}

// Delete removes a stored dataset and its rows.
func (s *datasetStore) Delete(ctx context.Context, name string) error {
	return deleteDataset(ctx, s.store.db, name)
}

// execer is satisfied by *sql.DB and *sql.Tx.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func deleteDataset(ctx context.Context, db execer, name string) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM dataset_rows WHERE dataset = ?", name); err != nil {
		return fmt.Errorf("deleting rows of %s: %w", name, err)
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM datasets WHERE name = ?", name); err != nil {
		return fmt.Errorf("deleting dataset %s: %w", name, err)
	}
	return nil
}

// recordSource serves imported datasets to the loader.
type recordSource struct {
	datasets *datasetStore
}

var _ driven.RecordSource = (*recordSource)(nil)

// Scheme returns "sqlite".
func (r *recordSource) Scheme() string {
	return domain.SchemeSQLite
}

// Load returns the imported rows of the dataset named by path.
func (r *recordSource) Load(ctx context.Context, path string) (domain.RecordSet, error) {
	return r.datasets.Get(ctx, path)
}
