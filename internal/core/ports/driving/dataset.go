package driving

import (
	"github.com/custodia-labs/gridview/internal/core/domain"
)

// DatasetService owns registered datasets and their view state. Intents
// replace the dataset's state snapshot; reads return the derived view of the
// current snapshot.
//
// Every method naming a dataset returns domain.ErrNotFound when it is not
// registered.
type DatasetService interface {
	// Register adds a dataset with the given schema, or replaces the schema of
	// an existing one. View state is reset.
	Register(schema domain.Schema) error

	// Load replaces the records of a registered dataset. Selection and
	// expansion are pruned to ids still present.
	Load(name, location string, records []domain.Record) error

	// Remove unregisters a dataset.
	Remove(name string) error

	// Datasets lists registered datasets ordered by name.
	Datasets() []domain.DatasetInfo

	// Schema returns the schema of a dataset.
	Schema(name string) (domain.Schema, error)

	// SortClick applies a header click with modifiers.
	SortClick(name, field string, mods domain.Modifiers) error

	// SetSort sets an explicit direction on a field.
	SetSort(name, field string, direction domain.SortDirection) error

	// AddFilterValue adds a value to a field filter.
	AddFilterValue(name, field string, value any, kind domain.FilterKind) error

	// RemoveFilterValue removes a value of the given kind from a field filter.
	RemoveFilterValue(name, field string, value any, kind domain.FilterKind) error

	// SetFilter replaces a field filter with exact-match values.
	SetFilter(name, field string, values []any) error

	// ClearFilter removes every value from a field filter.
	ClearFilter(name, field string) error

	// ClearAllFilters removes every filter value from the dataset.
	ClearAllFilters(name string) error

	// ToggleSelection flips the selection membership of ids.
	ToggleSelection(name string, ids []string) error

	// SetSelection replaces the selection.
	SetSelection(name string, ids []string) error

	// SelectAll selects every id of the derived view.
	SelectAll(name string) error

	// ClearSelection empties the selection.
	ClearSelection(name string) error

	// SelectClick applies a row click with modifiers to the selection.
	SelectClick(name, id string, mods domain.Modifiers) error

	// SelectStep moves a single-row selection through the derived view.
	SelectStep(name string, delta int) error

	// ToggleExpansion flips the expansion membership of ids.
	ToggleExpansion(name string, ids []string) error

	// SetExpansion replaces the expansion set.
	SetExpansion(name string, ids []string) error

	// View returns the ids of the derived view in display order.
	View(name string) ([]string, error)

	// Records returns the records of the derived view in display order.
	Records(name string) ([]domain.Record, error)

	// Snapshot returns the derived view and the state behind it, read
	// together so concurrent intents cannot split them.
	Snapshot(name string) (domain.ViewSnapshot, error)

	// Record returns one record by id.
	Record(name, id string) (domain.Record, error)

	// FieldOptions returns the distinct values of a field over all records
	// or over the derived view.
	FieldOptions(name, field string, variant domain.OptionVariant) ([]domain.FieldOption, error)

	// PickerOptions returns the options a value picker should offer for a
	// field: its fixed enumeration, all options while the field is filtered,
	// or the options still available in the view.
	PickerOptions(name, field string) ([]domain.FieldOption, error)

	// Selection returns the selected ids.
	Selection(name string) ([]string, error)

	// Expansion returns the expanded ids.
	Expansion(name string) ([]string, error)

	// SortState returns the current sort snapshot.
	SortState(name string) (*domain.SortState, error)

	// FilterState returns the current filter snapshot.
	FilterState(name string) (*domain.FilterState, error)

	// CacheStats reports view cache activity.
	CacheStats() domain.CacheStats
}
