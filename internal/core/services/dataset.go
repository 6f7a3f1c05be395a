package services

import (
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driving"
	"github.com/custodia-labs/gridview/internal/logger"
)

// Ensure DatasetService implements the interface.
var _ driving.DatasetService = (*DatasetService)(nil)

// datasetState is one immutable snapshot of a dataset. Intents copy it,
// replace the parts they change and publish the copy.
type datasetState struct {
	schema    domain.Schema
	info      domain.DatasetInfo
	store     *domain.EntityStore
	filters   *domain.FilterState
	sort      *domain.SortState
	selection domain.IDSet
	expansion domain.IDSet
}

// DatasetService manages registered datasets and their view state.
type DatasetService struct {
	mu       sync.RWMutex
	datasets map[string]*datasetState
	cache    *ViewCache
	now      func() time.Time
}

// NewDatasetService creates a dataset service. A nil cache gets a fresh one.
func NewDatasetService(cache *ViewCache) *DatasetService {
	if cache == nil {
		cache = NewViewCache()
	}
	return &DatasetService{
		datasets: make(map[string]*datasetState),
		cache:    cache,
		now:      time.Now,
	}
}

func notFound(name string) error {
	return fmt.Errorf("dataset %s: %w", name, domain.ErrNotFound)
}

// snapshot returns the current state of a dataset.
func (s *DatasetService) snapshot(name string) (*datasetState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.datasets[name]
	if !ok {
		return nil, notFound(name)
	}
	return st, nil
}

// update applies fn to a copy of the dataset state and publishes the result.
func (s *DatasetService) update(name string, fn func(st *datasetState) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.datasets[name]
	if !ok {
		return notFound(name)
	}
	next := *cur
	if err := fn(&next); err != nil {
		return err
	}
	s.datasets[name] = &next
	return nil
}

// Register adds a dataset or replaces its schema.
func (s *DatasetService) Register(schema domain.Schema) error {
	if err := schema.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	st := &datasetState{
		schema:  schema,
		info:    domain.DatasetInfo{Name: schema.Name},
		store:   &domain.EntityStore{IDs: []string{}, ByID: map[string]domain.Record{}},
		filters: domain.NewFilterState(schema.FilterOptions()),
		sort:    domain.NewSortState(schema.SortRegistry()),
	}
	if cur, ok := s.datasets[schema.Name]; ok {
		st.info = cur.info
		st.store = cur.store
		st.selection = cur.selection
		st.expansion = cur.expansion
	}
	s.datasets[schema.Name] = st
	logger.Debug("registered dataset %s with %d fields", schema.Name, len(schema.Fields))
	return nil
}

// Load publishes a new entity store for a dataset.
func (s *DatasetService) Load(name, location string, records []domain.Record) error {
	return s.update(name, func(st *datasetState) error {
		normalized := make([]domain.Record, len(records))
		for i, rec := range records {
			normalized[i] = st.schema.Normalize(rec)
		}
		store, err := domain.NewEntityStore(st.schema.RowKey, normalized)
		if err != nil {
			return fmt.Errorf("dataset %s: %w", name, err)
		}

		st.store = store
		st.selection = prune(st.selection, store)
		st.expansion = prune(st.expansion, store)
		st.info.Location = location
		st.info.Rows = store.Len()
		st.info.LoadedAt = s.now()
		logger.Debug("loaded %d records into %s", store.Len(), name)
		return nil
	})
}

func prune(set domain.IDSet, store *domain.EntityStore) domain.IDSet {
	ids := set.IDs()
	kept := slices.DeleteFunc(ids, func(id string) bool {
		_, ok := store.ByID[id]
		return !ok
	})
	return domain.NewIDSet(kept...)
}

// Remove unregisters a dataset.
func (s *DatasetService) Remove(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[name]; !ok {
		return notFound(name)
	}
	delete(s.datasets, name)
	s.cache.Drop(name)
	return nil
}

// Datasets lists registered datasets ordered by name.
func (s *DatasetService) Datasets() []domain.DatasetInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	infos := make([]domain.DatasetInfo, 0, len(s.datasets))
	for _, st := range s.datasets {
		infos = append(infos, st.info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Schema returns the schema of a dataset.
func (s *DatasetService) Schema(name string) (domain.Schema, error) {
	st, err := s.snapshot(name)
	if err != nil {
		return domain.Schema{}, err
	}
	return st.schema, nil
}

func (st *datasetState) field(name string) (domain.FieldSpec, error) {
	f, ok := st.schema.Field(name)
	if !ok {
		return domain.FieldSpec{}, fmt.Errorf("%w: %s", domain.ErrUnknownField, name)
	}
	return f, nil
}

func (st *datasetState) sortable(name string) error {
	if _, err := st.field(name); err != nil {
		return err
	}
	if !st.sort.Sortable(name) {
		return fmt.Errorf("%w: %s", domain.ErrNotSortable, name)
	}
	return nil
}

func (st *datasetState) filterable(name string) error {
	f, err := st.field(name)
	if err != nil {
		return err
	}
	if !f.Filterable {
		return fmt.Errorf("%w: %s", domain.ErrNotFilterable, name)
	}
	return nil
}

// SortClick applies a header click with modifiers.
func (s *DatasetService) SortClick(name, field string, mods domain.Modifiers) error {
	return s.update(name, func(st *datasetState) error {
		if err := st.sortable(field); err != nil {
			return err
		}
		st.sort = domain.SortClick(st.sort, field, mods)
		return nil
	})
}

// SetSort sets an explicit direction on a field.
func (s *DatasetService) SetSort(name, field string, direction domain.SortDirection) error {
	return s.update(name, func(st *datasetState) error {
		if err := st.sortable(field); err != nil {
			return err
		}
		st.sort = domain.SetSort(st.sort, field, direction)
		return nil
	})
}

// AddFilterValue adds a value to a field filter.
func (s *DatasetService) AddFilterValue(name, field string, value any, kind domain.FilterKind) error {
	return s.update(name, func(st *datasetState) error {
		if err := st.filterable(field); err != nil {
			return err
		}
		next, err := st.filters.AddValue(field, value, kind)
		if err != nil {
			return err
		}
		st.filters = next
		return nil
	})
}

// RemoveFilterValue removes a value of the given kind from a field filter.
func (s *DatasetService) RemoveFilterValue(name, field string, value any, kind domain.FilterKind) error {
	return s.update(name, func(st *datasetState) error {
		if err := st.filterable(field); err != nil {
			return err
		}
		st.filters = st.filters.RemoveValue(field, value, kind)
		return nil
	})
}

// SetFilter replaces a field filter with exact-match values.
func (s *DatasetService) SetFilter(name, field string, values []any) error {
	return s.update(name, func(st *datasetState) error {
		if err := st.filterable(field); err != nil {
			return err
		}
		next, err := st.filters.SetValues(field, values)
		if err != nil {
			return err
		}
		st.filters = next
		return nil
	})
}

// ClearFilter removes every value from a field filter.
func (s *DatasetService) ClearFilter(name, field string) error {
	return s.update(name, func(st *datasetState) error {
		if err := st.filterable(field); err != nil {
			return err
		}
		st.filters = st.filters.Clear(field)
		return nil
	})
}

// ClearAllFilters removes every filter value from the dataset.
func (s *DatasetService) ClearAllFilters(name string) error {
	return s.update(name, func(st *datasetState) error {
		st.filters = st.filters.ClearAll()
		return nil
	})
}

// ToggleSelection flips the selection membership of ids.
func (s *DatasetService) ToggleSelection(name string, ids []string) error {
	return s.update(name, func(st *datasetState) error {
		st.selection = st.selection.Toggle(ids)
		return nil
	})
}

// SetSelection replaces the selection.
func (s *DatasetService) SetSelection(name string, ids []string) error {
	return s.update(name, func(st *datasetState) error {
		st.selection = st.selection.Set(ids)
		return nil
	})
}

// SelectAll selects every id of the derived view.
func (s *DatasetService) SelectAll(name string) error {
	return s.update(name, func(st *datasetState) error {
		st.selection = domain.NewIDSet(s.view(name, st)...)
		return nil
	})
}

// ClearSelection empties the selection.
func (s *DatasetService) ClearSelection(name string) error {
	return s.update(name, func(st *datasetState) error {
		st.selection = domain.NewIDSet()
		return nil
	})
}

// SelectClick applies a row click with modifiers to the selection.
func (s *DatasetService) SelectClick(name, id string, mods domain.Modifiers) error {
	return s.update(name, func(st *datasetState) error {
		if _, ok := st.store.ByID[id]; !ok {
			return fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
		}
		st.selection = domain.SelectClick(st.selection, s.view(name, st), id, mods)
		return nil
	})
}

// SelectStep moves a single-row selection through the derived view.
func (s *DatasetService) SelectStep(name string, delta int) error {
	return s.update(name, func(st *datasetState) error {
		st.selection = domain.SelectStep(st.selection, s.view(name, st), delta)
		return nil
	})
}

// ToggleExpansion flips the expansion membership of ids.
func (s *DatasetService) ToggleExpansion(name string, ids []string) error {
	return s.update(name, func(st *datasetState) error {
		st.expansion = st.expansion.Toggle(ids)
		return nil
	})
}

// SetExpansion replaces the expansion set.
func (s *DatasetService) SetExpansion(name string, ids []string) error {
	return s.update(name, func(st *datasetState) error {
		st.expansion = st.expansion.Set(ids)
		return nil
	})
}

func (s *DatasetService) view(name string, st *datasetState) []string {
	return s.cache.View(name, st.store, st.filters, st.sort)
}

// View returns the ids of the derived view in display order.
func (s *DatasetService) View(name string) ([]string, error) {
	st, err := s.snapshot(name)
	if err != nil {
		return nil, err
	}
	return slices.Clone(s.view(name, st)), nil
}

// Records returns the records of the derived view in display order.
func (s *DatasetService) Records(name string) ([]domain.Record, error) {
	st, err := s.snapshot(name)
	if err != nil {
		return nil, err
	}
	return st.store.Records(s.view(name, st)), nil
}

// Snapshot returns the derived view and the state it came from.
func (s *DatasetService) Snapshot(name string) (domain.ViewSnapshot, error) {
	st, err := s.snapshot(name)
	if err != nil {
		return domain.ViewSnapshot{}, err
	}
	return domain.ViewSnapshot{
		Info:      st.info,
		Schema:    st.schema,
		Records:   st.store.Records(s.view(name, st)),
		Sort:      st.sort,
		Filters:   st.filters,
		Selection: st.selection.IDs(),
		Expansion: st.expansion.IDs(),
	}, nil
}

// Record returns one record by id.
func (s *DatasetService) Record(name, id string) (domain.Record, error) {
	st, err := s.snapshot(name)
	if err != nil {
		return nil, err
	}
	rec, ok := st.store.ByID[id]
	if !ok {
		return nil, fmt.Errorf("record %s: %w", id, domain.ErrNotFound)
	}
	return rec, nil
}

// FieldOptions returns the distinct values of a field.
func (s *DatasetService) FieldOptions(name, field string, variant domain.OptionVariant) ([]domain.FieldOption, error) {
	st, err := s.snapshot(name)
	if err != nil {
		return nil, err
	}
	if _, err := st.field(field); err != nil {
		return nil, err
	}
	return slices.Clone(s.cache.Options(name, field, variant, st.store, st.filters, st.sort)), nil
}

// PickerOptions returns the options a value picker should offer, ordered
// ascending by the field's comparator.
func (s *DatasetService) PickerOptions(name, field string) ([]domain.FieldOption, error) {
	st, err := s.snapshot(name)
	if err != nil {
		return nil, err
	}
	spec, err := st.field(field)
	if err != nil {
		return nil, err
	}

	filter := st.filters.Field(field)
	var opts []domain.FieldOption
	switch {
	case len(filter.Options) > 0:
		opts = filter.Options
	case filter.Active():
		opts = s.cache.Options(name, field, domain.OptionsAll, st.store, st.filters, st.sort)
	default:
		opts = s.cache.Options(name, field, domain.OptionsAvailable, st.store, st.filters, st.sort)
	}
	return domain.SortOptions(domain.SortSpec{Type: spec.Sort, Direction: domain.SortAsc}, opts), nil
}

// Selection returns the selected ids.
func (s *DatasetService) Selection(name string) ([]string, error) {
	st, err := s.snapshot(name)
	if err != nil {
		return nil, err
	}
	return st.selection.IDs(), nil
}

// Expansion returns the expanded ids.
func (s *DatasetService) Expansion(name string) ([]string, error) {
	st, err := s.snapshot(name)
	if err != nil {
		return nil, err
	}
	return st.expansion.IDs(), nil
}

// SortState returns the current sort snapshot.
func (s *DatasetService) SortState(name string) (*domain.SortState, error) {
	st, err := s.snapshot(name)
	if err != nil {
		return nil, err
	}
	return st.sort, nil
}

// FilterState returns the current filter snapshot.
func (s *DatasetService) FilterState(name string) (*domain.FilterState, error) {
	st, err := s.snapshot(name)
	if err != nil {
		return nil, err
	}
	return st.filters, nil
}

// CacheStats reports view cache activity.
func (s *DatasetService) CacheStats() domain.CacheStats {
	return s.cache.Stats()
}
