package services

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"path/filepath"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
	"github.com/custodia-labs/gridview/internal/core/ports/driving"
	"github.com/custodia-labs/gridview/internal/logger"
)

// Ensure LoaderService implements the interface.
var _ driving.Loader = (*LoaderService)(nil)

// RowNumberKey is the row key assigned when inferred records carry no id.
const RowNumberKey = "_row"

// maxConcurrentLoads bounds LoadAll.
const maxConcurrentLoads = 4

// LoaderService reads records through registered sources and publishes them
// to the dataset service.
type LoaderService struct {
	datasets driving.DatasetService
	schemas  driven.SchemaStore
	store    driven.DatasetStore
	notifier driven.ChangeNotifier
	sources  map[string]driven.RecordSource

	mu        sync.Mutex
	locations map[string]string
}

// NewLoaderService creates a loader. Schemas, store and notifier may be nil.
func NewLoaderService(
	datasets driving.DatasetService,
	schemas driven.SchemaStore,
	store driven.DatasetStore,
	notifier driven.ChangeNotifier,
	sources ...driven.RecordSource,
) *LoaderService {
	l := &LoaderService{
		datasets:  datasets,
		schemas:   schemas,
		store:     store,
		notifier:  notifier,
		sources:   make(map[string]driven.RecordSource, len(sources)),
		locations: make(map[string]string),
	}
	for _, src := range sources {
		l.sources[src.Scheme()] = src
	}
	return l
}

// read fetches the raw record set behind a location.
func (l *LoaderService) read(ctx context.Context, location string) (domain.RecordSet, error) {
	loc := domain.ParseLocation(location)
	src, ok := l.sources[loc.Scheme]
	if !ok {
		return domain.RecordSet{}, fmt.Errorf("%w: no source for scheme %q", domain.ErrUnsupportedType, loc.Scheme)
	}
	set, err := src.Load(ctx, loc.Path)
	if err != nil {
		return domain.RecordSet{}, fmt.Errorf("reading %s: %w", location, err)
	}
	return set, nil
}

// schemaFor returns the stored schema of name, or one inferred from set.
func (l *LoaderService) schemaFor(ctx context.Context, name string, set *domain.RecordSet) (domain.Schema, error) {
	if l.schemas != nil {
		stored, err := l.schemas.Get(ctx, name)
		if err != nil {
			return domain.Schema{}, fmt.Errorf("reading schema %s: %w", name, err)
		}
		if stored != nil {
			return *stored, nil
		}
	}
	return infer(name, set), nil
}

// infer derives a schema from set, numbering the rows when they carry no id.
func infer(name string, set *domain.RecordSet) domain.Schema {
	rowKey := domain.DefaultRowKey
	if !hasKey(set.Records, rowKey) {
		rowKey = RowNumberKey
		numberRows(set)
	}
	return domain.InferSchema(name, rowKey, set.Columns, set.Records)
}

func hasKey(records []domain.Record, key string) bool {
	for _, rec := range records {
		if _, ok := rec[key]; !ok {
			return false
		}
	}
	return len(records) > 0
}

// numberRows assigns 1-based row numbers under RowNumberKey.
func numberRows(set *domain.RecordSet) {
	numbered := make([]domain.Record, len(set.Records))
	for i, rec := range set.Records {
		r := make(domain.Record, len(rec)+1)
		maps.Copy(r, rec)
		r[RowNumberKey] = float64(i + 1)
		numbered[i] = r
	}
	set.Records = numbered
	if len(set.Columns) > 0 {
		set.Columns = append([]string{RowNumberKey}, set.Columns...)
	}
}

// Load reads location and publishes its records as dataset name.
func (l *LoaderService) Load(ctx context.Context, name, location string) (domain.DatasetInfo, error) {
	if l.datasets == nil {
		return domain.DatasetInfo{}, domain.ErrNotImplemented
	}
	defer logger.Timed("loading %s from %s", name, location)()

	set, err := l.read(ctx, location)
	if err != nil {
		return domain.DatasetInfo{}, err
	}

	schema, err := l.datasets.Schema(name)
	if errors.Is(err, domain.ErrNotFound) {
		schema, err = l.schemaFor(ctx, name, &set)
		if err != nil {
			return domain.DatasetInfo{}, err
		}
		if err := l.datasets.Register(schema); err != nil {
			return domain.DatasetInfo{}, err
		}
	} else if err != nil {
		return domain.DatasetInfo{}, err
	}
	if schema.RowKey == RowNumberKey && !hasKey(set.Records, RowNumberKey) {
		numberRows(&set)
	}

	if err := l.datasets.Load(name, location, set.Records); err != nil {
		return domain.DatasetInfo{}, err
	}

	l.mu.Lock()
	l.locations[name] = location
	l.mu.Unlock()

	logger.Info("loaded %s: %d records from %s", name, len(set.Records), location)
	return l.info(name)
}

func (l *LoaderService) info(name string) (domain.DatasetInfo, error) {
	for _, info := range l.datasets.Datasets() {
		if info.Name == name {
			return info, nil
		}
	}
	return domain.DatasetInfo{}, fmt.Errorf("dataset %s: %w", name, domain.ErrNotFound)
}

// LoadAll loads several datasets concurrently.
func (l *LoaderService) LoadAll(ctx context.Context, locations map[string]string) ([]domain.DatasetInfo, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)

	var mu sync.Mutex
	infos := make([]domain.DatasetInfo, 0, len(locations))
	for name, location := range locations {
		g.Go(func() error {
			info, err := l.Load(ctx, name, location)
			if err != nil {
				return fmt.Errorf("loading %s: %w", name, err)
			}
			mu.Lock()
			infos = append(infos, info)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos, nil
}

// Reload reads a dataset again from its last location.
func (l *LoaderService) Reload(ctx context.Context, name string) (domain.DatasetInfo, error) {
	l.mu.Lock()
	location, ok := l.locations[name]
	l.mu.Unlock()
	if !ok {
		return domain.DatasetInfo{}, fmt.Errorf("dataset %s was never loaded: %w", name, domain.ErrNotFound)
	}
	return l.Load(ctx, name, location)
}

// Import copies the records at location into the dataset store.
func (l *LoaderService) Import(ctx context.Context, name, location string) (domain.DatasetInfo, error) {
	if l.store == nil {
		return domain.DatasetInfo{}, domain.ErrNotImplemented
	}
	set, err := l.read(ctx, location)
	if err != nil {
		return domain.DatasetInfo{}, err
	}
	importID, err := l.store.Save(ctx, name, location, set)
	if err != nil {
		return domain.DatasetInfo{}, fmt.Errorf("importing %s: %w", name, err)
	}
	logger.Info("imported %d records from %s as %s (%s)", len(set.Records), location, name, importID)
	return domain.DatasetInfo{
		Name:     name,
		Location: location,
		Rows:     len(set.Records),
		ImportID: importID,
	}, nil
}

// InferSchema derives a schema from the records at location.
func (l *LoaderService) InferSchema(ctx context.Context, name, location string) (domain.Schema, error) {
	set, err := l.read(ctx, location)
	if err != nil {
		return domain.Schema{}, err
	}
	return infer(name, &set), nil
}

// Watch reloads file-backed datasets when their file changes.
func (l *LoaderService) Watch(ctx context.Context) error {
	if l.notifier == nil {
		return domain.ErrNotImplemented
	}

	byPath := make(map[string][]string)
	l.mu.Lock()
	for name, location := range l.locations {
		loc := domain.ParseLocation(location)
		if !loc.Watchable() {
			continue
		}
		path, err := filepath.Abs(loc.Path)
		if err != nil {
			path = loc.Path
		}
		byPath[path] = append(byPath[path], name)
	}
	l.mu.Unlock()

	if len(byPath) == 0 {
		return fmt.Errorf("%w: no file-backed datasets to watch", domain.ErrInvalidInput)
	}
	paths := make([]string, 0, len(byPath))
	for path := range byPath {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	return l.notifier.Watch(ctx, paths, func(path string) {
		for _, name := range byPath[path] {
			if _, err := l.Reload(ctx, name); err != nil {
				logger.Error("reloading %s: %v", name, err)
			}
		}
	})
}
