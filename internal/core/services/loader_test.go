package services

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gridview/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/gridview/internal/core/domain"
)

// fileSource serves a fixed record set for any file path.
type fileSource struct {
	set   domain.RecordSet
	loads atomic.Int32
}

func (s *fileSource) Scheme() string { return domain.SchemeFile }

func (s *fileSource) Load(_ context.Context, _ string) (domain.RecordSet, error) {
	s.loads.Add(1)
	return s.set, nil
}

// fakeNotifier reports every watched path as changed once.
type fakeNotifier struct {
	paths []string
}

func (n *fakeNotifier) Watch(_ context.Context, paths []string, onChange func(string)) error {
	n.paths = paths
	for _, p := range paths {
		onChange(p)
	}
	return nil
}

func newLoader(t *testing.T) (*LoaderService, *DatasetService, *memory.RecordSource) {
	t.Helper()
	datasets := NewDatasetService(nil)
	src := memory.NewRecordSource()
	src.Put("issues", domain.RecordSet{Records: issueRecords()})
	src.Put("plain", domain.RecordSet{
		Columns: []string{"name", "age"},
		Records: []domain.Record{{"name": "ann", "age": 31}, {"name": "bob", "age": 27}},
	})
	loader := NewLoaderService(datasets, memory.NewSchemaStore(), memory.NewDatasetStore(), nil, src)
	return loader, datasets, src
}

func TestLoaderService_LoadInfersSchema(t *testing.T) {
	ctx := context.Background()
	loader, datasets, _ := newLoader(t)

	info, err := loader.Load(ctx, "issues", "memory://issues")
	require.NoError(t, err)
	assert.Equal(t, "issues", info.Name)
	assert.Equal(t, 4, info.Rows)

	schema, err := datasets.Schema("issues")
	require.NoError(t, err)
	assert.Equal(t, "id", schema.RowKey)
	assert.Equal(t, "id", schema.Fields[0].Name)
	id, _ := schema.Field("id")
	assert.Equal(t, domain.SortNumeric, id.Sort)
	title, _ := schema.Field("title")
	assert.Equal(t, domain.FilterContains, title.Filter)
}

func TestLoaderService_LoadNumbersRows(t *testing.T) {
	ctx := context.Background()
	loader, datasets, _ := newLoader(t)

	_, err := loader.Load(ctx, "plain", "memory://plain")
	require.NoError(t, err)

	schema, _ := datasets.Schema("plain")
	assert.Equal(t, RowNumberKey, schema.RowKey)
	assert.Equal(t, []string{RowNumberKey, "name", "age"}, schema.Columns())

	view, err := datasets.View("plain")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, view)

	// reloading numbers the rows again against the registered schema
	_, err = loader.Reload(ctx, "plain")
	require.NoError(t, err)
	rec, err := datasets.Record("plain", "2")
	require.NoError(t, err)
	assert.Equal(t, "bob", rec["name"])
}

func TestLoaderService_UsesStoredSchema(t *testing.T) {
	ctx := context.Background()
	datasets := NewDatasetService(nil)
	src := memory.NewRecordSource()
	src.Put("issues", domain.RecordSet{Records: issueRecords()})
	schemas := memory.NewSchemaStore()
	require.NoError(t, schemas.Save(ctx, issueSchema()))

	loader := NewLoaderService(datasets, schemas, nil, nil, src)
	_, err := loader.Load(ctx, "issues", "memory://issues")
	require.NoError(t, err)

	schema, _ := datasets.Schema("issues")
	clause, ok := schema.Field("clause")
	require.True(t, ok)
	assert.Equal(t, domain.SortClause, clause.Sort)
}

func TestLoaderService_Errors(t *testing.T) {
	ctx := context.Background()
	loader, datasets, _ := newLoader(t)

	_, err := loader.Load(ctx, "x", "ftp://somewhere")
	assert.ErrorIs(t, err, domain.ErrUnsupportedType)

	_, err = loader.Load(ctx, "x", "memory://missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, datasets.Datasets(), "failed loads register nothing")

	_, err = loader.Reload(ctx, "never")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bare := NewLoaderService(nil, nil, nil, nil)
	_, err = bare.Load(ctx, "x", "memory://x")
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
	_, err = bare.Import(ctx, "x", "memory://x")
	assert.ErrorIs(t, err, domain.ErrNotImplemented)
	assert.ErrorIs(t, bare.Watch(ctx), domain.ErrNotImplemented)
}

func TestLoaderService_LoadAll(t *testing.T) {
	ctx := context.Background()
	loader, datasets, _ := newLoader(t)

	infos, err := loader.LoadAll(ctx, map[string]string{
		"plain":  "memory://plain",
		"issues": "memory://issues",
	})
	require.NoError(t, err)
	require.Len(t, infos, 2)
	assert.Equal(t, "issues", infos[0].Name)
	assert.Equal(t, "plain", infos[1].Name)
	assert.Len(t, datasets.Datasets(), 2)

	_, err = loader.LoadAll(ctx, map[string]string{"bad": "memory://missing"})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoaderService_ReloadPicksUpChanges(t *testing.T) {
	ctx := context.Background()
	loader, datasets, src := newLoader(t)

	_, err := loader.Load(ctx, "issues", "memory://issues")
	require.NoError(t, err)

	src.Put("issues", domain.RecordSet{Records: issueRecords()[:1]})
	info, err := loader.Reload(ctx, "issues")
	require.NoError(t, err)
	assert.Equal(t, 1, info.Rows)

	view, _ := datasets.View("issues")
	assert.Equal(t, []string{"1"}, view)
}

func TestLoaderService_Import(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDatasetStore()
	src := memory.NewRecordSource()
	src.Put("issues", domain.RecordSet{Records: issueRecords()})
	loader := NewLoaderService(NewDatasetService(nil), nil, store, nil, src)

	info, err := loader.Import(ctx, "issues", "memory://issues")
	require.NoError(t, err)
	assert.Equal(t, 4, info.Rows)
	assert.NotEmpty(t, info.ImportID)

	set, err := store.Get(ctx, "issues")
	require.NoError(t, err)
	assert.Len(t, set.Records, 4)
}

func TestLoaderService_InferSchema(t *testing.T) {
	loader, datasets, _ := newLoader(t)

	schema, err := loader.InferSchema(context.Background(), "plain", "memory://plain")
	require.NoError(t, err)
	assert.Equal(t, RowNumberKey, schema.RowKey)
	assert.Empty(t, datasets.Datasets(), "inference does not register")
}

func TestLoaderService_Watch(t *testing.T) {
	ctx := context.Background()
	src := &fileSource{set: domain.RecordSet{Records: issueRecords()}}
	notifier := &fakeNotifier{}
	mem := memory.NewRecordSource()
	mem.Put("plain", domain.RecordSet{Records: []domain.Record{{"id": "a"}}})
	loader := NewLoaderService(NewDatasetService(nil), nil, nil, notifier, src, mem)

	assert.ErrorIs(t, loader.Watch(ctx), domain.ErrInvalidInput, "nothing loaded yet")

	_, err := loader.Load(ctx, "issues", "data/issues.json")
	require.NoError(t, err)
	_, err = loader.Load(ctx, "plain", "memory://plain")
	require.NoError(t, err)

	require.NoError(t, loader.Watch(ctx))

	want, _ := filepath.Abs("data/issues.json")
	assert.Equal(t, []string{want}, notifier.paths, "only file datasets are watched")
	assert.Equal(t, int32(2), src.loads.Load(), "change triggers a reload")
}
