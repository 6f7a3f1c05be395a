package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

func peopleSchema() domain.Schema {
	return domain.Schema{
		Name:   "people",
		RowKey: "id",
		Fields: []domain.FieldSpec{
			{Name: "id", Sort: domain.SortNumeric, Sortable: true, Filter: domain.FilterNumeric, Filterable: true},
			{Name: "name", Label: "Name", Sort: domain.SortString, Sortable: true, Direction: domain.SortAsc, Filter: domain.FilterContains, Filterable: true},
			{Name: "section", Sort: domain.SortClause, Sortable: true, Filter: domain.FilterClause, Filterable: true},
			{Name: "team", Filter: domain.FilterExact, Filterable: true, Options: []domain.FieldOption{
				{Value: "core", Label: "Core"},
				{Value: "web", Label: "Web"},
			}},
		},
	}
}

func TestSchemaStore_SaveAndGet(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "schemas")
	store, err := NewSchemaStore(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, store.Dir())

	got, err := store.Get(ctx, "people")
	require.NoError(t, err)
	assert.Nil(t, got, "missing schema is not an error")

	require.NoError(t, store.Save(ctx, peopleSchema()))
	_, err = os.Stat(filepath.Join(dir, "people.toml"))
	require.NoError(t, err)

	got, err = store.Get(ctx, "people")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, peopleSchema(), *got)
}

func TestSchemaStore_HandWrittenFile(t *testing.T) {
	dir := t.TempDir()
	content := `
[[fields]]
name = "id"
sort = "numeric"
sortable = true

[[fields]]
name = "title"
sort = "string"
sortable = true
filter = "contains"
filterable = true
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tickets.toml"), []byte(content), 0600))

	store, err := NewSchemaStore(dir)
	require.NoError(t, err)

	got, err := store.Get(context.Background(), "tickets")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "tickets", got.Name, "name defaults to the file name")
	assert.Equal(t, domain.DefaultRowKey, got.RowKey)
	require.Len(t, got.Fields, 2)
	assert.Equal(t, domain.SortNumeric, got.Fields[0].Sort)
	assert.Equal(t, domain.FilterContains, got.Fields[1].Filter)
}

func TestSchemaStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewSchemaStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, peopleSchema()))
	require.NoError(t, store.Save(ctx, domain.Schema{Name: "alpha", RowKey: "id"}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("ignored"), 0600))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)
	assert.Equal(t, "people", list[1].Name)

	require.NoError(t, store.Delete(ctx, "alpha"))
	require.NoError(t, store.Delete(ctx, "alpha"), "deleting twice is fine")
	list, err = store.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestSchemaStore_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewSchemaStore(dir)
	require.NoError(t, err)

	_, err = store.Get(ctx, "../escape")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Save(ctx, domain.Schema{Name: "x"}), domain.ErrInvalidInput)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.toml"), []byte("[[fields"), 0600))
	_, err = store.Get(ctx, "broken")
	assert.Error(t, err)

	missing, err := NewSchemaStore(filepath.Join(dir, "nope"))
	require.NoError(t, err)
	list, err := missing.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
