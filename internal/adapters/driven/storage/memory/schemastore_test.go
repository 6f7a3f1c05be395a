package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

func TestSchemaStore_CRUD(t *testing.T) {
	ctx := context.Background()
	store := NewSchemaStore()

	got, err := store.Get(ctx, "people")
	require.NoError(t, err)
	assert.Nil(t, got)

	schema := domain.Schema{
		Name:   "people",
		RowKey: "id",
		Fields: []domain.FieldSpec{{Name: "id", Sort: domain.SortNumeric, Sortable: true}},
	}
	require.NoError(t, store.Save(ctx, schema))
	require.NoError(t, store.Save(ctx, domain.Schema{Name: "alpha", RowKey: "id"}))

	got, err = store.Get(ctx, "people")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, schema, *got)

	got.Fields[0].Name = "changed"
	again, _ := store.Get(ctx, "people")
	assert.Equal(t, "id", again.Fields[0].Name, "stored schema is isolated from callers")

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "alpha", list[0].Name)

	require.NoError(t, store.Delete(ctx, "people"))
	got, err = store.Get(ctx, "people")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSchemaStore_SaveInvalid(t *testing.T) {
	store := NewSchemaStore()
	err := store.Save(context.Background(), domain.Schema{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
