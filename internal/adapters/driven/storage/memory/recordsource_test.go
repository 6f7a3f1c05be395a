package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

func TestRecordSource_PutAndLoad(t *testing.T) {
	src := NewRecordSource()
	assert.Equal(t, domain.SchemeMemory, src.Scheme())

	src.Put("people", domain.RecordSet{
		Columns: []string{"id", "name"},
		Records: []domain.Record{{"id": 1, "name": "ann"}},
	})

	set, err := src.Load(context.Background(), "people")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, set.Columns)
	require.Len(t, set.Records, 1)
	assert.Equal(t, "ann", set.Records[0]["name"])
}

func TestRecordSource_LoadReturnsCopies(t *testing.T) {
	src := NewRecordSource()
	original := []domain.Record{{"id": 1}}
	src.Put("d", domain.RecordSet{Records: original})
	original[0]["id"] = 99

	set, err := src.Load(context.Background(), "d")
	require.NoError(t, err)
	assert.Equal(t, 1, set.Records[0]["id"])

	set.Records[0]["id"] = 42
	again, err := src.Load(context.Background(), "d")
	require.NoError(t, err)
	assert.Equal(t, 1, again.Records[0]["id"])
}

func TestRecordSource_NotFound(t *testing.T) {
	src := NewRecordSource()
	_, err := src.Load(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
