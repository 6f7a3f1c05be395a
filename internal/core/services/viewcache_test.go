package services

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

func fruitStore(t *testing.T) *domain.EntityStore {
	t.Helper()
	store, err := domain.NewEntityStore("id", []domain.Record{
		{"id": "1", "name": "pear", "kind": "tree", "price": 3.0},
		{"id": "2", "name": "apple", "kind": "tree", "price": 1.0},
		{"id": "3", "name": "grape", "kind": "vine", "price": 2.0},
		{"id": "4", "name": "melon", "kind": nil, "price": 5.0},
	})
	require.NoError(t, err)
	return store
}

func fruitSort() *domain.SortState {
	return domain.NewSortState(map[string]domain.SortSpec{
		"name":  {Type: domain.SortString, Direction: domain.SortNone},
		"price": {Type: domain.SortNumeric, Direction: domain.SortNone},
	})
}

func TestViewCache_SameSnapshotsHit(t *testing.T) {
	cache := NewViewCache()
	store := fruitStore(t)
	filters := domain.NewFilterState(nil)
	sort := domain.SetSort(fruitSort(), "name", domain.SortAsc)

	first := cache.View("fruit", store, filters, sort)
	second := cache.View("fruit", store, filters, sort)

	assert.Equal(t, []string{"2", "3", "4", "1"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, domain.CacheStats{ViewComputes: 1, Hits: 1, Misses: 1}, cache.Stats())
}

func TestViewCache_NewIdenticalSnapshotRecomputes(t *testing.T) {
	cache := NewViewCache()
	store := fruitStore(t)
	sort := fruitSort()

	f1, err := domain.NewFilterState(nil).AddValue("kind", "tree", domain.FilterExact)
	require.NoError(t, err)
	f2, err := domain.NewFilterState(nil).AddValue("kind", "tree", domain.FilterExact)
	require.NoError(t, err)

	v1 := cache.View("fruit", store, f1, sort)
	v2 := cache.View("fruit", store, f2, sort)

	assert.Equal(t, v1, v2)
	assert.Equal(t, int64(2), cache.Stats().ViewComputes)
}

func TestViewCache_EachDependencyInvalidates(t *testing.T) {
	cache := NewViewCache()
	store := fruitStore(t)
	filters := domain.NewFilterState(nil)
	sort := fruitSort()

	cache.View("fruit", store, filters, sort)

	sorted := domain.SortClick(sort, "price", domain.Modifiers{})
	assert.Equal(t, []string{"2", "3", "1", "4"}, cache.View("fruit", store, filters, sorted))

	narrowed, err := filters.AddValue("price", "3", domain.FilterNumeric)
	require.NoError(t, err)
	assert.Equal(t, []string{"1"}, cache.View("fruit", store, narrowed, sorted))

	reloaded := fruitStore(t)
	assert.Equal(t, []string{"1"}, cache.View("fruit", reloaded, narrowed, sorted))

	assert.Equal(t, int64(4), cache.Stats().ViewComputes)
	assert.Equal(t, int64(0), cache.Stats().Hits)
}

func TestViewCache_DatasetsAreIndependent(t *testing.T) {
	cache := NewViewCache()
	store := fruitStore(t)
	filters := domain.NewFilterState(nil)
	sort := fruitSort()

	cache.View("a", store, filters, sort)
	cache.View("b", store, filters, sort)
	cache.View("a", store, filters, sort)

	stats := cache.Stats()
	assert.Equal(t, int64(2), stats.ViewComputes)
	assert.Equal(t, int64(1), stats.Hits)
}

func TestViewCache_OptionsAllIgnoresFilterChanges(t *testing.T) {
	cache := NewViewCache()
	store := fruitStore(t)
	sort := fruitSort()
	f1 := domain.NewFilterState(nil)
	f2, err := f1.AddValue("kind", "vine", domain.FilterExact)
	require.NoError(t, err)

	all := cache.Options("fruit", "kind", domain.OptionsAll, store, f1, sort)
	again := cache.Options("fruit", "kind", domain.OptionsAll, store, f2, sort)

	assert.Equal(t, []domain.FieldOption{
		{Value: "tree", Label: "tree"},
		{Value: "vine", Label: "vine"},
		{Value: "", Label: domain.BlankLabel},
	}, all)
	assert.Equal(t, all, again)
	assert.Equal(t, int64(1), cache.Stats().OptionComputes)
}

func TestViewCache_OptionsAvailableFollowsView(t *testing.T) {
	cache := NewViewCache()
	store := fruitStore(t)
	sort := fruitSort()
	filters, err := domain.NewFilterState(nil).AddValue("kind", "tree", domain.FilterExact)
	require.NoError(t, err)

	got := cache.Options("fruit", "name", domain.OptionsAvailable, store, filters, sort)
	assert.Equal(t, []any{"pear", "apple"}, optionValues(got))

	cache.Options("fruit", "name", domain.OptionsAvailable, store, filters, sort)
	assert.Equal(t, int64(1), cache.Stats().OptionComputes)
	assert.Equal(t, int64(1), cache.Stats().ViewComputes)

	resorted := domain.SetSort(sort, "name", domain.SortAsc)
	got = cache.Options("fruit", "name", domain.OptionsAvailable, store, filters, resorted)
	assert.Equal(t, []any{"apple", "pear"}, optionValues(got))
	assert.Equal(t, int64(2), cache.Stats().OptionComputes)
}

func TestViewCache_NilStore(t *testing.T) {
	cache := NewViewCache()
	assert.Equal(t, []string{}, cache.View("empty", nil, nil, nil))
	assert.Empty(t, cache.Options("empty", "x", domain.OptionsAll, nil, nil, nil))
}

func TestViewCache_Drop(t *testing.T) {
	cache := NewViewCache()
	store := fruitStore(t)
	filters := domain.NewFilterState(nil)
	sort := fruitSort()

	cache.View("fruit", store, filters, sort)
	cache.Drop("fruit")
	cache.View("fruit", store, filters, sort)

	assert.Equal(t, int64(2), cache.Stats().ViewComputes)
}

func TestViewCache_ConcurrentReaders(t *testing.T) {
	cache := NewViewCache()
	store := fruitStore(t)
	filters := domain.NewFilterState(nil)
	sort := domain.SetSort(fruitSort(), "price", domain.SortDesc)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, []string{"4", "1", "3", "2"}, cache.View("fruit", store, filters, sort))
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), cache.Stats().ViewComputes)
	assert.Equal(t, int64(15), cache.Stats().Hits)
}

func optionValues(opts []domain.FieldOption) []any {
	out := make([]any, len(opts))
	for i, o := range opts {
		out[i] = o.Value
	}
	return out
}
