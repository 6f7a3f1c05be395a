package services

import (
	"sync"
	"sync/atomic"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/logger"
)

// ViewCache memoizes derived views and field option lists.
//
// Entries remember the snapshot pointers they were computed from and are
// recomputed exactly when one of those pointers changes. Callers must
// replace snapshots rather than mutate them. The table is partitioned by
// dataset; each partition has its own lock so datasets never contend.
type ViewCache struct {
	mu    sync.Mutex
	parts map[string]*viewPartition

	viewComputes   atomic.Int64
	optionComputes atomic.Int64
	hits           atomic.Int64
	misses         atomic.Int64
}

type viewPartition struct {
	mu      sync.Mutex
	view    viewEntry
	options map[optionKey]optionEntry
}

type viewEntry struct {
	store   *domain.EntityStore
	filters *domain.FilterState
	sort    *domain.SortState
	ids     []string
	ok      bool
}

type optionKey struct {
	field   string
	variant domain.OptionVariant
}

type optionEntry struct {
	store   *domain.EntityStore
	filters *domain.FilterState
	sort    *domain.SortState
	options []domain.FieldOption
}

// NewViewCache creates an empty cache.
func NewViewCache() *ViewCache {
	return &ViewCache{parts: make(map[string]*viewPartition)}
}

func (c *ViewCache) partition(key string) *viewPartition {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.parts[key]
	if !ok {
		p = &viewPartition{options: make(map[optionKey]optionEntry)}
		c.parts[key] = p
	}
	return p
}

// View returns the ids of store that pass filters, ordered by sort. The
// returned slice is shared with the cache and must not be modified.
func (c *ViewCache) View(key string, store *domain.EntityStore, filters *domain.FilterState, sort *domain.SortState) []string {
	p := c.partition(key)
	p.mu.Lock()
	defer p.mu.Unlock()
	return c.viewLocked(key, p, store, filters, sort)
}

func (c *ViewCache) viewLocked(key string, p *viewPartition, store *domain.EntityStore, filters *domain.FilterState, sort *domain.SortState) []string {
	e := p.view
	if e.ok && e.store == store && e.filters == filters && e.sort == sort {
		c.hits.Add(1)
		return e.ids
	}
	c.misses.Add(1)
	c.viewComputes.Add(1)
	logger.Debug("view cache: recomputing view of %s", key)

	var ids []string
	if store != nil {
		ids = domain.ApplyFilters(filters, store.ByID, store.IDs)
		ids = domain.SortIDs(sort, store.ByID, ids)
	}
	if ids == nil {
		ids = []string{}
	}
	p.view = viewEntry{store: store, filters: filters, sort: sort, ids: ids, ok: true}
	return ids
}

// Options returns the option list of field. The all variant depends only on
// store; the available variant is derived from the current view and also
// depends on filters and sort. The returned slice must not be modified.
func (c *ViewCache) Options(key, field string, variant domain.OptionVariant, store *domain.EntityStore, filters *domain.FilterState, sort *domain.SortState) []domain.FieldOption {
	p := c.partition(key)
	p.mu.Lock()
	defer p.mu.Unlock()

	if variant == domain.OptionsAll {
		filters, sort = nil, nil
	}
	k := optionKey{field: field, variant: variant}
	if e, ok := p.options[k]; ok && e.store == store && e.filters == filters && e.sort == sort {
		c.hits.Add(1)
		return e.options
	}
	c.misses.Add(1)
	c.optionComputes.Add(1)
	logger.Debug("view cache: recomputing %s options of %s.%s", variant, key, field)

	var records []domain.Record
	if variant == domain.OptionsAll {
		records = store.All()
	} else {
		records = store.Records(c.viewLocked(key, p, store, filters, sort))
	}
	opts := domain.FieldOptions(records, field)
	p.options[k] = optionEntry{store: store, filters: filters, sort: sort, options: opts}
	return opts
}

// Drop forgets every entry of a dataset.
func (c *ViewCache) Drop(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.parts, key)
}

// Stats returns the cache counters.
func (c *ViewCache) Stats() domain.CacheStats {
	return domain.CacheStats{
		ViewComputes:   c.viewComputes.Load(),
		OptionComputes: c.optionComputes.Load(),
		Hits:           c.hits.Load(),
		Misses:         c.misses.Load(),
	}
}
