package domain

import "fmt"

// Record is one row of a dataset: a field name to scalar value mapping.
// Values are nil, string, bool or float64 once normalized.
type Record map[string]any

// ID returns the text form of the record's row key.
func (r Record) ID(rowKey string) (string, bool) {
	v, ok := r[rowKey]
	if !ok || v == nil {
		return "", false
	}
	id := Text(v)
	return id, id != ""
}

// EntityStore is the canonical content of a dataset: ids in load order and
// the record for each id.
//
// A published store is never mutated. Reloading a dataset builds a new store,
// and the view cache relies on pointer identity to notice the change.
type EntityStore struct {
	// IDs lists record ids in their original order.
	IDs []string

	// ByID maps an id to its record.
	ByID map[string]Record
}

// NewEntityStore builds a store from records, keyed by rowKey.
// Every record must carry a non-empty, unique row key.
func NewEntityStore(rowKey string, records []Record) (*EntityStore, error) {
	s := &EntityStore{
		IDs:  make([]string, 0, len(records)),
		ByID: make(map[string]Record, len(records)),
	}
	for i, rec := range records {
		id, ok := rec.ID(rowKey)
		if !ok {
			return nil, fmt.Errorf("record %d: %w: %q", i, ErrMissingRowKey, rowKey)
		}
		if _, dup := s.ByID[id]; dup {
			return nil, fmt.Errorf("record %d: %w: %s", i, ErrDuplicateID, id)
		}
		s.IDs = append(s.IDs, id)
		s.ByID[id] = rec
	}
	return s, nil
}

// Len returns the number of records in the store.
func (s *EntityStore) Len() int {
	if s == nil {
		return 0
	}
	return len(s.IDs)
}

// Records returns the records for ids, skipping ids not in the store.
func (s *EntityStore) Records(ids []string) []Record {
	if s == nil {
		return nil
	}
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := s.ByID[id]; ok {
			out = append(out, rec)
		}
	}
	return out
}

// All returns every record in load order.
func (s *EntityStore) All() []Record {
	if s == nil {
		return nil
	}
	return s.Records(s.IDs)
}
