package domain

import "slices"

// IDSet is an ordered set of record ids. Membership is what matters; the
// insertion order is kept only so output is deterministic.
//
// IDSet values are immutable. Set and Toggle return new sets.
type IDSet struct {
	ids   []string
	index map[string]struct{}
}

// NewIDSet builds a set from ids, dropping duplicates.
func NewIDSet(ids ...string) IDSet {
	s := IDSet{ids: make([]string, 0, len(ids)), index: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			continue
		}
		s.index[id] = struct{}{}
		s.ids = append(s.ids, id)
	}
	return s
}

// Set returns a set holding exactly ids.
func (s IDSet) Set(ids []string) IDSet {
	return NewIDSet(ids...)
}

// Toggle flips the membership of each id in ids. Every id is judged against
// the set as it was before the call: present ids are removed, absent ids
// are appended in batch order. An id repeated in the batch flips once.
func (s IDSet) Toggle(ids []string) IDSet {
	flip := make(map[string]struct{}, len(ids))
	var added []string
	for _, id := range ids {
		if _, seen := flip[id]; seen {
			continue
		}
		flip[id] = struct{}{}
		if !s.Contains(id) {
			added = append(added, id)
		}
	}

	next := make([]string, 0, len(s.ids)+len(added))
	for _, id := range s.ids {
		if _, ok := flip[id]; !ok {
			next = append(next, id)
		}
	}
	return NewIDSet(append(next, added...)...)
}

// Contains reports whether id is in the set.
func (s IDSet) Contains(id string) bool {
	_, ok := s.index[id]
	return ok
}

// IDs returns the members in insertion order.
func (s IDSet) IDs() []string {
	if s.ids == nil {
		return []string{}
	}
	return slices.Clone(s.ids)
}

// Len returns the number of members.
func (s IDSet) Len() int {
	return len(s.ids)
}

// Last returns the most recently added member.
func (s IDSet) Last() (string, bool) {
	if len(s.ids) == 0 {
		return "", false
	}
	return s.ids[len(s.ids)-1], true
}

// SelectClick applies a row click to a selection over the derived view.
//
// A plain click selects only id. Ctrl/Meta toggles id. Shift extends the
// selection from the last selected row to id, following view order; when the
// last selected row or id is not in view, nothing is added.
func SelectClick(sel IDSet, view []string, id string, mods Modifiers) IDSet {
	switch {
	case mods.Shift:
		last, ok := sel.Last()
		if !ok {
			return NewIDSet(id)
		}
		iLast := slices.Index(view, last)
		iSel := slices.Index(view, id)
		if iLast < 0 || iSel < 0 {
			return sel
		}
		ids := sel.IDs()
		if iLast > iSel {
			ids = append(ids, view[iSel:iLast]...)
		} else {
			ids = append(ids, view[iLast+1:iSel+1]...)
		}
		return NewIDSet(ids...)
	case mods.CtrlOrMeta:
		return sel.Toggle([]string{id})
	}
	return NewIDSet(id)
}

// SelectStep moves a single-row selection delta rows through the view,
// wrapping at either end. An empty selection, or one no longer in view,
// selects the first row.
func SelectStep(sel IDSet, view []string, delta int) IDSet {
	if len(view) == 0 {
		return sel
	}
	first, ok := sel.first()
	if !ok {
		return NewIDSet(view[0])
	}
	i := slices.Index(view, first)
	if i < 0 {
		return NewIDSet(view[0])
	}
	n := len(view)
	i = ((i+delta)%n + n) % n
	return NewIDSet(view[i])
}

func (s IDSet) first() (string, bool) {
	if len(s.ids) == 0 {
		return "", false
	}
	return s.ids[0], true
}
