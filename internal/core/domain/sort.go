package domain

import (
	"fmt"
	"slices"
	"strings"
)

// SortType selects the comparator used for a field.
type SortType int

const (
	// SortString compares text case-insensitively.
	SortString SortType = iota
	// SortNumeric compares leniently parsed numbers.
	SortNumeric
	// SortClause compares dotted hierarchical keys segment by segment.
	SortClause
	// SortDate compares timestamps normalized to numbers by the loader.
	SortDate
)

var sortTypeNames = map[SortType]string{
	SortString:  "string",
	SortNumeric: "numeric",
	SortClause:  "clause",
	SortDate:    "date",
}

// String returns the lower-case name of the sort type.
func (t SortType) String() string {
	if name, ok := sortTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("SortType(%d)", int(t))
}

// ParseSortType converts a name such as "numeric" to a SortType.
func ParseSortType(s string) (SortType, error) {
	for t, name := range sortTypeNames {
		if strings.EqualFold(s, name) {
			return t, nil
		}
	}
	return SortString, fmt.Errorf("%w: sort type %q", ErrInvalidInput, s)
}

// MarshalText encodes the sort type by name.
func (t SortType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a sort type name.
func (t *SortType) UnmarshalText(b []byte) error {
	parsed, err := ParseSortType(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// SortDirection is the per-field ordering.
type SortDirection string

const (
	// SortNone means the field does not take part in ordering.
	SortNone SortDirection = "NONE"
	// SortAsc orders ascending.
	SortAsc SortDirection = "ASC"
	// SortDesc orders descending.
	SortDesc SortDirection = "DESC"
)

// Active reports whether the direction orders rows.
func (d SortDirection) Active() bool {
	return d == SortAsc || d == SortDesc
}

// ParseSortDirection accepts asc, desc or none in any case.
func ParseSortDirection(s string) (SortDirection, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASC", "":
		return SortAsc, nil
	case "DESC":
		return SortDesc, nil
	case "NONE":
		return SortNone, nil
	}
	return SortNone, fmt.Errorf("%w: sort direction %q", ErrInvalidInput, s)
}

// SortSpec is the sort configuration of a single field.
type SortSpec struct {
	Type      SortType
	Direction SortDirection
}

// SortState is the sort configuration of a dataset.
//
// By lists the active fields in priority order (primary first) and only ever
// contains fields whose direction is ASC or DESC. A SortState is treated as
// immutable: the transition functions return a new value.
type SortState struct {
	By    []string
	Sorts map[string]SortSpec
}

// NewSortState builds an unsorted state from a field registry.
func NewSortState(sorts map[string]SortSpec) *SortState {
	s := &SortState{By: []string{}, Sorts: make(map[string]SortSpec, len(sorts))}
	for field, spec := range sorts {
		s.Sorts[field] = spec
	}
	return s
}

// Sortable reports whether field has a registered sort spec.
func (s *SortState) Sortable(field string) bool {
	_, ok := s.Sorts[field]
	return ok
}

// Direction returns the current direction of field.
func (s *SortState) Direction(field string) SortDirection {
	if spec, ok := s.Sorts[field]; ok && spec.Direction != "" {
		return spec.Direction
	}
	return SortNone
}

// Priority returns the 1-based position of field in By, or 0 when inactive.
func (s *SortState) Priority(field string) int {
	return slices.Index(s.By, field) + 1
}

func (s *SortState) clone() *SortState {
	c := &SortState{
		By:    slices.Clone(s.By),
		Sorts: make(map[string]SortSpec, len(s.Sorts)+1),
	}
	if c.By == nil {
		c.By = []string{}
	}
	for k, v := range s.Sorts {
		c.Sorts[k] = v
	}
	return c
}

func (s *SortState) setDirection(field string, d SortDirection) {
	spec := s.Sorts[field]
	spec.Direction = d
	s.Sorts[field] = spec
}

func (s *SortState) remove(field string) {
	s.By = slices.DeleteFunc(s.By, func(f string) bool { return f == field })
}

// Modifiers are the keyboard modifiers held during a click.
type Modifiers struct {
	Shift      bool
	CtrlOrMeta bool
}

// SortClick applies a column header click to the sort state.
//
// Shift builds a multi-column sort: an absent field is appended ASC, an ASC
// field turns DESC, a DESC field drops out. Ctrl/Meta removes the field from
// the sort. A plain click cycles a sole sort field ASC → DESC → unsorted and
// otherwise makes field the only sort key, ascending.
func SortClick(state *SortState, field string, mods Modifiers) *SortState {
	next := state.clone()
	inBy := slices.Contains(next.By, field)

	switch {
	case mods.Shift:
		switch {
		case !inBy:
			next.setDirection(field, SortAsc)
			next.By = append(next.By, field)
		case next.Direction(field) == SortAsc:
			next.setDirection(field, SortDesc)
		default:
			next.setDirection(field, SortNone)
			next.remove(field)
		}

	case mods.CtrlOrMeta:
		next.remove(field)

	default:
		sole := len(next.By) == 1 && next.By[0] == field
		switch {
		case sole && next.Direction(field) == SortAsc:
			next.setDirection(field, SortDesc)
		case sole:
			next.setDirection(field, SortNone)
			next.By = []string{}
		default:
			next.setDirection(field, SortAsc)
			next.By = []string{field}
		}
	}
	return next
}

// SetSort sets an explicit direction on field. NONE removes the field from
// the active keys; ASC or DESC appends it when it is not already active.
func SetSort(state *SortState, field string, direction SortDirection) *SortState {
	next := state.clone()
	next.setDirection(field, direction)
	inBy := slices.Contains(next.By, field)
	switch {
	case !direction.Active():
		next.remove(field)
	case !inBy:
		next.By = append(next.By, field)
	}
	return next
}

// Comparator orders two field values. It returns a negative number when a
// sorts first, positive when b does, and zero when they tie.
type Comparator func(a, b any) int

// CompareString compares the text forms case-insensitively.
func CompareString(a, b any) int {
	return strings.Compare(strings.ToLower(Text(a)), strings.ToLower(Text(b)))
}

// CompareNumeric compares leniently parsed numbers.
func CompareNumeric(a, b any) int {
	return sign(ParseNumber(a) - ParseNumber(b))
}

// CompareDate compares timestamps that were normalized to numbers.
func CompareDate(a, b any) int {
	return sign(ParseNumber(a) - ParseNumber(b))
}

// CompareClause compares dotted keys such as "1.2.10" segment by segment.
// The first differing segment decides, numerically when both segments look
// like numbers. When every common segment is equal the whole strings are
// compared, so "1.2" sorts before "1.2.1".
func CompareClause(a, b any) int {
	as, bs := Text(a), Text(b)
	A := strings.Split(as, ".")
	B := strings.Split(bs, ".")
	for i := 0; i < min(len(A), len(B)); i++ {
		if A[i] == B[i] {
			continue
		}
		if looksNumeric(A[i]) && looksNumeric(B[i]) {
			return sign(ParseNumber(A[i]) - ParseNumber(B[i]))
		}
		if A[i] < B[i] {
			return -1
		}
		return 1
	}
	return strings.Compare(as, bs)
}

// looksNumeric reports whether a clause segment converts cleanly to a
// number. Blank segments count as numeric zero.
func looksNumeric(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return true
	}
	_, ok := parseStrictFloat(s)
	return ok
}

// ComparatorFor returns the comparator for t, or nil for an unknown type.
func ComparatorFor(t SortType) Comparator {
	switch t {
	case SortString:
		return CompareString
	case SortNumeric:
		return CompareNumeric
	case SortClause:
		return CompareClause
	case SortDate:
		return CompareDate
	}
	return nil
}

func sign(f float64) int {
	switch {
	case f < 0:
		return -1
	case f > 0:
		return 1
	}
	return 0
}

type sortKey struct {
	field string
	cmp   Comparator
	desc  bool
}

// keys resolves By into comparators, skipping inactive or unknown entries.
func (s *SortState) keys() []sortKey {
	keys := make([]sortKey, 0, len(s.By))
	for _, field := range s.By {
		spec, ok := s.Sorts[field]
		if !ok || !spec.Direction.Active() {
			continue
		}
		cmp := ComparatorFor(spec.Type)
		if cmp == nil {
			continue
		}
		keys = append(keys, sortKey{field: field, cmp: cmp, desc: spec.Direction == SortDesc})
	}
	return keys
}

// SortIDs returns ids ordered by the state's active keys. The sort is
// stable: rows that tie on every key keep their input order. Each DESC key
// reverses only its own comparison.
func SortIDs(state *SortState, byID map[string]Record, ids []string) []string {
	out := slices.Clone(ids)
	if state == nil {
		return out
	}
	keys := state.keys()
	if len(keys) == 0 {
		return out
	}
	slices.SortStableFunc(out, func(x, y string) int {
		rx, ry := byID[x], byID[y]
		for _, k := range keys {
			c := k.cmp(rx[k.field], ry[k.field])
			if k.desc {
				c = -c
			}
			if c != 0 {
				return c
			}
		}
		return 0
	})
	return out
}

// SortOptions orders a field option list by the field's sort spec. Inactive
// specs leave the list untouched.
func SortOptions(spec SortSpec, options []FieldOption) []FieldOption {
	out := slices.Clone(options)
	cmp := ComparatorFor(spec.Type)
	if !spec.Direction.Active() || cmp == nil {
		return out
	}
	slices.SortStableFunc(out, func(a, b FieldOption) int {
		c := cmp(a.Value, b.Value)
		if spec.Direction == SortDesc {
			return -c
		}
		return c
	})
	return out
}
