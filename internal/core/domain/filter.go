package domain

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// FilterKind is the match semantics of a filter value.
type FilterKind int

const (
	// FilterExact matches equal values; falsy values match each other.
	FilterExact FilterKind = iota
	// FilterContains matches a case-insensitive pattern anywhere in the text.
	FilterContains
	// FilterRegex matches a case-insensitive regular expression.
	FilterRegex
	// FilterNumeric matches numerically equal values.
	FilterNumeric
	// FilterClause matches a dotted clause or any of its children.
	FilterClause
	// FilterPage matches a page (integer) or a page and line (decimal).
	FilterPage
)

var filterKindNames = map[FilterKind]string{
	FilterExact:    "exact",
	FilterContains: "contains",
	FilterRegex:    "regex",
	FilterNumeric:  "numeric",
	FilterClause:   "clause",
	FilterPage:     "page",
}

// String returns the lower-case name of the kind.
func (k FilterKind) String() string {
	if name, ok := filterKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("FilterKind(%d)", int(k))
}

// ParseFilterKind converts a name such as "contains" to a FilterKind.
func ParseFilterKind(s string) (FilterKind, error) {
	for k, name := range filterKindNames {
		if strings.EqualFold(s, name) {
			return k, nil
		}
	}
	return FilterExact, fmt.Errorf("%w: %q", ErrInvalidFilterSpec, s)
}

// MarshalText encodes the kind by name.
func (k FilterKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *FilterKind) UnmarshalText(b []byte) error {
	parsed, err := ParseFilterKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// pageDecimal detects a "page.line" filter value.
var pageDecimal = regexp.MustCompile(`\d+\.`)

// FilterValue is one value of a field filter: the literal the user supplied
// plus the data needed to match it. Values that failed to compile are kept
// with Valid set to false and never match.
type FilterValue struct {
	Kind  FilterKind
	Value any
	Valid bool

	pattern  *regexp.Regexp
	number   float64
	pageLine bool
}

// NewFilterValue prepares value for matching with the given kind.
//
// A pattern that does not compile is not an error: the returned value has
// Valid false. Only an unknown kind fails.
func NewFilterValue(value any, kind FilterKind) (FilterValue, error) {
	fv := FilterValue{Kind: kind, Value: value, Valid: true}

	switch kind {
	case FilterExact, FilterClause:
	case FilterContains, FilterRegex:
		re, err := regexp.Compile("(?i)" + Text(value))
		if err != nil {
			fv.Valid = false
			return fv, nil
		}
		fv.pattern = re
	case FilterPage:
		text := Text(value)
		fv.number = ParseNumber(text)
		fv.pageLine = pageDecimal.MatchString(text)
	case FilterNumeric:
		fv.number = ParseNumber(value)
	default:
		return FilterValue{}, fmt.Errorf("%w: unexpected filter kind %d", ErrInvalidFilterSpec, int(kind))
	}
	return fv, nil
}

// Matches reports whether a record's field value satisfies the filter value.
func (fv FilterValue) Matches(d any) bool {
	if !fv.Valid {
		return false
	}
	switch fv.Kind {
	case FilterExact:
		if truthy(d) {
			return valuesEqual(d, fv.Value)
		}
		return !truthy(fv.Value)
	case FilterContains, FilterRegex:
		return fv.pattern.MatchString(Text(d))
	case FilterClause:
		return matchClause(Text(d), Text(fv.Value))
	case FilterPage:
		n := ParseNumber(d)
		if fv.pageLine {
			return n == fv.number
		}
		return roundHalfUp(n) == fv.number
	case FilterNumeric:
		return ParseNumber(d) == fv.number
	}
	return false
}

// Same reports whether fv holds value with kind.
func (fv FilterValue) Same(value any, kind FilterKind) bool {
	return fv.Kind == kind && valuesEqual(fv.Value, value)
}

// matchClause accepts d when it equals val or is a dotted child of it.
// A trailing '.' on val is ignored for the child test.
func matchClause(d, val string) bool {
	if d == val {
		return true
	}
	n := len(val)
	if n > 0 && val[n-1] == '.' {
		n--
	}
	return d != "" && len(d) > n && d[:n] == val[:n] && d[n] == '.'
}

// FieldFilter is the filter on one field: an optional fixed enumeration of
// the field's legal values and the values currently filtered on.
type FieldFilter struct {
	Options []FieldOption
	Values  []FilterValue
}

// Active reports whether the field constrains rows.
func (f FieldFilter) Active() bool {
	return len(f.Values) > 0
}

// Matches reports whether d satisfies any valid value of the field.
func (f FieldFilter) Matches(d any) bool {
	for _, v := range f.Values {
		if v.Matches(d) {
			return true
		}
	}
	return false
}

// Has reports whether the field already filters on value with kind.
func (f FieldFilter) Has(value any, kind FilterKind) bool {
	return slices.ContainsFunc(f.Values, func(v FilterValue) bool { return v.Same(value, kind) })
}

// FilterState is the filter configuration of a dataset. Fields are
// AND-combined; the values of a field are OR-combined.
//
// A FilterState is treated as immutable. Every intent returns a new value so
// the view cache can detect the change by identity.
type FilterState struct {
	Fields map[string]FieldFilter
}

// NewFilterState creates an empty state with the fixed options of each field.
func NewFilterState(options map[string][]FieldOption) *FilterState {
	s := &FilterState{Fields: make(map[string]FieldFilter, len(options))}
	for field, opts := range options {
		s.Fields[field] = FieldFilter{Options: slices.Clone(opts)}
	}
	return s
}

// Field returns the filter for field.
func (s *FilterState) Field(field string) FieldFilter {
	if s == nil {
		return FieldFilter{}
	}
	return s.Fields[field]
}

// Active reports whether any field constrains rows.
func (s *FilterState) Active() bool {
	if s == nil {
		return false
	}
	for _, f := range s.Fields {
		if f.Active() {
			return true
		}
	}
	return false
}

func (s *FilterState) with(field string, f FieldFilter) *FilterState {
	next := &FilterState{Fields: make(map[string]FieldFilter, len(s.Fields)+1)}
	for k, v := range s.Fields {
		next.Fields[k] = v
	}
	next.Fields[field] = f
	return next
}

// AddValue returns a state with value appended to field's values.
func (s *FilterState) AddValue(field string, value any, kind FilterKind) (*FilterState, error) {
	fv, err := NewFilterValue(value, kind)
	if err != nil {
		return nil, err
	}
	f := s.Field(field)
	f.Values = append(slices.Clone(f.Values), fv)
	return s.with(field, f), nil
}

// RemoveValue returns a state without the values of field that match value
// and kind.
func (s *FilterState) RemoveValue(field string, value any, kind FilterKind) *FilterState {
	f := s.Field(field)
	f.Values = slices.DeleteFunc(slices.Clone(f.Values), func(v FilterValue) bool {
		return v.Same(value, kind)
	})
	return s.with(field, f)
}

// SetValues returns a state whose field filter holds exactly values, each
// matched exactly.
func (s *FilterState) SetValues(field string, values []any) (*FilterState, error) {
	f := FieldFilter{Options: s.Field(field).Options}
	for _, v := range values {
		fv, err := NewFilterValue(v, FilterExact)
		if err != nil {
			return nil, err
		}
		f.Values = append(f.Values, fv)
	}
	return s.with(field, f), nil
}

// Clear returns a state with no values on field.
func (s *FilterState) Clear(field string) *FilterState {
	return s.with(field, FieldFilter{Options: s.Field(field).Options})
}

// ClearAll returns a state with no values on any field. Fixed options are
// kept.
func (s *FilterState) ClearAll() *FilterState {
	next := &FilterState{Fields: make(map[string]FieldFilter, len(s.Fields))}
	for k, f := range s.Fields {
		next.Fields[k] = FieldFilter{Options: f.Options}
	}
	return next
}

// ApplyFilters returns the ids whose records pass every active field of
// state, in input order.
func ApplyFilters(state *FilterState, byID map[string]Record, ids []string) []string {
	type active struct {
		field  string
		filter FieldFilter
	}
	var fields []active
	if state != nil {
		for field, f := range state.Fields {
			if f.Active() {
				fields = append(fields, active{field, f})
			}
		}
	}
	if len(fields) == 0 {
		return slices.Clone(ids)
	}

	out := make([]string, 0, len(ids))
	for _, id := range ids {
		rec := byID[id]
		pass := true
		for _, a := range fields {
			if !a.filter.Matches(rec[a.field]) {
				pass = false
				break
			}
		}
		if pass {
			out = append(out, id)
		}
	}
	return out
}

// ParseSearch interprets free text typed into a column filter. Text of the
// form /pattern/flags is a regular expression; the i, m and s flags are
// honoured and others ignored. Anything else is a contains match.
func ParseSearch(text string) (string, FilterKind) {
	parts := strings.Split(text, "/")
	if strings.HasPrefix(text, "/") && len(parts) > 2 {
		var flags strings.Builder
		for _, f := range parts[2] {
			if strings.ContainsRune("ims", f) && !strings.ContainsRune(flags.String(), f) {
				flags.WriteRune(f)
			}
		}
		if flags.Len() > 0 {
			return "(?" + flags.String() + ")" + parts[1], FilterRegex
		}
		return parts[1], FilterRegex
	}
	return text, FilterContains
}
