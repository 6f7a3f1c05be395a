package domain

import (
	"fmt"
	"slices"
	"sort"
	"time"
)

// DefaultRowKey is the row key used when a schema does not name one.
const DefaultRowKey = "id"

// dateLayouts are tried in order when normalizing date fields.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// FieldSpec declares how a field is sorted and filtered.
type FieldSpec struct {
	// Name is the record key.
	Name string `toml:"name" json:"name"`

	// Label is the column heading; defaults to Name.
	Label string `toml:"label,omitempty" json:"label,omitempty"`

	// Sort is the comparator used when the field is a sort key.
	Sort SortType `toml:"sort" json:"sort"`

	// Sortable enables header clicks on the field.
	Sortable bool `toml:"sortable" json:"sortable"`

	// Direction is the initial direction remembered for the field.
	Direction SortDirection `toml:"direction,omitempty" json:"direction,omitempty"`

	// Filter is the kind applied to free text typed for this field.
	Filter FilterKind `toml:"filter" json:"filter"`

	// Filterable enables filters on the field.
	Filterable bool `toml:"filterable" json:"filterable"`

	// Options is a fixed enumeration of legal values, if any.
	Options []FieldOption `toml:"options,omitempty" json:"options,omitempty"`
}

// Title returns the label, or the name when no label is set.
func (f FieldSpec) Title() string {
	if f.Label != "" {
		return f.Label
	}
	return f.Name
}

// Schema is the field registry of a dataset.
type Schema struct {
	Name   string      `toml:"name" json:"name"`
	RowKey string      `toml:"row_key" json:"row_key"`
	Fields []FieldSpec `toml:"fields" json:"fields"`
}

// Validate checks that the schema names a dataset and row key and that field
// names are unique.
func (s Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: schema name is required", ErrInvalidInput)
	}
	if s.RowKey == "" {
		return fmt.Errorf("%w: schema %s: row key is required", ErrInvalidInput, s.Name)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("%w: schema %s: field name is required", ErrInvalidInput, s.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return fmt.Errorf("%w: schema %s: duplicate field %s", ErrInvalidInput, s.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
	}
	return nil
}

// Field returns the spec of the named field.
func (s Schema) Field(name string) (FieldSpec, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldSpec{}, false
}

// Columns returns the field names in declaration order.
func (s Schema) Columns() []string {
	cols := make([]string, len(s.Fields))
	for i, f := range s.Fields {
		cols[i] = f.Name
	}
	return cols
}

// SortRegistry returns the sort spec of every sortable field.
func (s Schema) SortRegistry() map[string]SortSpec {
	sorts := make(map[string]SortSpec)
	for _, f := range s.Fields {
		if !f.Sortable {
			continue
		}
		dir := f.Direction
		if dir == "" {
			dir = SortNone
		}
		sorts[f.Name] = SortSpec{Type: f.Sort, Direction: dir}
	}
	return sorts
}

// FilterOptions returns the fixed options of every filterable field; fields
// without a fixed enumeration map to nil.
func (s Schema) FilterOptions() map[string][]FieldOption {
	opts := make(map[string][]FieldOption)
	for _, f := range s.Fields {
		if f.Filterable {
			opts[f.Name] = f.Options
		}
	}
	return opts
}

// Normalize converts the values of rec to engine scalars. Date fields
// holding text are parsed and stored as unix milliseconds; unparsable dates
// are left as text.
func (s Schema) Normalize(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = Normalize(v)
	}
	for _, f := range s.Fields {
		if f.Sort != SortDate {
			continue
		}
		switch v := rec[f.Name].(type) {
		case time.Time:
			out[f.Name] = float64(v.UnixMilli())
		case string:
			if ms, ok := parseDate(v); ok {
				out[f.Name] = ms
			}
		}
	}
	return out
}

func parseDate(s string) (float64, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return float64(t.UnixMilli()), true
		}
	}
	return 0, false
}

// InferSchema derives a schema from records. Columns fixes the field order;
// when empty, the sorted union of record keys is used with the row key
// first. Fields whose values are all numbers sort and filter numerically;
// everything else sorts as text and filters by substring.
func InferSchema(name, rowKey string, columns []string, records []Record) Schema {
	if rowKey == "" {
		rowKey = DefaultRowKey
	}
	if len(columns) == 0 {
		keys := make(map[string]struct{})
		for _, rec := range records {
			for k := range rec {
				keys[k] = struct{}{}
			}
		}
		for k := range keys {
			if k != rowKey {
				columns = append(columns, k)
			}
		}
		sort.Strings(columns)
		if _, ok := keys[rowKey]; ok {
			columns = append([]string{rowKey}, columns...)
		}
	}

	schema := Schema{Name: name, RowKey: rowKey}
	for _, col := range columns {
		spec := FieldSpec{
			Name:       col,
			Sort:       SortString,
			Sortable:   true,
			Direction:  SortNone,
			Filter:     FilterContains,
			Filterable: true,
		}
		if numericColumn(records, col) {
			spec.Sort = SortNumeric
			spec.Filter = FilterNumeric
		}
		schema.Fields = append(schema.Fields, spec)
	}
	return schema
}

func numericColumn(records []Record, col string) bool {
	seen := false
	for _, rec := range records {
		v := rec[col]
		if v == nil {
			continue
		}
		if _, ok := AsNumber(v); !ok {
			return false
		}
		seen = true
	}
	return seen
}

// WithField returns a copy of the schema with spec added or replaced.
func (s Schema) WithField(spec FieldSpec) Schema {
	out := s
	out.Fields = slices.Clone(s.Fields)
	for i, f := range out.Fields {
		if f.Name == spec.Name {
			out.Fields[i] = spec
			return out
		}
	}
	out.Fields = append(out.Fields, spec)
	return out
}

// Format renders a normalized value for display. Date fields stored as unix
// milliseconds print as a date, or as RFC 3339 when they carry a time of day.
func (f FieldSpec) Format(v any) string {
	if f.Sort == SortDate {
		if ms, ok := v.(float64); ok {
			t := time.UnixMilli(int64(ms)).UTC()
			if t.Hour() == 0 && t.Minute() == 0 && t.Second() == 0 && t.Nanosecond() == 0 {
				return t.Format("2006-01-02")
			}
			return t.Format(time.RFC3339)
		}
	}
	return Text(v)
}

// FilterInput interprets text typed as a filter on the field. Contains and
// regex fields accept /pattern/flags for a regular expression and otherwise
// match text anywhere; other fields use their declared kind.
func (f FieldSpec) FilterInput(text string) (any, FilterKind) {
	if f.Filter == FilterContains || f.Filter == FilterRegex {
		return ParseSearch(text)
	}
	return text, f.Filter
}
