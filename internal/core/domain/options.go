package domain

// BlankLabel labels the option for empty and nil values.
const BlankLabel = "(Blank)"

// OptionVariant selects the records an option list is derived from.
type OptionVariant int

const (
	// OptionsAll derives options from every record in the store.
	OptionsAll OptionVariant = iota
	// OptionsAvailable derives options from the current derived view only.
	OptionsAvailable
)

// String returns "all" or "available".
func (v OptionVariant) String() string {
	if v == OptionsAvailable {
		return "available"
	}
	return "all"
}

// FieldOption is a distinct value of a field and its display label.
type FieldOption struct {
	Value any    `json:"value" toml:"value"`
	Label string `json:"label" toml:"label"`
}

// nanKey stands in for NaN, which never equals itself as a map key.
type nanKey struct{}

// FieldOptions returns one option per distinct value of field across
// records, in first-occurrence order. Nil counts as the empty string, and the
// empty value is labelled BlankLabel.
func FieldOptions(records []Record, field string) []FieldOption {
	seen := make(map[any]struct{})
	options := []FieldOption{}
	for _, rec := range records {
		v := Normalize(rec[field])
		if v == nil {
			v = ""
		}
		key := v
		if v != v {
			key = nanKey{}
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		label := Text(v)
		if v == "" {
			label = BlankLabel
		}
		options = append(options, FieldOption{Value: v, Label: label})
	}
	return options
}
