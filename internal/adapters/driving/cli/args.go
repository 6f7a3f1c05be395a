package cli

import (
	"fmt"
	"path"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_-]+`)

// resolveDataset maps a command argument to a dataset name and location.
// A name configured under [datasets] resolves to its location; anything
// else is a location whose name is derived from it unless override is set.
func resolveDataset(arg, override string) (name, location string) {
	if configStore != nil {
		if loc, ok := configStore.GetStringMap(driven.ConfigDatasets)[arg]; ok {
			if override != "" {
				return override, loc
			}
			return arg, loc
		}
	}
	if override != "" {
		return override, arg
	}
	return datasetName(arg), arg
}

// datasetLocations resolves args to dataset locations. Without args every
// dataset configured under [datasets] is returned.
func datasetLocations(args []string) map[string]string {
	locations := make(map[string]string)
	if len(args) == 0 && configStore != nil {
		for name, location := range configStore.GetStringMap(driven.ConfigDatasets) {
			locations[name] = location
		}
	}
	for _, arg := range args {
		name, location := resolveDataset(arg, "")
		locations[name] = location
	}
	return locations
}

// datasetName derives a dataset name from a location: the last path element
// without its extensions (people.csv.zst → people).
func datasetName(location string) string {
	loc := domain.ParseLocation(location)
	base := path.Base(strings.TrimSuffix(strings.ReplaceAll(loc.Path, `\`, "/"), "/"))
	switch loc.Scheme {
	case domain.SchemeSheets:
		base, _, _ = strings.Cut(base, "!")
	case domain.SchemeGitHub:
		if parts := strings.Split(strings.Trim(loc.Path, "/"), "/"); len(parts) == 3 {
			base = parts[1] + "_" + parts[2]
		}
	}
	for i := 0; i < 2; i++ {
		if ext := path.Ext(base); ext != "" && ext != base {
			base = strings.TrimSuffix(base, ext)
		}
	}
	name := strings.Trim(unsafeName.ReplaceAllString(base, "_"), "_")
	if name == "" {
		return loc.Scheme
	}
	return name
}

// filterFlag is a parsed --filter value: field[:kind]=value.
type filterFlag struct {
	field    string
	kind     domain.FilterKind
	explicit bool
	value    string
}

func parseFilterFlag(s string) (filterFlag, error) {
	lhs, value, ok := strings.Cut(s, "=")
	if !ok || lhs == "" {
		return filterFlag{}, fmt.Errorf("%w: filter %q must be field[:kind]=value", domain.ErrInvalidInput, s)
	}
	f := filterFlag{field: lhs, value: value}
	if field, kind, ok := strings.Cut(lhs, ":"); ok {
		k, err := domain.ParseFilterKind(kind)
		if err != nil {
			return filterFlag{}, err
		}
		f.field, f.kind, f.explicit = field, k, true
	}
	return f, nil
}

// resolve picks the filter kind for values without an explicit one: the
// field's declared kind, where free text of the form /re/flags is a regex.
func (f filterFlag) resolve(schema domain.Schema) (any, domain.FilterKind, error) {
	if f.explicit {
		return f.value, f.kind, nil
	}
	spec, ok := schema.Field(f.field)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", domain.ErrUnknownField, f.field)
	}
	value, kind := spec.FilterInput(f.value)
	return value, kind, nil
}

// parseSortFlag parses a --sort value: field[:asc|desc|none].
func parseSortFlag(s string) (string, domain.SortDirection, error) {
	field, dir, _ := strings.Cut(s, ":")
	if field == "" {
		return "", domain.SortNone, fmt.Errorf("%w: sort %q must be field[:asc|desc]", domain.ErrInvalidInput, s)
	}
	d, err := domain.ParseSortDirection(dir)
	if err != nil {
		return "", domain.SortNone, err
	}
	return field, d, nil
}

// applyViewFlags replays --sort and --filter flags as intents.
func applyViewFlags(name string, sorts, filters []string) error {
	schema, err := datasetService.Schema(name)
	if err != nil {
		return err
	}
	for _, s := range sorts {
		field, dir, err := parseSortFlag(s)
		if err != nil {
			return err
		}
		if err := datasetService.SetSort(name, field, dir); err != nil {
			return fmt.Errorf("sort %s: %w", field, err)
		}
	}
	for _, s := range filters {
		f, err := parseFilterFlag(s)
		if err != nil {
			return err
		}
		value, kind, err := f.resolve(schema)
		if err != nil {
			return err
		}
		if err := datasetService.AddFilterValue(name, f.field, value, kind); err != nil {
			return fmt.Errorf("filter %s: %w", f.field, err)
		}
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
