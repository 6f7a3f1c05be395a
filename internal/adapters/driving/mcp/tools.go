package mcp

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

// defaultViewLimit bounds the rows returned by the view tool.
const defaultViewLimit = 50

// DatasetsInput is the input schema for the datasets tool.
type DatasetsInput struct{}

// DatasetsOutput lists the registered datasets.
type DatasetsOutput struct {
	Datasets []domain.DatasetInfo `json:"datasets"`
}

// LoadInput is the input schema for the load tool.
type LoadInput struct {
	Name     string `json:"name" jsonschema:"the dataset name"`
	Location string `json:"location" jsonschema:"where to read records from, such as people.csv or s3://bucket/key.json"`
}

// ViewInput is the input schema for the view tool.
type ViewInput struct {
	Dataset string   `json:"dataset" jsonschema:"the dataset name"`
	Fields  []string `json:"fields,omitempty" jsonschema:"fields to include in each row (default all)"`
	Offset  int      `json:"offset,omitempty" jsonschema:"number of rows to skip"`
	Limit   int      `json:"limit,omitempty" jsonschema:"maximum number of rows to return (default 50)"`
}

// ViewOutput is a page of the derived view.
type ViewOutput struct {
	Rows      []domain.Record `json:"rows"`
	Matched   int             `json:"matched"`
	Total     int             `json:"total"`
	SortedBy  []string        `json:"sorted_by"`
	Filtered  []string        `json:"filtered"`
	Selection []string        `json:"selection"`
}

// SortInput is the input schema for the sort tool.
type SortInput struct {
	Dataset   string `json:"dataset" jsonschema:"the dataset name"`
	Field     string `json:"field" jsonschema:"the field to sort on"`
	Direction string `json:"direction,omitempty" jsonschema:"asc or desc or none; when omitted the field is clicked like a column header"`
	Shift     bool   `json:"shift,omitempty" jsonschema:"add the field to a multi-column sort instead of replacing it"`
	Remove    bool   `json:"remove,omitempty" jsonschema:"remove the field from the sort"`
}

// SortOutput reports the sort after the change.
type SortOutput struct {
	SortedBy   []string          `json:"sorted_by"`
	Directions map[string]string `json:"directions"`
}

// FilterInput is the input schema for the filter tool.
type FilterInput struct {
	Dataset string `json:"dataset" jsonschema:"the dataset name"`
	Field   string `json:"field,omitempty" jsonschema:"the field to filter; omit with clear to clear every filter"`
	Value   string `json:"value,omitempty" jsonschema:"the value to match; text fields accept /regex/flags"`
	Kind    string `json:"kind,omitempty" jsonschema:"exact, contains, regex, numeric, clause or page (default from the schema)"`
	Remove  bool   `json:"remove,omitempty" jsonschema:"remove the value instead of adding it"`
	Clear   bool   `json:"clear,omitempty" jsonschema:"clear the field, or every field when no field is given"`
}

// FilterOutput reports the filter after the change.
type FilterOutput struct {
	Filters map[string][]string `json:"filters"`
	Matched int                 `json:"matched"`
}

// OptionsInput is the input schema for the options tool.
type OptionsInput struct {
	Dataset string `json:"dataset" jsonschema:"the dataset name"`
	Field   string `json:"field" jsonschema:"the field to list values of"`
	Variant string `json:"variant,omitempty" jsonschema:"all, available or picker (default picker)"`
}

// OptionsOutput lists the distinct values of a field.
type OptionsOutput struct {
	Options []domain.FieldOption `json:"options"`
}

// SelectInput is the input schema for the select tool.
type SelectInput struct {
	Dataset string   `json:"dataset" jsonschema:"the dataset name"`
	Mode    string   `json:"mode" jsonschema:"set, toggle, click, all or clear"`
	IDs     []string `json:"ids,omitempty" jsonschema:"row ids for set and toggle, or the one clicked row"`
	Shift   bool     `json:"shift,omitempty" jsonschema:"for click, extend the selection from the last selected row"`
	Ctrl    bool     `json:"ctrl,omitempty" jsonschema:"for click, toggle the clicked row"`
}

// SelectOutput reports the selection after the change.
type SelectOutput struct {
	Selection []string `json:"selection"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "datasets",
		Description: "List the loaded datasets with their row counts and locations",
	}, s.handleDatasets)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "load",
		Description: "Load a dataset from a file, glob, sqlite, s3, github or sheets location",
	}, s.handleLoad)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "view",
		Description: "Read rows of a dataset's current view (after its filters and sort)",
	}, s.handleView)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sort",
		Description: "Change how a dataset's view is sorted",
	}, s.handleSort)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "filter",
		Description: "Add, remove or clear filter values on a dataset",
	}, s.handleFilter)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "options",
		Description: "List the distinct values of a field",
	}, s.handleOptions)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "select",
		Description: "Change which rows of a dataset are selected",
	}, s.handleSelect)
}

func (s *Server) handleDatasets(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ DatasetsInput,
) (*mcp.CallToolResult, DatasetsOutput, error) {
	return nil, DatasetsOutput{Datasets: s.ports.Datasets.Datasets()}, nil
}

func (s *Server) handleLoad(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input LoadInput,
) (*mcp.CallToolResult, DatasetsOutput, error) {
	if s.ports.Loader == nil {
		return nil, DatasetsOutput{}, ErrNoLoader
	}
	if input.Name == "" || input.Location == "" {
		return nil, DatasetsOutput{}, fmt.Errorf("%w: name and location are required", domain.ErrInvalidInput)
	}
	info, err := s.ports.Loader.Load(ctx, input.Name, input.Location)
	if err != nil {
		return nil, DatasetsOutput{}, err
	}
	return nil, DatasetsOutput{Datasets: []domain.DatasetInfo{info}}, nil
}

func (s *Server) handleView(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ViewInput,
) (*mcp.CallToolResult, ViewOutput, error) {
	snap, err := s.ports.Datasets.Snapshot(input.Dataset)
	if err != nil {
		return nil, ViewOutput{}, err
	}
	for _, f := range input.Fields {
		if _, ok := snap.Schema.Field(f); !ok {
			return nil, ViewOutput{}, fmt.Errorf("%w: %s", domain.ErrUnknownField, f)
		}
	}

	records := snap.Records
	limit := input.Limit
	if limit <= 0 {
		limit = defaultViewLimit
	}
	offset := min(max(input.Offset, 0), len(records))
	end := min(offset+limit, len(records))

	out := ViewOutput{
		Rows:      make([]domain.Record, 0, end-offset),
		Matched:   len(records),
		Total:     snap.Info.Rows,
		SortedBy:  sortSummary(snap.Sort),
		Filtered:  filteredFields(snap.Filters),
		Selection: snap.Selection,
	}
	for _, rec := range records[offset:end] {
		out.Rows = append(out.Rows, project(snap.Schema, rec, input.Fields))
	}
	return nil, out, nil
}

// project keeps the requested fields of rec and formats dates for display.
func project(schema domain.Schema, rec domain.Record, fields []string) domain.Record {
	if len(fields) == 0 {
		fields = schema.Columns()
	}
	row := make(domain.Record, len(fields))
	for _, name := range fields {
		value := rec[name]
		if spec, ok := schema.Field(name); ok && spec.Sort == domain.SortDate && value != nil {
			value = spec.Format(value)
		}
		row[name] = value
	}
	return row
}

// filteredFields lists the fields with an active filter, sorted.
func filteredFields(state *domain.FilterState) []string {
	out := []string{}
	for field, f := range state.Fields {
		if f.Active() {
			out = append(out, field)
		}
	}
	slices.Sort(out)
	return out
}

func sortSummary(state *domain.SortState) []string {
	out := make([]string, 0, len(state.By))
	for _, field := range state.By {
		out = append(out, field+" "+strings.ToLower(string(state.Direction(field))))
	}
	return out
}

func (s *Server) handleSort(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SortInput,
) (*mcp.CallToolResult, SortOutput, error) {
	svc := s.ports.Datasets

	var err error
	if input.Direction != "" {
		var dir domain.SortDirection
		dir, err = domain.ParseSortDirection(input.Direction)
		if err == nil {
			err = svc.SetSort(input.Dataset, input.Field, dir)
		}
	} else {
		err = svc.SortClick(input.Dataset, input.Field, domain.Modifiers{
			Shift:      input.Shift,
			CtrlOrMeta: input.Remove,
		})
	}
	if err != nil {
		return nil, SortOutput{}, err
	}

	state, err := svc.SortState(input.Dataset)
	if err != nil {
		return nil, SortOutput{}, err
	}
	out := SortOutput{
		SortedBy:   sortSummary(state),
		Directions: make(map[string]string, len(state.By)),
	}
	for _, field := range state.By {
		out.Directions[field] = strings.ToLower(string(state.Direction(field)))
	}
	return nil, out, nil
}

func (s *Server) handleFilter(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input FilterInput,
) (*mcp.CallToolResult, FilterOutput, error) {
	svc := s.ports.Datasets
	name := input.Dataset

	var err error
	switch {
	case input.Clear && input.Field == "":
		err = svc.ClearAllFilters(name)
	case input.Clear:
		err = svc.ClearFilter(name, input.Field)
	case input.Field == "":
		err = fmt.Errorf("%w: field is required", domain.ErrInvalidInput)
	default:
		var value any
		var kind domain.FilterKind
		value, kind, err = s.filterValue(name, input)
		if err != nil {
			break
		}
		if input.Remove {
			err = svc.RemoveFilterValue(name, input.Field, value, kind)
		} else {
			err = svc.AddFilterValue(name, input.Field, value, kind)
		}
	}
	if err != nil {
		return nil, FilterOutput{}, err
	}

	state, err := svc.FilterState(name)
	if err != nil {
		return nil, FilterOutput{}, err
	}
	ids, err := svc.View(name)
	if err != nil {
		return nil, FilterOutput{}, err
	}
	out := FilterOutput{Filters: make(map[string][]string), Matched: len(ids)}
	for field, f := range state.Fields {
		for _, v := range f.Values {
			out.Filters[field] = append(out.Filters[field], v.Kind.String()+":"+domain.Text(v.Value))
		}
	}
	return nil, out, nil
}

// filterValue resolves the value and kind of a filter request. Without an
// explicit kind the field's own kind applies.
func (s *Server) filterValue(name string, input FilterInput) (any, domain.FilterKind, error) {
	if input.Kind != "" {
		kind, err := domain.ParseFilterKind(input.Kind)
		return input.Value, kind, err
	}
	schema, err := s.ports.Datasets.Schema(name)
	if err != nil {
		return nil, 0, err
	}
	spec, ok := schema.Field(input.Field)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %s", domain.ErrUnknownField, input.Field)
	}
	value, kind := spec.FilterInput(input.Value)
	return value, kind, nil
}

func (s *Server) handleOptions(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input OptionsInput,
) (*mcp.CallToolResult, OptionsOutput, error) {
	svc := s.ports.Datasets

	var options []domain.FieldOption
	var err error
	switch input.Variant {
	case "", "picker":
		options, err = svc.PickerOptions(input.Dataset, input.Field)
	case "all":
		options, err = svc.FieldOptions(input.Dataset, input.Field, domain.OptionsAll)
	case "available":
		options, err = svc.FieldOptions(input.Dataset, input.Field, domain.OptionsAvailable)
	default:
		err = fmt.Errorf("%w: unknown variant %q", domain.ErrInvalidInput, input.Variant)
	}
	if err != nil {
		return nil, OptionsOutput{}, err
	}
	return nil, OptionsOutput{Options: options}, nil
}

func (s *Server) handleSelect(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SelectInput,
) (*mcp.CallToolResult, SelectOutput, error) {
	svc := s.ports.Datasets
	name := input.Dataset

	var err error
	switch input.Mode {
	case "set":
		err = svc.SetSelection(name, input.IDs)
	case "toggle":
		err = svc.ToggleSelection(name, input.IDs)
	case "click":
		if len(input.IDs) != 1 {
			err = fmt.Errorf("%w: click takes exactly one id", domain.ErrInvalidInput)
			break
		}
		err = svc.SelectClick(name, input.IDs[0], domain.Modifiers{Shift: input.Shift, CtrlOrMeta: input.Ctrl})
	case "all":
		err = svc.SelectAll(name)
	case "clear":
		err = svc.ClearSelection(name)
	default:
		err = fmt.Errorf("%w: unknown mode %q", domain.ErrInvalidInput, input.Mode)
	}
	if err != nil {
		return nil, SelectOutput{}, err
	}

	selection, err := svc.Selection(name)
	if err != nil {
		return nil, SelectOutput{}, err
	}
	return nil, SelectOutput{Selection: selection}, nil
}
