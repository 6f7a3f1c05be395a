package cli

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gridview/internal/core/domain"
	"github.com/custodia-labs/gridview/internal/core/ports/driven"
)

var (
	viewName    string
	viewSorts   []string
	viewFilters []string
	viewColumns []string
	viewSelect  []string
	viewLimit   int
	viewJSON    bool
)

var viewCmd = &cobra.Command{
	Use:   "view <dataset|location>",
	Short: "Print the sorted, filtered view of a dataset",
	Long: `Loads a dataset and prints its derived view.

Sorts apply in the order given; the first is the primary key. Filters on
different fields must all match; several values on one field match if any
does. A filter without a kind uses the field's declared kind, and text of
the form /pattern/flags is a regular expression.

Examples:
  gridview view issues.csv --sort owner --sort opened:desc
  gridview view people --filter name=ann --filter age:numeric=42
  gridview view github://golang/go --filter 'title=/^cmd\//' --limit 20`,
	Args: cobra.ExactArgs(1),
	RunE: runView,
}

func init() {
	addViewFlags(viewCmd, &viewSorts, &viewFilters)
	viewCmd.Flags().StringVar(&viewName, "name", "", "dataset name (default: derived from the location)")
	viewCmd.Flags().StringSliceVarP(&viewColumns, "columns", "c", nil, "columns to print (default: all)")
	viewCmd.Flags().StringArrayVar(&viewSelect, "select", nil, "mark a row id as selected")
	viewCmd.Flags().IntVarP(&viewLimit, "limit", "n", 0, "maximum number of rows (0 = all, default: view.limit from config)")
	viewCmd.Flags().BoolVar(&viewJSON, "json", false, "output rows as JSON")
	rootCmd.AddCommand(viewCmd)
}

// addViewFlags registers the --sort and --filter flags shared by commands
// that derive a view.
func addViewFlags(cmd *cobra.Command, sorts, filters *[]string) {
	cmd.Flags().StringArrayVarP(sorts, "sort", "s", nil, "sort by field[:asc|desc] (repeatable)")
	cmd.Flags().StringArrayVarP(filters, "filter", "f", nil, "filter field[:kind]=value (repeatable)")
}

// loadDataset resolves arg and loads it through the loader.
func loadDataset(cmd *cobra.Command, arg, override string) (domain.DatasetInfo, error) {
	if loaderService == nil || datasetService == nil {
		return domain.DatasetInfo{}, errNotConfigured
	}
	name, location := resolveDataset(arg, override)
	info, err := loaderService.Load(commandContext(cmd), name, location)
	if err != nil {
		return domain.DatasetInfo{}, fmt.Errorf("failed to load %s: %w", location, err)
	}
	return info, nil
}

func runView(cmd *cobra.Command, args []string) error {
	info, err := loadDataset(cmd, args[0], viewName)
	if err != nil {
		return err
	}
	name := info.Name

	if err := applyViewFlags(name, viewSorts, viewFilters); err != nil {
		return err
	}
	if len(viewSelect) > 0 {
		if err := datasetService.SetSelection(name, viewSelect); err != nil {
			return err
		}
	}

	schema, err := datasetService.Schema(name)
	if err != nil {
		return err
	}
	fields, err := pickFields(schema, viewColumns)
	if err != nil {
		return err
	}

	records, err := datasetService.Records(name)
	if err != nil {
		return err
	}
	total := len(records)
	limit := viewLimit
	if !cmd.Flags().Changed("limit") && configStore != nil {
		limit = configStore.GetInt(driven.ConfigViewLimit)
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}

	if viewJSON {
		return outputRecordsJSON(cmd, fields, records)
	}

	selection, err := datasetService.Selection(name)
	if err != nil {
		return err
	}
	tw := &tableWriter{out: cmd.OutOrStdout(), width: terminalWidth(), fields: fields}
	if len(selection) > 0 {
		tw.rowKey = schema.RowKey
		tw.marks = func(id string) string {
			if slices.Contains(selection, id) {
				return "* "
			}
			return "  "
		}
	}
	if err := tw.write(records); err != nil {
		return err
	}

	cmd.Println()
	cmd.Printf("%d of %d rows%s\n", len(records), info.Rows, viewSummary(name, total))
	return nil
}

// viewSummary describes the active sort and filter, if any.
func viewSummary(name string, matched int) string {
	var parts []string
	if sort, err := datasetService.SortState(name); err == nil && len(sort.By) > 0 {
		keys := make([]string, len(sort.By))
		for i, f := range sort.By {
			keys[i] = f + " " + strings.ToLower(string(sort.Direction(f)))
		}
		parts = append(parts, "sorted by "+strings.Join(keys, ", "))
	}
	if filters, err := datasetService.FilterState(name); err == nil && filters.Active() {
		parts = append(parts, fmt.Sprintf("%d match", matched))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, "; ") + ")"
}

// pickFields returns the specs of columns, or every field when empty.
func pickFields(schema domain.Schema, columns []string) ([]domain.FieldSpec, error) {
	if len(columns) == 0 {
		return schema.Fields, nil
	}
	fields := make([]domain.FieldSpec, 0, len(columns))
	for _, col := range columns {
		spec, ok := schema.Field(col)
		if !ok {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownField, col)
		}
		fields = append(fields, spec)
	}
	return fields, nil
}

func outputRecordsJSON(cmd *cobra.Command, fields []domain.FieldSpec, records []domain.Record) error {
	rows := make([]map[string]any, len(records))
	for i, rec := range records {
		row := make(map[string]any, len(fields))
		for _, f := range fields {
			v := rec[f.Name]
			if f.Sort == domain.SortDate && v != nil {
				v = f.Format(v)
			}
			row[f.Name] = v
		}
		rows[i] = row
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rows: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
