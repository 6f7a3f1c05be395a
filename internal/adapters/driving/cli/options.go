package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

var (
	optionsName      string
	optionsSorts     []string
	optionsFilters   []string
	optionsAvailable bool
	optionsPicker    bool
	optionsJSON      bool
)

var optionsCmd = &cobra.Command{
	Use:   "options <dataset|location> <field>",
	Short: "List the distinct values of a field",
	Long: `Lists the distinct values of a field in first-occurrence order.

By default every record contributes. With --available only records in the
filtered view do. With --picker the list is what a value picker offers: the
field's fixed options if it declares any, all values while the field itself
is filtered, otherwise the available values, sorted.`,
	Args: cobra.ExactArgs(2),
	RunE: runOptions,
}

func init() {
	addViewFlags(optionsCmd, &optionsSorts, &optionsFilters)
	optionsCmd.Flags().StringVar(&optionsName, "name", "", "dataset name (default: derived from the location)")
	optionsCmd.Flags().BoolVarP(&optionsAvailable, "available", "a", false, "only values present in the filtered view")
	optionsCmd.Flags().BoolVarP(&optionsPicker, "picker", "p", false, "values a picker would offer")
	optionsCmd.Flags().BoolVar(&optionsJSON, "json", false, "output options as JSON")
	optionsCmd.MarkFlagsMutuallyExclusive("available", "picker")
	rootCmd.AddCommand(optionsCmd)
}

func runOptions(cmd *cobra.Command, args []string) error {
	info, err := loadDataset(cmd, args[0], optionsName)
	if err != nil {
		return err
	}
	if err := applyViewFlags(info.Name, optionsSorts, optionsFilters); err != nil {
		return err
	}

	field := args[1]
	var opts []domain.FieldOption
	switch {
	case optionsPicker:
		opts, err = datasetService.PickerOptions(info.Name, field)
	case optionsAvailable:
		opts, err = datasetService.FieldOptions(info.Name, field, domain.OptionsAvailable)
	default:
		opts, err = datasetService.FieldOptions(info.Name, field, domain.OptionsAll)
	}
	if err != nil {
		return err
	}

	if optionsJSON {
		data, err := json.MarshalIndent(opts, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal options: %w", err)
		}
		cmd.Println(string(data))
		return nil
	}

	if len(opts) == 0 {
		cmd.Println("No values.")
		return nil
	}
	for _, opt := range opts {
		cmd.Println(opt.Label)
	}
	return nil
}
