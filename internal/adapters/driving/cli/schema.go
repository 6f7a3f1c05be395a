package cli

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

var (
	schemaName string
	schemaSave bool
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Manage dataset schemas",
	Long: `A schema declares, per field, how it sorts (string, numeric, clause, date)
and filters (exact, contains, regex, numeric, clause, page), and optionally a
fixed list of options. Stored schemas are TOML files that take precedence
over the schema inferred at load time.`,
}

var schemaInferCmd = &cobra.Command{
	Use:   "infer <dataset|location>",
	Short: "Print the schema inferred from a location",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchemaInfer,
}

var schemaShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Print a stored schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchemaShow,
}

var schemaListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored schemas",
	RunE:  runSchemaList,
}

var schemaDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored schema",
	Args:  cobra.ExactArgs(1),
	RunE:  runSchemaDelete,
}

func init() {
	schemaInferCmd.Flags().StringVar(&schemaName, "name", "", "dataset name (default: derived from the location)")
	schemaInferCmd.Flags().BoolVar(&schemaSave, "save", false, "store the inferred schema")
	schemaCmd.AddCommand(schemaInferCmd, schemaShowCmd, schemaListCmd, schemaDeleteCmd)
	rootCmd.AddCommand(schemaCmd)
}

var errNoSchemaStore = errors.New("schema store not configured")

func runSchemaInfer(cmd *cobra.Command, args []string) error {
	if loaderService == nil {
		return errNotConfigured
	}
	name, location := resolveDataset(args[0], schemaName)
	schema, err := loaderService.InferSchema(commandContext(cmd), name, location)
	if err != nil {
		return fmt.Errorf("failed to infer schema: %w", err)
	}

	data, err := toml.Marshal(schema)
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	cmd.Print(string(data))

	if schemaSave {
		if schemaStore == nil {
			return errNoSchemaStore
		}
		if err := schemaStore.Save(commandContext(cmd), schema); err != nil {
			return fmt.Errorf("failed to save schema: %w", err)
		}
		cmd.Printf("\nSaved schema %s\n", schema.Name)
	}
	return nil
}

func runSchemaShow(cmd *cobra.Command, args []string) error {
	if schemaStore == nil {
		return errNoSchemaStore
	}
	schema, err := schemaStore.Get(commandContext(cmd), args[0])
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}
	if schema == nil {
		return fmt.Errorf("no stored schema named %s", args[0])
	}
	data, err := toml.Marshal(schema)
	if err != nil {
		return fmt.Errorf("failed to encode schema: %w", err)
	}
	cmd.Print(string(data))
	return nil
}

func runSchemaList(cmd *cobra.Command, _ []string) error {
	if schemaStore == nil {
		return errNoSchemaStore
	}
	schemas, err := schemaStore.List(commandContext(cmd))
	if err != nil {
		return fmt.Errorf("failed to list schemas: %w", err)
	}
	if len(schemas) == 0 {
		cmd.Println("No stored schemas.")
		return nil
	}
	for _, s := range schemas {
		cmd.Printf("  %-20s row key %-10s %d fields\n", s.Name, s.RowKey, len(s.Fields))
	}
	return nil
}

func runSchemaDelete(cmd *cobra.Command, args []string) error {
	if schemaStore == nil {
		return errNoSchemaStore
	}
	if err := schemaStore.Delete(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to delete schema: %w", err)
	}
	cmd.Printf("Deleted schema %s\n", args[0])
	return nil
}
