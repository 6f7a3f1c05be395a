package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gridview/internal/core/ports/driven"
)

var importName string

var importCmd = &cobra.Command{
	Use:   "import <location>",
	Short: "Copy a dataset into the local store",
	Long: `Reads every record at a location and stores it in the local SQLite
database. The copy can then be viewed offline as sqlite://<name>.
Importing under an existing name replaces the stored rows.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List configured and stored datasets",
	RunE:  runDatasetsList,
}

var datasetsDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a stored dataset",
	Args:  cobra.ExactArgs(1),
	RunE:  runDatasetsDelete,
}

func init() {
	importCmd.Flags().StringVar(&importName, "name", "", "dataset name (default: derived from the location)")
	datasetsCmd.AddCommand(datasetsDeleteCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(datasetsCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	if loaderService == nil {
		return errNotConfigured
	}
	name, location := resolveDataset(args[0], importName)
	info, err := loaderService.Import(commandContext(cmd), name, location)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	cmd.Printf("Imported %d rows from %s as %s (import %s)\n", info.Rows, location, info.Name, info.ImportID)
	cmd.Printf("View with: gridview view sqlite://%s\n", info.Name)
	return nil
}

func runDatasetsList(cmd *cobra.Command, _ []string) error {
	if configStore == nil && datasetStore == nil {
		return errNotConfigured
	}

	if configStore != nil {
		configured := configStore.GetStringMap(driven.ConfigDatasets)
		cmd.Println("Configured:")
		if len(configured) == 0 {
			cmd.Println("  (none)")
		}
		for _, name := range sortedKeys(configured) {
			cmd.Printf("  %-20s %s\n", name, configured[name])
		}
		cmd.Println()
	}

	if datasetStore != nil {
		stored, err := datasetStore.List(commandContext(cmd))
		if err != nil {
			return fmt.Errorf("failed to list stored datasets: %w", err)
		}
		cmd.Println("Stored:")
		if len(stored) == 0 {
			cmd.Println("  (none)")
		}
		for _, info := range stored {
			cmd.Printf("  %-20s %6d rows  %s  from %s\n",
				info.Name, info.Rows, info.LoadedAt.Format("2006-01-02 15:04"), info.Location)
		}
	}
	return nil
}

func runDatasetsDelete(cmd *cobra.Command, args []string) error {
	if datasetStore == nil {
		return errors.New("dataset store not configured")
	}
	if err := datasetStore.Delete(commandContext(cmd), args[0]); err != nil {
		return fmt.Errorf("failed to delete %s: %w", args[0], err)
	}
	cmd.Printf("Deleted stored dataset %s\n", args[0])
	return nil
}
