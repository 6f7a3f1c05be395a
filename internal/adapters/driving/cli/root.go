// Package cli implements the gridview command line with cobra.
package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gridview/internal/core/ports/driven"
	"github.com/custodia-labs/gridview/internal/core/ports/driving"
	"github.com/custodia-labs/gridview/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

var verbose bool

// Services are the core services and stores the commands drive.
type Services struct {
	Datasets  driving.DatasetService
	Loader    driving.Loader
	Scheduler driving.Scheduler
	Schemas   driven.SchemaStore
	Stored    driven.DatasetStore
	Config    driven.ConfigStore
}

var (
	datasetService driving.DatasetService
	loaderService  driving.Loader
	scheduler      driving.Scheduler
	schemaStore    driven.SchemaStore
	datasetStore   driven.DatasetStore
	configStore    driven.ConfigStore
)

var errNotConfigured = errors.New("service not configured")

var rootCmd = &cobra.Command{
	Use:   "gridview",
	Short: "View, sort and filter tabular data",
	Long: `gridview loads records from files, S3, GitHub, Google Sheets or its local
store and presents them as a sortable, filterable grid.

Locations:
  people.csv                    local file (.json, .jsonl, .csv, .tsv, .msgpack, optionally .zst)
  glob:logs/**/*.json           every matching file, concatenated
  s3://bucket/key.csv           S3 object, or every object under a prefix ending in /
  github://owner/repo[/pulls]   repository issues or pull requests
  sheets://<id>/<range>         Google Sheets range, first row as header
  sqlite://name                 dataset imported with "gridview import"

A configured dataset name ([datasets] in config.toml) may be used in place of
a location.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// SetServices wires the services used by every command.
func SetServices(s Services) {
	datasetService = s.Datasets
	loaderService = s.Loader
	scheduler = s.Scheduler
	schemaStore = s.Schemas
	datasetStore = s.Stored
	configStore = s.Config
}

// SetVersion sets the version reported by "gridview version".
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// commandContext returns the command's context, or Background when the
// command was executed without one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
