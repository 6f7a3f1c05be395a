package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gridview/internal/adapters/driving/mcp"
	"github.com/custodia-labs/gridview/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve [dataset|location...]",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can list, load,
sort, filter and read datasets.

The given datasets (or every dataset in the [datasets] table of config.toml)
are loaded before the server starts. Further datasets can be loaded with the
"load" tool.

By default, the server communicates over stdio using JSON-RPC. Use --port to
start an HTTP server instead, for the MCP Inspector or remote access.

Examples:
  # Stdio mode (default)
  gridview mcp serve people.csv

  # HTTP mode
  gridview mcp serve --port 8080

Client configuration:
  {
    "mcpServers": {
      "gridview": {
        "command": "/path/to/gridview",
        "args": ["mcp", "serve"]
      }
    }
  }`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, args []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	if datasetService == nil {
		return errNotConfigured
	}
	ctx := commandContext(cmd)

	ports := &mcp.Ports{
		Datasets: datasetService,
		Loader:   loaderService,
	}
	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	if locations := datasetLocations(args); len(locations) > 0 && loaderService != nil {
		infos, err := loaderService.LoadAll(ctx, locations)
		if err != nil {
			return err
		}
		for _, info := range infos {
			logger.Info("serving %s: %d rows from %s", info.Name, info.Rows, info.Location)
		}
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}
