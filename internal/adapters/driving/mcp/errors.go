// Package mcp provides an MCP (Model Context Protocol) server adapter for
// gridview. It lets AI assistants list datasets, read their derived view and
// drive sorting, filtering and selection through the same intents as the TUI.
package mcp

import "errors"

// ErrMissingDatasetService is returned when the dataset service is not provided.
var ErrMissingDatasetService = errors.New("mcp: dataset service is required")

// ErrNoLoader is returned by the load tool when no loader is configured.
var ErrNoLoader = errors.New("mcp: loading is not available")
