package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/gridview/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for gridview resources.
	uriScheme = "gridview://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "datasets",
		Name:        "datasets",
		Description: "List of all loaded datasets",
		MIMEType:    "application/json",
	}, s.handleDatasetsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "datasets/{name}/schema",
		Name:        "dataset-schema",
		Description: "Field registry of a dataset: sort and filter kinds per field",
		MIMEType:    "application/json",
	}, s.handleSchemaResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "datasets/{name}/view",
		Name:        "dataset-view",
		Description: "Rows of a dataset's current view, in display order",
		MIMEType:    "application/json",
	}, s.handleViewResource)
}

// handleDatasetsResource returns the registered datasets.
func (s *Server) handleDatasetsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Datasets.Datasets())
}

// handleSchemaResource returns the schema of a dataset.
func (s *Server) handleSchemaResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractDatasetName(req.Params.URI, "/schema")
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	schema, err := s.ports.Datasets.Schema(name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting schema: %w", err)
	}
	return jsonResource(req.Params.URI, schema)
}

// handleViewResource returns the derived view of a dataset.
func (s *Server) handleViewResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	name := extractDatasetName(req.Params.URI, "/view")
	if name == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	snap, err := s.ports.Datasets.Snapshot(name)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}
	if err != nil {
		return nil, fmt.Errorf("getting view: %w", err)
	}

	rows := make([]domain.Record, len(snap.Records))
	for i, rec := range snap.Records {
		rows[i] = project(snap.Schema, rec, nil)
	}
	return jsonResource(req.Params.URI, rows)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractDatasetName extracts the name from a URI like
// gridview://datasets/{name}/view.
func extractDatasetName(uri, suffix string) string {
	const prefix = uriScheme + "datasets/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
