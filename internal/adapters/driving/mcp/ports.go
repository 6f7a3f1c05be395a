package mcp

import (
	"github.com/custodia-labs/gridview/internal/core/ports/driving"
)

// Ports are the services the MCP handlers call into.
type Ports struct {
	Datasets driving.DatasetService

	// Loader backs the "load" tool. Without it the tool returns ErrNoLoader.
	Loader driving.Loader
}

// Validate reports ErrMissingDatasetService when Datasets is unset.
func (p *Ports) Validate() error {
	if p == nil || p.Datasets == nil {
		return ErrMissingDatasetService
	}
	return nil
}
