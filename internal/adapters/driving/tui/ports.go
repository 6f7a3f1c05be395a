// Package tui provides an interactive terminal user interface for browsing
// datasets. It implements a driving adapter following hexagonal architecture
// principles: every grid gesture becomes a DatasetService intent and the grid
// re-renders the derived view.
package tui

import (
	"github.com/custodia-labs/gridview/internal/core/ports/driving"
)

// Ports aggregates the driving port interfaces required by the TUI.
type Ports struct {
	// Datasets owns view state and derives the rows shown in the grid.
	Datasets driving.DatasetService

	// Loader reloads datasets from their location. Optional.
	Loader driving.Loader
}

// NewPorts creates a new Ports aggregate with the given services.
func NewPorts(datasets driving.DatasetService, loader driving.Loader) *Ports {
	return &Ports{
		Datasets: datasets,
		Loader:   loader,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil {
		return ErrInvalidPorts
	}
	if p.Datasets == nil {
		return ErrMissingDatasetService
	}
	return nil
}
