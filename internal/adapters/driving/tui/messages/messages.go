// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/gridview/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewDatasets lists the registered datasets.
	ViewDatasets ViewType = iota
	// ViewGrid shows the derived view of one dataset.
	ViewGrid
	// ViewPicker offers the filter values of one field.
	ViewPicker
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewDatasets:
		return "datasets"
	case ViewGrid:
		return "grid"
	case ViewPicker:
		return "picker"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// DatasetsLoaded carries the registered datasets.
type DatasetsLoaded struct {
	Datasets []domain.DatasetInfo
}

// DatasetSelected opens a dataset in the grid.
type DatasetSelected struct {
	Name string
}

// DatasetReloaded signals a reload from the dataset's location finished.
type DatasetReloaded struct {
	Info domain.DatasetInfo
	Err  error
}

// PickerRequested opens the value picker for a field.
type PickerRequested struct {
	Dataset string
	Field   string
}

// FilterChanged signals the filter of a dataset was changed outside the grid.
type FilterChanged struct {
	Dataset string
	Field   string
}
