// Package domain defines the core types of the gridview engine.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Record and EntityStore: canonical rows keyed by their row key
//   - Schema and FieldSpec: the field registry with sort and filter kinds
//   - SortState and FilterState: the per-dataset view intents
//   - IDSet: selection and expansion membership
//   - RefreshTask: a scheduled reload of a dataset
//
// The pure functions here (SortClick, FilterState.AddValue, FieldOptions,
// the comparators) hold the view semantics. Services only sequence them.
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
