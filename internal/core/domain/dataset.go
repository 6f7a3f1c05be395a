package domain

import (
	"strings"
	"time"
)

// RecordSet is the raw output of a record source: records plus the column
// order the source declared, if any.
type RecordSet struct {
	Columns []string
	Records []Record
}

// DatasetInfo summarises a registered or stored dataset.
type DatasetInfo struct {
	// Name identifies the dataset.
	Name string `json:"name"`

	// Location is the source reference the dataset was loaded from.
	Location string `json:"location,omitempty"`

	// Rows is the number of records.
	Rows int `json:"rows"`

	// ImportID identifies the import batch for stored datasets.
	ImportID string `json:"import_id,omitempty"`

	// LoadedAt is when the records were last loaded.
	LoadedAt time.Time `json:"loaded_at"`
}

// ViewSnapshot is the derived view of a dataset together with the state it
// was derived from, all read from one snapshot.
type ViewSnapshot struct {
	Info      DatasetInfo
	Schema    Schema
	Records   []Record
	Sort      *SortState
	Filters   *FilterState
	Selection []string
	Expansion []string
}

// Location schemes understood by the loader.
const (
	SchemeFile   = "file"
	SchemeGlob   = "glob"
	SchemeSQLite = "sqlite"
	SchemeS3     = "s3"
	SchemeGitHub = "github"
	SchemeSheets = "sheets"
	SchemeMemory = "memory"
)

// Location is a parsed source reference such as "s3://bucket/key.csv".
type Location struct {
	Scheme string
	Path   string
}

// ParseLocation splits a source reference into scheme and path. References
// without a scheme are files; "glob:" prefixes a file pattern.
func ParseLocation(ref string) Location {
	if scheme, rest, ok := strings.Cut(ref, "://"); ok && scheme != "" && !strings.ContainsAny(scheme, `/\`) {
		return Location{Scheme: strings.ToLower(scheme), Path: rest}
	}
	if rest, ok := strings.CutPrefix(ref, SchemeGlob+":"); ok {
		return Location{Scheme: SchemeGlob, Path: rest}
	}
	return Location{Scheme: SchemeFile, Path: ref}
}

// String reassembles the reference.
func (l Location) String() string {
	switch l.Scheme {
	case SchemeFile, "":
		return l.Path
	case SchemeGlob:
		return SchemeGlob + ":" + l.Path
	}
	return l.Scheme + "://" + l.Path
}

// Watchable reports whether changes to the location can be observed on the
// local filesystem.
func (l Location) Watchable() bool {
	return l.Scheme == SchemeFile
}

// CacheStats counts view cache activity. A miss is a lookup that had to
// recompute; a hit returned a memoized result.
type CacheStats struct {
	ViewComputes   int64 `json:"view_computes"`
	OptionComputes int64 `json:"option_computes"`
	Hits           int64 `json:"hits"`
	Misses         int64 `json:"misses"`
}
