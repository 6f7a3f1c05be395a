// Package sqlite persists imported datasets and refresh state in a single
// SQLite database, using the pure Go modernc.org/sqlite driver.
//
// One Store backs three ports:
//
//   - DatasetStore holds rows imported with "gridview import"
//   - RefreshStore holds scheduled reload tasks and their run history
//   - RecordSource loads imported rows back under sqlite://<name>
//
// The schema lives in numbered migrations/NNN_*.up.sql files, applied in
// order on open. The database defaults to ~/.gridview/data/gridview.db and
// runs in WAL mode so readers are not blocked by an import.
package sqlite
