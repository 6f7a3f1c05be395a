// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - RecordSource: Reads records from a location scheme (file, s3, ...)
//
// # Optional Interfaces
//
// These can be nil - the application degrades gracefully:
//
//   - SchemaStore: Stored schemas. Without it, schemas are always inferred.
//   - DatasetStore: Local imports. Without it, sqlite:// locations fail.
//   - RefreshStore: Reload history. Without it, scheduled reloads are not persisted.
//   - ChangeNotifier: File change events. Without it, Watch is unavailable.
//   - ConfigStore: Application configuration.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter package
package driven
