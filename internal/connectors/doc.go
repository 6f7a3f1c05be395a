// Package connectors groups the record sources that read rows from outside
// the process. Each subpackage implements driven.RecordSource for one
// location scheme:
//
//   - filesystem: local files (file paths and glob: patterns)
//   - s3: objects in S3-compatible storage
//   - github: repository issues and pull requests
//   - google: Google Sheets ranges
//
// Sources are registered with the loader by scheme at startup.
package connectors
