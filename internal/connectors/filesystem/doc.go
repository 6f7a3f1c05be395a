// Package filesystem reads records from local files.
//
// Supported formats are chosen by extension:
//
//   - .json: an array of objects
//   - .jsonl, .ndjson: one object per line
//   - .csv, .tsv: a header row followed by data rows
//   - .msgpack, .mpk: a MessagePack array of maps
//
// Any of these may be zstd-compressed with a trailing .zst extension.
// GlobSource concatenates every file matching a doublestar pattern.
package filesystem
