// Package file keeps gridview's user-editable settings on disk as TOML.
//
// ConfigStore reads ~/.gridview/config.toml, whose tables hold connector
// credentials, refresh schedules, the [datasets] name-to-location map and
// view defaults. SchemaStore keeps one <dataset>.toml per schema under
// ~/.gridview/schemas so field types can be adjusted by hand.
package file
