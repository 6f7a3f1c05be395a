// Package google reads Google Sheets ranges as records.
//
// Locations take the form sheets://<spreadsheet-id>/<range>, for example
// sheets://1AbC/Sheet1!A1:F. The first row of the range names the columns;
// later rows become records. Without a range the first sheet is read.
//
// # Credentials
//
// One of the following is used, in order of preference:
//   - google.credentials_file: a service account or authorised user JSON
//     file, requesting the read-only spreadsheets scope
//   - google.api_key: an API key, enough for publicly shared sheets
//
// Without either, Application Default Credentials apply.
package google
