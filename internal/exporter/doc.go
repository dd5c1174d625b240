// Package exporter writes tables out for download: CSV with an optional
// UTF-8 byte order mark for Excel, and multi-sheet xlsx workbooks.
//
// Missing values are written as empty cells in both formats. Dates are
// written as YYYY-MM-DD in CSV and as date-formatted cells in xlsx.
//
//	var buf bytes.Buffer
//	err := exporter.WriteCSV(&buf, monthly, exporter.Options{BOM: true})
//
// Writer resolves relative file names against an output directory for
// callers that export to disk.
package exporter
