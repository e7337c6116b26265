// Package exporter writes assessment results to CSV and XLSX files in
// the configured output directory. CSV output carries a UTF-8 BOM so
// Excel opens the files with the right encoding.
package exporter
