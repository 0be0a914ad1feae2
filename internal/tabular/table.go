package tabular

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrUnreadableFile indicates an upload that could not be read as a table:
// unsupported extension, corrupt archive, or no header row.
var ErrUnreadableFile = errors.New("unreadable file")

// Table is a raw upload: header labels plus rows keyed by those labels.
// Values are untouched cell strings; cleaning happens downstream.
type Table struct {
	Columns []string
	Rows    []map[string]string
}

// ReadFile loads an upload by extension. CSV and XLSX produce tables
// directly; DOCX carries unstructured text and goes through ExtractText
// instead.
func ReadFile(path string) (Table, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return ReadCSV(path)
	case ".xlsx":
		return ReadXLSX(path)
	default:
		return Table{}, fmt.Errorf("%w: unsupported extension %q (expected .csv or .xlsx)",
			ErrUnreadableFile, filepath.Ext(path))
	}
}

// rowsFromRecords zips positional records against the header, padding short
// rows with empty cells and ignoring cells beyond the header width.
func rowsFromRecords(header []string, records [][]string) []map[string]string {
	rows := make([]map[string]string, 0, len(records))
	for _, rec := range records {
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			} else {
				row[col] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows
}
