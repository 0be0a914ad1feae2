package tabular

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// ReadCSV loads a CSV upload. Well-formed files go through encoding/csv;
// files with ragged rows or unquoted commas (common in SME exports) fall
// back to the repair loader.
func ReadCSV(path string) (Table, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Table{}, fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	f := csv.NewReader(strings.NewReader(string(b)))
	records, err := f.ReadAll()
	if err == nil && len(records) > 0 {
		return Table{
			Columns: trimAll(records[0]),
			Rows:    rowsFromRecords(trimAll(records[0]), records[1:]),
		}, nil
	}
	return repairCSV(string(b))
}

// repairCSV handles exports whose rows do not agree on field count. Bracketed
// segments like option lists ("[A, B, C]") keep their commas; short rows are
// padded; rows with excess fields have the overflow merged into the Notes
// column so no data is silently dropped.
func repairCSV(content string) (Table, error) {
	var lines []string
	for _, line := range strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	if len(lines) == 0 {
		return Table{}, fmt.Errorf("%w: empty csv", ErrUnreadableFile)
	}
	header := trimAll(splitOutsideBrackets(lines[0]))
	ncol := len(header)
	notesIdx := ncol - 1
	for i, col := range header {
		if strings.EqualFold(strings.TrimSpace(col), "notes") {
			notesIdx = i
			break
		}
	}

	records := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		fields := splitOutsideBrackets(line)
		switch {
		case len(fields) < ncol:
			for len(fields) < ncol {
				fields = append(fields, "")
			}
		case len(fields) > ncol:
			fields = mergeOverflow(fields, ncol, notesIdx)
		}
		records = append(records, trimAll(fields))
	}
	return Table{Columns: header, Rows: rowsFromRecords(header, records)}, nil
}

// mergeOverflow collapses a too-long record back to ncol fields: everything
// before Notes stays, the overflow joins into the Notes cell, and the fixed
// tail after Notes is taken from the record's end.
func mergeOverflow(fields []string, ncol, notesIdx int) []string {
	tail := ncol - notesIdx - 1
	merged := make([]string, 0, ncol)
	merged = append(merged, fields[:notesIdx]...)
	noteEnd := len(fields) - tail
	merged = append(merged, strings.Join(trimAll(fields[notesIdx:noteEnd]), ", "))
	merged = append(merged, fields[noteEnd:]...)
	return merged
}

// splitOutsideBrackets splits on commas that are not inside [...] segments.
func splitOutsideBrackets(line string) []string {
	var fields []string
	var cur strings.Builder
	depth := 0
	for _, r := range line {
		switch r {
		case '[':
			depth++
			cur.WriteRune(r)
		case ']':
			if depth > 0 {
				depth--
			}
			cur.WriteRune(r)
		case ',':
			if depth == 0 {
				fields = append(fields, cur.String())
				cur.Reset()
			} else {
				cur.WriteRune(r)
			}
		default:
			cur.WriteRune(r)
		}
	}
	fields = append(fields, cur.String())
	return fields
}

func trimAll(fields []string) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = strings.TrimSpace(f)
	}
	return out
}
