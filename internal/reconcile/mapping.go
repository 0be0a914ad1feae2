package reconcile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/esgloom-cli/internal/template"
)

// ErrInvalidMapping indicates a structurally invalid mapping declaration.
// Validation is all-or-nothing: nothing is applied if any pair is bad.
var ErrInvalidMapping = errors.New("invalid mapping")

// MappingPair binds one template column to one uploaded column. An empty
// UploadedColumn declares the template column absent from the upload.
type MappingPair struct {
	TemplateColumn string `yaml:"template_column" json:"template_column"`
	UploadedColumn string `yaml:"uploaded_column" json:"uploaded_column"`
}

// Mapping is a user-declared correspondence between template and uploaded
// columns. Partial mappings are allowed; unmapped template columns produce
// empty values in the canonical rows.
type Mapping []MappingPair

// CanonicalRow is one upload row reshaped into the template vocabulary.
// Every template column is present as a key; unmapped columns hold "".
type CanonicalRow map[string]string

// Validate checks a mapping against the template and the normalized upload
// columns before any row is transformed.
func (m Mapping) Validate(tpl template.Template, set ColumnSet) error {
	inTemplate := make(map[string]struct{}, len(tpl.Columns))
	for _, c := range tpl.Columns {
		inTemplate[c] = struct{}{}
	}
	seenTpl := make(map[string]struct{}, len(m))
	seenUp := make(map[string]struct{}, len(m))
	for _, pair := range m {
		if _, ok := inTemplate[pair.TemplateColumn]; !ok {
			return fmt.Errorf("%w: %q is not a column of template %s",
				ErrInvalidMapping, pair.TemplateColumn, tpl.Name)
		}
		if _, dup := seenTpl[pair.TemplateColumn]; dup {
			return fmt.Errorf("%w: template column %q mapped twice",
				ErrInvalidMapping, pair.TemplateColumn)
		}
		seenTpl[pair.TemplateColumn] = struct{}{}
		if pair.UploadedColumn == "" {
			continue
		}
		if !set.Contains(pair.UploadedColumn) {
			return fmt.Errorf("%w: uploaded column %q not found in upload",
				ErrInvalidMapping, pair.UploadedColumn)
		}
		if _, dup := seenUp[pair.UploadedColumn]; dup {
			return fmt.Errorf("%w: uploaded column %q mapped twice",
				ErrInvalidMapping, pair.UploadedColumn)
		}
		seenUp[pair.UploadedColumn] = struct{}{}
	}
	return nil
}

// Apply reshapes upload rows into canonical rows keyed by template columns.
// The row count is preserved exactly; values pass through untouched.
func (m Mapping) Apply(tpl template.Template, rows []map[string]string) []CanonicalRow {
	source := make(map[string]string, len(m))
	for _, pair := range m {
		if pair.UploadedColumn != "" {
			source[pair.TemplateColumn] = pair.UploadedColumn
		}
	}
	out := make([]CanonicalRow, 0, len(rows))
	for _, row := range rows {
		canon := make(CanonicalRow, len(tpl.Columns))
		for _, col := range tpl.Columns {
			if src, ok := source[col]; ok {
				canon[col] = row[src]
			} else {
				canon[col] = ""
			}
		}
		out = append(out, canon)
	}
	return out
}

// Report recomputes a MatchReport from the mapping's coverage: a template
// column counts as matched only when the mapping binds it to an uploaded
// column present in the set, and uploaded columns the mapping never
// references count as extra. Coverage comes from the pairs alone so that a
// template column declared absent stays missing even when the upload happens
// to carry a column of the same name.
func (m Mapping) Report(tpl template.Template, set ColumnSet) MatchReport {
	bound := make(map[string]string, len(m))
	referenced := make(map[string]struct{}, len(m))
	for _, pair := range m {
		bound[pair.TemplateColumn] = pair.UploadedColumn
		if pair.UploadedColumn != "" {
			referenced[pair.UploadedColumn] = struct{}{}
		}
	}

	r := MatchReport{
		Template:      tpl.Name,
		TotalUploaded: len(set.Columns),
		TotalTemplate: len(tpl.Columns),
		InvalidCount:  len(set.Dropped),
	}
	for _, c := range tpl.Columns {
		if up := bound[c]; up != "" && set.Contains(up) {
			r.Matched = append(r.Matched, c)
		} else {
			r.Missing = append(r.Missing, c)
		}
	}
	for _, c := range set.Columns {
		if _, ok := referenced[c]; !ok {
			r.Extra = append(r.Extra, c)
		}
	}
	finalizeReport(&r)
	return r
}

// ProposeMapping drafts a mapping for the user to review: exact matches
// first, then case-insensitive matches, then a shared-word heuristic. Each
// uploaded column is claimed at most once. Template columns with no
// candidate are emitted with an empty UploadedColumn so the user sees the
// full template vocabulary in the file they edit.
func ProposeMapping(tpl template.Template, set ColumnSet) Mapping {
	claimed := make(map[string]bool, len(set.Columns))
	proposal := make(map[string]string, len(tpl.Columns))

	for _, tc := range tpl.Columns {
		if set.Contains(tc) && !claimed[tc] {
			proposal[tc] = tc
			claimed[tc] = true
		}
	}
	for _, tc := range tpl.Columns {
		if _, done := proposal[tc]; done {
			continue
		}
		for _, uc := range set.Columns {
			if !claimed[uc] && strings.EqualFold(tc, uc) {
				proposal[tc] = uc
				claimed[uc] = true
				break
			}
		}
	}
	for _, tc := range tpl.Columns {
		if _, done := proposal[tc]; done {
			continue
		}
		tw := labelWords(tc)
		for _, uc := range set.Columns {
			if claimed[uc] {
				continue
			}
			if sharesWord(tw, labelWords(uc)) {
				proposal[tc] = uc
				claimed[uc] = true
				break
			}
		}
	}

	out := make(Mapping, 0, len(tpl.Columns))
	for _, tc := range tpl.Columns {
		out = append(out, MappingPair{TemplateColumn: tc, UploadedColumn: proposal[tc]})
	}
	return out
}

func labelWords(label string) []string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '(', ')', '?', ':', ',', '-', '_':
			return ' '
		}
		return r
	}, strings.ToLower(label))
	var words []string
	for _, w := range strings.Fields(cleaned) {
		if len(w) >= 3 {
			words = append(words, w)
		}
	}
	return words
}

func sharesWord(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
