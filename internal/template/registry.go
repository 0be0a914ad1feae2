package template

import (
	"errors"
	"fmt"
	"sort"
)

// Template is a fixed, named vocabulary of report columns for one ESG
// reporting standard. Column order matters only for display; matching is
// set-based. The Prev/Current/Field columns name where the change analysis
// reads its inputs for this standard.
type Template struct {
	Name    string
	Columns []string

	// Canonical roles within Columns.
	SectionColumn string
	FieldColumn   string
	PrevColumn    string
	CurrentColumn string
	TargetColumn  string
	UnitColumn    string
	NotesColumn   string
}

// ErrUnknownTemplate indicates a template identifier that is not registered.
// This is a configuration error, not a data error.
var ErrUnknownTemplate = errors.New("unknown template")

var registry = map[string]Template{
	"ADX_ESG": {
		Name: "ADX_ESG",
		Columns: []string{
			"Section / القسم",
			"Field (EN)",
			"الحقل (AR)",
			"Prev Year",
			"Current",
			"Target",
			"Unit",
			"Notes",
			"Applicability",
			"Input Type",
			"Options",
		},
		SectionColumn: "Section / القسم",
		FieldColumn:   "Field (EN)",
		PrevColumn:    "Prev Year",
		CurrentColumn: "Current",
		TargetColumn:  "Target",
		UnitColumn:    "Unit",
		NotesColumn:   "Notes",
	},
	"DIFC_ESG": {
		Name: "DIFC_ESG",
		Columns: []string{
			"Section / القسم",
			"Field (EN)",
			"الحقل (AR)",
			"Prev Year",
			"Current",
			"Target",
			"Unit",
			"Notes",
			"Applicability",
			"Input Type",
			"Options",
			"Evidence Required?",
			"Confidential?",
		},
		SectionColumn: "Section / القسم",
		FieldColumn:   "Field (EN)",
		PrevColumn:    "Prev Year",
		CurrentColumn: "Current",
		TargetColumn:  "Target",
		UnitColumn:    "Unit",
		NotesColumn:   "Notes",
	},
	"MOCCAE": {
		Name: "MOCCAE",
		Columns: []string{
			"Section (EN)",
			"Section (AR)",
			"Field (EN)",
			"الحقل (AR)",
			"Response / الإدخال",
			"Unit / الوحدة",
			"Prev Year / العام السابق",
			"Current / العام الحالي",
			"Target / الهدف",
			"Notes / ملاحظات",
			"Applicability",
			"Evidence Required?",
			"Confidential?",
		},
		SectionColumn: "Section (EN)",
		FieldColumn:   "Field (EN)",
		PrevColumn:    "Prev Year / العام السابق",
		CurrentColumn: "Current / العام الحالي",
		TargetColumn:  "Target / الهدف",
		UnitColumn:    "Unit / الوحدة",
		NotesColumn:   "Notes / ملاحظات",
	},
	"SCHOOLS": {
		Name: "SCHOOLS",
		Columns: []string{
			"Section / القسم",
			"Field (EN)",
			"الحقل (AR)",
			"Prev Year",
			"Current",
			"Target",
			"Unit",
			"Notes",
			"Applicability",
			"Input Type",
			"Options",
			"Evidence Required?",
			"Confidential?",
		},
		SectionColumn: "Section / القسم",
		FieldColumn:   "Field (EN)",
		PrevColumn:    "Prev Year",
		CurrentColumn: "Current",
		TargetColumn:  "Target",
		UnitColumn:    "Unit",
		NotesColumn:   "Notes",
	},
	"SME": {
		Name: "SME",
		Columns: []string{
			"Section / القسم",
			"Field (EN)",
			"الحقل (AR)",
			"Prev Year",
			"Current",
			"Target",
			"Unit",
			"Notes",
			"Applicability",
			"Input Type",
			"Options",
			"Evidence Required?",
			"Confidential?",
		},
		SectionColumn: "Section / القسم",
		FieldColumn:   "Field (EN)",
		PrevColumn:    "Prev Year",
		CurrentColumn: "Current",
		TargetColumn:  "Target",
		UnitColumn:    "Unit",
		NotesColumn:   "Notes",
	},
}

// Resolve returns the registered template for the given identifier.
func Resolve(name string) (Template, error) {
	t, ok := registry[name]
	if !ok {
		return Template{}, fmt.Errorf("%w: %s (available: %v)", ErrUnknownTemplate, name, Names())
	}
	return t, nil
}

// Names returns the registered template identifiers in sorted order.
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
