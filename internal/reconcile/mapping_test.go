package reconcile

import (
	"errors"
	"reflect"
	"testing"

	"github.com/KaramelBytes/esgloom-cli/internal/template"
)

func mappingTemplate() template.Template {
	return template.Template{
		Name:    "TEST",
		Columns: []string{"Section", "Field", "Prev Year", "Current"},
	}
}

func TestValidateAcceptsPartialMapping(t *testing.T) {
	tpl := mappingTemplate()
	set := Normalize([]string{"Sec", "Fld"})
	m := Mapping{
		{TemplateColumn: "Section", UploadedColumn: "Sec"},
		{TemplateColumn: "Field", UploadedColumn: "Fld"},
		{TemplateColumn: "Prev Year", UploadedColumn: ""},
	}
	if err := m.Validate(tpl, set); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestValidateRejections(t *testing.T) {
	tpl := mappingTemplate()
	set := Normalize([]string{"Sec", "Fld"})
	cases := []struct {
		name string
		m    Mapping
	}{
		{"unknown template column", Mapping{{TemplateColumn: "Bogus", UploadedColumn: "Sec"}}},
		{"unknown uploaded column", Mapping{{TemplateColumn: "Section", UploadedColumn: "Nope"}}},
		{"duplicate template column", Mapping{
			{TemplateColumn: "Section", UploadedColumn: "Sec"},
			{TemplateColumn: "Section", UploadedColumn: "Fld"},
		}},
		{"duplicate uploaded column", Mapping{
			{TemplateColumn: "Section", UploadedColumn: "Sec"},
			{TemplateColumn: "Field", UploadedColumn: "Sec"},
		}},
	}
	for _, tc := range cases {
		err := tc.m.Validate(tpl, set)
		if !errors.Is(err, ErrInvalidMapping) {
			t.Fatalf("%s: err = %v, want ErrInvalidMapping", tc.name, err)
		}
	}
}

func TestApplyReshapesRows(t *testing.T) {
	tpl := mappingTemplate()
	m := Mapping{
		{TemplateColumn: "Section", UploadedColumn: "Sec"},
		{TemplateColumn: "Current", UploadedColumn: "Val"},
	}
	rows := []map[string]string{
		{"Sec": "Environment", "Val": "120", "Ignored": "x"},
		{"Sec": "Social", "Val": ""},
	}
	got := m.Apply(tpl, rows)
	if len(got) != len(rows) {
		t.Fatalf("row count = %d, want %d", len(got), len(rows))
	}
	want := CanonicalRow{"Section": "Environment", "Field": "", "Prev Year": "", "Current": "120"}
	if !reflect.DeepEqual(got[0], want) {
		t.Fatalf("row[0] = %v, want %v", got[0], want)
	}
	if got[1]["Section"] != "Social" || got[1]["Current"] != "" {
		t.Fatalf("row[1] = %v", got[1])
	}
	for _, col := range tpl.Columns {
		if _, ok := got[1][col]; !ok {
			t.Fatalf("row[1] missing template key %q", col)
		}
	}
}

func TestApplyEmptyRows(t *testing.T) {
	tpl := mappingTemplate()
	got := Mapping{{TemplateColumn: "Section", UploadedColumn: "Sec"}}.Apply(tpl, nil)
	if len(got) != 0 {
		t.Fatalf("expected no rows, got %d", len(got))
	}
}

func TestMappingReportCoverage(t *testing.T) {
	tpl := mappingTemplate()
	set := Normalize([]string{"Sec", "Fld", "Spare", "Unnamed: 5"})
	m := Mapping{
		{TemplateColumn: "Section", UploadedColumn: "Sec"},
		{TemplateColumn: "Field", UploadedColumn: "Fld"},
	}
	r := m.Report(tpl, set)
	if got, want := r.Matched, []string{"Field", "Section"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("matched = %v, want %v", got, want)
	}
	if got, want := r.Missing, []string{"Current", "Prev Year"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("missing = %v, want %v", got, want)
	}
	if got, want := r.Extra, []string{"Spare"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("extra = %v, want %v", got, want)
	}
	if r.MatchPercentage != 50 {
		t.Fatalf("percentage = %v, want 50", r.MatchPercentage)
	}
	if r.InvalidCount != 1 {
		t.Fatalf("invalid count = %d, want 1", r.InvalidCount)
	}
}

// A template column declared absent stays missing even when the upload
// carries an unreferenced column with the very same name.
func TestMappingReportAbsentColumnNameCollision(t *testing.T) {
	tpl := template.Template{Name: "TEST", Columns: []string{"Section", "Current"}}
	set := Normalize([]string{"Sec", "Current"})
	m := Mapping{
		{TemplateColumn: "Section", UploadedColumn: "Sec"},
		{TemplateColumn: "Current", UploadedColumn: ""},
	}
	r := m.Report(tpl, set)
	if got, want := r.Matched, []string{"Section"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("matched = %v, want %v", got, want)
	}
	if got, want := r.Missing, []string{"Current"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("missing = %v, want %v", got, want)
	}
	if got, want := r.Extra, []string{"Current"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("extra = %v, want %v", got, want)
	}
	if r.MatchPercentage != 50 {
		t.Fatalf("percentage = %v, want 50", r.MatchPercentage)
	}
}

// Duplicate headers dropped during normalization must not resurface as
// extra columns, and the invalid count survives the coverage recompute.
func TestMappingReportKeepsDroppedDuplicatesInvalid(t *testing.T) {
	tpl := template.Template{Name: "TEST", Columns: []string{"Section", "Current"}}
	set := Normalize([]string{"Sec", "Sec"})
	m := Mapping{{TemplateColumn: "Section", UploadedColumn: "Sec"}}
	r := m.Report(tpl, set)
	if len(r.Extra) != 0 {
		t.Fatalf("extra = %v, want none", r.Extra)
	}
	if r.InvalidCount != 1 {
		t.Fatalf("invalid count = %d, want 1", r.InvalidCount)
	}
	if got, want := r.Matched, []string{"Section"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("matched = %v, want %v", got, want)
	}
	if got, want := r.Missing, []string{"Current"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("missing = %v, want %v", got, want)
	}
}

func TestProposeMappingTiers(t *testing.T) {
	tpl := template.Template{
		Name:    "TEST",
		Columns: []string{"Section", "Prev Year", "Current", "Notes"},
	}
	set := Normalize([]string{"Section", "prev year", "Current Value", "Owner"})
	m := ProposeMapping(tpl, set)
	got := make(map[string]string, len(m))
	for _, pair := range m {
		got[pair.TemplateColumn] = pair.UploadedColumn
	}
	if got["Section"] != "Section" {
		t.Fatalf("exact tier: %q", got["Section"])
	}
	if got["Prev Year"] != "prev year" {
		t.Fatalf("case-insensitive tier: %q", got["Prev Year"])
	}
	if got["Current"] != "Current Value" {
		t.Fatalf("shared-word tier: %q", got["Current"])
	}
	if got["Notes"] != "" {
		t.Fatalf("unmatched template column should stay empty, got %q", got["Notes"])
	}
	if len(m) != len(tpl.Columns) {
		t.Fatalf("proposal has %d pairs, want %d", len(m), len(tpl.Columns))
	}
}

func TestProposeMappingClaimsOnce(t *testing.T) {
	tpl := template.Template{Name: "TEST", Columns: []string{"Current", "Current Year"}}
	set := Normalize([]string{"current"})
	m := ProposeMapping(tpl, set)
	claims := 0
	for _, pair := range m {
		if pair.UploadedColumn == "current" {
			claims++
		}
	}
	if claims != 1 {
		t.Fatalf("uploaded column claimed %d times, want 1", claims)
	}
}

func TestProposedMappingValidates(t *testing.T) {
	tpl, err := template.Resolve("MOCCAE")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	set := Normalize([]string{"Section (EN)", "Field (EN)", "current / العام الحالي", "Extra"})
	m := ProposeMapping(tpl, set)
	if err := m.Validate(tpl, set); err != nil {
		t.Fatalf("proposal should always validate: %v", err)
	}
}
