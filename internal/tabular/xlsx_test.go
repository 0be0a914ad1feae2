package tabular

import (
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeXLSX(t *testing.T, entries map[string]string) string {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("zip create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("zip write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixture.xlsx")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	return path
}

func fixtureEntries() map[string]string {
	return map[string]string{
		"xl/workbook.xml": `<workbook xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
  <sheets><sheet name="Data" sheetId="1" r:id="rId1"/></sheets>
</workbook>`,
		"xl/_rels/workbook.xml.rels": `<Relationships>
  <Relationship Id="rId1" Target="worksheets/sheet1.xml"/>
</Relationships>`,
		"xl/sharedStrings.xml": `<sst>
  <si><t>Section</t></si>
  <si><t>Field</t></si>
  <si><t>Current</t></si>
  <si><t>Environment</t></si>
  <si><t>Scope 1</t></si>
</sst>`,
		"xl/worksheets/sheet1.xml": `<worksheet><sheetData>
  <row r="1">
    <c r="A1" t="s"><v>0</v></c>
    <c r="B1" t="s"><v>1</v></c>
    <c r="C1" t="s"><v>2</v></c>
  </row>
  <row r="2">
    <c r="A2" t="s"><v>3</v></c>
    <c r="B2" t="s"><v>4</v></c>
    <c r="C2"><v>120</v></c>
  </row>
</sheetData></worksheet>`,
	}
}

func TestReadXLSX(t *testing.T) {
	path := writeXLSX(t, fixtureEntries())
	tbl, err := ReadXLSX(path)
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if want := []string{"Section", "Field", "Current"}; !reflect.DeepEqual(tbl.Columns, want) {
		t.Fatalf("columns = %v, want %v", tbl.Columns, want)
	}
	if len(tbl.Rows) != 1 {
		t.Fatalf("rows = %d, want 1", len(tbl.Rows))
	}
	row := tbl.Rows[0]
	if row["Section"] != "Environment" || row["Field"] != "Scope 1" || row["Current"] != "120" {
		t.Fatalf("row = %v", row)
	}
}

// Sparse rows (skipped cells) come back as empty strings, not shifted values.
func TestReadXLSXSparseRow(t *testing.T) {
	entries := fixtureEntries()
	entries["xl/worksheets/sheet1.xml"] = `<worksheet><sheetData>
  <row r="1">
    <c r="A1" t="s"><v>0</v></c>
    <c r="B1" t="s"><v>1</v></c>
    <c r="C1" t="s"><v>2</v></c>
  </row>
  <row r="2">
    <c r="A2" t="s"><v>3</v></c>
    <c r="C2"><v>55</v></c>
  </row>
</sheetData></worksheet>`
	tbl, err := ReadXLSX(writeXLSX(t, entries))
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	row := tbl.Rows[0]
	if row["Field"] != "" {
		t.Fatalf("skipped cell = %q, want empty", row["Field"])
	}
	if row["Current"] != "55" {
		t.Fatalf("cell shifted: %v", row)
	}
}

// Some writers leave out the r= cell reference entirely; cells then fill
// the row left to right instead of crashing the reader.
func TestReadXLSXCellsWithoutRefs(t *testing.T) {
	entries := fixtureEntries()
	entries["xl/worksheets/sheet1.xml"] = `<worksheet><sheetData>
  <row>
    <c t="s"><v>0</v></c>
    <c t="s"><v>1</v></c>
    <c t="s"><v>2</v></c>
  </row>
  <row>
    <c t="s"><v>3</v></c>
    <c t="s"><v>4</v></c>
    <c><v>120</v></c>
  </row>
</sheetData></worksheet>`
	tbl, err := ReadXLSX(writeXLSX(t, entries))
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if want := []string{"Section", "Field", "Current"}; !reflect.DeepEqual(tbl.Columns, want) {
		t.Fatalf("columns = %v, want %v", tbl.Columns, want)
	}
	row := tbl.Rows[0]
	if row["Section"] != "Environment" || row["Field"] != "Scope 1" || row["Current"] != "120" {
		t.Fatalf("row = %v", row)
	}
}

func TestReadXLSXInlineString(t *testing.T) {
	entries := fixtureEntries()
	entries["xl/worksheets/sheet1.xml"] = `<worksheet><sheetData>
  <row r="1"><c r="A1" t="inlineStr"><is><t>Field</t></is></c></row>
  <row r="2"><c r="A2" t="inlineStr"><is><t>Energy Use</t></is></c></row>
</sheetData></worksheet>`
	tbl, err := ReadXLSX(writeXLSX(t, entries))
	if err != nil {
		t.Fatalf("ReadXLSX: %v", err)
	}
	if tbl.Rows[0]["Field"] != "Energy Use" {
		t.Fatalf("inline string = %q", tbl.Rows[0]["Field"])
	}
}

func TestReadXLSXNotAZip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.xlsx")
	if err := os.WriteFile(path, []byte("not a zip"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := ReadXLSX(path); err == nil {
		t.Fatal("expected error for non-zip input")
	}
}

func TestColIndexFromRef(t *testing.T) {
	cases := map[string]int{"A1": 0, "C12": 2, "Z3": 25, "AA7": 26, "AB1": 27}
	for ref, want := range cases {
		if got := colIndexFromRef(ref); got != want {
			t.Errorf("colIndexFromRef(%q) = %d, want %d", ref, got, want)
		}
	}
}
