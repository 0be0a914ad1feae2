package report

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/esgloom-cli/internal/change"
	"github.com/KaramelBytes/esgloom-cli/internal/template"
)

// FormatRows renders annotated canonical rows into the sectioned text block
// the generation prompt is built from. Rows keep their upload order inside
// each section; sections appear in first-occurrence order.
func FormatRows(tpl template.Template, rows []change.AnnotatedRow) string {
	var sections []string
	bySection := map[string][]change.AnnotatedRow{}
	for _, ar := range rows {
		section := strings.TrimSpace(ar.Row[tpl.SectionColumn])
		if section == "" {
			section = "General"
		}
		if _, seen := bySection[section]; !seen {
			sections = append(sections, section)
		}
		bySection[section] = append(bySection[section], ar)
	}

	var b strings.Builder
	for _, section := range sections {
		fmt.Fprintf(&b, "=== SECTION: %s ===\n", section)
		for _, ar := range bySection[section] {
			b.WriteString(formatRow(tpl, ar))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n") + "\n"
}

func formatRow(tpl template.Template, ar change.AnnotatedRow) string {
	field := strings.TrimSpace(ar.Row[tpl.FieldColumn])
	if field == "" {
		field = "(unnamed metric)"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "- %s:", field)
	if prev := strings.TrimSpace(ar.Row[tpl.PrevColumn]); prev != "" {
		fmt.Fprintf(&b, " previous %s,", prev)
	}
	cur := strings.TrimSpace(ar.Row[tpl.CurrentColumn])
	if cur == "" {
		cur = "not reported"
	}
	fmt.Fprintf(&b, " current %s", cur)
	if unit := strings.TrimSpace(ar.Row[tpl.UnitColumn]); unit != "" {
		fmt.Fprintf(&b, " %s", unit)
	}
	if target := strings.TrimSpace(ar.Row[tpl.TargetColumn]); target != "" {
		fmt.Fprintf(&b, " (target %s)", target)
	}
	if ar.Change.Known {
		fmt.Fprintf(&b, " [change %+.1f%%, %s]", ar.Change.Percent, ar.Change.Status)
	}
	if notes := strings.TrimSpace(ar.Row[tpl.NotesColumn]); notes != "" {
		fmt.Fprintf(&b, " | notes: %s", notes)
	}
	b.WriteString("\n")
	return b.String()
}
