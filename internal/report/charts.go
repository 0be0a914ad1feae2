package report

import (
	"strings"

	"github.com/KaramelBytes/esgloom-cli/internal/change"
	"github.com/KaramelBytes/esgloom-cli/internal/template"
)

// ChartSpec describes one chart worth drawing. Selection only: rendering is
// left to whatever consumes the report.
type ChartSpec struct {
	Title  string    `json:"title"`
	Type   string    `json:"type"` // bar, pie or line
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

type chartCategory struct {
	name     string
	chart    string
	keywords []string
}

// Category order fixes the output order of the specs.
var chartCategories = []chartCategory{
	{"Emissions", "bar", []string{"scope", "emission", "ghg", "co2"}},
	{"Energy", "bar", []string{"energy", "electricity", "fuel", "renewable"}},
	{"Diversity", "pie", []string{"diversity", "gender", "female", "women"}},
	{"Social", "bar", []string{"employee", "turnover", "safety", "injury", "training"}},
	{"Water", "bar", []string{"water"}},
	{"Waste", "bar", []string{"waste", "recycl"}},
}

const maxTrendCharts = 3

// Charts classifies annotated rows into chart specs. A category chart needs
// at least two positive numeric current values; trend charts need numeric
// previous and current values and are capped at three.
func Charts(tpl template.Template, rows []change.AnnotatedRow) []ChartSpec {
	var specs []ChartSpec
	for _, cat := range chartCategories {
		var labels []string
		var values []float64
		for _, ar := range rows {
			field := strings.TrimSpace(ar.Row[tpl.FieldColumn])
			if field == "" || !matchesCategory(field, cat.keywords) {
				continue
			}
			v, ok := chartValue(ar.Row[tpl.CurrentColumn])
			if !ok || v <= 0 {
				continue
			}
			labels = append(labels, field)
			values = append(values, v)
		}
		if len(values) >= 2 {
			specs = append(specs, ChartSpec{
				Title:  cat.name + " Overview",
				Type:   cat.chart,
				Labels: labels,
				Values: values,
			})
		}
	}

	trends := 0
	for _, ar := range rows {
		if trends >= maxTrendCharts {
			break
		}
		prev, okP := chartValue(ar.Row[tpl.PrevColumn])
		cur, okC := chartValue(ar.Row[tpl.CurrentColumn])
		if !okP || !okC {
			continue
		}
		field := strings.TrimSpace(ar.Row[tpl.FieldColumn])
		if field == "" {
			continue
		}
		labels := []string{"Previous", "Current"}
		values := []float64{prev, cur}
		if target, ok := chartValue(ar.Row[tpl.TargetColumn]); ok {
			labels = append(labels, "Target")
			values = append(values, target)
		}
		specs = append(specs, ChartSpec{
			Title:  field + " Trend",
			Type:   "line",
			Labels: labels,
			Values: values,
		})
		trends++
	}
	return specs
}

func matchesCategory(field string, keywords []string) bool {
	lower := strings.ToLower(field)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func chartValue(raw string) (float64, bool) {
	return change.ParseNumeric(raw)
}
