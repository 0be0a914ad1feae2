package change

import (
	"math"
	"strconv"
	"strings"

	"github.com/KaramelBytes/esgloom-cli/internal/reconcile"
	"github.com/KaramelBytes/esgloom-cli/internal/template"
)

// Status labels the direction of a year-over-year change relative to what is
// desirable for the metric.
type Status string

const (
	StatusImproved Status = "improved"
	StatusWorsened Status = "worsened"
	StatusSlight   Status = "slight"
	StatusUnknown  Status = "unknown"
)

// Change is the classified year-over-year movement of one metric. Percent is
// meaningful only when Known is true.
type Change struct {
	Percent float64 `json:"change_percentage"`
	Known   bool    `json:"known"`
	Status  Status  `json:"status"`
}

// AnnotatedRow pairs a canonical row with its change classification.
type AnnotatedRow struct {
	Row    reconcile.CanonicalRow `json:"row"`
	Change Change                 `json:"change"`
}

// Classifier assigns change statuses using a fixed lower-is-better keyword
// list. The list is set at construction and never mutated afterwards, so a
// Classifier is safe for concurrent use.
type Classifier struct {
	lowerIsBetter []string
}

// DefaultLowerIsBetter covers metrics where a decrease is desirable:
// emissions and pollutants, waste, resource consumption, intensity ratios,
// staff turnover, safety incidents, and gap measures. The list is necessarily
// incomplete; unmatched labels default to higher-is-better.
func DefaultLowerIsBetter() []string {
	return []string{
		"emission", "ghg", "co2", "scope",
		"waste", "landfill", "discharge",
		"consumption", "intensity",
		"turnover",
		"injury", "incident", "accident", "fatality",
		"gap",
	}
}

// NewClassifier builds a classifier around the given keyword list. Keywords
// are matched as case-insensitive substrings of the field label.
func NewClassifier(lowerIsBetter []string) *Classifier {
	kws := make([]string, 0, len(lowerIsBetter))
	for _, kw := range lowerIsBetter {
		kws = append(kws, strings.ToLower(kw))
	}
	return &Classifier{lowerIsBetter: kws}
}

// Classify computes the percentage change from prev to current and labels it.
// A zero or unparseable previous value makes the change unknowable rather
// than infinite, and unparseable values never produce an error.
func (c *Classifier) Classify(fieldLabel, prev, current string) Change {
	p, okP := ParseNumeric(prev)
	cur, okC := ParseNumeric(current)
	if !okP || !okC || p == 0 {
		return Change{Status: StatusUnknown}
	}
	pct := (cur - p) / p * 100
	pct = math.Round(pct*10) / 10

	ch := Change{Percent: pct, Known: true}
	switch {
	case math.Abs(pct) <= 5:
		ch.Status = StatusSlight
	case c.lowerBetter(fieldLabel) == (pct < 0):
		ch.Status = StatusImproved
	default:
		ch.Status = StatusWorsened
	}
	return ch
}

// Annotate classifies every canonical row using the template's field, prev
// and current columns. Per-row parse failures degrade to unknown; the batch
// never aborts.
func (c *Classifier) Annotate(tpl template.Template, rows []reconcile.CanonicalRow) []AnnotatedRow {
	out := make([]AnnotatedRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, AnnotatedRow{
			Row:    row,
			Change: c.Classify(row[tpl.FieldColumn], row[tpl.PrevColumn], row[tpl.CurrentColumn]),
		})
	}
	return out
}

func (c *Classifier) lowerBetter(fieldLabel string) bool {
	label := strings.ToLower(fieldLabel)
	for _, kw := range c.lowerIsBetter {
		if strings.Contains(label, kw) {
			return true
		}
	}
	return false
}

// ParseNumeric reads a raw spreadsheet cell as a number. Thousands
// separators, percent signs, stray spaces and non-breaking spaces are all
// tolerated; placeholder sentinels report not-a-number.
func ParseNumeric(s string) (float64, bool) {
	cleaned := strings.TrimSpace(s)
	switch strings.ToLower(cleaned) {
	case "", "nan", "n/a", "na", "none", "not available", "-":
		return 0, false
	}
	cleaned = strings.NewReplacer(",", "", "%", "", " ", "", " ", "").Replace(cleaned)
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
