package report

import (
	"fmt"
	"sort"
)

// SystemPrompt frames every generation request.
const SystemPrompt = `You are an ESG reporting analyst. You write clear, factual sustainability
report narratives from structured metric data. Use only the data provided;
never invent figures. Note year-over-year movements and whether they are
improvements. Write in professional report English with markdown headings.`

// typePrompts holds the per-report-type instruction appended after the data
// block. Keys double as the CLI's --type values.
var typePrompts = map[string]string{
	"comprehensive": `Write a comprehensive ESG report covering environmental, social and
governance performance. Organize by the sections in the data. Open with an
executive summary, close with an outlook paragraph.`,
	"environmental": `Write an environmental performance report. Focus on emissions, energy,
water and waste metrics. Discuss reduction trends and distance to targets.`,
	"social": `Write a social performance report. Focus on workforce, diversity,
training, and health and safety metrics.`,
	"governance": `Write a governance report. Focus on board composition, policies,
compliance and ethics metrics.`,
	"compliance": `Write a regulatory compliance summary. For each metric state whether it
is reported, its current value, and any gap against its target.`,
	"executive": `Write a one-page executive summary. Lead with the three most significant
year-over-year changes, good or bad, then summarize overall ESG posture.`,
}

// ReportTypes returns the supported --type values in sorted order.
func ReportTypes() []string {
	out := make([]string, 0, len(typePrompts))
	for k := range typePrompts {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// PromptFor returns the instruction block for a report type.
func PromptFor(reportType string) (string, error) {
	p, ok := typePrompts[reportType]
	if !ok {
		return "", fmt.Errorf("unknown report type %q (available: %v)", reportType, ReportTypes())
	}
	return p, nil
}
