package report

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/KaramelBytes/esgloom-cli/internal/ai"
	"github.com/KaramelBytes/esgloom-cli/internal/change"
	"github.com/KaramelBytes/esgloom-cli/internal/template"
)

// Generator assembles narrative reports from annotated canonical rows.
type Generator struct {
	Client      *ai.Client
	Model       string
	MaxTokens   int
	Temperature float64
}

// Report is one finished generation run.
type Report struct {
	ID       string      `json:"id"`
	Type     string      `json:"type"`
	Template string      `json:"template"`
	Markdown string      `json:"markdown"`
	Charts   []ChartSpec `json:"charts,omitempty"`
	Usage    ai.Usage    `json:"usage"`
}

// BuildMessages constructs the chat messages for a report type and data set.
// Exposed so dry runs can show exactly what would be sent.
func BuildMessages(tpl template.Template, rows []change.AnnotatedRow, reportType string) ([]ai.Message, error) {
	instruction, err := PromptFor(reportType)
	if err != nil {
		return nil, err
	}
	data := FormatRows(tpl, rows)
	return []ai.Message{
		{Role: "system", Content: SystemPrompt},
		{Role: "user", Content: instruction + "\n\nDATA:\n" + data},
	}, nil
}

// Generate runs one report: format the data, prompt the model, and pair the
// narrative with chart specs derived from the same rows.
func (g *Generator) Generate(ctx context.Context, tpl template.Template, rows []change.AnnotatedRow, reportType string) (*Report, error) {
	messages, err := BuildMessages(tpl, rows, reportType)
	if err != nil {
		return nil, err
	}
	resp, err := g.Client.Generate(ctx, ai.GenerateRequest{
		Model:       g.Model,
		Messages:    messages,
		MaxTokens:   g.MaxTokens,
		Temperature: g.Temperature,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("model returned no choices")
	}
	return &Report{
		ID:       uuid.NewString(),
		Type:     reportType,
		Template: tpl.Name,
		Markdown: resp.Choices[0].Message.Content,
		Charts:   Charts(tpl, rows),
		Usage:    resp.Usage,
	}, nil
}
