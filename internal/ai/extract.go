package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// ErrExtractionFailed indicates the model's reply could not be turned into a
// column list. The caller decides whether to retry or fall back.
var ErrExtractionFailed = errors.New("column extraction failed")

const extractSystemPrompt = `You identify the data fields present in ESG report documents.
Given document text, list the column or field labels it reports values for.
Reply with a JSON array of strings and nothing else. Example: ["Field (EN)", "Current", "Unit"]`

// extractMaxChars bounds the document text sent to the model. ESG uploads
// rarely exceed this; truncation keeps the request within context limits.
const extractMaxChars = 24000

// ExtractColumns asks the model which column/field labels an unstructured
// document reports on. The reply must be a JSON string array; anything the
// model wraps around it (prose, code fences) is stripped before parsing.
func (c *Client) ExtractColumns(ctx context.Context, model, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: document text is empty", ErrExtractionFailed)
	}
	text = truncateText(text, extractMaxChars)
	resp, err := c.Generate(ctx, GenerateRequest{
		Model: model,
		Messages: []Message{
			{Role: "system", Content: extractSystemPrompt},
			{Role: "user", Content: text},
		},
		Temperature: 0.1,
	})
	if err != nil {
		return nil, err
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: empty response", ErrExtractionFailed)
	}
	cols, err := parseColumnArray(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	return cols, nil
}

// truncateText cuts text to at most max bytes without splitting a multi-byte
// rune, so the request body stays valid UTF-8.
func truncateText(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}

// parseColumnArray finds the JSON array in a model reply. Models often wrap
// the array in code fences or a leading sentence; only the bracketed slice
// is parsed.
func parseColumnArray(reply string) ([]string, error) {
	start := strings.Index(reply, "[")
	end := strings.LastIndex(reply, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON array in reply", ErrExtractionFailed)
	}
	var cols []string
	if err := json.Unmarshal([]byte(reply[start:end+1]), &cols); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractionFailed, err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("%w: model returned no columns", ErrExtractionFailed)
	}
	return cols, nil
}
