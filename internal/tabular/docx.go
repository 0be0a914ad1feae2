package tabular

import (
	"archive/zip"
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var xmlTags = regexp.MustCompile(`<[^>]+>`)

// ExtractText pulls the plain text out of a .docx upload. DOCX tables carry
// no reliable header row, so the text goes to the AI column extractor rather
// than the table readers.
func ExtractText(path string) (string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableFile, err)
	}
	zr, err := zip.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", fmt.Errorf("%w: open docx: %v", ErrUnreadableFile, err)
	}
	docXML := readZipFile(zr, "word/document.xml")
	if len(docXML) == 0 {
		return "", fmt.Errorf("%w: document.xml not found in docx", ErrUnreadableFile)
	}
	// Tag stripping loses styling but keeps every run of text, which is all
	// the extractor needs.
	text := xmlTags.ReplaceAllString(string(docXML), "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSpace(text)
	for strings.Contains(text, "\n\n\n") {
		text = strings.ReplaceAll(text, "\n\n\n", "\n\n")
	}
	return text, nil
}
