// Package pdf extracts plain text from PDF documents.
package pdf

import (
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/askdocs/ragserver/internal/core/ports/driven"
	"github.com/askdocs/ragserver/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Extractor reads PDF files and returns their text page by page.
type Extractor struct{}

// New creates a PDF text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the plain text of the PDF at path. Pages are
// separated by blank lines; pages that fail to decode are skipped with
// a warning so one bad page does not lose the whole document.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %s: %w", path, err)
	}
	defer f.Close()

	var pages []string
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			logger.Warn("PDF %s: page %d unreadable: %v", path, i, err)
			continue
		}
		text = strings.TrimSpace(text)
		if text != "" {
			pages = append(pages, text)
		}
	}

	if len(pages) == 0 {
		return "", fmt.Errorf("pdf %s: no text extracted", path)
	}

	logger.Debug("PDF %s: extracted %d of %d pages", path, len(pages), total)
	return strings.Join(pages, "\n\n"), nil
}

// SupportedExtensions lists the file extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".pdf"}
}
