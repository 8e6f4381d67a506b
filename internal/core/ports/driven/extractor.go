package driven

import "context"

// TextExtractor turns a source document into plain text. Extraction
// failures are reported to the caller and treated as per-document
// ingestion errors, never batch-fatal.
type TextExtractor interface {
	// Extract reads the document at path and returns its plain text
	// with pages separated by blank lines.
	Extract(ctx context.Context, path string) (string, error)

	// SupportedExtensions lists the file extensions this extractor
	// handles, lowercase with leading dot (".pdf").
	SupportedExtensions() []string
}
