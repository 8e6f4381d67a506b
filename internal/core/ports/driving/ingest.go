package driving

import (
	"context"

	"github.com/askdocs/ragserver/internal/core/domain"
)

// IngestionService populates the vector index.
type IngestionService interface {
	// Ingest runs extraction, chunking, embedding and indexing for
	// each path. Documents are processed independently; one failure
	// does not abort the batch. The report lists every outcome.
	Ingest(ctx context.Context, paths []string) (*domain.IngestReport, error)

	// Bootstrap loads a prebuilt snapshot from a remote archive
	// instead of recomputing embeddings. A version-mismatched
	// snapshot is rejected; the caller may fall back to Ingest.
	Bootstrap(ctx context.Context, uri string) error
}
