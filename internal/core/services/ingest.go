package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/askdocs/ragserver/internal/core/domain"
	"github.com/askdocs/ragserver/internal/core/ports/driven"
	"github.com/askdocs/ragserver/internal/core/ports/driving"
	"github.com/askdocs/ragserver/internal/logger"
)

// Ensure IngestionOrchestrator implements the interface.
var _ driving.IngestionService = (*IngestionOrchestrator)(nil)

// Splitter chunks an extracted document.
type Splitter interface {
	Split(doc *domain.Document) []domain.Chunk
}

// IngestionOrchestrator runs the extract-chunk-embed-index pipeline.
// Documents are processed independently: one bad file is recorded in
// the report and the batch moves on.
type IngestionOrchestrator struct {
	extractor driven.TextExtractor
	splitter  Splitter
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	fetcher   driven.SnapshotFetcher // optional, may be nil
	settings  domain.Settings
}

// NewIngestionOrchestrator creates an ingestion orchestrator. fetcher
// may be nil when bootstrap is not configured.
func NewIngestionOrchestrator(
	extractor driven.TextExtractor,
	splitter Splitter,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	fetcher driven.SnapshotFetcher,
	settings domain.Settings,
) *IngestionOrchestrator {
	return &IngestionOrchestrator{
		extractor: extractor,
		splitter:  splitter,
		embedder:  embedder,
		index:     index,
		fetcher:   fetcher,
		settings:  settings,
	}
}

// Ingest processes each path and returns a report with one entry per
// document. The error return covers batch-level problems only; per-
// document failures live in the report.
func (o *IngestionOrchestrator) Ingest(ctx context.Context, paths []string) (*domain.IngestReport, error) {
	report := &domain.IngestReport{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
		Documents: make([]domain.DocumentReport, 0, len(paths)),
	}

	logger.Section("Ingestion")
	logger.Info("Ingesting %d documents", len(paths))

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, chunks, err := o.ingestOne(ctx, path)
		if err != nil {
			logger.Warn("Ingestion failed for %s: %v", path, err)
			report.Documents = append(report.Documents, domain.DocumentReport{
				URI:    path,
				Status: domain.DocumentStatusFailed,
				Error:  err.Error(),
			})
			continue
		}

		report.Documents = append(report.Documents, domain.DocumentReport{
			DocumentID: doc.ID,
			URI:        path,
			Status:     domain.DocumentStatusSuccess,
			Chunks:     chunks,
		})
	}

	report.FinishedAt = time.Now()
	logger.Info("Ingestion complete: %d succeeded, %d failed", report.Succeeded(), report.Failed())
	return report, nil
}

// ingestOne runs the pipeline for a single document and returns the
// document and its chunk count.
func (o *IngestionOrchestrator) ingestOne(ctx context.Context, path string) (*domain.Document, int, error) {
	if !o.supported(path) {
		return nil, 0, fmt.Errorf("%w: unsupported file type %q", domain.ErrIngestion, filepath.Ext(path))
	}

	content, err := o.extractor.Extract(ctx, path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: extract %s: %v", domain.ErrIngestion, path, err)
	}

	doc := &domain.Document{
		ID:         documentID(path),
		URI:        path,
		Content:    content,
		IngestedAt: time.Now(),
	}

	chunks := o.splitter.Split(doc)
	if len(chunks) == 0 {
		return doc, 0, nil
	}
	logger.Debug("Document %s: %d chunks", doc.ID, len(chunks))

	entries, err := o.embedChunks(ctx, doc, chunks)
	if err != nil {
		return nil, 0, err
	}

	if err := o.index.Upsert(ctx, entries); err != nil {
		return nil, 0, fmt.Errorf("%w: index %s: %v", domain.ErrIngestion, path, err)
	}

	return doc, len(chunks), nil
}

// embedChunks embeds the chunk texts in configured batch sizes and
// pairs each vector with its chunk metadata.
func (o *IngestionOrchestrator) embedChunks(
	ctx context.Context, doc *domain.Document, chunks []domain.Chunk,
) ([]domain.Entry, error) {
	source := filepath.Base(doc.URI)
	entries := make([]domain.Entry, 0, len(chunks))

	for start := 0; start < len(chunks); start += o.settings.EmbedBatchSize {
		end := start + o.settings.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, ch := range batch {
			texts[i] = ch.Content
		}

		var vectors [][]float32
		err := withRetry(ctx, o.settings.MaxRetries, o.settings.RetryBaseDelay, "batch embedding", func() error {
			var embedErr error
			vectors, embedErr = o.embedder.EmbedBatch(ctx, texts)
			return embedErr
		})
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: embed %s: %v", domain.ErrEmbeddingUnavailable, doc.URI, err)
		}
		if len(vectors) != len(batch) {
			return nil, fmt.Errorf("%w: embed %s: got %d vectors for %d chunks",
				domain.ErrEmbeddingUnavailable, doc.URI, len(vectors), len(batch))
		}

		for i, ch := range batch {
			entries = append(entries, domain.Entry{
				ChunkID:    ch.ID,
				DocumentID: ch.DocumentID,
				Source:     source,
				Sequence:   ch.Sequence,
				Content:    ch.Content,
				Embedding:  vectors[i],
			})
		}
	}

	return entries, nil
}

// Bootstrap downloads a prebuilt index snapshot and loads it, skipping
// the embedding work entirely. A version or dimension mismatch is
// rejected with ErrSnapshotMismatch; the caller can fall back to a
// full Ingest.
func (o *IngestionOrchestrator) Bootstrap(ctx context.Context, uri string) error {
	if o.fetcher == nil {
		return fmt.Errorf("%w: no snapshot fetcher configured", domain.ErrInvalidConfig)
	}

	logger.Section("Bootstrap")
	path, err := o.fetcher.Fetch(ctx, uri)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}
	defer os.Remove(path)

	if err := o.index.Load(ctx, path); err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	logger.Info("Bootstrapped index with %d entries", o.index.Len())
	return nil
}

// supported reports whether the extractor handles the file extension.
func (o *IngestionOrchestrator) supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, s := range o.extractor.SupportedExtensions() {
		if ext == s {
			return true
		}
	}
	return false
}

// documentID derives a stable identifier from the document URI so
// re-ingesting the same file replaces its entries instead of
// duplicating them.
func documentID(uri string) string {
	sum := sha256.Sum256([]byte(uri))
	return hex.EncodeToString(sum[:])[:12]
}
