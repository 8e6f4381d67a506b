package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/askdocs/ragserver/internal/core/domain"
	"github.com/askdocs/ragserver/internal/core/ports/driven"
	"github.com/askdocs/ragserver/internal/logger"
)

// Retriever embeds a query and searches the vector index. Per-query
// top-k and threshold overrides fall back to the configured defaults.
type Retriever struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	settings domain.Settings
}

// NewRetriever creates a retriever.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex, settings domain.Settings) *Retriever {
	return &Retriever{
		embedder: embedder,
		index:    index,
		settings: settings,
	}
}

// Retrieve returns the passages most similar to the query, highest
// score first. An index with zero entries yields ErrEmptyIndex; zero
// results above the threshold is a valid empty result, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query domain.Query) (domain.RetrievalResult, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return domain.RetrievalResult{}, nil
	}

	topK := query.TopK
	if topK <= 0 {
		topK = r.settings.TopK
	}
	threshold := r.settings.ScoreThreshold
	if query.Threshold != nil {
		threshold = *query.Threshold
	}

	var vector []float32
	err := withRetry(ctx, r.settings.MaxRetries, r.settings.RetryBaseDelay, "query embedding", func() error {
		var embedErr error
		vector, embedErr = r.embedder.Embed(ctx, text)
		return embedErr
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrEmbeddingUnavailable, err)
	}

	results, err := r.index.Search(ctx, vector, topK, threshold)
	if err != nil {
		return nil, err
	}

	logger.Debug("Retrieved %d passages (top-k=%d, threshold=%g)", len(results), topK, threshold)
	return results, nil
}
