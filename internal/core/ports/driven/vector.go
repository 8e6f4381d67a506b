package driven

import (
	"context"

	"github.com/askdocs/ragserver/internal/core/domain"
)

// VectorIndex stores embedded passages and answers nearest-neighbour
// queries by cosine similarity. The index is the only shared mutable
// resource in the system: searches are read-only and never block each
// other, and an upsert must never let a reader observe a torn entry.
type VectorIndex interface {
	// Upsert inserts or replaces entries, idempotent by chunk ID.
	// All vectors must match the index dimensionality.
	Upsert(ctx context.Context, entries []domain.Entry) error

	// Search returns the entries most similar to the query vector,
	// highest score first, at most topK results, every score >=
	// threshold. Ties break by lower sequence then lower document ID.
	// Returns domain.ErrEmptyIndex when the index holds zero entries.
	Search(ctx context.Context, query []float32, topK int, threshold float64) (domain.RetrievalResult, error)

	// Load replaces the index contents from a persisted snapshot.
	// A snapshot with mismatched version, dimensionality or metric is
	// rejected with domain.ErrSnapshotMismatch.
	Load(ctx context.Context, path string) error

	// Persist writes a versioned snapshot of the index to path.
	Persist(ctx context.Context, path string) error

	// Len returns the number of stored entries.
	Len() int

	// Documents returns the number of distinct documents with entries
	// in the index.
	Documents() int

	// Dimensions returns the fixed vector dimensionality.
	Dimensions() int
}
