package domain

import "errors"

// Domain errors represent pipeline failures. Callers match them with
// errors.Is; adapters wrap them with context via fmt.Errorf("%w").
var (
	// ErrInvalidConfig indicates bad pipeline parameters (for example
	// overlap >= chunk size). Fatal, caught at startup before any work.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingUnavailable indicates the external embedding call
	// failed after bounded retries.
	ErrEmbeddingUnavailable = errors.New("embedding service unavailable")

	// ErrGenerationUnavailable indicates the LLM call failed after
	// bounded retries. Surfaced explicitly, never a silent empty answer.
	ErrGenerationUnavailable = errors.New("generation service unavailable")

	// ErrEmptyIndex indicates a search against an index with zero
	// entries. Distinct from a valid empty result above threshold.
	ErrEmptyIndex = errors.New("vector index is empty")

	// ErrIngestion indicates a per-document ingestion failure. It is
	// isolated to the document and never aborts the batch.
	ErrIngestion = errors.New("ingestion failed")

	// ErrDimensionMismatch indicates a vector whose dimensionality does
	// not match the index. Hard ingestion error.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrSnapshotMismatch indicates a persisted snapshot whose version,
	// dimensionality or similarity metric does not match this index.
	// Rejected at load time rather than silently misinterpreted.
	ErrSnapshotMismatch = errors.New("snapshot incompatible with index")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")
)
