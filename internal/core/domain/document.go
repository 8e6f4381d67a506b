package domain

import "time"

// Document represents a source document after text extraction.
// Documents are immutable once ingested; re-ingesting the same URI
// replaces the previous entries in the index.
type Document struct {
	// ID is the unique identifier for the document, stable per URI.
	ID string

	// URI is the original location (file path or URL).
	URI string

	// Content is the full extracted text before chunking.
	Content string

	// IngestedAt is when the document was ingested.
	IngestedAt time.Time
}

// Chunk is a bounded, possibly overlapping span of a document.
// It is the unit of embedding and retrieval.
type Chunk struct {
	// ID is the unique identifier for the chunk, stable per
	// (document, sequence) so re-ingestion replaces rather than
	// duplicates index entries.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Sequence is the ordinal position within the document,
	// contiguous from zero.
	Sequence int

	// Start and End are byte offsets of Content within the
	// document text, End exclusive.
	Start int
	End   int

	// Content is the chunk text, equal to document[Start:End].
	Content string

	// Embedding is the vector representation. Populated during
	// ingestion; fixed dimensionality across the whole index.
	Embedding []float32
}

// Entry is a record stored in the vector index: the embedded passage
// plus the metadata needed for citation. The index is the exclusive
// owner of its entries.
type Entry struct {
	// ChunkID identifies the chunk; upserts are idempotent by this key.
	ChunkID string

	// DocumentID and Source identify where the passage came from.
	DocumentID string
	Source     string

	// Sequence is the chunk's position within its document.
	Sequence int

	// Content is the passage text.
	Content string

	// Embedding is the fixed-dimensionality vector.
	Embedding []float32
}
