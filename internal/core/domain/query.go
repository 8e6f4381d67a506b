package domain

// Query is a single free-text question with optional per-request
// overrides of the configured retrieval policy. Queries are stateless
// and scoped to one request.
type Query struct {
	// Text is the question.
	Text string

	// TopK overrides the configured result limit when > 0.
	TopK int

	// Threshold overrides the configured minimum similarity score
	// when non-nil. Zero is a meaningful threshold, hence the pointer.
	Threshold *float64
}

// ScoredEntry pairs an index entry with its similarity score for one
// retrieval.
type ScoredEntry struct {
	Entry Entry

	// Score is the cosine similarity to the query vector.
	Score float64
}

// RetrievalResult is an ordered sequence of scored entries, highest
// score first. Ties are broken by lower sequence then lower document
// ID so repeated searches over the same index state return identical
// ordering.
type RetrievalResult []ScoredEntry

// Citation names a passage that backed a generated answer.
type Citation struct {
	// Marker is the 1-based reference number used in the prompt
	// context ("[1]", "[2]", ...).
	Marker int `json:"marker"`

	// DocumentID and Source identify the cited document.
	DocumentID string `json:"document_id"`
	Source     string `json:"source"`

	// Sequence is the cited chunk's position within its document.
	Sequence int `json:"sequence"`
}

// Answer is the synthesized response to a query.
type Answer struct {
	// Text is the generated answer.
	Text string `json:"text"`

	// Citations lists the passages included in the prompt context.
	Citations []Citation `json:"citations"`

	// Model is the name of the model that produced the answer.
	Model string `json:"model,omitempty"`
}
