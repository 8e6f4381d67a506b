package driven

import "context"

// EmbeddingService maps text to fixed-length vectors via an external
// embedding model. It is the sole boundary where model latency and
// nondeterminism enter the pipeline.
//
// Implementations may include:
//   - OpenAI (text-embedding-3-small, text-embedding-3-large)
//   - Ollama (nomic-embed-text, all-minilm)
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts, preserving
	// input order. More efficient than calling Embed in a loop.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size. Determined by the
	// model; must match the vector index configuration.
	Dimensions() int

	// ModelName returns the name of the embedding model in use.
	ModelName() string

	// Ping validates the service is reachable with a lightweight
	// request. Used at startup before committing to serve traffic.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
