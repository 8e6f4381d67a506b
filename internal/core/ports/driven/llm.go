package driven

import "context"

// LLMService produces text completions for answer synthesis.
//
// Implementations may include:
//   - OpenAI (gpt-4o, gpt-4o-mini)
//   - Groq (llama, mixtral, gemma over the OpenAI-compatible API)
type LLMService interface {
	// Generate produces a completion from a prompt.
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (string, error)

	// ModelName returns the name of the model in use.
	ModelName() string

	// Ping validates the service is reachable with a lightweight
	// request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// GenerateOptions configures text generation behaviour.
type GenerateOptions struct {
	// MaxTokens is the maximum number of tokens to generate.
	MaxTokens int

	// Temperature controls randomness (0.0 = deterministic).
	Temperature float64

	// StopWords are sequences that stop generation when encountered.
	StopWords []string
}
