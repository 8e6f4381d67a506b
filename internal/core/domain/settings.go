package domain

import (
	"fmt"
	"time"
)

// Default pipeline parameters.
const (
	DefaultChunkSize       = 1000
	DefaultChunkOverlap    = 200
	DefaultTopK            = 5
	DefaultScoreThreshold  = 0.0
	DefaultMaxContextChars = 6000
	DefaultEmbedBatchSize  = 64
	DefaultMaxRetries      = 3
	DefaultRetryBaseDelay  = 500 * time.Millisecond
)

// Settings holds the validated pipeline configuration. It is
// constructed once at startup and threaded through the services;
// there is no hidden global state.
type Settings struct {
	// ChunkSize is the maximum chunk length in bytes.
	ChunkSize int

	// ChunkOverlap is the overlap window between consecutive chunks.
	// Must be non-negative and strictly less than ChunkSize.
	ChunkOverlap int

	// TopK is the default maximum number of retrieval results.
	TopK int

	// ScoreThreshold is the default minimum similarity score.
	ScoreThreshold float64

	// MaxContextChars bounds the assembled prompt context length.
	MaxContextChars int

	// EmbedBatchSize is the number of chunks embedded per batch call.
	EmbedBatchSize int

	// MaxRetries bounds retry attempts for external calls.
	MaxRetries int

	// RetryBaseDelay is the initial backoff delay; it doubles per attempt.
	RetryBaseDelay time.Duration
}

// DefaultSettings returns settings with all defaults applied.
func DefaultSettings() Settings {
	return Settings{
		ChunkSize:       DefaultChunkSize,
		ChunkOverlap:    DefaultChunkOverlap,
		TopK:            DefaultTopK,
		ScoreThreshold:  DefaultScoreThreshold,
		MaxContextChars: DefaultMaxContextChars,
		EmbedBatchSize:  DefaultEmbedBatchSize,
		MaxRetries:      DefaultMaxRetries,
		RetryBaseDelay:  DefaultRetryBaseDelay,
	}
}

// Validate checks the settings. All violations are reported as
// ErrInvalidConfig so startup can fail fast.
func (s Settings) Validate() error {
	if s.ChunkSize <= 0 {
		return fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidConfig, s.ChunkSize)
	}
	if s.ChunkOverlap < 0 {
		return fmt.Errorf("%w: chunk overlap must be non-negative, got %d", ErrInvalidConfig, s.ChunkOverlap)
	}
	if s.ChunkOverlap >= s.ChunkSize {
		return fmt.Errorf("%w: chunk overlap %d must be less than chunk size %d",
			ErrInvalidConfig, s.ChunkOverlap, s.ChunkSize)
	}
	if s.TopK <= 0 {
		return fmt.Errorf("%w: top-k must be positive, got %d", ErrInvalidConfig, s.TopK)
	}
	if s.ScoreThreshold < -1 || s.ScoreThreshold > 1 {
		return fmt.Errorf("%w: score threshold must be within [-1, 1], got %g",
			ErrInvalidConfig, s.ScoreThreshold)
	}
	if s.MaxContextChars <= 0 {
		return fmt.Errorf("%w: max context length must be positive, got %d",
			ErrInvalidConfig, s.MaxContextChars)
	}
	if s.EmbedBatchSize <= 0 {
		return fmt.Errorf("%w: embed batch size must be positive, got %d",
			ErrInvalidConfig, s.EmbedBatchSize)
	}
	if s.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries must be non-negative, got %d",
			ErrInvalidConfig, s.MaxRetries)
	}
	return nil
}
