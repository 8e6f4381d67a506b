// Package groq provides an LLM service adapter for the Groq API.
// Groq exposes an OpenAI-compatible chat completions endpoint, so the
// adapter reuses the OpenAI client with Groq defaults.
package groq

import (
	"time"

	"github.com/askdocs/ragserver/internal/adapters/driven/llm/openai"
)

// Default configuration values.
const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.3-70b-versatile"
)

// Config holds configuration for the Groq LLM service.
type Config struct {
	// APIKey is the Groq API key (required).
	APIKey string

	// Model is the LLM model to use (default: llama-3.3-70b-versatile).
	Model string

	// Timeout is the request timeout.
	Timeout time.Duration
}

// NewLLMService creates an LLM service backed by Groq.
func NewLLMService(cfg Config) (*openai.LLMService, error) {
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return openai.NewLLMService(openai.Config{
		APIKey:  cfg.APIKey,
		BaseURL: DefaultBaseURL,
		Model:   model,
		Timeout: cfg.Timeout,
	})
}
