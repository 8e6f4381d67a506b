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

// Generation defaults. Temperature stays low so answers track the
// provided context rather than the model's priors.
const (
	defaultMaxTokens   = 1024
	defaultTemperature = 0.2
)

// AnswerSynthesizer produces a cited answer from an assembled context
// using an LLM and a prompt template.
type AnswerSynthesizer struct {
	llm      driven.LLMService
	prompts  driven.PromptStore
	settings domain.Settings
}

// NewAnswerSynthesizer creates a synthesizer.
func NewAnswerSynthesizer(llm driven.LLMService, prompts driven.PromptStore, settings domain.Settings) *AnswerSynthesizer {
	return &AnswerSynthesizer{
		llm:      llm,
		prompts:  prompts,
		settings: settings,
	}
}

// Synthesize generates an answer grounded in the context text. The LLM
// call is retried with bounded backoff; exhaustion surfaces as
// ErrGenerationUnavailable rather than a silent empty answer. The
// citations are attached untouched: they describe the context, which
// is exactly what the model saw.
func (s *AnswerSynthesizer) Synthesize(
	ctx context.Context, question, contextText string, citations []domain.Citation,
) (*domain.Answer, error) {
	template, err := s.prompts.Get(driven.PromptAnswer)
	if err != nil {
		return nil, fmt.Errorf("load answer prompt: %w", err)
	}
	prompt := fmt.Sprintf(template, contextText, question)

	var text string
	err = withRetry(ctx, s.settings.MaxRetries, s.settings.RetryBaseDelay, "answer generation", func() error {
		var genErr error
		text, genErr = s.llm.Generate(ctx, prompt, driven.GenerateOptions{
			MaxTokens:   defaultMaxTokens,
			Temperature: defaultTemperature,
		})
		return genErr
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrGenerationUnavailable, err)
	}

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: model returned an empty completion", domain.ErrGenerationUnavailable)
	}

	logger.Debug("Generated %d chars with %s", len(text), s.llm.ModelName())
	return &domain.Answer{
		Text:      text,
		Citations: citations,
		Model:     s.llm.ModelName(),
	}, nil
}
