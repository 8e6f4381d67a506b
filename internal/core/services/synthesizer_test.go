package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdocs/ragserver/internal/core/domain"
)

func TestSynthesize_FillsTemplate(t *testing.T) {
	llm := &mockLLM{response: "Dharma is duty. [1]"}
	s := NewAnswerSynthesizer(llm, &mockPrompts{}, fastSettings())

	citations := []domain.Citation{{Marker: 1, DocumentID: "d1", Source: "gita.pdf"}}
	answer, err := s.Synthesize(context.Background(), "what is dharma", "[1] gita.pdf\nsome passage", citations)
	require.NoError(t, err)

	assert.Equal(t, "Dharma is duty. [1]", answer.Text)
	assert.Equal(t, citations, answer.Citations)
	assert.Equal(t, "mock-llm", answer.Model)
	assert.Contains(t, llm.lastPrompt, "some passage")
	assert.Contains(t, llm.lastPrompt, "what is dharma")
}

func TestSynthesize_RetriedThenSucceeds(t *testing.T) {
	llm := &mockLLM{response: "answer", err: errors.New("rate limited"), failUntil: 1}
	s := NewAnswerSynthesizer(llm, &mockPrompts{}, fastSettings())

	answer, err := s.Synthesize(context.Background(), "q", "ctx", nil)
	require.NoError(t, err)
	assert.Equal(t, "answer", answer.Text)
	assert.Equal(t, 2, llm.calls)
}

func TestSynthesize_ExhaustedSurfacesUnavailable(t *testing.T) {
	llm := &mockLLM{err: errors.New("rate limited")}
	s := NewAnswerSynthesizer(llm, &mockPrompts{}, fastSettings())

	_, err := s.Synthesize(context.Background(), "q", "ctx", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestSynthesize_EmptyCompletionIsAnError(t *testing.T) {
	llm := &mockLLM{response: "   "}
	s := NewAnswerSynthesizer(llm, &mockPrompts{}, fastSettings())

	_, err := s.Synthesize(context.Background(), "q", "ctx", nil)
	assert.ErrorIs(t, err, domain.ErrGenerationUnavailable)
}

func TestSynthesize_PromptStoreFailure(t *testing.T) {
	llm := &mockLLM{response: "answer"}
	s := NewAnswerSynthesizer(llm, &mockPrompts{err: errors.New("no such prompt")}, fastSettings())

	_, err := s.Synthesize(context.Background(), "q", "ctx", nil)
	require.Error(t, err)
	assert.Zero(t, llm.calls)
}
