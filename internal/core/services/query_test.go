package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdocs/ragserver/internal/core/domain"
	"github.com/askdocs/ragserver/internal/core/ports/driven"
)

func newQueryService(embedder *mockEmbedder, index *mockIndex, llm *mockLLM, usage driven.UsageLogger) *QueryService {
	settings := fastSettings()
	retriever := NewRetriever(embedder, index, settings)
	assembler := NewContextAssembler(settings.MaxContextChars)
	synthesizer := NewAnswerSynthesizer(llm, &mockPrompts{}, settings)
	return NewQueryService(retriever, assembler, synthesizer, usage)
}

func TestAsk_FullPipeline(t *testing.T) {
	embedder := &mockEmbedder{vectors: map[string][]float32{"what is dharma": {1, 0}}, dims: 2}
	index := &mockIndex{results: domain.RetrievalResult{
		scored("d1:0", "d1", "gita.pdf", 0, "dharma passage", 0.95),
	}}
	llm := &mockLLM{response: "Dharma is duty. [1]"}
	usage := newMockUsageLogger()

	svc := newQueryService(embedder, index, llm, usage)
	answer, err := svc.Ask(context.Background(), domain.Query{Text: "what is dharma"})
	require.NoError(t, err)

	assert.Equal(t, "Dharma is duty. [1]", answer.Text)
	require.Len(t, answer.Citations, 1)
	assert.Equal(t, "gita.pdf", answer.Citations[0].Source)
	assert.Contains(t, llm.lastPrompt, "dharma passage")

	select {
	case rec := <-usage.records:
		assert.Equal(t, "what is dharma", rec.Query)
		assert.Equal(t, "Dharma is duty. [1]", rec.Answer)
		assert.Len(t, rec.Citations, 1)
	case <-time.After(2 * time.Second):
		t.Fatal("usage record never logged")
	}
}

func TestAsk_EmptyQueryRejected(t *testing.T) {
	svc := newQueryService(&mockEmbedder{dims: 2}, &mockIndex{}, &mockLLM{}, nil)
	_, err := svc.Ask(context.Background(), domain.Query{Text: "  "})
	assert.ErrorIs(t, err, domain.ErrInvalidConfig)
}

func TestAsk_EmptyIndexPropagates(t *testing.T) {
	embedder := &mockEmbedder{vectors: map[string][]float32{"q": {1, 0}}, dims: 2}
	index := &mockIndex{searchErr: domain.ErrEmptyIndex}

	svc := newQueryService(embedder, index, &mockLLM{}, nil)
	_, err := svc.Ask(context.Background(), domain.Query{Text: "q"})
	assert.ErrorIs(t, err, domain.ErrEmptyIndex)
}

func TestAsk_NoMatchesReturnsFixedAnswer(t *testing.T) {
	// Zero results above threshold is a valid outcome, not an error,
	// and the LLM is never called.
	embedder := &mockEmbedder{vectors: map[string][]float32{"q": {1, 0}}, dims: 2}
	index := &mockIndex{results: domain.RetrievalResult{}}
	llm := &mockLLM{response: "should not run"}

	svc := newQueryService(embedder, index, llm, nil)
	answer, err := svc.Ask(context.Background(), domain.Query{Text: "q"})
	require.NoError(t, err)

	assert.Equal(t, noMatchAnswer, answer.Text)
	assert.Empty(t, answer.Citations)
	assert.Zero(t, llm.calls)
}

func TestAsk_GenerationFailureSurfaces(t *testing.T) {
	embedder := &mockEmbedder{vectors: map[string][]float32{"q": {1, 0}}, dims: 2}
	index := &mockIndex{results: domain.RetrievalResult{
		scored("d1:0", "d1", "a.pdf", 0, "passage", 0.9),
	}}
	llm := &mockLLM{err: context.DeadlineExceeded}

	svc := newQueryService(embedder, index, llm, nil)
	_, err := svc.Ask(context.Background(), domain.Query{Text: "q"})
	require.Error(t, err)
}
