package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/askdocs/ragserver/internal/core/domain"
	"github.com/askdocs/ragserver/internal/core/ports/driven"
	"github.com/askdocs/ragserver/internal/core/ports/driving"
	"github.com/askdocs/ragserver/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// noMatchAnswer is returned when retrieval finds nothing above the
// threshold. The LLM is not consulted: with no grounding passages an
// answer could only come from the model's priors.
const noMatchAnswer = "I could not find anything relevant to this question in the indexed documents."

// usageLogTimeout bounds the fire-and-forget audit write so a slow
// sink cannot pile up goroutines.
const usageLogTimeout = 15 * time.Second

// QueryService answers questions by retrieving relevant passages,
// assembling a bounded context and synthesizing a cited answer.
type QueryService struct {
	retriever   *Retriever
	assembler   *ContextAssembler
	synthesizer *AnswerSynthesizer
	usageLog    driven.UsageLogger // optional, may be nil
}

// NewQueryService creates a query service. usageLog may be nil to
// disable audit logging.
func NewQueryService(
	retriever *Retriever,
	assembler *ContextAssembler,
	synthesizer *AnswerSynthesizer,
	usageLog driven.UsageLogger,
) *QueryService {
	return &QueryService{
		retriever:   retriever,
		assembler:   assembler,
		synthesizer: synthesizer,
		usageLog:    usageLog,
	}
}

// Ask runs the full retrieve-assemble-synthesize pipeline for one
// query. ErrEmptyIndex, ErrEmbeddingUnavailable and
// ErrGenerationUnavailable propagate to the caller; a retrieval that
// finds nothing above the threshold returns a fixed no-match answer
// with zero citations.
func (s *QueryService) Ask(ctx context.Context, query domain.Query) (*domain.Answer, error) {
	text := strings.TrimSpace(query.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: query text is empty", domain.ErrInvalidConfig)
	}
	query.Text = text

	logger.Section("Query")
	logger.Debug("Question: %q", text)

	results, err := s.retriever.Retrieve(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		logger.Info("No passages above threshold for %q", text)
		answer := &domain.Answer{Text: noMatchAnswer, Citations: []domain.Citation{}}
		s.logUsage(query.Text, answer)
		return answer, nil
	}

	contextText, citations := s.assembler.Assemble(results)

	answer, err := s.synthesizer.Synthesize(ctx, query.Text, contextText, citations)
	if err != nil {
		return nil, err
	}

	s.logUsage(query.Text, answer)
	return answer, nil
}

// logUsage appends the query/answer pair to the audit sink without
// blocking the response. Failures degrade to a warning.
func (s *QueryService) logUsage(query string, answer *domain.Answer) {
	if s.usageLog == nil {
		return
	}

	rec := driven.UsageRecord{
		Timestamp: time.Now(),
		Query:     query,
		Answer:    answer.Text,
		Citations: answer.Citations,
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), usageLogTimeout)
		defer cancel()
		if err := s.usageLog.Log(ctx, rec); err != nil {
			logger.Warn("Usage log append failed: %v", err)
		}
	}()
}
