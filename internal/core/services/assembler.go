package services

import (
	"fmt"
	"strings"

	"github.com/askdocs/ragserver/internal/core/domain"
	"github.com/askdocs/ragserver/internal/logger"
)

// ContextAssembler turns retrieved passages into a bounded prompt
// context. Passages are taken greedily in retrieval order until the
// character budget is exhausted; a passage is included whole or not at
// all, never truncated mid-passage.
type ContextAssembler struct {
	maxChars int
}

// NewContextAssembler creates an assembler with the given character
// budget for the rendered context.
func NewContextAssembler(maxChars int) *ContextAssembler {
	return &ContextAssembler{maxChars: maxChars}
}

// Assemble renders the passages as numbered context blocks and returns
// the context text together with one citation per included passage.
// The citations name exactly the passages present in the text, in
// marker order, so the provenance of an answer is never wider than its
// prompt.
func (a *ContextAssembler) Assemble(results domain.RetrievalResult) (string, []domain.Citation) {
	var b strings.Builder
	citations := make([]domain.Citation, 0, len(results))

	for _, r := range results {
		marker := len(citations) + 1
		block := fmt.Sprintf("[%d] %s\n%s", marker, r.Entry.Source, r.Entry.Content)
		if b.Len() > 0 {
			block = "\n\n" + block
		}

		if b.Len()+len(block) > a.maxChars {
			if len(block) > a.maxChars {
				logger.Warn("Dropping passage %s: %d chars exceeds context budget %d",
					r.Entry.ChunkID, len(block), a.maxChars)
			} else {
				logger.Debug("Context budget reached, skipping passage %s", r.Entry.ChunkID)
			}
			continue
		}

		b.WriteString(block)
		citations = append(citations, domain.Citation{
			Marker:     marker,
			DocumentID: r.Entry.DocumentID,
			Source:     r.Entry.Source,
			Sequence:   r.Entry.Sequence,
		})
	}

	return b.String(), citations
}
