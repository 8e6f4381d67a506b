package driving

import (
	"context"

	"github.com/askdocs/ragserver/internal/core/domain"
)

// QueryService answers questions against the indexed documents.
type QueryService interface {
	// Ask retrieves relevant passages for the query, assembles a
	// bounded context and synthesizes a cited answer.
	Ask(ctx context.Context, query domain.Query) (*domain.Answer, error)
}
