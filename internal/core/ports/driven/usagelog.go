package driven

import (
	"context"
	"time"

	"github.com/askdocs/ragserver/internal/core/domain"
)

// UsageRecord is one row of the query/answer audit log.
type UsageRecord struct {
	Timestamp time.Time
	Query     string
	Answer    string
	Citations []domain.Citation
}

// UsageLogger records answered queries to an external sink such as a
// spreadsheet. Fire-and-forget from the core's perspective: a logging
// failure must never fail the query response.
type UsageLogger interface {
	// Log appends one usage record.
	Log(ctx context.Context, rec UsageRecord) error
}
