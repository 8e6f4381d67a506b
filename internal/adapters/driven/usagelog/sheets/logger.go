// Package sheets logs answered queries to a Google Sheet, one row per
// query. The sheet is an audit trail only: a logging failure degrades
// to a warning and never fails the query response.
package sheets

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/askdocs/ragserver/internal/core/domain"
	"github.com/askdocs/ragserver/internal/core/ports/driven"
)

// Ensure Logger implements the interface.
var _ driven.UsageLogger = (*Logger)(nil)

// DefaultRange is the append target; Sheets finds the first empty row.
const DefaultRange = "A:D"

// Config holds configuration for the Sheets usage logger.
type Config struct {
	// SpreadsheetID identifies the target spreadsheet (required).
	SpreadsheetID string

	// CredentialsJSON is the service account key (required).
	CredentialsJSON []byte

	// Range is the A1-notation append range (default: A:D).
	Range string
}

// Logger appends usage records to a Google Sheet.
type Logger struct {
	service       *sheets.Service
	spreadsheetID string
	appendRange   string
}

// New creates a Sheets usage logger authenticated with a service
// account key.
func New(ctx context.Context, cfg Config) (*Logger, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("sheets: spreadsheet ID is required")
	}
	if len(cfg.CredentialsJSON) == 0 {
		return nil, fmt.Errorf("sheets: credentials are required")
	}
	if cfg.Range == "" {
		cfg.Range = DefaultRange
	}

	jwt, err := google.JWTConfigFromJSON(cfg.CredentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("sheets: parse service account key: %w", err)
	}

	service, err := sheets.NewService(ctx, option.WithTokenSource(jwt.TokenSource(ctx)))
	if err != nil {
		return nil, fmt.Errorf("sheets: create service: %w", err)
	}

	return &Logger{
		service:       service,
		spreadsheetID: cfg.SpreadsheetID,
		appendRange:   cfg.Range,
	}, nil
}

// Log appends one usage record as a row of
// {timestamp, query, answer, citations}.
func (l *Logger) Log(ctx context.Context, rec driven.UsageRecord) error {
	row := []any{
		rec.Timestamp.UTC().Format(time.RFC3339),
		rec.Query,
		rec.Answer,
		formatCitations(rec.Citations),
	}

	_, err := l.service.Spreadsheets.Values.
		Append(l.spreadsheetID, l.appendRange, &sheets.ValueRange{
			Values: [][]any{row},
		}).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets: append row: %w", err)
	}
	return nil
}

// formatCitations renders citations as "source#seq" pairs in one cell.
func formatCitations(citations []domain.Citation) string {
	parts := make([]string, len(citations))
	for i, c := range citations {
		parts[i] = fmt.Sprintf("%s#%d", c.Source, c.Sequence)
	}
	return strings.Join(parts, "; ")
}
