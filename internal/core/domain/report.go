package domain

import "time"

// DocumentStatus is the outcome of ingesting one document.
type DocumentStatus string

const (
	// DocumentStatusSuccess means the document was chunked, embedded
	// and upserted into the index.
	DocumentStatusSuccess DocumentStatus = "success"

	// DocumentStatusFailed means the document was skipped after an
	// extraction or embedding failure.
	DocumentStatusFailed DocumentStatus = "failed"
)

// DocumentReport records the per-document outcome of an ingestion run.
type DocumentReport struct {
	DocumentID string         `json:"document_id,omitempty"`
	URI        string         `json:"uri"`
	Status     DocumentStatus `json:"status"`
	Chunks     int            `json:"chunks"`
	Error      string         `json:"error,omitempty"`
}

// IngestReport summarises an ingestion run. Failures are collected
// here, never dropped.
type IngestReport struct {
	ID         string           `json:"id"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
	Documents  []DocumentReport `json:"documents"`
}

// Succeeded returns the number of successfully ingested documents.
func (r *IngestReport) Succeeded() int {
	n := 0
	for _, d := range r.Documents {
		if d.Status == DocumentStatusSuccess {
			n++
		}
	}
	return n
}

// Failed returns the number of failed documents.
func (r *IngestReport) Failed() int {
	return len(r.Documents) - r.Succeeded()
}
