// Package services implements the core question-answering pipeline:
// retrieval, context assembly, answer synthesis and document ingestion.
// Services depend only on the driven ports; every external system sits
// behind an interface so the pipeline is testable without network
// access.
package services
