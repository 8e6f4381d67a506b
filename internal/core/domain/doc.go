// Package domain contains the core business entities and errors for the
// retrieval pipeline: documents, chunks, queries, retrieval results and
// answers. It has no dependencies on adapters or external services.
package domain
