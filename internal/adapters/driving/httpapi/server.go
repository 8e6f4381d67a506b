// Package httpapi exposes the question-answering pipeline over a JSON
// HTTP API: POST /query, POST /ingest and GET /healthz.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/askdocs/ragserver/internal/core/domain"
	"github.com/askdocs/ragserver/internal/core/ports/driven"
	"github.com/askdocs/ragserver/internal/core/ports/driving"
	"github.com/askdocs/ragserver/internal/logger"
)

// Server routes HTTP requests to the driving services. Each request
// runs on its own goroutine; the services are safe for concurrent use
// because searches never block and index writes swap immutable
// snapshots.
type Server struct {
	query  driving.QueryService
	ingest driving.IngestionService
	index  driven.VectorIndex
	srv    *http.Server
}

// NewServer creates the HTTP server listening on addr.
func NewServer(addr string, query driving.QueryService, ingest driving.IngestionService, index driven.VectorIndex) *Server {
	s := &Server{
		query:  query,
		ingest: ingest,
		index:  index,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/query", s.handleQuery)
	mux.HandleFunc("/ingest", s.handleIngest)
	mux.HandleFunc("/healthz", s.handleHealthz)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// ListenAndServe blocks serving requests until Shutdown is called.
func (s *Server) ListenAndServe() error {
	logger.Info("HTTP API listening on %s", s.srv.Addr)
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown drains in-flight requests and stops the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

// Handler returns the route handler, used directly in tests.
func (s *Server) Handler() http.Handler {
	return s.srv.Handler
}

type queryRequest struct {
	Query     string   `json:"query"`
	TopK      int      `json:"top_k,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

type queryResponse struct {
	Answer    string            `json:"answer"`
	Citations []domain.Citation `json:"citations"`
	Model     string            `json:"model,omitempty"`
}

type ingestRequest struct {
	Paths []string `json:"paths"`
}

type healthzResponse struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
	Entries   int    `json:"entries"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required")
		return
	}

	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	answer, err := s.query.Ask(r.Context(), domain.Query{
		Text:      req.Query,
		TopK:      req.TopK,
		Threshold: req.Threshold,
	})
	if err != nil {
		writeQueryError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, queryResponse{
		Answer:    answer.Text,
		Citations: answer.Citations,
		Model:     answer.Model,
	})
}

// writeQueryError maps pipeline errors to status codes that let a
// client distinguish "nothing to search" from "backend down".
func writeQueryError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidConfig):
		writeError(w, http.StatusUnprocessableEntity, "invalid_query", err.Error())
	case errors.Is(err, domain.ErrEmptyIndex):
		writeError(w, http.StatusNotFound, "empty_index", "no documents have been ingested yet")
	case errors.Is(err, domain.ErrEmbeddingUnavailable):
		writeError(w, http.StatusBadGateway, "embedding_unavailable", err.Error())
	case errors.Is(err, domain.ErrGenerationUnavailable):
		writeError(w, http.StatusBadGateway, "generation_unavailable", err.Error())
	default:
		logger.Warn("Query failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "query failed")
	}
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "POST required")
		return
	}

	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}
	if len(req.Paths) == 0 {
		writeError(w, http.StatusUnprocessableEntity, "invalid_request", "paths must not be empty")
		return
	}

	report, err := s.ingest.Ingest(r.Context(), req.Paths)
	if err != nil {
		logger.Warn("Ingestion failed: %v", err)
		writeError(w, http.StatusInternalServerError, "internal", "ingestion failed")
		return
	}

	writeJSON(w, http.StatusOK, report)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "GET required")
		return
	}

	writeJSON(w, http.StatusOK, healthzResponse{
		Status:    "ok",
		Documents: s.index.Documents(),
		Entries:   s.index.Len(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Response encoding failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, msg string) {
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
