package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdocs/ragserver/internal/core/domain"
)

// stubQuery implements driving.QueryService.
type stubQuery struct {
	answer *domain.Answer
	err    error
	last   domain.Query
}

func (s *stubQuery) Ask(_ context.Context, q domain.Query) (*domain.Answer, error) {
	s.last = q
	if s.err != nil {
		return nil, s.err
	}
	return s.answer, nil
}

// stubIngest implements driving.IngestionService.
type stubIngest struct {
	report *domain.IngestReport
	err    error
	paths  []string
}

func (s *stubIngest) Ingest(_ context.Context, paths []string) (*domain.IngestReport, error) {
	s.paths = paths
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

func (s *stubIngest) Bootstrap(_ context.Context, _ string) error { return s.err }

// stubIndex implements driven.VectorIndex for the health endpoint.
type stubIndex struct {
	entries int
	docs    int
}

func (s *stubIndex) Upsert(_ context.Context, _ []domain.Entry) error { return nil }
func (s *stubIndex) Search(_ context.Context, _ []float32, _ int, _ float64) (domain.RetrievalResult, error) {
	return nil, nil
}
func (s *stubIndex) Load(_ context.Context, _ string) error    { return nil }
func (s *stubIndex) Persist(_ context.Context, _ string) error { return nil }
func (s *stubIndex) Len() int                                  { return s.entries }
func (s *stubIndex) Documents() int                            { return s.docs }
func (s *stubIndex) Dimensions() int                           { return 2 }

func newTestServer(query *stubQuery, ingest *stubIngest, index *stubIndex) *httptest.Server {
	if query == nil {
		query = &stubQuery{}
	}
	if ingest == nil {
		ingest = &stubIngest{}
	}
	if index == nil {
		index = &stubIndex{}
	}
	srv := NewServer(":0", query, ingest, index)
	return httptest.NewServer(srv.Handler())
}

func postJSON(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestQuery_Success(t *testing.T) {
	query := &stubQuery{answer: &domain.Answer{
		Text: "Dharma is duty. [1]",
		Citations: []domain.Citation{
			{Marker: 1, DocumentID: "d1", Source: "gita.pdf", Sequence: 0},
		},
		Model: "gpt-4o-mini",
	}}
	ts := newTestServer(query, nil, nil)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/query", `{"query":"what is dharma","top_k":3}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[queryResponse](t, resp)
	assert.Equal(t, "Dharma is duty. [1]", body.Answer)
	require.Len(t, body.Citations, 1)
	assert.Equal(t, "gita.pdf", body.Citations[0].Source)

	assert.Equal(t, "what is dharma", query.last.Text)
	assert.Equal(t, 3, query.last.TopK)
	assert.Nil(t, query.last.Threshold)
}

func TestQuery_ThresholdZeroIsPassedThrough(t *testing.T) {
	query := &stubQuery{answer: &domain.Answer{Text: "ok"}}
	ts := newTestServer(query, nil, nil)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/query", `{"query":"q","threshold":0}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	require.NotNil(t, query.last.Threshold)
	assert.Equal(t, 0.0, *query.last.Threshold)
}

func TestQuery_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"empty index", domain.ErrEmptyIndex, http.StatusNotFound, "empty_index"},
		{"embedding down", domain.ErrEmbeddingUnavailable, http.StatusBadGateway, "embedding_unavailable"},
		{"generation down", domain.ErrGenerationUnavailable, http.StatusBadGateway, "generation_unavailable"},
		{"invalid query", domain.ErrInvalidConfig, http.StatusUnprocessableEntity, "invalid_query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(&stubQuery{err: tt.err}, nil, nil)
			defer ts.Close()

			resp := postJSON(t, ts.URL+"/query", `{"query":"q"}`)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)

			body := decode[errorResponse](t, resp)
			assert.Equal(t, tt.wantCode, body.Code)
		})
	}
}

func TestQuery_MalformedBody(t *testing.T) {
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/query", `{"query":`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestQuery_MethodNotAllowed(t *testing.T) {
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/query")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestIngest_ReturnsReport(t *testing.T) {
	ingest := &stubIngest{report: &domain.IngestReport{
		ID: "run-1",
		Documents: []domain.DocumentReport{
			{DocumentID: "d1", URI: "a.pdf", Status: domain.DocumentStatusSuccess, Chunks: 12},
			{URI: "b.pdf", Status: domain.DocumentStatusFailed, Error: "extract b.pdf: bad xref"},
		},
	}}
	ts := newTestServer(nil, ingest, nil)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/ingest", `{"paths":["a.pdf","b.pdf"]}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	report := decode[domain.IngestReport](t, resp)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, ingest.paths)
	require.Len(t, report.Documents, 2)
	assert.Equal(t, 1, report.Succeeded())
	assert.Equal(t, 1, report.Failed())
}

func TestIngest_EmptyPathsRejected(t *testing.T) {
	ts := newTestServer(nil, nil, nil)
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/ingest", `{"paths":[]}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(nil, nil, &stubIndex{entries: 42, docs: 3})
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := decode[healthzResponse](t, resp)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 3, body.Documents)
	assert.Equal(t, 42, body.Entries)
}
