package services

import (
	"context"
	"fmt"
	"time"

	"github.com/askdocs/ragserver/internal/core/domain"
	"github.com/askdocs/ragserver/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing. Each
// text maps to a fixed vector via the vectors map; failUntil makes the
// first N calls fail to exercise the retry path.
type mockEmbedder struct {
	vectors   map[string][]float32
	dims      int
	err       error
	failUntil int
	calls     int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.err != nil && m.calls <= m.failUntil {
		return nil, m.err
	}
	if m.err != nil && m.failUntil == 0 {
		return nil, m.err
	}
	v, ok := m.vectors[text]
	if !ok {
		return nil, fmt.Errorf("no vector for %q", text)
	}
	return v, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.calls++
	if m.err != nil && m.calls <= m.failUntil {
		return nil, m.err
	}
	if m.err != nil && m.failUntil == 0 {
		return nil, m.err
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		v, ok := m.vectors[t]
		if !ok {
			return nil, fmt.Errorf("no vector for %q", t)
		}
		out[i] = v
	}
	return out, nil
}

func (m *mockEmbedder) Dimensions() int             { return m.dims }
func (m *mockEmbedder) ModelName() string           { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// mockIndex implements driven.VectorIndex for testing.
type mockIndex struct {
	results   domain.RetrievalResult
	entries   []domain.Entry
	searchErr error
	upsertErr error
	loadErr   error
	loadPath  string

	lastTopK      int
	lastThreshold float64
}

func (m *mockIndex) Upsert(_ context.Context, entries []domain.Entry) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.entries = append(m.entries, entries...)
	return nil
}

func (m *mockIndex) Search(_ context.Context, _ []float32, topK int, threshold float64) (domain.RetrievalResult, error) {
	m.lastTopK = topK
	m.lastThreshold = threshold
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	if topK < len(m.results) {
		return m.results[:topK], nil
	}
	return m.results, nil
}

func (m *mockIndex) Load(_ context.Context, path string) error {
	m.loadPath = path
	return m.loadErr
}

func (m *mockIndex) Persist(_ context.Context, _ string) error { return nil }
func (m *mockIndex) Len() int                                  { return len(m.entries) }
func (m *mockIndex) Dimensions() int                           { return 2 }

func (m *mockIndex) Documents() int {
	seen := map[string]struct{}{}
	for _, e := range m.entries {
		seen[e.DocumentID] = struct{}{}
	}
	return len(seen)
}

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	response   string
	err        error
	failUntil  int
	calls      int
	lastPrompt string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.calls++
	m.lastPrompt = prompt
	if m.err != nil && (m.failUntil == 0 || m.calls <= m.failUntil) {
		return "", m.err
	}
	return m.response, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockPrompts implements driven.PromptStore for testing.
type mockPrompts struct {
	template string
	err      error
}

func (m *mockPrompts) Get(_ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	if m.template == "" {
		return "Context:\n%s\n\nQuestion: %s\n", nil
	}
	return m.template, nil
}

// mockExtractor implements driven.TextExtractor for testing. texts
// maps path to extracted content; missing paths fail.
type mockExtractor struct {
	texts map[string]string
}

func (m *mockExtractor) Extract(_ context.Context, path string) (string, error) {
	text, ok := m.texts[path]
	if !ok {
		return "", fmt.Errorf("cannot read %s", path)
	}
	return text, nil
}

func (m *mockExtractor) SupportedExtensions() []string { return []string{".pdf"} }

// mockFetcher implements driven.SnapshotFetcher for testing.
type mockFetcher struct {
	path string
	err  error
}

func (m *mockFetcher) Fetch(_ context.Context, _ string) (string, error) {
	return m.path, m.err
}

// mockUsageLogger implements driven.UsageLogger for testing.
type mockUsageLogger struct {
	records chan driven.UsageRecord
	err     error
}

func newMockUsageLogger() *mockUsageLogger {
	return &mockUsageLogger{records: make(chan driven.UsageRecord, 8)}
}

func (m *mockUsageLogger) Log(_ context.Context, rec driven.UsageRecord) error {
	m.records <- rec
	return m.err
}

// fastSettings returns defaults with retry delays short enough for
// tests.
func fastSettings() domain.Settings {
	s := domain.DefaultSettings()
	s.RetryBaseDelay = time.Millisecond
	return s
}
