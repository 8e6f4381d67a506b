// Package memory provides an in-memory vector index with brute-force
// cosine similarity search over immutable snapshots.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/askdocs/ragserver/internal/adapters/driven/vector/sqlitesnap"
	"github.com/askdocs/ragserver/internal/core/domain"
	"github.com/askdocs/ragserver/internal/core/ports/driven"
	"github.com/askdocs/ragserver/internal/logger"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// Metric is the similarity metric recorded in snapshots. Only cosine
// is supported; a snapshot persisted under a different metric is
// rejected at load time.
const Metric = "cosine"

// snapshot is an immutable view of the index contents. Readers load
// the current snapshot once and never take a lock; writers build a
// new snapshot and swap the pointer.
type snapshot struct {
	entries []domain.Entry
	byID    map[string]int
}

// Index stores entries in memory and searches them exhaustively.
// Searches are wait-free with respect to upserts: an upsert copies the
// current snapshot, applies its changes and swaps in the result, so a
// concurrent reader sees either the old or the new state, never a torn
// entry.
type Index struct {
	dims int

	mu   sync.Mutex // serialises writers only
	snap atomic.Pointer[snapshot]
}

// New creates an empty index with the given fixed dimensionality.
func New(dims int) *Index {
	idx := &Index{dims: dims}
	idx.snap.Store(&snapshot{byID: map[string]int{}})
	return idx
}

// Upsert inserts or replaces entries, idempotent by chunk ID.
func (idx *Index) Upsert(_ context.Context, entries []domain.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	for _, e := range entries {
		if len(e.Embedding) != idx.dims {
			return fmt.Errorf("%w: entry %s has %d dimensions, index has %d",
				domain.ErrDimensionMismatch, e.ChunkID, len(e.Embedding), idx.dims)
		}
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	cur := idx.snap.Load()
	next := &snapshot{
		entries: make([]domain.Entry, len(cur.entries), len(cur.entries)+len(entries)),
		byID:    make(map[string]int, len(cur.byID)+len(entries)),
	}
	copy(next.entries, cur.entries)
	for id, i := range cur.byID {
		next.byID[id] = i
	}

	for _, e := range entries {
		if i, ok := next.byID[e.ChunkID]; ok {
			next.entries[i] = e
			continue
		}
		next.byID[e.ChunkID] = len(next.entries)
		next.entries = append(next.entries, e)
	}

	idx.snap.Store(next)
	logger.Debug("Index upsert: %d entries, total %d", len(entries), len(next.entries))
	return nil
}

// Search ranks all entries by cosine similarity to the query vector.
// Results are ordered score descending with deterministic tie-breaks
// (lower sequence, then lower document ID), truncated to topK, and
// never include a score below threshold.
func (idx *Index) Search(
	_ context.Context, query []float32, topK int, threshold float64,
) (domain.RetrievalResult, error) {
	if len(query) != idx.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(query), idx.dims)
	}
	if topK <= 0 {
		return domain.RetrievalResult{}, nil
	}

	snap := idx.snap.Load()
	if len(snap.entries) == 0 {
		return nil, domain.ErrEmptyIndex
	}

	results := make(domain.RetrievalResult, 0, len(snap.entries))
	for _, e := range snap.entries {
		score := cosine(query, e.Embedding)
		if score < threshold {
			continue
		}
		results = append(results, domain.ScoredEntry{Entry: e, Score: score})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		if results[i].Entry.Sequence != results[j].Entry.Sequence {
			return results[i].Entry.Sequence < results[j].Entry.Sequence
		}
		return results[i].Entry.DocumentID < results[j].Entry.DocumentID
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}

// Load replaces the index contents from a persisted snapshot file.
func (idx *Index) Load(ctx context.Context, path string) error {
	meta, entries, err := sqlitesnap.Read(ctx, path)
	if err != nil {
		return err
	}
	if meta.Metric != Metric {
		return fmt.Errorf("%w: snapshot metric %q, index uses %q",
			domain.ErrSnapshotMismatch, meta.Metric, Metric)
	}
	if meta.Dimensions != idx.dims {
		return fmt.Errorf("%w: snapshot has %d dimensions, index has %d",
			domain.ErrSnapshotMismatch, meta.Dimensions, idx.dims)
	}

	next := &snapshot{
		entries: entries,
		byID:    make(map[string]int, len(entries)),
	}
	for i, e := range entries {
		next.byID[e.ChunkID] = i
	}

	idx.mu.Lock()
	idx.snap.Store(next)
	idx.mu.Unlock()

	logger.Info("Index loaded from snapshot: %d entries, %d dimensions", len(entries), meta.Dimensions)
	return nil
}

// Persist writes a versioned snapshot of the current index state.
func (idx *Index) Persist(ctx context.Context, path string) error {
	snap := idx.snap.Load()
	meta := sqlitesnap.Meta{
		Dimensions: idx.dims,
		Metric:     Metric,
	}
	if err := sqlitesnap.Write(ctx, path, meta, snap.entries); err != nil {
		return err
	}
	logger.Info("Index persisted: %d entries to %s", len(snap.entries), path)
	return nil
}

// Len returns the number of stored entries.
func (idx *Index) Len() int {
	return len(idx.snap.Load().entries)
}

// Documents returns the number of distinct documents in the index.
func (idx *Index) Documents() int {
	snap := idx.snap.Load()
	seen := make(map[string]struct{}, len(snap.entries))
	for _, e := range snap.entries {
		seen[e.DocumentID] = struct{}{}
	}
	return len(seen)
}

// Dimensions returns the fixed vector dimensionality.
func (idx *Index) Dimensions() int {
	return idx.dims
}

// cosine computes cosine similarity between two equal-length vectors.
// Zero vectors score zero against everything.
func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		av, bv := float64(a[i]), float64(b[i])
		dot += av * bv
		na += av * av
		nb += bv * bv
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
