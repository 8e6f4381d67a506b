package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askdocs/ragserver/internal/core/domain"
)

func scored(chunkID, docID, source string, seq int, content string, score float64) domain.ScoredEntry {
	return domain.ScoredEntry{
		Entry: domain.Entry{
			ChunkID:    chunkID,
			DocumentID: docID,
			Source:     source,
			Sequence:   seq,
			Content:    content,
		},
		Score: score,
	}
}

func TestAssemble_GreedyBudget(t *testing.T) {
	// Three 400-char passages against a 900-char budget: the first two
	// fit, the third would overflow and is skipped whole.
	passage := strings.Repeat("x", 400)
	results := domain.RetrievalResult{
		scored("d1:0", "d1", "gita.pdf", 0, passage, 0.9),
		scored("d1:1", "d1", "gita.pdf", 1, passage, 0.8),
		scored("d2:0", "d2", "upanishads.pdf", 0, passage, 0.7),
	}

	text, citations := NewContextAssembler(900).Assemble(results)

	require.Len(t, citations, 2)
	assert.Equal(t, 1, citations[0].Marker)
	assert.Equal(t, 2, citations[1].Marker)
	assert.Equal(t, "d1", citations[0].DocumentID)
	assert.Equal(t, 1, citations[1].Sequence)

	assert.Contains(t, text, "[1] gita.pdf")
	assert.Contains(t, text, "[2] gita.pdf")
	assert.NotContains(t, text, "upanishads.pdf")
	assert.LessOrEqual(t, len(text), 900)
}

func TestAssemble_NeverTruncatesPassages(t *testing.T) {
	passage := strings.Repeat("y", 300)
	results := domain.RetrievalResult{
		scored("d1:0", "d1", "a.pdf", 0, passage, 0.9),
	}

	text, citations := NewContextAssembler(1000).Assemble(results)
	require.Len(t, citations, 1)
	assert.Contains(t, text, passage)
}

func TestAssemble_OversizedPassageDropped(t *testing.T) {
	// A single passage larger than the entire budget is dropped; a
	// smaller, lower-scored passage still gets in.
	results := domain.RetrievalResult{
		scored("d1:0", "d1", "a.pdf", 0, strings.Repeat("z", 5000), 0.9),
		scored("d2:0", "d2", "b.pdf", 0, "short passage", 0.5),
	}

	text, citations := NewContextAssembler(200).Assemble(results)

	require.Len(t, citations, 1)
	assert.Equal(t, "d2", citations[0].DocumentID)
	assert.Equal(t, 1, citations[0].Marker)
	assert.Contains(t, text, "[1] b.pdf")
}

func TestAssemble_CitationsMatchIncludedPassages(t *testing.T) {
	results := domain.RetrievalResult{
		scored("d1:2", "d1", "a.pdf", 2, "first", 0.9),
		scored("d2:5", "d2", "b.pdf", 5, "second", 0.8),
	}

	text, citations := NewContextAssembler(1000).Assemble(results)

	require.Len(t, citations, 2)
	for _, c := range citations {
		assert.Contains(t, text, "["+string(rune('0'+c.Marker))+"] "+c.Source)
	}
	assert.Equal(t, []domain.Citation{
		{Marker: 1, DocumentID: "d1", Source: "a.pdf", Sequence: 2},
		{Marker: 2, DocumentID: "d2", Source: "b.pdf", Sequence: 5},
	}, citations)
}

func TestAssemble_EmptyInput(t *testing.T) {
	text, citations := NewContextAssembler(1000).Assemble(nil)
	assert.Empty(t, text)
	assert.Empty(t, citations)
}
