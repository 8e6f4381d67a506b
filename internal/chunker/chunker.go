// Package chunker splits document text into overlapping passages sized
// for embedding and prompt budgets.
package chunker

import (
	"fmt"
	"unicode/utf8"

	"github.com/askdocs/ragserver/internal/core/domain"
)

// Chunker splits documents into overlapping chunks. Cuts prefer
// sentence and paragraph boundaries, falling back to word boundaries
// and finally hard character cuts when a single unit exceeds the
// maximum length.
type Chunker struct {
	maxLen  int
	overlap int
}

// New creates a chunker. overlap must be non-negative and strictly
// less than maxLen; violations are rejected with ErrInvalidConfig
// before any chunking occurs.
func New(maxLen, overlap int) (*Chunker, error) {
	if maxLen <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", domain.ErrInvalidConfig, maxLen)
	}
	if overlap < 0 {
		return nil, fmt.Errorf("%w: overlap must be non-negative, got %d", domain.ErrInvalidConfig, overlap)
	}
	if overlap >= maxLen {
		return nil, fmt.Errorf("%w: overlap %d must be less than chunk size %d",
			domain.ErrInvalidConfig, overlap, maxLen)
	}
	return &Chunker{maxLen: maxLen, overlap: overlap}, nil
}

// Split chunks the document content. Every chunk records its byte
// offsets into the document, so concatenating chunk texts while
// deduplicating the overlaps reconstructs the original text exactly.
// An empty document produces no chunks.
func (c *Chunker) Split(doc *domain.Document) []domain.Chunk {
	content := doc.Content
	n := len(content)
	if n == 0 {
		return nil
	}

	estimated := n/(c.maxLen-c.overlap) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	pos := 0
	seq := 0

	for pos < n {
		end := pos + c.maxLen
		if end >= n {
			end = n
		} else {
			end = runeAlign(content, end)
			// A chunk must extend past the overlap window or the
			// next chunk would make no forward progress.
			minEnd := pos + c.maxLen/2
			if m := pos + c.overlap + 1; m > minEnd {
				minEnd = m
			}
			if cut := boundaryCut(content, minEnd, end); cut > pos {
				end = cut
			}
		}
		if end <= pos {
			end = n
		}

		chunks = append(chunks, domain.Chunk{
			ID:         fmt.Sprintf("%s:%d", doc.ID, seq),
			DocumentID: doc.ID,
			Sequence:   seq,
			Start:      pos,
			End:        end,
			Content:    content[pos:end],
		})
		seq++

		if end >= n {
			break
		}

		next := end - c.overlap
		for next < end && !utf8.RuneStart(content[next]) {
			next++
		}
		if next <= pos {
			next = end
		}
		pos = next
	}

	return chunks
}

// boundaryCut finds the best cut position in (min, max]. It prefers a
// newline, then a sentence terminator followed by whitespace, then any
// whitespace. Returns max when no boundary qualifies.
func boundaryCut(content string, min, max int) int {
	if min >= max {
		return max
	}

	for i := max - 1; i >= min; i-- {
		if content[i] == '\n' {
			return i + 1
		}
		if isSentenceEnd(content, i) {
			return i + 1
		}
	}

	for i := max - 1; i >= min; i-- {
		if content[i] == ' ' || content[i] == '\t' {
			return i + 1
		}
	}

	return max
}

// isSentenceEnd reports whether content[i] terminates a sentence:
// '.', '!' or '?' followed by whitespace or end of text.
func isSentenceEnd(content string, i int) bool {
	ch := content[i]
	if ch != '.' && ch != '!' && ch != '?' {
		return false
	}
	if i+1 >= len(content) {
		return true
	}
	next := content[i+1]
	return next == ' ' || next == '\t' || next == '\n'
}

// runeAlign moves i back to the nearest UTF-8 rune start so a hard cut
// never splits a multi-byte character.
func runeAlign(content string, i int) int {
	for i > 0 && !utf8.RuneStart(content[i]) {
		i--
	}
	return i
}
