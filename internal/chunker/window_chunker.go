package chunker

import (
	"fmt"
	"strings"
)

// WindowChunker splits text into overlapping fixed-size segments, preferring
// to end each segment at a sentence boundary ('.' or '\n') when one falls in
// the second half of the window.
type WindowChunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewWindowChunker creates a chunker for windows of chunkSize characters with
// chunkOverlap characters of overlap. The overlap must be smaller than the
// window or the scan would never make progress.
func NewWindowChunker(chunkSize, chunkOverlap int) (*WindowChunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 {
		return nil, fmt.Errorf("chunk overlap must not be negative, got %d", chunkOverlap)
	}
	if chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be smaller than chunk size %d", chunkOverlap, chunkSize)
	}
	return &WindowChunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// Chunk splits text into trimmed, non-empty segments. Whitespace-only input
// yields no segments.
func (c *WindowChunker) Chunk(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	runes := []rune(text)
	var chunks []string
	start := 0
	for start < len(runes) {
		end := start + c.chunkSize
		sliceEnd := end
		if sliceEnd > len(runes) {
			sliceEnd = len(runes)
		}
		window := runes[start:sliceEnd]
		if end < len(runes) {
			// Prefer a sentence boundary, but only once past the halfway
			// point of the window; otherwise keep the full-width chunk.
			if bp := lastBoundary(window); bp > c.chunkSize/2 {
				window = window[:bp+1]
				end = start + bp + 1
			}
		}
		if piece := strings.TrimSpace(string(window)); piece != "" {
			chunks = append(chunks, piece)
		}
		next := end - c.chunkOverlap
		if next <= start {
			// A boundary cut can shrink the chunk below the overlap; always
			// move forward so the scan terminates.
			next = start + 1
		}
		start = next
	}
	return chunks
}

// lastBoundary returns the index of the last '.' or '\n' in window, whichever
// occurs later, or -1 when neither is present.
func lastBoundary(window []rune) int {
	for i := len(window) - 1; i >= 0; i-- {
		if window[i] == '.' || window[i] == '\n' {
			return i
		}
	}
	return -1
}
