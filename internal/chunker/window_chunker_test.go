package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWindowChunkerRejectsBadConfig(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero_size", 0, 0},
		{"negative_size", -1, 0},
		{"negative_overlap", 100, -5},
		{"overlap_equals_size", 100, 100},
		{"overlap_exceeds_size", 100, 150},
	}
	for _, cse := range cases {
		t.Run(cse.name, func(t *testing.T) {
			_, err := NewWindowChunker(cse.size, cse.overlap)
			assert.Error(t, err)
		})
	}
}

func TestChunkEmptyInput(t *testing.T) {
	c, err := NewWindowChunker(100, 20)
	require.NoError(t, err)
	assert.Empty(t, c.Chunk(""))
	assert.Empty(t, c.Chunk("   \n  "))
}

func TestChunkShortInput(t *testing.T) {
	c, err := NewWindowChunker(100, 20)
	require.NoError(t, err)
	chunks := c.Chunk("  hello world  ")
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestChunkOverlapWithoutBoundaries(t *testing.T) {
	// 250 characters without periods or newlines: the window never truncates,
	// so consecutive chunks must share exactly the overlap region.
	text := strings.Repeat("abcde", 50)
	c, err := NewWindowChunker(100, 20)
	require.NoError(t, err)

	chunks := c.Chunk(text)
	require.Len(t, chunks, 4)
	assert.Equal(t, text[0:100], chunks[0])
	assert.Equal(t, text[80:180], chunks[1])
	assert.Equal(t, text[160:250], chunks[2])
	assert.Equal(t, text[240:250], chunks[3])
	// The final chunk is shorter than the overlap; check the full-width pairs.
	for i := 0; i < 2; i++ {
		tail := chunks[i][len(chunks[i])-20:]
		assert.True(t, strings.HasPrefix(chunks[i+1], tail), "chunk %d does not overlap chunk %d", i+1, i)
	}
}

func TestChunkBreaksAtSentenceBoundary(t *testing.T) {
	// The period sits past the halfway point of the 40-rune window, so the
	// first chunk must end there (boundary character included).
	text := strings.Repeat("a", 30) + ". " + strings.Repeat("b", 40)
	c, err := NewWindowChunker(40, 5)
	require.NoError(t, err)

	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)
	assert.Equal(t, strings.Repeat("a", 30)+".", chunks[0])
}

func TestChunkIgnoresEarlyBoundary(t *testing.T) {
	// A period in the first half of the window is not a break point.
	text := "ab. " + strings.Repeat("c", 60)
	c, err := NewWindowChunker(40, 5)
	require.NoError(t, err)

	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)
	assert.Equal(t, 40, len([]rune(chunks[0])))
}

func TestChunkPrefersLaterNewline(t *testing.T) {
	// Both '.' and '\n' appear in the window; the later one wins.
	text := strings.Repeat("a", 25) + "." + strings.Repeat("b", 8) + "\n" + strings.Repeat("c", 30)
	c, err := NewWindowChunker(40, 5)
	require.NoError(t, err)

	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)
	// Trimming drops the trailing newline itself.
	assert.Equal(t, strings.Repeat("a", 25)+"."+strings.Repeat("b", 8), chunks[0])
}

func TestChunkBoundaryShorterThanOverlap(t *testing.T) {
	// A boundary cut just past the window midpoint leaves a chunk shorter
	// than the overlap. The scan must keep moving forward instead of
	// stepping before the start of the text.
	text := strings.Repeat("a", 51) + "." + strings.Repeat("b", 70)
	c, err := NewWindowChunker(100, 60)
	require.NoError(t, err)

	chunks := c.Chunk(text)
	require.NotEmpty(t, chunks)
	assert.Equal(t, strings.Repeat("a", 51)+".", chunks[0])
	// The tail of the text still gets covered.
	last := chunks[len(chunks)-1]
	assert.True(t, strings.HasSuffix(last, "b"), "tail of text missing from chunks")
}

func TestChunkDropsWhitespaceOnlySegments(t *testing.T) {
	text := strings.Repeat("x", 30) + ".\n \n " + strings.Repeat("y", 3)
	c, err := NewWindowChunker(40, 5)
	require.NoError(t, err)

	for _, chunk := range c.Chunk(text) {
		assert.NotEmpty(t, strings.TrimSpace(chunk))
	}
}
