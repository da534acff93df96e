package summarizer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarizeKeepsSourceOrder(t *testing.T) {
	text := "Solar panels convert sunlight. The panels need direct sunlight exposure. Clouds reduce output. Maintenance is rare."
	s := NewFrequency()
	out, err := s.Summarize(text, 2)
	require.NoError(t, err)

	sentences := strings.SplitAfter(out, ".")
	assert.LessOrEqual(t, len(strings.TrimSpace(out)), len(text))
	// Selected sentences must appear in their original relative order.
	last := -1
	for _, sent := range sentences {
		sent = strings.TrimSpace(sent)
		if sent == "" {
			continue
		}
		pos := strings.Index(text, sent)
		require.GreaterOrEqual(t, pos, 0, "summary sentence %q not found in source", sent)
		assert.Greater(t, pos, last)
		last = pos
	}
}

func TestSummarizeNoSentencePunctuation(t *testing.T) {
	s := NewFrequency()
	out, err := s.Summarize("  just a fragment without an ending  ", 3)
	require.NoError(t, err)
	assert.Equal(t, "just a fragment without an ending", out)
}

func TestSummarizeClampsMaxSentences(t *testing.T) {
	s := NewFrequency()
	out, err := s.Summarize("One thing. Another thing.", 10)
	require.NoError(t, err)
	assert.Equal(t, "One thing. Another thing.", out)
}
