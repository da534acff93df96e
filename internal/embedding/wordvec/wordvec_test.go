package wordvec

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeModel(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "model.vec")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadWithHeader(t *testing.T) {
	e, err := Load(writeModel(t, "2 3\nhello 1 0 0\nworld 0 1 0\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, e.Dimension())
}

func TestLoadWithoutHeader(t *testing.T) {
	e, err := Load(writeModel(t, "hello 1 0\nworld 0 1\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, e.Dimension())
}

func TestLoadRejectsRaggedLines(t *testing.T) {
	_, err := Load(writeModel(t, "hello 1 0 0\nworld 0 1\n"))
	assert.Error(t, err)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.vec"))
	assert.Error(t, err)
}

func TestEmbedIsDeterministicAndNormalized(t *testing.T) {
	e, err := Load(writeModel(t, "alpha 3 0\nbeta 0 4\n"))
	require.NoError(t, err)
	ctx := context.Background()

	a, err := e.Embed(ctx, "Alpha beta")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "alpha BETA")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	var norm float64
	for _, v := range a {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-5)
}

func TestEmbedConsistentDimension(t *testing.T) {
	e, err := Load(writeModel(t, "alpha 1 2 3\nbeta 4 5 6\n"))
	require.NoError(t, err)
	ctx := context.Background()

	a, err := e.Embed(ctx, "alpha")
	require.NoError(t, err)
	b, err := e.Embed(ctx, "completely unknown words")
	require.NoError(t, err)
	assert.Len(t, a, e.Dimension())
	assert.Len(t, b, e.Dimension())
}

func TestEmbedUnknownWordsYieldZeroVector(t *testing.T) {
	e, err := Load(writeModel(t, "alpha 1 0\n"))
	require.NoError(t, err)

	vec, err := e.Embed(context.Background(), "nothing matches here")
	require.NoError(t, err)
	for _, v := range vec {
		assert.Zero(t, v)
	}
}
