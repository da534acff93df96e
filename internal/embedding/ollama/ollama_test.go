package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return NewClient(Config{Host: ts.URL, Model: "test-embed"})
}

func TestEmbedOK(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)
		var req struct {
			Model  string `json:"model"`
			Prompt string `json:"prompt"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-embed", req.Model)
		assert.Equal(t, "hello", req.Prompt)
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{1, 2, 3}})
	})

	vec, err := c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, vec)
	assert.Equal(t, 3, c.Dimension())
}

func TestEmbedNonSuccessStatus(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.Embed(context.Background(), "hello")
	assert.ErrorContains(t, err, "status 500")
}

func TestEmbedUnreachableEndpoint(t *testing.T) {
	ts := httptest.NewServer(nil)
	ts.Close()
	c := NewClient(Config{Host: ts.URL})

	_, err := c.Embed(context.Background(), "hello")
	assert.Error(t, err)
	assert.Zero(t, c.Dimension())
}

func TestEmbedEmptyVector(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"embedding": []float32{}})
	})

	_, err := c.Embed(context.Background(), "hello")
	assert.Error(t, err)
}

func TestEmbedDimensionChangeRejected(t *testing.T) {
	calls := 0
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		vec := []float32{1, 2, 3}
		if calls > 1 {
			vec = []float32{1, 2}
		}
		json.NewEncoder(w).Encode(map[string]any{"embedding": vec})
	})

	_, err := c.Embed(context.Background(), "first")
	require.NoError(t, err)
	_, err = c.Embed(context.Background(), "second")
	assert.ErrorContains(t, err, "dimension changed")
}
