package generate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func streamServer(t *testing.T, lines []string) *Client {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/generate":
			var req struct {
				Model  string `json:"model"`
				Stream bool   `json:"stream"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.True(t, req.Stream)
			for _, line := range lines {
				fmt.Fprintln(w, line)
			}
		case "/api/tags":
			fmt.Fprint(w, `{"models":[{"name":"llama3.2"},{"name":"nomic-embed-text"}]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(ts.Close)
	return NewClient(ts.URL, "llama3.2", 0)
}

func TestStreamCollectsTokensUntilDone(t *testing.T) {
	c := streamServer(t, []string{
		`{"response":"Hel","done":false}`,
		`{"response":"lo","done":false}`,
		`{"response":"!","done":true}`,
		`{"response":"ignored after done","done":false}`,
	})

	var tokens []string
	err := c.Stream(context.Background(), "hi", DefaultOptions(), func(tok string) error {
		tokens = append(tokens, tok)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hel", "lo", "!"}, tokens)
}

func TestComplete(t *testing.T) {
	c := streamServer(t, []string{
		`{"response":"Hello ","done":false}`,
		`{"response":"world","done":true}`,
	})

	out, err := c.Complete(context.Background(), "hi", DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, "Hello world", out)
}

func TestStreamTokenCallbackErrorStops(t *testing.T) {
	c := streamServer(t, []string{
		`{"response":"a","done":false}`,
		`{"response":"b","done":false}`,
	})

	stop := errors.New("stop")
	calls := 0
	err := c.Stream(context.Background(), "hi", DefaultOptions(), func(string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestStreamNonSuccessStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(ts.Close)
	c := NewClient(ts.URL, "llama3.2", 0)

	err := c.Stream(context.Background(), "hi", DefaultOptions(), func(string) error { return nil })
	assert.ErrorContains(t, err, "status 503")
}

func TestPingAndModels(t *testing.T) {
	c := streamServer(t, nil)
	ctx := context.Background()
	assert.True(t, c.Ping(ctx))

	models, err := c.Models(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2", "nomic-embed-text"}, models)
}

func TestPingUnreachable(t *testing.T) {
	ts := httptest.NewServer(nil)
	ts.Close()
	c := NewClient(ts.URL, "llama3.2", 0)
	assert.False(t, c.Ping(context.Background()))
}
