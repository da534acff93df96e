// Package ollama implements a remote embedding backend over the Ollama
// embeddings API. The vector width is unknown until the first successful
// call, after which it is fixed for the client's lifetime.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const embeddingsEndpoint = "/api/embeddings"

// Client is an Ollama embeddings client.
type Client struct {
	host      string
	model     string
	client    *http.Client
	dimension int
}

// Config configures the Ollama embeddings client.
type Config struct {
	Host    string
	Model   string
	Timeout time.Duration
}

// NewClient creates an embeddings client. Unset fields fall back to a
// localhost host, the nomic-embed-text model, and a 30s timeout.
func NewClient(cfg Config) *Client {
	if cfg.Host == "" {
		cfg.Host = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "nomic-embed-text"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		host:   cfg.Host,
		model:  cfg.Model,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "ollama" }

// Dimension returns the vector width, or 0 before the first successful call.
func (c *Client) Dimension() int { return c.dimension }

// Embed returns an embedding vector for the given text. A non-success status
// or an unreachable endpoint is reported as an error; no retries are made.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	payload := struct {
		Model  string `json:"model"`
		Prompt string `json:"prompt"`
	}{Model: c.model, Prompt: text}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+embeddingsEndpoint, bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama embeddings request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama embedding API returned status %d", resp.StatusCode)
	}

	var out struct {
		Embedding []float32 `json:"embedding"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parse ollama embeddings response: %w", err)
	}
	if len(out.Embedding) == 0 {
		return nil, errors.New("no embedding returned")
	}
	if c.dimension == 0 {
		c.dimension = len(out.Embedding)
	} else if len(out.Embedding) != c.dimension {
		return nil, fmt.Errorf("embedding dimension changed from %d to %d", c.dimension, len(out.Embedding))
	}
	return out.Embedding, nil
}
