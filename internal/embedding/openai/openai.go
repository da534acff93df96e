// Package openai implements a remote embedding backend over the OpenAI
// embeddings API.
package openai

import (
	"context"
	"errors"
	"fmt"
	"os"

	openai "github.com/sashabaranov/go-openai"
)

// Embedder embeds text through the OpenAI API.
type Embedder struct {
	client    *openai.Client
	model     string
	dimension int
}

// Config configures the OpenAI embedder. APIKeyEnv names the environment
// variable holding the key.
type Config struct {
	APIKeyEnv string
	Model     string
}

// NewEmbedder creates an OpenAI embedder. The dimension is known up front
// for the standard embedding models and inferred from the first call for
// any other model name.
func NewEmbedder(cfg Config) (*Embedder, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, fmt.Errorf("missing API key in env %s", cfg.APIKeyEnv)
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	dim := 0
	switch cfg.Model {
	case "text-embedding-3-small", "text-embedding-ada-002":
		dim = 1536
	case "text-embedding-3-large":
		dim = 3072
	}
	return &Embedder{
		client:    openai.NewClient(key),
		model:     cfg.Model,
		dimension: dim,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "openai" }

// Dimension returns the vector width, or 0 until the first successful call
// for non-standard models.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed returns an embedding vector for the given text.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if len(text) == 0 {
		return nil, errors.New("cannot embed empty text")
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: []string{text},
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, errors.New("no embedding data returned")
	}
	raw := resp.Data[0].Embedding
	vec := make([]float32, len(raw))
	for i := range raw {
		vec[i] = float32(raw[i])
	}
	if e.dimension == 0 {
		e.dimension = len(vec)
	} else if len(vec) != e.dimension {
		return nil, fmt.Errorf("embedding dimension changed from %d to %d", e.dimension, len(vec))
	}
	return vec, nil
}
