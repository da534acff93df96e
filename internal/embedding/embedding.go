// Package embedding selects and constructs the embedding backend.
package embedding

import (
	"fmt"
	"log"
	"time"

	"docchat/internal/config"
	"docchat/internal/domain"
	"docchat/internal/embedding/ollama"
	"docchat/internal/embedding/openai"
	"docchat/internal/embedding/wordvec"
)

// New builds the embedder selected by cfg. The local backend is tried first
// when configured; if its model file cannot be loaded the Ollama backend is
// constructed instead, with the transition logged. The choice is fixed for
// the lifetime of the returned embedder.
func New(cfg config.EmbedderConfig) (domain.Embedder, error) {
	switch cfg.Type {
	case "local", "":
		emb, err := wordvec.Load(cfg.Local.ModelPath)
		if err == nil {
			return emb, nil
		}
		log.Printf("could not load local embedding model: %v", err)
		log.Printf("falling back to ollama embeddings (model %s)", cfg.Ollama.Model)
		return newOllama(cfg.Ollama), nil
	case "ollama":
		return newOllama(cfg.Ollama), nil
	case "openai":
		if cfg.OpenAI == nil {
			return nil, fmt.Errorf("openai embedder selected but openai section missing")
		}
		return openai.NewEmbedder(openai.Config{
			APIKeyEnv: cfg.OpenAI.APIKeyEnv,
			Model:     cfg.OpenAI.Model,
		})
	default:
		return nil, fmt.Errorf("unknown embedder type %q", cfg.Type)
	}
}

func newOllama(cfg config.OllamaEmbedderConfig) *ollama.Client {
	return ollama.NewClient(ollama.Config{
		Host:    cfg.Host,
		Model:   cfg.Model,
		Timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
	})
}
