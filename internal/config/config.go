package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// LocalEmbedderConfig points at a word-vector model file on disk.
type LocalEmbedderConfig struct {
	ModelPath string `yaml:"model_path"`
}

// OllamaEmbedderConfig holds connection details for the Ollama embeddings API.
type OllamaEmbedderConfig struct {
	Host        string `yaml:"host"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs" validate:"gte=0"`
}

// OpenAIEmbedderConfig configures the OpenAI embeddings backend.
type OpenAIEmbedderConfig struct {
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// EmbedderConfig selects and configures the embedding backend. The local
// backend falls back to Ollama when its model file cannot be loaded.
type EmbedderConfig struct {
	Type   string                `yaml:"type" validate:"oneof=local ollama openai"`
	Local  LocalEmbedderConfig   `yaml:"local,omitempty"`
	Ollama OllamaEmbedderConfig  `yaml:"ollama,omitempty"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// ChunkerConfig configures the sliding-window chunker. The overlap must stay
// below the chunk size or the scan would never make progress.
type ChunkerConfig struct {
	ChunkSize    int `yaml:"chunk_size" validate:"gt=0"`
	ChunkOverlap int `yaml:"chunk_overlap" validate:"gte=0,ltfield=ChunkSize"`
}

// QdrantIndexConfig contains connection details for the Qdrant index backend.
type QdrantIndexConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	APIKey     string `yaml:"api_key"`
	Collection string `yaml:"collection"`
}

// IndexConfig selects the vector index backend and, for the flat backend,
// the directory holding the persisted artifacts.
type IndexConfig struct {
	Type   string             `yaml:"type" validate:"oneof=flat qdrant"`
	Dir    string             `yaml:"dir"`
	Qdrant *QdrantIndexConfig `yaml:"qdrant,omitempty"`
}

// GeneratorConfig configures the Ollama generation client and its sampling
// parameters.
type GeneratorConfig struct {
	Host        string  `yaml:"host"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature" validate:"gte=0,lte=2"`
	MaxTokens   int     `yaml:"max_tokens"`
	TopK        int     `yaml:"top_k" validate:"gte=0"`
	TopP        float64 `yaml:"top_p" validate:"gte=0,lte=1"`
	TimeoutSecs int     `yaml:"timeout_secs" validate:"gte=0"`
}

// SearchConfig configures retrieval at query time.
type SearchConfig struct {
	TopK int `yaml:"top_k" validate:"gt=0"`
}

// HistoryConfig locates the chat-history database.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Document  string          `yaml:"document"`
	Chunker   ChunkerConfig   `yaml:"chunker"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Index     IndexConfig     `yaml:"index"`
	Generator GeneratorConfig `yaml:"generator"`
	Search    SearchConfig    `yaml:"search"`
	History   HistoryConfig   `yaml:"history"`
}

// Load reads a config from a specified path. If the file does not exist,
// returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	applyConfigDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/docchat/config.yaml.
// If neither exists, it writes defaults to ~/.config/docchat/config.yaml and
// returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Validate checks the structural constraints, including that the chunk
// overlap stays below the chunk size.
func (c *AppConfig) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Index.Type == "qdrant" && c.Index.Qdrant == nil {
		return errors.New("invalid config: qdrant index selected but qdrant section missing")
	}
	return nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "docchat", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Chunker.ChunkSize == 0 {
		cfg.Chunker.ChunkSize = 1000
		if cfg.Chunker.ChunkOverlap == 0 {
			cfg.Chunker.ChunkOverlap = 200
		}
	}
	if cfg.Embedder.Type == "" {
		cfg.Embedder.Type = "local"
	}
	if cfg.Embedder.Local.ModelPath == "" {
		cfg.Embedder.Local.ModelPath = "embeddings.vec"
	}
	if cfg.Embedder.Ollama.Host == "" {
		cfg.Embedder.Ollama.Host = "http://localhost:11434"
	}
	if cfg.Embedder.Ollama.Model == "" {
		cfg.Embedder.Ollama.Model = "nomic-embed-text"
	}
	if cfg.Embedder.Ollama.TimeoutSecs == 0 {
		cfg.Embedder.Ollama.TimeoutSecs = 30
	}
	if cfg.Index.Type == "" {
		cfg.Index.Type = "flat"
	}
	if cfg.Index.Dir == "" {
		cfg.Index.Dir = "."
	}
	if cfg.Generator.Host == "" {
		cfg.Generator.Host = "http://localhost:11434"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "llama3.2"
	}
	if cfg.Generator.Temperature == 0 {
		cfg.Generator.Temperature = 0.7
	}
	if cfg.Generator.MaxTokens == 0 {
		cfg.Generator.MaxTokens = 512
	}
	if cfg.Generator.TopK == 0 {
		cfg.Generator.TopK = 40
	}
	if cfg.Generator.TopP == 0 {
		cfg.Generator.TopP = 0.9
	}
	if cfg.Generator.TimeoutSecs == 0 {
		cfg.Generator.TimeoutSecs = 300
	}
	if cfg.Search.TopK == 0 {
		cfg.Search.TopK = 3
	}
	if cfg.History.Path == "" {
		cfg.History.Path = "chat_history.db"
	}
}
