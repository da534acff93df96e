// Package generate implements the Ollama text-generation client. The
// retrieval core never calls it; the chat service feeds it prompts assembled
// from retrieved context.
package generate

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	generateEndpoint = "/api/generate"
	tagsEndpoint     = "/api/tags"
)

// Options are the sampling parameters for one generation call.
type Options struct {
	Temperature float64
	MaxTokens   int
	TopK        int
	TopP        float64
}

// DefaultOptions returns the stock sampling parameters.
func DefaultOptions() Options {
	return Options{Temperature: 0.7, MaxTokens: 512, TopK: 40, TopP: 0.9}
}

// Client is an Ollama generation client.
type Client struct {
	host   string
	model  string
	client *http.Client
}

// NewClient creates a generation client for the given host and model.
func NewClient(host, model string, timeout time.Duration) *Client {
	if host == "" {
		host = "http://localhost:11434"
	}
	if timeout == 0 {
		timeout = 300 * time.Second
	}
	return &Client{host: host, model: model, client: &http.Client{Timeout: timeout}}
}

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options"`
}

type generateChunk struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// Stream sends the prompt and calls onToken for each incremental text
// fragment until the terminal done marker. A non-nil error from onToken
// stops the stream and is returned.
func (c *Client) Stream(ctx context.Context, prompt string, opts Options, onToken func(token string) error) error {
	payload := generateRequest{
		Model:  c.model,
		Prompt: prompt,
		Stream: true,
		Options: map[string]any{
			"temperature": opts.Temperature,
			"num_predict": opts.MaxTokens,
			"top_k":       opts.TopK,
			"top_p":       opts.TopP,
		},
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.host+generateEndpoint, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama generate request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama generate returned status %d", resp.StatusCode)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		var chunk generateChunk
		if err := json.Unmarshal(line, &chunk); err != nil {
			continue
		}
		if chunk.Response != "" {
			if err := onToken(chunk.Response); err != nil {
				return err
			}
		}
		if chunk.Done {
			return nil
		}
	}
	return scanner.Err()
}

// Complete generates the full response as a single string.
func (c *Client) Complete(ctx context.Context, prompt string, opts Options) (string, error) {
	var b strings.Builder
	err := c.Stream(ctx, prompt, opts, func(token string) error {
		b.WriteString(token)
		return nil
	})
	if err != nil {
		return "", err
	}
	return b.String(), nil
}

// Ping reports whether the Ollama endpoint is reachable.
func (c *Client) Ping(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+tagsEndpoint, nil)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Models lists the model names available at the endpoint.
func (c *Client) Models(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.host+tagsEndpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama tags request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama tags returned status %d", resp.StatusCode)
	}
	var out struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("parse ollama tags response: %w", err)
	}
	names := make([]string, len(out.Models))
	for i, m := range out.Models {
		names[i] = m.Name
	}
	return names, nil
}
