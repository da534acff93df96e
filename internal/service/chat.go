// Package service ties retrieval, generation, and history together into the
// chat loop.
package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"docchat/internal/generate"
	"docchat/internal/history"
)

// Retriever is the retrieval-store subset the chat service needs.
type Retriever interface {
	ContextForQuery(ctx context.Context, query string, topK int) (string, error)
}

// Generator is the text-generation subset the chat service needs.
type Generator interface {
	Stream(ctx context.Context, prompt string, opts generate.Options, onToken func(token string) error) error
	Complete(ctx context.Context, prompt string, opts generate.Options) (string, error)
}

// HistoryStore records finished exchanges.
type HistoryStore interface {
	SaveExchange(ctx context.Context, e history.Exchange) error
}

// Chat answers questions about the indexed document. Retrieved context is
// wrapped into the generation prompt; when no context is available the bare
// question is sent instead.
type Chat struct {
	retriever Retriever
	generator Generator
	history   HistoryStore
	session   string
	topK      int
	opts      generate.Options
}

// NewChat creates a chat service. history may be nil to disable recording.
func NewChat(retriever Retriever, generator Generator, hist HistoryStore, session string, topK int, opts generate.Options) *Chat {
	return &Chat{
		retriever: retriever,
		generator: generator,
		history:   hist,
		session:   session,
		topK:      topK,
		opts:      opts,
	}
}

// Ask answers a question in one shot.
func (c *Chat) Ask(ctx context.Context, question string) (string, error) {
	prompt, err := c.buildPrompt(ctx, question)
	if err != nil {
		return "", err
	}
	answer, err := c.generator.Complete(ctx, prompt, c.opts)
	if err != nil {
		return "", err
	}
	c.record(ctx, question, answer)
	return answer, nil
}

// AskStream answers a question, forwarding each generated fragment to
// onToken as it arrives.
func (c *Chat) AskStream(ctx context.Context, question string, onToken func(token string) error) error {
	prompt, err := c.buildPrompt(ctx, question)
	if err != nil {
		return err
	}
	var answer strings.Builder
	err = c.generator.Stream(ctx, prompt, c.opts, func(token string) error {
		answer.WriteString(token)
		return onToken(token)
	})
	if err != nil {
		return err
	}
	c.record(ctx, question, answer.String())
	return nil
}

func (c *Chat) buildPrompt(ctx context.Context, question string) (string, error) {
	docContext, err := c.retriever.ContextForQuery(ctx, question, c.topK)
	if err != nil {
		return "", fmt.Errorf("retrieve context: %w", err)
	}
	if docContext == "" {
		return question, nil
	}
	return fmt.Sprintf(`Based on the following context from the document, please answer the user's question. If the context doesn't contain relevant information, use your general knowledge to answer.

Context:
%s

User Question: %s

Please provide a helpful and accurate answer:`, docContext, question), nil
}

// record saves the exchange; a failing history store must not fail the chat.
func (c *Chat) record(ctx context.Context, question, answer string) {
	if c.history == nil {
		return
	}
	err := c.history.SaveExchange(ctx, history.Exchange{
		SessionID: c.session,
		Question:  question,
		Answer:    answer,
	})
	if err != nil {
		log.Printf("could not save chat exchange: %v", err)
	}
}
