// Package llm abstracts the chat-completion providers used to narrate
// backtest results.
package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/tradequest/tradequest/internal/core"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	DefaultMaxTokens = 1024
)

// Provider defines the interface for LLM providers
type Provider interface {
	Name() string
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest holds the request parameters
type ChatRequest struct {
	SystemPrompt string
	Messages     []Message
	MaxTokens    int
	Temperature  float64
}

// Message represents a chat message
type Message struct {
	Role    string
	Content string
}

// ChatResponse holds the response from the LLM
type ChatResponse struct {
	Content      string
	Usage        Usage
	FinishReason string
}

// Usage tracks token consumption
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Ask sends a single user prompt and returns the trimmed reply.
// Provider failures and empty replies are reported as core.ErrLLMFailed.
func Ask(ctx context.Context, p Provider, system, prompt string) (string, error) {
	if p == nil {
		return "", core.ErrLLMDisabled
	}
	resp, err := p.Chat(ctx, ChatRequest{
		SystemPrompt: system,
		Messages:     []Message{{Role: RoleUser, Content: prompt}},
		MaxTokens:    DefaultMaxTokens,
		Temperature:  0.3,
	})
	if err != nil {
		return "", core.WrapError(core.ErrLLMFailed, err)
	}
	content := strings.TrimSpace(resp.Content)
	if content == "" {
		return "", core.WrapError(core.ErrLLMFailed, errors.New(p.Name()+": empty response"))
	}
	return content, nil
}
