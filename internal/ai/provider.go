// Package ai talks to chat-completion providers.
package ai

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gitrules/gitrules/internal/config"
)

var (
	// ErrNoAPIKey is returned when a provider is configured without a key.
	ErrNoAPIKey = errors.New("llm api key is not configured")

	// ErrEmptyResponse is returned when the provider answers with no text.
	ErrEmptyResponse = errors.New("llm returned an empty response")
)

// CompletionRequest is a single-turn completion.
type CompletionRequest struct {
	System      string  `json:"system,omitempty"`
	User        string  `json:"user"`
	Model       string  `json:"model,omitempty"` // overrides the provider default
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"max_tokens,omitempty"`
}

// Completer returns the text of one completion.
type Completer interface {
	// ID returns the provider identifier (e.g., "anthropic", "openai")
	ID() string

	Complete(ctx context.Context, req *CompletionRequest) (string, error)
}

// NewFromConfig builds the configured provider wrapped in a circuit breaker.
func NewFromConfig(cfg config.LLMConfig) (Completer, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}

	var p Completer
	switch cfg.Provider {
	case "", "openai":
		p = NewOpenAIProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout)
	case "anthropic":
		p = NewAnthropicProvider(cfg.APIKey, cfg.Model, cfg.BaseURL, cfg.Timeout)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return NewBreaker(p, timeout), nil
}
