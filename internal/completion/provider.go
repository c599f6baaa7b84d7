// Package completion invokes chat-completion providers on behalf of the
// persona. A Client wraps a Provider with retries, a fallback model and a
// canned in-character filler so a reply is always available.
package completion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/edgard/soulbot/internal/config"
)

// ErrEmptyCompletion is returned when a provider answers without any text.
var ErrEmptyCompletion = errors.New("empty completion")

// Request is a single system + user completion call.
type Request struct {
	Model        string
	SystemPrompt string
	UserMessage  string
	Temperature  float64
	TopP         float64
	MaxTokens    int
}

// Provider performs one completion call without retrying.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// NewProvider builds the provider selected by cfg.Provider.
func NewProvider(ctx context.Context, cfg config.CompletionConfig, log *slog.Logger) (Provider, error) {
	switch cfg.Provider {
	case config.ProviderOpenRouter:
		return NewOpenRouter(cfg, log)
	case config.ProviderGemini:
		return NewGemini(ctx, cfg, log)
	default:
		return nil, fmt.Errorf("unknown completion provider %q", cfg.Provider)
	}
}
