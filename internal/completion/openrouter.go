package completion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/edgard/soulbot/internal/config"
	"github.com/edgard/soulbot/internal/logger"
)

// OpenRouter talks to any OpenAI-compatible chat completions endpoint.
type OpenRouter struct {
	client openai.Client
	log    *slog.Logger
}

// NewOpenRouter creates the provider. SDK retries are disabled because the
// Client owns the retry policy.
func NewOpenRouter(cfg config.CompletionConfig, log *slog.Logger) (*OpenRouter, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("completion API key is required")
	}
	if log == nil {
		log = logger.Discard()
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Referer != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if cfg.Title != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}

	l := log.With("component", "openrouter")
	l.Info("Completion provider initialized", "base_url", cfg.BaseURL, "model", cfg.PrimaryModel)
	return &OpenRouter{client: openai.NewClient(opts...), log: l}, nil
}

// Complete sends a system + user message pair and returns the first choice.
func (o *OpenRouter) Complete(ctx context.Context, req Request) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.SystemPrompt),
			openai.UserMessage(req.UserMessage),
		},
		Temperature: openai.Float(req.Temperature),
		TopP:        openai.Float(req.TopP),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion with %s failed: %w", req.Model, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("model %s returned no choices: %w", req.Model, ErrEmptyCompletion)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("model %s returned blank content: %w", req.Model, ErrEmptyCompletion)
	}
	o.log.DebugContext(ctx, "Completion received", "model", req.Model, "total_tokens", resp.Usage.TotalTokens)
	return text, nil
}
