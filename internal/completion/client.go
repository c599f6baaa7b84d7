package completion

import (
	"context"
	"hash/fnv"
	"log/slog"

	"github.com/avast/retry-go/v4"

	"github.com/edgard/soulbot/internal/config"
	"github.com/edgard/soulbot/internal/logger"
)

// Source tells where a reply came from.
type Source string

// Reply sources.
const (
	SourcePrimary  Source = "primary"
	SourceFallback Source = "fallback"
	SourceFiller   Source = "filler"
)

// Reply is the outcome of Generate. Text is never empty.
type Reply struct {
	Text   string
	Source Source
}

// Client applies the retry policy around a Provider.
type Client struct {
	provider Provider
	cfg      config.CompletionConfig
	log      *slog.Logger
}

// NewClient wraps provider with the attempts, delays and fillers from cfg.
func NewClient(provider Provider, cfg config.CompletionConfig, log *slog.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &Client{
		provider: provider,
		cfg:      cfg,
		log:      log.With("component", "completion"),
	}
}

// Generate asks the primary model up to MaxAttempts times with a fixed pause
// between attempts, then the fallback model once, then returns a canned
// filler. It never fails.
func (c *Client) Generate(ctx context.Context, systemPrompt, userMessage string) Reply {
	req := Request{
		Model:        c.cfg.PrimaryModel,
		SystemPrompt: systemPrompt,
		UserMessage:  userMessage,
		Temperature:  c.cfg.Temperature,
		TopP:         c.cfg.TopP,
		MaxTokens:    c.cfg.MaxTokens,
	}

	var attempts uint
	text, err := retry.DoWithData(
		func() (string, error) {
			attempts++
			text, err := c.complete(ctx, req)
			if err != nil && ctx.Err() != nil {
				return "", retry.Unrecoverable(err)
			}
			return text, err
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.cfg.MaxAttempts)),
		retry.Delay(c.cfg.RetryDelay),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			c.log.WarnContext(ctx, "Primary completion attempt failed",
				"attempt", n+1, "max_attempts", c.cfg.MaxAttempts, "model", req.Model, "error", err)
		}),
	)
	if err == nil {
		return c.done(ctx, Reply{Text: text, Source: SourcePrimary}, attempts)
	}
	if ctx.Err() != nil {
		return c.filler(ctx, userMessage)
	}

	if c.cfg.FallbackModel != "" {
		req.Model = c.cfg.FallbackModel
		text, err := c.complete(ctx, req)
		if err == nil {
			return c.done(ctx, Reply{Text: text, Source: SourceFallback}, 1)
		}
		c.log.WarnContext(ctx, "Fallback completion failed", "model", req.Model, "error", err)
	}

	return c.filler(ctx, userMessage)
}

// Filler picks one of the configured fillers. The same message always maps
// to the same filler.
func (c *Client) Filler(userMessage string) string {
	if len(c.cfg.Fillers) == 0 {
		return "..."
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(userMessage))
	return c.cfg.Fillers[h.Sum32()%uint32(len(c.cfg.Fillers))]
}

func (c *Client) complete(ctx context.Context, req Request) (string, error) {
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}
	text, err := c.provider.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	if text = Sanitize(text); text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

func (c *Client) done(ctx context.Context, r Reply, attempts uint) Reply {
	c.log.InfoContext(ctx, "Reply generated", "source", r.Source, "attempts", attempts, "length", len(r.Text))
	return r
}

func (c *Client) filler(ctx context.Context, userMessage string) Reply {
	c.log.WarnContext(ctx, "Using filler reply", "source", SourceFiller, "context_error", ctx.Err())
	return Reply{Text: c.Filler(userMessage), Source: SourceFiller}
}
