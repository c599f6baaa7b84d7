// Package bot orchestrates the running components of soulbot: the Telegram
// update loop (long polling or webhook), the webhook HTTP server and the
// task scheduler.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/edgard/soulbot/internal/server"
)

// Bot manages the lifecycle of its components.
type Bot struct {
	logger    *slog.Logger
	tgBot     *tgbot.Bot
	scheduler *Scheduler
	server    *server.Server
}

// NewBot creates the orchestrator. srv is nil in long polling mode; when set,
// updates arrive through its webhook route instead.
func NewBot(logger *slog.Logger, tgBot *tgbot.Bot, scheduler *Scheduler, srv *server.Server) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		tgBot:     tgBot,
		scheduler: scheduler,
		server:    srv,
	}
}

// Run starts every component and blocks until ctx is cancelled or one of
// them fails.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	if b.server == nil {
		g.Go(func() error {
			b.logger.Info("Starting Telegram long polling...")
			b.tgBot.Start(gCtx)
			return b.listenerStopped(gCtx, "long polling")
		})
	} else {
		g.Go(func() error {
			b.logger.Info("Starting Telegram webhook processing...")
			b.tgBot.StartWebhook(gCtx)
			return b.listenerStopped(gCtx, "webhook processing")
		})
		g.Go(func() error {
			return b.server.Run(gCtx)
		})
	}

	g.Go(func() error {
		if err := b.scheduler.Start(gCtx); err != nil {
			b.logger.Error("Failed to start scheduler", "error", err)
			return fmt.Errorf("failed to start scheduler: %w", err)
		}

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")
		if err := b.scheduler.Stop(); err != nil {
			b.logger.Error("Error stopping scheduler", "error", err)
		}
		return nil
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully")
	return nil
}

func (b *Bot) listenerStopped(ctx context.Context, mode string) error {
	b.logger.Info("Telegram listener stopped", "mode", mode)
	if ctx.Err() == nil {
		return fmt.Errorf("telegram %s stopped unexpectedly", mode)
	}
	return nil
}
