package handlers

import (
	"context"
	"log/slog"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/soulbot/internal/config"
)

const (
	// Telegram shows a typing action for about five seconds.
	typingInterval      = 4 * time.Second
	typingActionTimeout = 5 * time.Second
)

// startTyping shows the typing indicator in chatID and keeps it alive until
// the returned stop function is called.
func startTyping(ctx context.Context, b *bot.Bot, chatID int64, log *slog.Logger) (stop func()) {
	if err := sendTypingAction(ctx, b, chatID); err != nil {
		log.DebugContext(ctx, "Failed to send initial typing action", "error", err, "chat_id", chatID)
	}

	ctx, cancel := context.WithCancel(ctx)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sendContinuousTyping(ctx, b, chatID, log)
	}()
	return func() {
		cancel()
		wg.Wait()
	}
}

func sendContinuousTyping(ctx context.Context, b *bot.Bot, chatID int64, log *slog.Logger) {
	ticker := time.NewTicker(typingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := sendTypingAction(ctx, b, chatID); err != nil && ctx.Err() == nil {
				log.DebugContext(ctx, "Typing action failed", "error", err, "chat_id", chatID)
			}
		}
	}
}

func sendTypingAction(ctx context.Context, b *bot.Bot, chatID int64) error {
	ctx, cancel := context.WithTimeout(ctx, typingActionTimeout)
	defer cancel()
	_, err := b.SendChatAction(ctx, &bot.SendChatActionParams{ChatID: chatID, Action: models.ChatActionTyping})
	return err
}

// typingDelay is how long to simulate typing a reply: one second per
// TypingCharsPerSecond characters, clamped to the configured bounds.
func typingDelay(reply string, cfg config.TelegramConfig) time.Duration {
	cps := cfg.TypingCharsPerSecond
	if cps <= 0 {
		cps = 1
	}
	d := time.Duration(utf8.RuneCountInString(reply)) * time.Second / time.Duration(cps)
	if d < cfg.TypingMinDelay {
		d = cfg.TypingMinDelay
	}
	if d > cfg.TypingMaxDelay {
		d = cfg.TypingMaxDelay
	}
	return d
}

// pause waits for d or until ctx is done.
func pause(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
