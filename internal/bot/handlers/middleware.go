package handlers

import (
	"context"
	"sync"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"golang.org/x/time/rate"
)

// limiterIdleTTL is how long an unused per-user limiter is kept.
const limiterIdleTTL = 30 * time.Minute

type userLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per user.
type RateLimiter struct {
	mu        sync.Mutex
	limit     rate.Limit
	burst     int
	users     map[int64]*userLimiter
	now       func() time.Time
	lastPrune time.Time
}

// NewRateLimiter allows perMinute messages per user with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{
		limit: rate.Limit(float64(perMinute) / 60),
		burst: burst,
		users: make(map[int64]*userLimiter),
		now:   time.Now,
	}
}

// Allow reports whether userID may send another message now.
func (l *RateLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) > limiterIdleTTL {
		for id, u := range l.users {
			if now.Sub(u.lastSeen) > limiterIdleTTL {
				delete(l.users, id)
			}
		}
		l.lastPrune = now
	}

	u, ok := l.users[userID]
	if !ok {
		u = &userLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.users[userID] = u
	}
	u.lastSeen = now
	return u.limiter.AllowN(now, 1)
}

// RateLimit drops chat messages from users over their rate and answers them
// with the configured in-character notice. Other updates pass through.
// A zero per-minute rate disables the middleware.
func RateLimit(deps HandlerDeps) tgbot.Middleware {
	cfg := deps.Config.Telegram
	if cfg.RateLimitPerMinute <= 0 {
		return func(next tgbot.HandlerFunc) tgbot.HandlerFunc { return next }
	}
	limiter := NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	log := deps.Logger.With("middleware", "rate_limit")

	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, b *tgbot.Bot, update *models.Update) {
			if update.Message == nil || update.Message.From == nil {
				next(ctx, b, update)
				return
			}

			userID := update.Message.From.ID
			if limiter.Allow(userID) {
				next(ctx, b, update)
				return
			}

			chatID := update.Message.Chat.ID
			log.WarnContext(ctx, "Rate limit exceeded", "user_id", userID, "chat_id", chatID)

			sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
			defer cancel()
			if _, err := b.SendMessage(sendCtx, &tgbot.SendMessageParams{
				ChatID: chatID,
				Text:   deps.Config.Messages.RateLimited,
			}); err != nil {
				log.ErrorContext(ctx, "Failed to send rate limit notice", "error", err, "chat_id", chatID)
			}
		}
	}
}
