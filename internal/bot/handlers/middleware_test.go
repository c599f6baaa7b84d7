package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(6, 2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow(1))
	assert.True(t, l.Allow(1))
	assert.False(t, l.Allow(1), "burst exhausted")
	assert.True(t, l.Allow(2), "users are limited independently")

	now = now.Add(10 * time.Second)
	assert.True(t, l.Allow(1), "one token refills every ten seconds")
	assert.False(t, l.Allow(1))

	now = now.Add(time.Hour)
	assert.True(t, l.Allow(3))
	l.mu.Lock()
	_, kept := l.users[1]
	l.mu.Unlock()
	assert.False(t, kept, "idle limiters are pruned")
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("over limit gets the notice", func(t *testing.T) {
		t.Parallel()
		b, fake := newFakeBot(t)
		deps := testDeps(&fakeCompanion{})
		deps.Config.Telegram.RateLimitPerMinute = 1
		deps.Config.Telegram.RateLimitBurst = 1

		var passed int
		h := RateLimit(deps)(func(context.Context, *tgbot.Bot, *models.Update) { passed++ })
		update := textUpdate(models.ChatTypePrivate, "Ana", "hi")

		h(context.Background(), b, update)
		h(context.Background(), b, update)

		assert.Equal(t, 1, passed)
		sent := fake.Calls("sendMessage")
		require.Len(t, sent, 1)
		assert.Equal(t, "slow down, babe", sent[0].Form["text"])

		h(context.Background(), b, &models.Update{ID: 2})
		assert.Equal(t, 2, passed, "updates without a sender pass through")
	})

	t.Run("disabled when rate is zero", func(t *testing.T) {
		t.Parallel()
		b, fake := newFakeBot(t)
		deps := testDeps(&fakeCompanion{})

		var passed int
		h := RateLimit(deps)(func(context.Context, *tgbot.Bot, *models.Update) { passed++ })
		for i := 0; i < 5; i++ {
			h(context.Background(), b, textUpdate(models.ChatTypePrivate, "Ana", "hi"))
		}
		assert.Equal(t, 5, passed)
		assert.Zero(t, fake.Total())
	})
}

func TestTypingDelay(t *testing.T) {
	t.Parallel()

	cfg := testDeps(nil).Config.Telegram
	cfg.TypingMinDelay = time.Second
	cfg.TypingMaxDelay = 3 * time.Second

	testCases := map[string]struct {
		reply string
		want  time.Duration
	}{
		"short reply uses the minimum": {reply: "hi", want: time.Second},
		"hundred characters":           {reply: strings.Repeat("a", 100), want: 2 * time.Second},
		"long reply is capped":         {reply: strings.Repeat("a", 1000), want: 3 * time.Second},
		"counts runes not bytes":       {reply: strings.Repeat("💖", 75), want: 1500 * time.Millisecond},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, typingDelay(tc.reply, cfg))
		})
	}
}

func TestTitleCase(t *testing.T) {
	t.Parallel()

	testCases := map[string]string{
		"curious":           "Curious",
		"sweet and playful": "Sweet And Playful",
		"DOMINANT":          "Dominant",
		"half-hearted":      "Half-Hearted",
		"":                  "",
	}
	for in, want := range testCases {
		assert.Equal(t, want, titleCase(in), in)
	}
}

func TestEscapeMarkdown(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `a\_b\*c\[d\`+"`", escapeMarkdown("a_b*c[d`"))
}
