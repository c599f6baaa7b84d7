package handlers

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-telegram/bot"
	"github.com/stretchr/testify/require"

	"github.com/edgard/soulbot/internal/config"
	"github.com/edgard/soulbot/internal/logger"
	"github.com/edgard/soulbot/internal/soul"
)

// apiCall is one request received by the fake Bot API.
type apiCall struct {
	Method string
	Form   map[string]string
}

// fakeTelegram records Bot API calls and answers them successfully.
type fakeTelegram struct {
	mu           sync.Mutex
	calls        []apiCall
	failMarkdown bool
}

func (f *fakeTelegram) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
	form := map[string]string{}
	if err := r.ParseMultipartForm(1 << 20); err == nil {
		for k, v := range r.MultipartForm.Value {
			form[k] = v[0]
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, apiCall{Method: method, Form: form})
	failMarkdown := f.failMarkdown
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch method {
	case "sendMessage", "editMessageText":
		if failMarkdown && form["parse_mode"] != "" {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: can't parse entities"}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"ok":true,"result":{"message_id":100,"date":1,"chat":{"id":%s,"type":"private"},"text":"ok"}}`, orDefault(form["chat_id"], "1"))
	default:
		_, _ = w.Write([]byte(`{"ok":true,"result":true}`))
	}
}

func (f *fakeTelegram) Calls(method string) []apiCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []apiCall
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeTelegram) Total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func newFakeBot(t *testing.T) (*bot.Bot, *fakeTelegram) {
	t.Helper()
	fake := &fakeTelegram{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	b, err := bot.New("123456:test-token", bot.WithServerURL(srv.URL), bot.WithSkipGetMe())
	require.NoError(t, err)
	return b, fake
}

type fakeCompanion struct {
	mu    sync.Mutex
	reply string
	state soul.State
	turns []string
}

func (c *fakeCompanion) Reply(_ context.Context, userID, text string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.turns = append(c.turns, userID+":"+text)
	return c.reply
}

func (c *fakeCompanion) Stats(_ context.Context, userID string) soul.State {
	st := c.state
	st.UserID = userID
	return st
}

func testDeps(c Companion) HandlerDeps {
	return HandlerDeps{
		Logger: logger.Discard(),
		Config: &config.Config{
			Telegram: config.TelegramConfig{
				TypingCharsPerSecond: 50,
				RateLimitPerMinute:   0,
				RateLimitBurst:       1,
			},
			Soul: config.SoulConfig{Persona: "Bonnie", HistoryLimit: 10},
			Messages: config.MessagesConfig{
				Welcome:     "Hey there, {name}!",
				Help:        "help text",
				About:       "about text",
				Tips:        "tips text",
				RateLimited: "slow down, babe",
				AboutButton: "✨ Tell me about yourself",
				TipsButton:  "🎯 Get conversation tips",
			},
		},
		Companion: c,
	}
}
