package completion

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/soulbot/internal/config"
	"github.com/edgard/soulbot/internal/logger"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	MaxTokens   int     `json:"max_tokens"`
}

func completionBody(content string) string {
	body, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-1",
		"object":  "chat.completion",
		"created": 1,
		"model":   "openai/gpt-4-turbo-preview",
		"choices": []map[string]any{{
			"index":         0,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": content},
		}},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(body)
}

func newTestOpenRouter(t *testing.T, handler http.HandlerFunc) *OpenRouter {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.CompletionConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL + "/api/v1/",
		Referer: "https://bonnie-ai.app",
		Title:   "Bonnie AI",
	}
	p, err := NewOpenRouter(cfg, logger.Discard())
	require.NoError(t, err)
	return p
}

func TestOpenRouterComplete(t *testing.T) {
	t.Parallel()

	var got chatRequest
	var headers http.Header
	p := newTestOpenRouter(t, func(w http.ResponseWriter, r *http.Request) {
		headers = r.Header.Clone()
		assert.True(t, strings.HasSuffix(r.URL.Path, "/chat/completions"), r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("  mmm, hi there  ")))
	})

	text, err := p.Complete(context.Background(), Request{
		Model:        "openai/gpt-4-turbo-preview",
		SystemPrompt: "You are Bonnie",
		UserMessage:  "hello",
		Temperature:  0.95,
		TopP:         0.9,
		MaxTokens:    750,
	})
	require.NoError(t, err)
	assert.Equal(t, "mmm, hi there", text)

	assert.Equal(t, "Bearer sk-test", headers.Get("Authorization"))
	assert.Equal(t, "https://bonnie-ai.app", headers.Get("HTTP-Referer"))
	assert.Equal(t, "Bonnie AI", headers.Get("X-Title"))

	assert.Equal(t, "openai/gpt-4-turbo-preview", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "You are Bonnie", got.Messages[0].Content)
	assert.Equal(t, "user", got.Messages[1].Role)
	assert.Equal(t, "hello", got.Messages[1].Content)
	assert.InDelta(t, 0.95, got.Temperature, 1e-9)
	assert.InDelta(t, 0.9, got.TopP, 1e-9)
	assert.Equal(t, 750, got.MaxTokens)
}

func TestOpenRouterFailures(t *testing.T) {
	t.Parallel()

	t.Run("server error is not retried by the SDK", func(t *testing.T) {
		t.Parallel()
		var hits atomic.Int32
		p := newTestOpenRouter(t, func(w http.ResponseWriter, _ *http.Request) {
			hits.Add(1)
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusServiceUnavailable)
		})
		_, err := p.Complete(context.Background(), Request{Model: "m", MaxTokens: 10})
		assert.Error(t, err)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("blank content", func(t *testing.T) {
		t.Parallel()
		p := newTestOpenRouter(t, func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(completionBody("   ")))
		})
		_, err := p.Complete(context.Background(), Request{Model: "m", MaxTokens: 10})
		assert.True(t, errors.Is(err, ErrEmptyCompletion))
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()
		_, err := NewOpenRouter(config.CompletionConfig{}, nil)
		assert.Error(t, err)
	})
}

func TestNewProvider(t *testing.T) {
	t.Parallel()

	p, err := NewProvider(context.Background(), config.CompletionConfig{Provider: config.ProviderOpenRouter, APIKey: "k"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &OpenRouter{}, p)

	_, err = NewProvider(context.Background(), config.CompletionConfig{Provider: "nope", APIKey: "k"}, nil)
	assert.Error(t, err)
}
