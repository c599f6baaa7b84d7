package completion

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"github.com/edgard/soulbot/internal/config"
	"github.com/edgard/soulbot/internal/logger"
)

// Gemini calls Google's Gemini API. The persona prompt travels as the system
// instruction and the user's message as the single content turn.
type Gemini struct {
	client *genai.Client
	log    *slog.Logger
}

// NewGemini creates the provider. BaseURL is not used by this backend.
func NewGemini(ctx context.Context, cfg config.CompletionConfig, log *slog.Logger) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if log == nil {
		log = logger.Discard()
	}

	gi, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	l := log.With("component", "gemini")
	l.Info("Completion provider initialized", "model", cfg.PrimaryModel)
	return &Gemini{client: gi, log: l}, nil
}

// Complete generates content with the persona prompt as system instruction.
func (g *Gemini) Complete(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(req.SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(float32(req.Temperature)),
		TopP:              genai.Ptr(float32(req.TopP)),
		MaxOutputTokens:   int32(req.MaxTokens),
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}
	contents := []*genai.Content{genai.NewContentFromText(req.UserMessage, genai.RoleUser)}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini generation with %s failed: %w", req.Model, err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != genai.BlockedReasonUnspecified {
		reason := fmt.Sprintf("%v", resp.PromptFeedback.BlockReason)
		if resp.PromptFeedback.BlockReasonMessage != "" {
			reason = resp.PromptFeedback.BlockReasonMessage
		}
		return "", fmt.Errorf("gemini request blocked: %s", reason)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		finish := "unknown"
		if len(resp.Candidates) > 0 {
			finish = fmt.Sprintf("%v", resp.Candidates[0].FinishReason)
		}
		return "", fmt.Errorf("model %s finished with %s: %w", req.Model, finish, ErrEmptyCompletion)
	}
	return text, nil
}
