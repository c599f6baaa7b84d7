// Package companion runs one conversation turn: it loads the user's soul
// state and recent history, builds the persona prompt, asks the completion
// client for a reply, then records the interaction and the evolved state.
package companion

import (
	"context"
	"log/slog"
	"time"

	"github.com/edgard/soulbot/internal/completion"
	"github.com/edgard/soulbot/internal/database"
	"github.com/edgard/soulbot/internal/logger"
	"github.com/edgard/soulbot/internal/soul"
)

// Generator produces a reply for a system prompt and user message.
// *completion.Client satisfies it.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userMessage string) completion.Reply
}

// Service orchestrates turns against a memory store.
type Service struct {
	store        database.Store
	generator    Generator
	persona      string
	historyLimit int
	log          *slog.Logger
	now          func() time.Time
}

// NewService creates a Service. A nil clock uses time.Now in UTC.
func NewService(store database.Store, generator Generator, persona string, historyLimit int, log *slog.Logger, clock func() time.Time) *Service {
	if log == nil {
		log = logger.Discard()
	}
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		store:        store,
		generator:    generator,
		persona:      persona,
		historyLimit: database.ClampLimit(historyLimit),
		log:          log.With("component", "companion"),
		now:          clock,
	}
}

// LoadState returns the user's soul state, creating it on first contact, and
// the recent interactions newest first. Store failures are logged and yield
// the default state with no history.
func (s *Service) LoadState(ctx context.Context, userID string) (soul.State, []soul.Interaction) {
	st, recent, _ := s.load(ctx, userID, true)
	return st, recent
}

// Stats returns the user's soul state for display.
func (s *Service) Stats(ctx context.Context, userID string) soul.State {
	st, _, _ := s.load(ctx, userID, false)
	return st
}

// Reply runs a full turn and returns the text to send. It always returns a
// non-empty reply; persistence failures after the completion are logged.
func (s *Service) Reply(ctx context.Context, userID, text string) string {
	log := s.log.With("user_id", userID)

	st, recent, stored := s.load(ctx, userID, true)
	prompt := soul.Synthesize(s.persona, st, recent)
	reply := s.generator.Generate(ctx, prompt, text)

	now := s.now()
	if err := s.store.SaveInteraction(ctx, &soul.Interaction{
		UserID:      userID,
		UserMessage: text,
		AIResponse:  reply.Text,
		CreatedAt:   now,
	}); err != nil {
		log.ErrorContext(ctx, "Failed to save interaction", "error", err)
	}

	prevBond, prevLevel, prevState := st.BondLevel, st.Level(), st.EmotionalState
	st.BondLevel, st.EmotionalState = soul.Update(text, reply.Text, st.BondLevel, st.EmotionalState)
	st.InteractionCount++
	st.LastInteraction = now

	// A default state stands in for a record we could not read; writing it
	// back would clobber the real one.
	if !stored {
		log.WarnContext(ctx, "Skipping soul state update for unloaded state")
		return reply.Text
	}
	if err := s.store.UpdateSoulState(ctx, &st); err != nil {
		log.ErrorContext(ctx, "Failed to update soul state", "error", err)
		return reply.Text
	}

	if st.EmotionalState != prevState || st.Level() != prevLevel {
		log.InfoContext(ctx, "Soul state evolved",
			"bond_level", st.BondLevel, "emotional_state", st.EmotionalState,
			"previous_bond_level", prevBond, "previous_emotional_state", prevState)
	}
	return reply.Text
}

// load reports whether the returned state is backed by a stored record.
func (s *Service) load(ctx context.Context, userID string, withHistory bool) (soul.State, []soul.Interaction, bool) {
	log := s.log.With("user_id", userID)

	stored, err := s.store.GetSoulState(ctx, userID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load soul state, using defaults", "error", err)
		return soul.DefaultState(userID), nil, false
	}

	if stored == nil {
		st := soul.NewState(userID, s.now())
		if err := s.store.CreateSoulState(ctx, &st); err != nil {
			log.ErrorContext(ctx, "Failed to create soul state, using defaults", "error", err)
			return soul.DefaultState(userID), nil, false
		}
		log.InfoContext(ctx, "Created soul state for new user")
		// nothing to remember yet
		return st, nil, true
	}

	st := *stored
	st.Normalize()
	if !withHistory {
		return st, nil, true
	}

	recent, err := s.store.GetRecentInteractions(ctx, userID, s.historyLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load recent interactions", "error", err)
		return st, nil, true
	}
	return st, recent, true
}
