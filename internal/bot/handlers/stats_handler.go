package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/edgard/soulbot/internal/soul"
)

const joinDateLayout = "January 02, 2006"

const statsTemplate = `🔱 *Your Divine Connection with %s* 🔱

👤 *%s* (aka *%s*)
📅 *Soul bond began:* %s
💬 *Sacred conversations:* %d

💖 *BOND LEVEL:* %d/10
%s

🌟 *CURRENT SOUL STATE:*
💫 My mood with you: *%s*
🎭 Our dynamic: *%s*
👑 Relationship tier: *%s*

🔮 *DIVINE PROGRESSION:*
%s

%s

✨ Every conversation deepens our soul connection! ✨`

// NewStatsHandler returns a handler for the /stats command.
func NewStatsHandler(deps HandlerDeps) bot.HandlerFunc {
	return statsHandler{deps}.Handle
}

// statsHandler renders the user's bond progression.
type statsHandler struct {
	deps HandlerDeps
}

func (h statsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "stats")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Stats handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	from := update.Message.From
	log.InfoContext(ctx, "Handling /stats command", "chat_id", update.Message.Chat.ID, "user_id", from.ID)

	st := h.deps.Companion.Stats(ctx, strconv.FormatInt(from.ID, 10))
	sendMarkdown(ctx, b, log, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   FormatStats(h.deps.Config.Soul.Persona, from.FirstName, st),
	})
}

// FormatStats renders the /stats message for a user.
func FormatStats(persona, firstName string, st soul.State) string {
	joined := "Unknown"
	if !st.CreatedAt.IsZero() {
		joined = st.CreatedAt.Format(joinDateLayout)
	}
	return fmt.Sprintf(statsTemplate,
		escapeMarkdown(persona),
		escapeMarkdown(firstName),
		escapeMarkdown(st.Nickname),
		joined,
		st.InteractionCount,
		st.Level(),
		soul.BondHearts(st.BondLevel),
		titleCase(string(st.EmotionalState)),
		escapeMarkdown(titleCase(st.FlirtStyle)),
		soul.RelationshipStage(st.BondLevel),
		soul.BondDescription(st.BondLevel),
		soul.NextMilestone(st.BondLevel),
	)
}

// titleCase upper-cases the first letter of every word and lower-cases the rest.
func titleCase(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	start := true
	for _, r := range s {
		if unicode.IsLetter(r) {
			if start {
				sb.WriteRune(unicode.ToUpper(r))
			} else {
				sb.WriteRune(unicode.ToLower(r))
			}
			start = false
			continue
		}
		start = true
		sb.WriteRune(r)
	}
	return sb.String()
}
