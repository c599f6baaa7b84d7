package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewChatHandler returns the default handler that turns plain text messages
// into companion replies.
func NewChatHandler(deps HandlerDeps) bot.HandlerFunc {
	return chatHandler{deps}.Handle
}

type chatHandler struct {
	deps HandlerDeps
}

func (h chatHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "chat")

	msg := update.Message
	if msg == nil || msg.From == nil {
		log.DebugContext(ctx, "Ignoring update without message or sender", "update_id", update.ID)
		return
	}
	text := strings.TrimSpace(msg.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		log.DebugContext(ctx, "Ignoring non-text or command message", "chat_id", msg.Chat.ID)
		return
	}

	userID := strconv.FormatInt(msg.From.ID, 10)
	log = log.With("chat_id", msg.Chat.ID, "user_id", userID)

	stopTyping := startTyping(ctx, b, msg.Chat.ID, log)
	reply := h.deps.Companion.Reply(ctx, userID, text)
	if err := pause(ctx, typingDelay(reply, h.deps.Config.Telegram)); err != nil {
		stopTyping()
		log.WarnContext(ctx, "Context cancelled before sending reply", "error", err)
		return
	}
	stopTyping()

	params := &bot.SendMessageParams{ChatID: msg.Chat.ID, Text: reply}
	if msg.Chat.Type != models.ChatTypePrivate {
		params.ReplyParameters = &models.ReplyParameters{MessageID: msg.ID}
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()
	sent, err := b.SendMessage(sendCtx, params)
	if err != nil {
		log.ErrorContext(ctx, "Failed to send reply", "error", err)
		return
	}
	log.InfoContext(ctx, "Sent reply", "message_id", sent.ID, "length", len(reply))
}
