package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewStartHandler returns a handler for the /start command.
func NewStartHandler(deps HandlerDeps) bot.HandlerFunc {
	return startHandler{deps}.Handle
}

// startHandler greets the user and offers the about/tips buttons.
type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "start")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Start handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /start command", "chat_id", update.Message.Chat.ID, "user_id", update.Message.From.ID)

	msgs := h.deps.Config.Messages
	welcome := strings.ReplaceAll(msgs.Welcome, "{name}", escapeMarkdown(update.Message.From.FirstName))

	sendMarkdown(ctx, b, log, &bot.SendMessageParams{
		ChatID: update.Message.Chat.ID,
		Text:   welcome,
		ReplyMarkup: &models.InlineKeyboardMarkup{
			InlineKeyboard: [][]models.InlineKeyboardButton{
				{{Text: msgs.AboutButton, CallbackData: CallbackAbout}},
				{{Text: msgs.TipsButton, CallbackData: CallbackTips}},
			},
		},
	})
}
