package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewCallbackHandler returns a handler for the /start inline buttons. The
// button's message is edited in place to show the requested text.
func NewCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return callbackHandler{deps}.Handle
}

type callbackHandler struct {
	deps HandlerDeps
}

func (h callbackHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "callback")

	cq := update.CallbackQuery
	if cq == nil {
		log.WarnContext(ctx, "Callback handler received update without callback query", "update_id", update.ID)
		return
	}

	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: cq.ID}); err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err, "callback_id", cq.ID)
	}

	var text string
	switch cq.Data {
	case CallbackAbout:
		text = h.deps.Config.Messages.About
	case CallbackTips:
		text = h.deps.Config.Messages.Tips
	default:
		log.DebugContext(ctx, "Ignoring unknown callback data", "data", cq.Data)
		return
	}

	msg := cq.Message.Message
	if msg == nil {
		log.WarnContext(ctx, "Callback message is no longer accessible", "user_id", cq.From.ID)
		return
	}

	log.InfoContext(ctx, "Handling callback", "data", cq.Data, "chat_id", msg.Chat.ID, "user_id", cq.From.ID)

	editCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()
	if _, err := b.EditMessageText(editCtx, &bot.EditMessageTextParams{
		ChatID:    msg.Chat.ID,
		MessageID: msg.ID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	}); err != nil {
		log.ErrorContext(ctx, "Failed to edit callback message", "error", err, "chat_id", msg.Chat.ID)
	}
}
