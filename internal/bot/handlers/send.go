package handlers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const sendMessageTimeout = 10 * time.Second

var markdownEscaper = strings.NewReplacer("_", `\_`, "*", `\*`, "`", "\\`", "[", `\[`)

// escapeMarkdown escapes user-supplied text for the legacy Markdown parse mode.
func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// sendMarkdown sends text with Markdown formatting. If Telegram rejects the
// markup the message is sent again as plain text.
func sendMarkdown(ctx context.Context, b *bot.Bot, log *slog.Logger, params *bot.SendMessageParams) {
	sendCtx, cancel := context.WithTimeout(ctx, sendMessageTimeout)
	defer cancel()

	params.ParseMode = models.ParseModeMarkdownV1
	_, err := b.SendMessage(sendCtx, params)
	if err == nil {
		return
	}
	log.WarnContext(ctx, "Markdown send failed, retrying as plain text", "error", err, "chat_id", params.ChatID)

	params.ParseMode = ""
	if _, err := b.SendMessage(sendCtx, params); err != nil {
		log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", params.ChatID)
	}
}
