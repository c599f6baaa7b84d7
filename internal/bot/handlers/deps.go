// Package handlers contains the Telegram command, callback and chat handlers,
// their registration table and middleware.
package handlers

import (
	"context"
	"log/slog"

	"github.com/edgard/soulbot/internal/config"
	"github.com/edgard/soulbot/internal/soul"
)

// Companion runs conversation turns. *companion.Service satisfies it.
type Companion interface {
	Reply(ctx context.Context, userID, text string) string
	Stats(ctx context.Context, userID string) soul.State
}

// HandlerDeps provides dependencies for Telegram handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	Companion Companion
}
