// Package tasks implements the periodic jobs run by the bot scheduler.
package tasks

import (
	"log/slog"

	"github.com/edgard/soulbot/internal/config"
	"github.com/edgard/soulbot/internal/database"
)

// TaskDeps contains the dependencies shared by scheduled tasks.
type TaskDeps struct {
	Logger *slog.Logger
	Store  database.Store
	Config *config.Config
}
