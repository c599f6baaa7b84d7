package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/edgard/soulbot/internal/config"
	"github.com/edgard/soulbot/internal/database"
)

// newSQLMaintenanceTask creates the task that vacuums and analyzes the
// SQLite store. It does nothing for other drivers.
func newSQLMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", SQLMaintenanceTask)

	return func(ctx context.Context) error {
		if deps.Config.Database.Driver != config.DriverSQLite {
			log.DebugContext(ctx, "Skipping SQL maintenance", "driver", deps.Config.Database.Driver)
			return nil
		}
		m, ok := deps.Store.(database.Maintainer)
		if !ok {
			return fmt.Errorf("store %T does not support maintenance", deps.Store)
		}

		log.InfoContext(ctx, "Starting SQL maintenance")
		start := time.Now()

		if err := m.RunSQLMaintenance(ctx); err != nil {
			log.ErrorContext(ctx, "SQL maintenance failed", "error", err, "duration", time.Since(start))
			return fmt.Errorf("sql maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "SQL maintenance completed", "duration", time.Since(start))
		return nil
	}
}
