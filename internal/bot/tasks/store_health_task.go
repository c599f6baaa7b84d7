package tasks

import (
	"context"
	"fmt"
	"time"
)

const storeHealthTimeout = 10 * time.Second

// newStoreHealthTask creates the task that pings the memory store so outages
// show up in the logs before users notice.
func newStoreHealthTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", StoreHealthTask)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, storeHealthTimeout)
		defer cancel()

		start := time.Now()
		if err := deps.Store.Ping(ctx); err != nil {
			return fmt.Errorf("memory store unreachable: %w", err)
		}
		log.DebugContext(ctx, "Memory store healthy", "latency", time.Since(start))
		return nil
	}
}
