package database

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/edgard/soulbot/internal/config"
)

// Open builds the configured store, wrapped in the Redis cache when one is
// configured. The returned func releases every underlying connection.
func Open(ctx context.Context, cfg *config.Config, log *slog.Logger) (Store, func(), error) {
	var (
		store   Store
		closers []func()
	)
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.Database.Driver {
	case config.DriverSQLite:
		db, err := NewDB(cfg.Database.Path, log)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { CloseDB(db, log) })
		store = NewSQLStore(db, log)
	case config.DriverREST:
		client := &http.Client{Timeout: cfg.Database.Timeout}
		s, err := NewRESTStore(cfg.Database.URL, cfg.Database.APIKey, client, log)
		if err != nil {
			return nil, nil, err
		}
		store = s
	default:
		return nil, nil, fmt.Errorf("unknown database driver %q", cfg.Database.Driver)
	}

	if cfg.Cache.RedisURL != "" {
		client, err := NewRedisClient(ctx, cfg.Cache.RedisURL)
		if err != nil {
			closeAll()
			return nil, nil, err
		}
		closers = append(closers, func() {
			if err := client.Close(); err != nil {
				log.Error("Error closing Redis client", "error", err)
			}
		})
		store = NewCachedStore(store, client, cfg.Cache.StateTTL, cfg.Cache.InteractionsCap, log)
		log.Info("Redis cache enabled", "state_ttl", cfg.Cache.StateTTL, "interactions_cap", cfg.Cache.InteractionsCap)
	}

	log.Info("Memory store ready", "driver", cfg.Database.Driver)
	return store, closeAll, nil
}
