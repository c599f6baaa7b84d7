package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edgard/soulbot/internal/logger"
	"github.com/edgard/soulbot/internal/soul"
)

// DefaultCachePrefix namespaces every cache key.
const DefaultCachePrefix = "soulbot"

// NewRedisClient parses url and checks the connection.
func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// CachedStore fronts a Store with Redis. Soul states are cached as JSON with a
// TTL and written through on create/update. Recent interactions are cached as
// a capped list, newest first. Cache failures are logged and never surface to
// callers; the wrapped store stays the source of truth.
type CachedStore struct {
	Store
	client   *redis.Client
	prefix   string
	stateTTL time.Duration
	listCap  int
	logger   *slog.Logger
}

// NewCachedStore wraps store. listCap bounds the cached interaction list.
func NewCachedStore(store Store, client *redis.Client, stateTTL time.Duration, listCap int, log *slog.Logger) *CachedStore {
	if log == nil {
		log = logger.Discard()
	}
	return &CachedStore{
		Store:    store,
		client:   client,
		prefix:   DefaultCachePrefix,
		stateTTL: stateTTL,
		listCap:  ClampLimit(listCap),
		logger:   log.With("component", "store_cache"),
	}
}

func (c *CachedStore) key(parts ...string) string {
	return c.prefix + ":" + strings.Join(parts, ":")
}

func (c *CachedStore) stateKey(userID string) string { return c.key("state", userID) }

func (c *CachedStore) interactionsKey(userID string) string { return c.key("interactions", userID) }

// Ping checks both the cache and the wrapped store.
func (c *CachedStore) Ping(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return c.Store.Ping(ctx)
}

func (c *CachedStore) GetSoulState(ctx context.Context, userID string) (*soul.State, error) {
	data, err := c.client.Get(ctx, c.stateKey(userID)).Bytes()
	switch {
	case err == nil:
		var st soul.State
		if jsonErr := json.Unmarshal(data, &st); jsonErr == nil {
			return &st, nil
		}
		c.logger.WarnContext(ctx, "Discarding undecodable cached soul state", "user_id", userID)
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "Cache read failed for soul state", "user_id", userID, "error", err)
	}

	st, err := c.Store.GetSoulState(ctx, userID)
	if err != nil || st == nil {
		return st, err
	}
	c.putState(ctx, st)
	return st, nil
}

func (c *CachedStore) CreateSoulState(ctx context.Context, st *soul.State) error {
	if err := c.Store.CreateSoulState(ctx, st); err != nil {
		return err
	}
	c.putState(ctx, st)
	return nil
}

func (c *CachedStore) UpdateSoulState(ctx context.Context, st *soul.State) error {
	if err := c.Store.UpdateSoulState(ctx, st); err != nil {
		// the stored row may or may not have changed
		c.drop(ctx, c.stateKey(st.UserID))
		return err
	}
	c.putState(ctx, st)
	return nil
}

func (c *CachedStore) SaveInteraction(ctx context.Context, in *soul.Interaction) error {
	if err := c.Store.SaveInteraction(ctx, in); err != nil {
		return err
	}

	data, err := json.Marshal(in)
	if err != nil {
		c.drop(ctx, c.interactionsKey(in.UserID))
		return nil
	}
	key := c.interactionsKey(in.UserID)
	// LPUSHX only extends a list that is already populated, so a partial
	// history is never cached.
	pipe := c.client.TxPipeline()
	pipe.LPushX(ctx, key, data)
	pipe.LTrim(ctx, key, 0, int64(c.listCap-1))
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.WarnContext(ctx, "Cache append failed for interaction", "user_id", in.UserID, "error", err)
		c.drop(ctx, key)
	}
	return nil
}

func (c *CachedStore) GetRecentInteractions(ctx context.Context, userID string, limit int) ([]soul.Interaction, error) {
	limit = ClampLimit(limit)
	if limit > c.listCap {
		return c.Store.GetRecentInteractions(ctx, userID, limit)
	}

	key := c.interactionsKey(userID)
	raw, err := c.client.LRange(ctx, key, 0, int64(limit-1)).Result()
	if err != nil {
		c.logger.WarnContext(ctx, "Cache read failed for interactions", "user_id", userID, "error", err)
	}
	if err == nil && len(raw) > 0 {
		out := make([]soul.Interaction, 0, len(raw))
		for _, item := range raw {
			var in soul.Interaction
			if jsonErr := json.Unmarshal([]byte(item), &in); jsonErr != nil {
				out = nil
				break
			}
			out = append(out, in)
		}
		if out != nil {
			return out, nil
		}
		c.drop(ctx, key)
	}

	all, err := c.Store.GetRecentInteractions(ctx, userID, c.listCap)
	if err != nil {
		return nil, err
	}
	c.fillInteractions(ctx, key, all)

	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// RunSQLMaintenance delegates to the wrapped store when it supports maintenance.
func (c *CachedStore) RunSQLMaintenance(ctx context.Context) error {
	m, ok := c.Store.(Maintainer)
	if !ok {
		return errors.New("wrapped store does not support maintenance")
	}
	return m.RunSQLMaintenance(ctx)
}

func (c *CachedStore) fillInteractions(ctx context.Context, key string, newestFirst []soul.Interaction) {
	if len(newestFirst) == 0 {
		return
	}
	values := make([]any, 0, len(newestFirst))
	for i := range newestFirst {
		data, err := json.Marshal(&newestFirst[i])
		if err != nil {
			return
		}
		values = append(values, data)
	}

	pipe := c.client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.RPush(ctx, key, values...)
	pipe.Expire(ctx, key, c.stateTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		c.logger.WarnContext(ctx, "Cache fill failed for interactions", "key", key, "error", err)
	}
}

func (c *CachedStore) putState(ctx context.Context, st *soul.State) {
	data, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.stateKey(st.UserID), data, c.stateTTL).Err(); err != nil {
		c.logger.WarnContext(ctx, "Cache write failed for soul state", "user_id", st.UserID, "error", err)
	}
}

func (c *CachedStore) drop(ctx context.Context, key string) {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.WarnContext(ctx, "Cache delete failed", "key", key, "error", err)
	}
}
