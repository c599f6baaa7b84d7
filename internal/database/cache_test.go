package database

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/soulbot/internal/logger"
	"github.com/edgard/soulbot/internal/soul"
)

// countingStore is an in-memory Store that counts reads.
type countingStore struct {
	mu           sync.Mutex
	states       map[string]soul.State
	interactions map[string][]soul.Interaction
	stateReads   int
	recentReads  int
}

func newCountingStore() *countingStore {
	return &countingStore{states: map[string]soul.State{}, interactions: map[string][]soul.Interaction{}}
}

func (s *countingStore) Ping(context.Context) error { return nil }

func (s *countingStore) GetSoulState(_ context.Context, userID string) (*soul.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stateReads++
	st, ok := s.states[userID]
	if !ok {
		return nil, nil
	}
	return &st, nil
}

func (s *countingStore) CreateSoulState(_ context.Context, st *soul.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[st.UserID] = *st
	return nil
}

func (s *countingStore) UpdateSoulState(_ context.Context, st *soul.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.states[st.UserID]; !ok {
		return ErrNotFound
	}
	s.states[st.UserID] = *st
	return nil
}

func (s *countingStore) SaveInteraction(_ context.Context, in *soul.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.interactions[in.UserID] = append(s.interactions[in.UserID], *in)
	return nil
}

func (s *countingStore) GetRecentInteractions(_ context.Context, userID string, limit int) ([]soul.Interaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recentReads++
	all := append([]soul.Interaction(nil), s.interactions[userID]...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	limit = ClampLimit(limit)
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func newTestCache(t *testing.T, inner Store, listCap int) (*CachedStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCachedStore(inner, client, time.Hour, listCap, logger.Discard()), mr
}

func TestCachedStoreSoulState(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newCountingStore()
	cache, mr := newTestCache(t, inner, 10)

	got, err := cache.GetSoulState(ctx, "42")
	require.NoError(t, err)
	assert.Nil(t, got)
	assert.False(t, mr.Exists("soulbot:state:42"), "absent users are not cached")

	st := soul.NewState("42", time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, cache.CreateSoulState(ctx, &st))
	assert.True(t, mr.Exists("soulbot:state:42"))

	reads := inner.stateReads
	got, err = cache.GetSoulState(ctx, "42")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, reads, inner.stateReads, "served from cache")

	st.BondLevel = 4.2
	require.NoError(t, cache.UpdateSoulState(ctx, &st))
	got, err = cache.GetSoulState(ctx, "42")
	require.NoError(t, err)
	assert.InDelta(t, 4.2, got.BondLevel, 1e-9, "write-through on update")

	ghost := soul.NewState("ghost", time.Now())
	assert.ErrorIs(t, cache.UpdateSoulState(ctx, &ghost), ErrNotFound)

	mr.FastForward(2 * time.Hour)
	assert.False(t, mr.Exists("soulbot:state:42"), "state expires")
}

func TestCachedStoreInteractions(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newCountingStore()
	cache, mr := newTestCache(t, inner, 5)

	base := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	save := func(i int) {
		require.NoError(t, cache.SaveInteraction(ctx, &soul.Interaction{
			UserID:      "7",
			UserMessage: fmt.Sprintf("m%d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}))
	}

	save(0)
	assert.False(t, mr.Exists("soulbot:interactions:7"), "append never creates a partial list")

	for i := 1; i < 8; i++ {
		save(i)
	}

	recent, err := cache.GetRecentInteractions(ctx, "7", 3)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, "m7", recent[0].UserMessage)
	assert.Equal(t, 1, inner.recentReads)

	length, err := mr.List("soulbot:interactions:7")
	require.NoError(t, err)
	assert.Len(t, length, 5, "list is capped")

	save(8)
	recent, err = cache.GetRecentInteractions(ctx, "7", 5)
	require.NoError(t, err)
	assert.Equal(t, 1, inner.recentReads, "served from cache")
	require.Len(t, recent, 5)
	assert.Equal(t, "m8", recent[0].UserMessage)
	assert.Equal(t, "m4", recent[4].UserMessage)

	_, err = cache.GetRecentInteractions(ctx, "7", 10)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.recentReads, "limits above the cap bypass the cache")
}

func TestCachedStoreSurvivesRedisOutage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	inner := newCountingStore()
	cache, mr := newTestCache(t, inner, 5)

	st := soul.NewState("1", time.Now())
	require.NoError(t, cache.CreateSoulState(ctx, &st))
	mr.Close()

	got, err := cache.GetSoulState(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "1", got.UserID)

	require.NoError(t, cache.SaveInteraction(ctx, &soul.Interaction{UserID: "1", CreatedAt: time.Now()}))
	recent, err := cache.GetRecentInteractions(ctx, "1", 3)
	require.NoError(t, err)
	assert.Len(t, recent, 1)

	assert.Error(t, cache.Ping(ctx))
}

func TestCachedStoreMaintenanceDelegation(t *testing.T) {
	t.Parallel()
	cache, _ := newTestCache(t, newCountingStore(), 5)
	assert.Error(t, cache.RunSQLMaintenance(context.Background()))
}
