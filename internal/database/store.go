// Package database implements the memory store: per-user soul state and the
// append-only interaction log, backed by a PostgREST endpoint or SQLite, with
// an optional Redis cache in front.
package database

import (
	"context"
	"errors"

	"github.com/edgard/soulbot/internal/soul"
)

// Table names shared by every backend.
const (
	UsersTable        = "telegram_users"
	InteractionsTable = "telegram_interactions"
)

// Limits for GetRecentInteractions.
const (
	MinRecentLimit = 1
	MaxRecentLimit = 100
)

// ErrNotFound is returned when an update matched no stored soul state.
var ErrNotFound = errors.New("soul state not found")

// Store defines the memory store operations.
// Methods accept context.Context for cancellation and timeouts.
type Store interface {
	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error

	// GetSoulState returns the stored state for userID, or nil, nil if absent.
	GetSoulState(ctx context.Context, userID string) (*soul.State, error)

	// CreateSoulState inserts a new state record.
	CreateSoulState(ctx context.Context, st *soul.State) error

	// UpdateSoulState overwrites the mutable fields of an existing record.
	// Returns ErrNotFound when no record exists for st.UserID.
	UpdateSoulState(ctx context.Context, st *soul.State) error

	// SaveInteraction appends one conversation turn.
	SaveInteraction(ctx context.Context, in *soul.Interaction) error

	// GetRecentInteractions returns up to limit turns for userID, newest first.
	// limit is clamped to [MinRecentLimit, MaxRecentLimit].
	GetRecentInteractions(ctx context.Context, userID string, limit int) ([]soul.Interaction, error)
}

// Maintainer is implemented by stores that support periodic maintenance.
type Maintainer interface {
	RunSQLMaintenance(ctx context.Context) error
}

// ClampLimit bounds a recent-interactions limit.
func ClampLimit(limit int) int {
	if limit < MinRecentLimit {
		return MinRecentLimit
	}
	if limit > MaxRecentLimit {
		return MaxRecentLimit
	}
	return limit
}

func validateState(st *soul.State) error {
	if st == nil {
		return errors.New("cannot save nil soul state")
	}
	if st.UserID == "" {
		return errors.New("soul state must have a user_id")
	}
	return nil
}

func validateInteraction(in *soul.Interaction) error {
	if in == nil {
		return errors.New("cannot save nil interaction")
	}
	if in.UserID == "" {
		return errors.New("interaction must have a user_id")
	}
	if in.CreatedAt.IsZero() {
		return errors.New("interaction must have a non-zero created_at")
	}
	return nil
}
