package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/edgard/soulbot/internal/logger"
	"github.com/edgard/soulbot/internal/soul"
)

// stateRow maps telegram_users. Preferences are kept as a JSON text column.
type stateRow struct {
	soul.State
	PreferencesJSON string `db:"preferences"`
}

func newStateRow(st *soul.State) (*stateRow, error) {
	prefs := st.Preferences
	if prefs == nil {
		prefs = map[string]string{}
	}
	raw, err := json.Marshal(prefs)
	if err != nil {
		return nil, fmt.Errorf("failed to encode preferences: %w", err)
	}
	row := &stateRow{State: *st, PreferencesJSON: string(raw)}
	row.CreatedAt = row.CreatedAt.UTC()
	row.LastInteraction = row.LastInteraction.UTC()
	return row, nil
}

func (r *stateRow) toState() (*soul.State, error) {
	st := r.State
	st.Preferences = map[string]string{}
	if r.PreferencesJSON != "" {
		if err := json.Unmarshal([]byte(r.PreferencesJSON), &st.Preferences); err != nil {
			return nil, fmt.Errorf("failed to decode preferences for user %s: %w", st.UserID, err)
		}
	}
	return &st, nil
}

// sqlxStore implements Store on SQLite through sqlx.
type sqlxStore struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// NewSQLStore creates a Store backed by a migrated SQLite database.
func NewSQLStore(db *sqlx.DB, log *slog.Logger) Store {
	if log == nil {
		log = logger.Discard()
	}
	return &sqlxStore{
		db:     db,
		logger: log.With("component", "store", "driver", "sqlite"),
	}
}

func (s *sqlxStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqlxStore) GetSoulState(ctx context.Context, userID string) (*soul.State, error) {
	if userID == "" {
		return nil, errors.New("user_id cannot be empty")
	}

	var row stateRow
	query := `
        SELECT user_id, bond_level, emotional_state, flirt_style, nickname, slut_mode_active,
               interaction_count, preferences, created_at, last_interaction
        FROM telegram_users
        WHERE user_id = ?;
    `
	err := s.db.GetContext(ctx, &row, query, userID)
	if errors.Is(err, sql.ErrNoRows) {
		s.logger.DebugContext(ctx, "No soul state stored", "user_id", userID)
		return nil, nil
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting soul state", "user_id", userID, "error", err)
		return nil, fmt.Errorf("failed to get soul state for user %s: %w", userID, err)
	}
	return row.toState()
}

func (s *sqlxStore) CreateSoulState(ctx context.Context, st *soul.State) error {
	if err := validateState(st); err != nil {
		return err
	}
	row, err := newStateRow(st)
	if err != nil {
		return err
	}

	query := `
        INSERT INTO telegram_users (user_id, bond_level, emotional_state, flirt_style, nickname,
            slut_mode_active, interaction_count, preferences, created_at, last_interaction)
        VALUES (:user_id, :bond_level, :emotional_state, :flirt_style, :nickname,
            :slut_mode_active, :interaction_count, :preferences, :created_at, :last_interaction);
    `
	if _, err := s.db.NamedExecContext(ctx, query, row); err != nil {
		s.logger.ErrorContext(ctx, "Error creating soul state", "user_id", st.UserID, "error", err)
		return fmt.Errorf("failed to create soul state for user %s: %w", st.UserID, err)
	}
	s.logger.DebugContext(ctx, "Created soul state", "user_id", st.UserID)
	return nil
}

func (s *sqlxStore) UpdateSoulState(ctx context.Context, st *soul.State) error {
	if err := validateState(st); err != nil {
		return err
	}
	row, err := newStateRow(st)
	if err != nil {
		return err
	}

	query := `
        UPDATE telegram_users
        SET bond_level = :bond_level,
            emotional_state = :emotional_state,
            flirt_style = :flirt_style,
            nickname = :nickname,
            slut_mode_active = :slut_mode_active,
            interaction_count = :interaction_count,
            preferences = :preferences,
            last_interaction = :last_interaction
        WHERE user_id = :user_id;
    `
	result, err := s.db.NamedExecContext(ctx, query, row)
	if err != nil {
		s.logger.ErrorContext(ctx, "Error updating soul state", "user_id", st.UserID, "error", err)
		return fmt.Errorf("failed to update soul state for user %s: %w", st.UserID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update soul state for user %s: %w", st.UserID, ErrNotFound)
	}
	return nil
}

func (s *sqlxStore) SaveInteraction(ctx context.Context, in *soul.Interaction) error {
	if err := validateInteraction(in); err != nil {
		return err
	}
	rec := *in
	rec.CreatedAt = rec.CreatedAt.UTC()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to begin transaction for saving interaction", "user_id", in.UserID, "error", err)
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			s.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
		}
	}()

	query := `
        INSERT INTO telegram_interactions (user_id, user_message, ai_response, created_at)
        VALUES (:user_id, :user_message, :ai_response, :created_at);
    `
	if _, err := tx.NamedExecContext(ctx, query, &rec); err != nil {
		s.logger.ErrorContext(ctx, "Error saving interaction", "user_id", in.UserID, "error", err)
		return fmt.Errorf("failed to save interaction for user %s: %w", in.UserID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit interaction: %w", err)
	}
	return nil
}

func (s *sqlxStore) GetRecentInteractions(ctx context.Context, userID string, limit int) ([]soul.Interaction, error) {
	if userID == "" {
		return nil, errors.New("user_id cannot be empty")
	}
	limit = ClampLimit(limit)

	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var interactions []soul.Interaction
	query := `
        SELECT user_id, user_message, ai_response, created_at
        FROM telegram_interactions
        WHERE user_id = ?
        ORDER BY created_at DESC, id DESC
        LIMIT ?;
    `
	err := s.db.SelectContext(ctx, &interactions, query, userID, limit)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		s.logger.WarnContext(ctx, "Context done while fetching interactions", "user_id", userID, "error", err)
		return nil, err
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "Error getting recent interactions", "user_id", userID, "limit", limit, "error", err)
		return nil, fmt.Errorf("failed to get recent interactions for user %s: %w", userID, err)
	}

	s.logger.DebugContext(ctx, "Fetched recent interactions", "user_id", userID, "count", len(interactions))
	return interactions, nil
}

// RunSQLMaintenance runs VACUUM and refreshes planner statistics.
func (s *sqlxStore) RunSQLMaintenance(ctx context.Context) error {
	if ctx.Err() != nil {
		s.logger.WarnContext(ctx, "Context done before starting VACUUM", "error", ctx.Err())
		return ctx.Err()
	}

	s.logger.InfoContext(ctx, "Starting database maintenance (VACUUM)")
	// VACUUM cannot run inside a transaction.
	if _, err := s.db.ExecContext(ctx, "VACUUM;"); err != nil {
		s.logger.ErrorContext(ctx, "Error running VACUUM", "error", err)
		return fmt.Errorf("failed to vacuum database: %w", err)
	}
	if _, err := s.db.ExecContext(ctx, "ANALYZE;"); err != nil {
		return fmt.Errorf("failed to analyze database: %w", err)
	}
	s.logger.InfoContext(ctx, "Database maintenance completed")
	return nil
}
