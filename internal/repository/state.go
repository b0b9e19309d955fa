package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"misfit-alliance/internal/db"
	"misfit-alliance/internal/domain"

	"github.com/rs/zerolog"
)

const (
	hostilityKey = "hostility"
	gameStateKey = "game_state"
)

// StateRepository keeps the community-wide singletons: the hostility value and
// the season game state.
type StateRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewStateRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *StateRepository {
	return &StateRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// LoadHostility returns the stored hostility, or fallback when none has been saved.
func (r *StateRepository) LoadHostility(ctx context.Context, fallback float64) (float64, error) {
	row, err := r.queries.GetState(ctx, hostilityKey)
	if errors.Is(err, sql.ErrNoRows) {
		return fallback, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to load hostility: %w", err)
	}

	h, err := strconv.ParseFloat(row.Value, 64)
	if err != nil {
		r.logger.Warn().Err(err).Str("value", row.Value).Msg("stored hostility is corrupt, using fallback")
		return fallback, nil
	}
	return h, nil
}

func (r *StateRepository) HasHostility(ctx context.Context) (bool, error) {
	_, err := r.queries.GetState(ctx, hostilityKey)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load hostility: %w", err)
	}
	return true, nil
}

func (r *StateRepository) SaveHostility(ctx context.Context, hostility float64, at time.Time) error {
	return putHostility(ctx, r.queries, hostility, at)
}

func (r *StateRepository) LoadGameState(ctx context.Context) (domain.GameState, error) {
	row, err := r.queries.GetState(ctx, gameStateKey)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NewGameState(), nil
	}
	if err != nil {
		return domain.GameState{}, fmt.Errorf("failed to load game state: %w", err)
	}

	state := domain.NewGameState()
	if err := json.Unmarshal([]byte(row.Value), &state); err != nil {
		return domain.GameState{}, fmt.Errorf("failed to decode game state: %w", err)
	}
	if state.RecentResults == nil {
		state.RecentResults = []domain.Outcome{}
	}
	return state, nil
}

func (r *StateRepository) SaveGameState(ctx context.Context, state domain.GameState) error {
	return putGameState(ctx, r.queries, state)
}

// Reset wipes every league table in one transaction.
func (r *StateRepository) Reset(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"posts", qtx.DeleteAllPosts},
		{"players", qtx.DeleteAllPlayers},
		{"match history", qtx.DeleteAllMatchHistory},
		{"community state", qtx.DeleteAllState},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("failed to clear %s: %w", step.name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reset: %w", err)
	}
	r.logger.Info().Msg("league state reset")
	return nil
}

func putHostility(ctx context.Context, q *db.Queries, hostility float64, at time.Time) error {
	err := q.PutState(ctx, db.PutStateParams{
		Key:       hostilityKey,
		Value:     strconv.FormatFloat(hostility, 'g', -1, 64),
		UpdatedAt: at.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to save hostility: %w", err)
	}
	return nil
}

func putGameState(ctx context.Context, q *db.Queries, state domain.GameState) error {
	if state.RecentResults == nil {
		state.RecentResults = []domain.Outcome{}
	}
	state.LastSaved = state.LastSaved.UTC()

	encoded, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode game state: %w", err)
	}

	err = q.PutState(ctx, db.PutStateParams{
		Key:       gameStateKey,
		Value:     string(encoded),
		UpdatedAt: state.LastSaved,
	})
	if err != nil {
		return fmt.Errorf("failed to save game state: %w", err)
	}
	return nil
}
