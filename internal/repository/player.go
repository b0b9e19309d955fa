package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"misfit-alliance/internal/db"
	"misfit-alliance/internal/domain"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

func (r *PlayerRepository) List(ctx context.Context) ([]domain.Player, error) {
	rows, err := r.queries.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}

	players := make([]domain.Player, 0, len(rows))
	for _, row := range rows {
		p, err := toDomainPlayer(row)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, nil
}

func (r *PlayerRepository) Get(ctx context.Context, id string) (*domain.Player, error) {
	row, err := r.queries.GetPlayer(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPlayerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}

	p, err := toDomainPlayer(row)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *PlayerRepository) Count(ctx context.Context) (int, error) {
	n, err := r.queries.CountPlayers(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count players: %w", err)
	}
	return int(n), nil
}

func (r *PlayerRepository) Upsert(ctx context.Context, player *domain.Player) error {
	params, err := toUpsertPlayerParams(*player, 0)
	if err != nil {
		return err
	}
	return r.queries.UpsertPlayer(ctx, params)
}

// ReplaceRoster swaps the whole player set in one transaction.
func (r *PlayerRepository) ReplaceRoster(ctx context.Context, players []domain.Player) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	if err := qtx.DeleteAllPlayers(ctx); err != nil {
		return fmt.Errorf("failed to clear roster: %w", err)
	}
	for i, player := range players {
		params, err := toUpsertPlayerParams(player, i)
		if err != nil {
			return err
		}
		if err := qtx.UpsertPlayer(ctx, params); err != nil {
			return fmt.Errorf("failed to insert player %s: %w", player.ID, err)
		}
	}

	r.logger.Debug().Int("count", len(players)).Msg("roster replaced")
	return tx.Commit()
}

func toDomainPlayer(row db.Player) (domain.Player, error) {
	history := []domain.MatchRecord{}
	if row.History != "" {
		if err := json.Unmarshal([]byte(row.History), &history); err != nil {
			return domain.Player{}, fmt.Errorf("failed to decode history of player %s: %w", row.ID, err)
		}
	}

	return domain.Player{
		ID:              row.ID,
		Name:            row.Name,
		Nickname:        row.Nickname,
		Backstory:       row.Backstory,
		Position:        row.Position,
		RedemptionScore: int(row.RedemptionScore),
		History:         history,
		TrustBonus:      row.TrustBonus,
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}, nil
}

func toUpsertPlayerParams(p domain.Player, order int) (db.UpsertPlayerParams, error) {
	history := p.History
	if history == nil {
		history = []domain.MatchRecord{}
	}
	encoded, err := json.Marshal(history)
	if err != nil {
		return db.UpsertPlayerParams{}, fmt.Errorf("failed to encode history of player %s: %w", p.ID, err)
	}

	return db.UpsertPlayerParams{
		ID:              p.ID,
		Name:            p.Name,
		Nickname:        p.Nickname,
		Backstory:       p.Backstory,
		Position:        p.Position,
		RedemptionScore: int64(domain.ClampScore(p.RedemptionScore)),
		TrustBonus:      p.TrustBonus,
		History:         string(encoded),
		RosterOrder:     int64(order),
		CreatedAt:       p.CreatedAt.UTC(),
		UpdatedAt:       p.UpdatedAt.UTC(),
	}, nil
}
