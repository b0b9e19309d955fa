package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"misfit-alliance/internal/db"
	"misfit-alliance/internal/domain"

	"github.com/rs/zerolog"
)

type MatchRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewMatchRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *MatchRepository {
	return &MatchRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// MatchCommit is everything one confirmed match changes.
type MatchCommit struct {
	Players   []domain.Player
	Posts     []domain.ForumPost
	Hostility float64
	GameState domain.GameState
	Summary   domain.MatchSummary
}

// Commit persists a confirmed match atomically: either every player, post,
// state value and the history entry land, or none do. Posts are expected in
// generation order and are listed back in that order.
func (r *MatchRepository) Commit(ctx context.Context, c MatchCommit) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	for _, player := range c.Players {
		params, err := toUpsertPlayerParams(player, 0)
		if err != nil {
			return err
		}
		if err := qtx.UpsertPlayer(ctx, params); err != nil {
			return fmt.Errorf("failed to update player %s: %w", player.ID, err)
		}
	}

	// newest-first listing: the last inserted row comes out on top
	for i := len(c.Posts) - 1; i >= 0; i-- {
		if err := insertPost(ctx, qtx, c.Posts[i]); err != nil {
			return err
		}
	}

	if err := putHostility(ctx, qtx, c.Hostility, c.Summary.PlayedAt); err != nil {
		return err
	}
	if err := putGameState(ctx, qtx, c.GameState); err != nil {
		return err
	}

	params, err := toMatchHistoryParams(c.Summary)
	if err != nil {
		return err
	}
	if err := qtx.InsertMatchHistory(ctx, params); err != nil {
		return fmt.Errorf("failed to insert match history: %w", err)
	}
	if err := qtx.PruneMatchHistory(ctx, domain.MatchHistoryLimit); err != nil {
		return fmt.Errorf("failed to prune match history: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit match: %w", err)
	}

	r.logger.Debug().
		Str("match_id", c.Summary.ID).
		Int("players", len(c.Players)).
		Int("posts", len(c.Posts)).
		Msg("match committed")
	return nil
}

// History returns the most recent match summaries, newest first.
func (r *MatchRepository) History(ctx context.Context, limit int) ([]domain.MatchSummary, error) {
	rows, err := r.queries.ListMatchHistory(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list match history: %w", err)
	}

	summaries := make([]domain.MatchSummary, 0, len(rows))
	for _, row := range rows {
		s, err := toDomainSummary(row)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func toMatchHistoryParams(s domain.MatchSummary) (db.InsertMatchHistoryParams, error) {
	players := s.Players
	if players == nil {
		players = []domain.RecognizedPlayer{}
	}
	encodedPlayers, err := json.Marshal(players)
	if err != nil {
		return db.InsertMatchHistoryParams{}, fmt.Errorf("failed to encode match players: %w", err)
	}

	var news sql.NullString
	if s.News != nil {
		encoded, err := json.Marshal(s.News)
		if err != nil {
			return db.InsertMatchHistoryParams{}, fmt.Errorf("failed to encode match news: %w", err)
		}
		news = sql.NullString{String: string(encoded), Valid: true}
	}

	return db.InsertMatchHistoryParams{
		ID:              s.ID,
		Result:          string(s.Result),
		Score:           s.Score,
		Possession:      s.Possession,
		Players:         string(encodedPlayers),
		News:            news,
		HostilityBefore: s.HostilityBefore,
		HostilityAfter:  s.HostilityAfter,
		PlayedAt:        s.PlayedAt.UTC(),
	}, nil
}

func toDomainSummary(row db.MatchHistory) (domain.MatchSummary, error) {
	players := []domain.RecognizedPlayer{}
	if err := json.Unmarshal([]byte(row.Players), &players); err != nil {
		return domain.MatchSummary{}, fmt.Errorf("failed to decode players of match %s: %w", row.ID, err)
	}

	var news *domain.NewsReport
	if row.News.Valid {
		news = &domain.NewsReport{}
		if err := json.Unmarshal([]byte(row.News.String), news); err != nil {
			return domain.MatchSummary{}, fmt.Errorf("failed to decode news of match %s: %w", row.ID, err)
		}
	}

	return domain.MatchSummary{
		ID:              row.ID,
		Result:          domain.Outcome(row.Result),
		Score:           row.Score,
		Possession:      row.Possession,
		Players:         players,
		News:            news,
		HostilityBefore: row.HostilityBefore,
		HostilityAfter:  row.HostilityAfter,
		PlayedAt:        row.PlayedAt,
	}, nil
}
