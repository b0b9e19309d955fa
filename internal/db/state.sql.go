package db

import (
	"context"
	"database/sql"
	"time"
)

const getState = `-- name: GetState :one
SELECT key, value, updated_at FROM community_state WHERE key = ?
`

func (q *Queries) GetState(ctx context.Context, key string) (CommunityState, error) {
	row := q.db.QueryRowContext(ctx, getState, key)
	var i CommunityState
	err := row.Scan(&i.Key, &i.Value, &i.UpdatedAt)
	return i, err
}

const putState = `-- name: PutState :exec
INSERT INTO community_state (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET
    value = excluded.value,
    updated_at = excluded.updated_at
`

type PutStateParams struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

func (q *Queries) PutState(ctx context.Context, arg PutStateParams) error {
	_, err := q.db.ExecContext(ctx, putState, arg.Key, arg.Value, arg.UpdatedAt)
	return err
}

const deleteAllState = `-- name: DeleteAllState :exec
DELETE FROM community_state
`

func (q *Queries) DeleteAllState(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllState)
	return err
}

const insertMatchHistory = `-- name: InsertMatchHistory :exec
INSERT INTO match_history (id, result, score, possession, players, news, hostility_before, hostility_after, played_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertMatchHistoryParams struct {
	ID              string
	Result          string
	Score           string
	Possession      float64
	Players         string
	News            sql.NullString
	HostilityBefore float64
	HostilityAfter  float64
	PlayedAt        time.Time
}

func (q *Queries) InsertMatchHistory(ctx context.Context, arg InsertMatchHistoryParams) error {
	_, err := q.db.ExecContext(ctx, insertMatchHistory,
		arg.ID,
		arg.Result,
		arg.Score,
		arg.Possession,
		arg.Players,
		arg.News,
		arg.HostilityBefore,
		arg.HostilityAfter,
		arg.PlayedAt,
	)
	return err
}

const listMatchHistory = `-- name: ListMatchHistory :many
SELECT id, result, score, possession, players, news, hostility_before, hostility_after, played_at
FROM match_history
ORDER BY played_at DESC, rowid DESC
LIMIT ?
`

func (q *Queries) ListMatchHistory(ctx context.Context, limit int64) ([]MatchHistory, error) {
	rows, err := q.db.QueryContext(ctx, listMatchHistory, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []MatchHistory
	for rows.Next() {
		var i MatchHistory
		if err := rows.Scan(
			&i.ID,
			&i.Result,
			&i.Score,
			&i.Possession,
			&i.Players,
			&i.News,
			&i.HostilityBefore,
			&i.HostilityAfter,
			&i.PlayedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const pruneMatchHistory = `-- name: PruneMatchHistory :exec
DELETE FROM match_history
WHERE id NOT IN (
    SELECT id FROM match_history ORDER BY played_at DESC, rowid DESC LIMIT ?
)
`

func (q *Queries) PruneMatchHistory(ctx context.Context, keep int64) error {
	_, err := q.db.ExecContext(ctx, pruneMatchHistory, keep)
	return err
}

const deleteAllMatchHistory = `-- name: DeleteAllMatchHistory :exec
DELETE FROM match_history
`

func (q *Queries) DeleteAllMatchHistory(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllMatchHistory)
	return err
}
