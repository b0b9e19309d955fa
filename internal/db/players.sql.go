package db

import (
	"context"
	"time"
)

const listPlayers = `-- name: ListPlayers :many
SELECT id, name, nickname, backstory, position, redemption_score, trust_bonus, history, roster_order, created_at, updated_at
FROM players
ORDER BY roster_order, created_at
`

func (q *Queries) ListPlayers(ctx context.Context) ([]Player, error) {
	rows, err := q.db.QueryContext(ctx, listPlayers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Player
	for rows.Next() {
		var i Player
		if err := rows.Scan(
			&i.ID,
			&i.Name,
			&i.Nickname,
			&i.Backstory,
			&i.Position,
			&i.RedemptionScore,
			&i.TrustBonus,
			&i.History,
			&i.RosterOrder,
			&i.CreatedAt,
			&i.UpdatedAt,
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

const getPlayer = `-- name: GetPlayer :one
SELECT id, name, nickname, backstory, position, redemption_score, trust_bonus, history, roster_order, created_at, updated_at
FROM players
WHERE id = ?
`

func (q *Queries) GetPlayer(ctx context.Context, id string) (Player, error) {
	row := q.db.QueryRowContext(ctx, getPlayer, id)
	var i Player
	err := row.Scan(
		&i.ID,
		&i.Name,
		&i.Nickname,
		&i.Backstory,
		&i.Position,
		&i.RedemptionScore,
		&i.TrustBonus,
		&i.History,
		&i.RosterOrder,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const countPlayers = `-- name: CountPlayers :one
SELECT COUNT(*) FROM players
`

func (q *Queries) CountPlayers(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countPlayers)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const upsertPlayer = `-- name: UpsertPlayer :exec
INSERT INTO players (id, name, nickname, backstory, position, redemption_score, trust_bonus, history, roster_order, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
    name = excluded.name,
    nickname = excluded.nickname,
    backstory = excluded.backstory,
    position = excluded.position,
    redemption_score = excluded.redemption_score,
    trust_bonus = excluded.trust_bonus,
    history = excluded.history,
    updated_at = excluded.updated_at
`

type UpsertPlayerParams struct {
	ID              string
	Name            string
	Nickname        string
	Backstory       string
	Position        string
	RedemptionScore int64
	TrustBonus      bool
	History         string
	RosterOrder     int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (q *Queries) UpsertPlayer(ctx context.Context, arg UpsertPlayerParams) error {
	_, err := q.db.ExecContext(ctx, upsertPlayer,
		arg.ID,
		arg.Name,
		arg.Nickname,
		arg.Backstory,
		arg.Position,
		arg.RedemptionScore,
		arg.TrustBonus,
		arg.History,
		arg.RosterOrder,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const deleteAllPlayers = `-- name: DeleteAllPlayers :exec
DELETE FROM players
`

func (q *Queries) DeleteAllPlayers(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllPlayers)
	return err
}
