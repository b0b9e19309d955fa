package db

import (
	"context"
	"database/sql"
	"time"
)

const listPosts = `-- name: ListPosts :many
SELECT id, author, content, intensity, likes, dislikes, player_id, created_at
FROM posts
ORDER BY created_at DESC, rowid DESC
LIMIT ?
`

func (q *Queries) ListPosts(ctx context.Context, limit int64) ([]Post, error) {
	rows, err := q.db.QueryContext(ctx, listPosts, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Post
	for rows.Next() {
		var i Post
		if err := rows.Scan(
			&i.ID,
			&i.Author,
			&i.Content,
			&i.Intensity,
			&i.Likes,
			&i.Dislikes,
			&i.PlayerID,
			&i.CreatedAt,
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

const getPost = `-- name: GetPost :one
SELECT id, author, content, intensity, likes, dislikes, player_id, created_at
FROM posts
WHERE id = ?
`

func (q *Queries) GetPost(ctx context.Context, id string) (Post, error) {
	row := q.db.QueryRowContext(ctx, getPost, id)
	var i Post
	err := row.Scan(
		&i.ID,
		&i.Author,
		&i.Content,
		&i.Intensity,
		&i.Likes,
		&i.Dislikes,
		&i.PlayerID,
		&i.CreatedAt,
	)
	return i, err
}

const insertPost = `-- name: InsertPost :exec
INSERT INTO posts (id, author, content, intensity, likes, dislikes, player_id, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

type InsertPostParams struct {
	ID        string
	Author    string
	Content   string
	Intensity string
	Likes     int64
	Dislikes  int64
	PlayerID  sql.NullString
	CreatedAt time.Time
}

func (q *Queries) InsertPost(ctx context.Context, arg InsertPostParams) error {
	_, err := q.db.ExecContext(ctx, insertPost,
		arg.ID,
		arg.Author,
		arg.Content,
		arg.Intensity,
		arg.Likes,
		arg.Dislikes,
		arg.PlayerID,
		arg.CreatedAt,
	)
	return err
}

const incrementPostLikes = `-- name: IncrementPostLikes :execrows
UPDATE posts SET likes = likes + 1 WHERE id = ?
`

func (q *Queries) IncrementPostLikes(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, incrementPostLikes, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const incrementPostDislikes = `-- name: IncrementPostDislikes :execrows
UPDATE posts SET dislikes = dislikes + 1 WHERE id = ?
`

func (q *Queries) IncrementPostDislikes(ctx context.Context, id string) (int64, error) {
	result, err := q.db.ExecContext(ctx, incrementPostDislikes, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const insertReply = `-- name: InsertReply :exec
INSERT INTO post_replies (id, post_id, author, content, created_at)
VALUES (?, ?, ?, ?, ?)
`

type InsertReplyParams struct {
	ID        string
	PostID    string
	Author    string
	Content   string
	CreatedAt time.Time
}

func (q *Queries) InsertReply(ctx context.Context, arg InsertReplyParams) error {
	_, err := q.db.ExecContext(ctx, insertReply,
		arg.ID,
		arg.PostID,
		arg.Author,
		arg.Content,
		arg.CreatedAt,
	)
	return err
}

const listRepliesByPost = `-- name: ListRepliesByPost :many
SELECT id, post_id, author, content, created_at
FROM post_replies
WHERE post_id = ?
ORDER BY created_at, rowid
`

func (q *Queries) ListRepliesByPost(ctx context.Context, postID string) ([]PostReply, error) {
	rows, err := q.db.QueryContext(ctx, listRepliesByPost, postID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []PostReply
	for rows.Next() {
		var i PostReply
		if err := rows.Scan(
			&i.ID,
			&i.PostID,
			&i.Author,
			&i.Content,
			&i.CreatedAt,
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

const deleteAllPosts = `-- name: DeleteAllPosts :exec
DELETE FROM posts
`

func (q *Queries) DeleteAllPosts(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllPosts)
	return err
}
