package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"misfit-alliance/internal/db"
	"misfit-alliance/internal/domain"

	"github.com/rs/zerolog"
)

type PostRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewPostRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *PostRepository {
	return &PostRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// List returns the newest posts first, each with its replies in order.
func (r *PostRepository) List(ctx context.Context, limit int) ([]domain.ForumPost, error) {
	rows, err := r.queries.ListPosts(ctx, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}

	posts := make([]domain.ForumPost, 0, len(rows))
	for _, row := range rows {
		replies, err := r.replies(ctx, r.queries, row.ID)
		if err != nil {
			return nil, err
		}
		posts = append(posts, toDomainPost(row, replies))
	}
	return posts, nil
}

func (r *PostRepository) Get(ctx context.Context, id string) (*domain.ForumPost, error) {
	return r.get(ctx, r.queries, id)
}

func (r *PostRepository) get(ctx context.Context, q *db.Queries, id string) (*domain.ForumPost, error) {
	row, err := q.GetPost(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post %s: %w", id, err)
	}

	replies, err := r.replies(ctx, q, id)
	if err != nil {
		return nil, err
	}
	post := toDomainPost(row, replies)
	return &post, nil
}

func (r *PostRepository) replies(ctx context.Context, q *db.Queries, postID string) ([]domain.Reply, error) {
	rows, err := q.ListRepliesByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to list replies of post %s: %w", postID, err)
	}
	replies := make([]domain.Reply, 0, len(rows))
	for _, row := range rows {
		replies = append(replies, domain.Reply{
			ID:        row.ID,
			Author:    row.Author,
			Content:   row.Content,
			Timestamp: row.CreatedAt,
		})
	}
	return replies, nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.ForumPost) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := insertPost(ctx, r.queries.WithTx(tx), *post); err != nil {
		return err
	}
	return tx.Commit()
}

// AddReply appends a reply and, in the same transaction, stores the hostility
// the reply produced. The updated post is returned.
func (r *PostRepository) AddReply(ctx context.Context, postID string, reply domain.Reply, hostility float64) (*domain.ForumPost, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	if _, err := qtx.GetPost(ctx, postID); errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPostNotFound
	} else if err != nil {
		return nil, fmt.Errorf("failed to get post %s: %w", postID, err)
	}

	err = qtx.InsertReply(ctx, db.InsertReplyParams{
		ID:        reply.ID,
		PostID:    postID,
		Author:    reply.Author,
		Content:   reply.Content,
		CreatedAt: reply.Timestamp.UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to insert reply: %w", err)
	}

	if err := putHostility(ctx, qtx, hostility, reply.Timestamp); err != nil {
		return nil, err
	}

	post, err := r.get(ctx, qtx, postID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit reply: %w", err)
	}
	return post, nil
}

// Like increments the like counter. Likes do not move hostility.
func (r *PostRepository) Like(ctx context.Context, postID string) (*domain.ForumPost, error) {
	n, err := r.queries.IncrementPostLikes(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to like post %s: %w", postID, err)
	}
	if n == 0 {
		return nil, domain.ErrPostNotFound
	}
	return r.Get(ctx, postID)
}

// Dislike increments the dislike counter and stores the resulting hostility,
// stamped with the time of the vote, atomically.
func (r *PostRepository) Dislike(ctx context.Context, postID string, hostility float64, at time.Time) (*domain.ForumPost, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)

	n, err := qtx.IncrementPostDislikes(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to dislike post %s: %w", postID, err)
	}
	if n == 0 {
		return nil, domain.ErrPostNotFound
	}

	post, err := r.get(ctx, qtx, postID)
	if err != nil {
		return nil, err
	}
	if err := putHostility(ctx, qtx, hostility, at); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit dislike: %w", err)
	}
	return post, nil
}

func insertPost(ctx context.Context, q *db.Queries, post domain.ForumPost) error {
	var playerID sql.NullString
	if post.PlayerID != nil {
		playerID = sql.NullString{String: *post.PlayerID, Valid: true}
	}

	err := q.InsertPost(ctx, db.InsertPostParams{
		ID:        post.ID,
		Author:    post.Author,
		Content:   post.Content,
		Intensity: string(post.Intensity),
		Likes:     int64(post.Likes),
		Dislikes:  int64(post.Dislikes),
		PlayerID:  playerID,
		CreatedAt: post.Timestamp.UTC(),
	})
	if err != nil {
		return fmt.Errorf("failed to insert post %s: %w", post.ID, err)
	}

	for _, reply := range post.Replies {
		err := q.InsertReply(ctx, db.InsertReplyParams{
			ID:        reply.ID,
			PostID:    post.ID,
			Author:    reply.Author,
			Content:   reply.Content,
			CreatedAt: reply.Timestamp.UTC(),
		})
		if err != nil {
			return fmt.Errorf("failed to insert reply %s: %w", reply.ID, err)
		}
	}
	return nil
}

func toDomainPost(row db.Post, replies []domain.Reply) domain.ForumPost {
	var playerID *string
	if row.PlayerID.Valid {
		id := row.PlayerID.String
		playerID = &id
	}

	return domain.ForumPost{
		ID:        row.ID,
		Author:    row.Author,
		Content:   row.Content,
		Intensity: domain.Intensity(row.Intensity),
		Likes:     int(row.Likes),
		Dislikes:  int(row.Dislikes),
		Replies:   replies,
		PlayerID:  playerID,
		Timestamp: row.CreatedAt,
	}
}
