package service

import (
	"context"
	"strings"

	"misfit-alliance/internal/constants"
	"misfit-alliance/internal/domain"
	"misfit-alliance/internal/engine"
	"misfit-alliance/internal/ids"
	"misfit-alliance/internal/metrics"
	"misfit-alliance/internal/repository"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"
)

// CoachAuthor signs every reply the user writes.
const CoachAuthor = "Coach (you)"

type ForumService struct {
	posts  *repository.PostRepository
	state  *repository.StateRepository
	ids    ids.Generator
	clock  clockwork.Clock
	lock   *LeagueLock
	logger zerolog.Logger
}

func NewForumService(posts *repository.PostRepository, state *repository.StateRepository, clock clockwork.Clock, lock *LeagueLock, logger zerolog.Logger) *ForumService {
	return &ForumService{
		posts:  posts,
		state:  state,
		ids:    ids.NanoID{},
		clock:  clock,
		lock:   lock,
		logger: logger,
	}
}

// PostUpdate is a post after a coach interaction with the hostility it left behind.
type PostUpdate struct {
	Post      domain.ForumPost `json:"post"`
	Hostility float64          `json:"hostility"`
}

func (s *ForumService) List(ctx context.Context, limit int) ([]domain.ForumPost, error) {
	switch {
	case limit <= 0:
		limit = constants.DefaultPostLimit
	case limit > constants.MaxPostLimit:
		limit = constants.MaxPostLimit
	}
	return s.posts.List(ctx, limit)
}

// Reply answers a post as the coach. Engaging with the crowd calms it down.
func (s *ForumService) Reply(ctx context.Context, postID, content string) (*PostUpdate, error) {
	content = sanitizeReply(content)
	if content == "" {
		return nil, domain.ErrEmptyReply
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	hostility, err := s.state.LoadHostility(ctx, engine.DefaultHostility)
	if err != nil {
		return nil, err
	}
	after := engine.NewSentiment(hostility).AfterReply()

	reply := domain.Reply{
		ID:        s.ids.NewID(),
		Author:    CoachAuthor,
		Content:   content,
		Timestamp: s.clock.Now(),
	}
	post, err := s.posts.AddReply(ctx, postID, reply, after.Hostility)
	if err != nil {
		return nil, err
	}

	metrics.ForumActions.WithLabelValues("reply").Inc()
	metrics.Hostility.Set(after.Hostility)
	s.logger.Debug().Str("post_id", postID).Float64("hostility", after.Hostility).Msg("coach replied")
	return &PostUpdate{Post: *post, Hostility: after.Hostility}, nil
}

// Like is applause; it never moves hostility.
func (s *ForumService) Like(ctx context.Context, postID string) (*PostUpdate, error) {
	post, err := s.posts.Like(ctx, postID)
	if err != nil {
		return nil, err
	}
	hostility, err := s.state.LoadHostility(ctx, engine.DefaultHostility)
	if err != nil {
		return nil, err
	}

	metrics.ForumActions.WithLabelValues("like").Inc()
	return &PostUpdate{Post: *post, Hostility: hostility}, nil
}

// Dislike pushes back on a post, which the crowd takes badly.
func (s *ForumService) Dislike(ctx context.Context, postID string) (*PostUpdate, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	hostility, err := s.state.LoadHostility(ctx, engine.DefaultHostility)
	if err != nil {
		return nil, err
	}
	after := engine.NewSentiment(hostility).AfterDislike()

	post, err := s.posts.Dislike(ctx, postID, after.Hostility, s.clock.Now())
	if err != nil {
		return nil, err
	}

	metrics.ForumActions.WithLabelValues("dislike").Inc()
	metrics.Hostility.Set(after.Hostility)
	return &PostUpdate{Post: *post, Hostility: after.Hostility}, nil
}

// sanitizeReply normalizes to NFC, trims and caps the length in runes.
func sanitizeReply(content string) string {
	content = strings.TrimSpace(norm.NFC.String(content))
	if r := []rune(content); len(r) > constants.MaxReplyLength {
		content = strings.TrimSpace(string(r[:constants.MaxReplyLength]))
	}
	return content
}
