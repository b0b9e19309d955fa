package service

import (
	"context"
	"sync"

	"misfit-alliance/internal/ai"
	"misfit-alliance/internal/domain"
)

// Collaborator is the AI boundary. Implementations resolve their own failures
// to fallback results, so none of these calls can fail.
type Collaborator interface {
	RecognizeMatch(ctx context.Context, imageURL string) domain.MatchRecognition
	RecognizeLineup(ctx context.Context, imageURL string) domain.LineupRecognition
	GenerateBackstories(ctx context.Context, players []domain.LineupPlayer) []domain.Backstory
	GenerateNews(ctx context.Context, rec domain.MatchRecognition) domain.NewsReport
	GenerateComment(ctx context.Context, req ai.CommentRequest) string
}

var _ Collaborator = (*ai.Gateway)(nil)

// LeagueLock serializes every read-modify-write of league state: match
// confirmation, forum reactions that move hostility, roster edits and reset.
type LeagueLock struct {
	sync.Mutex
}

func NewLeagueLock() *LeagueLock {
	return &LeagueLock{}
}
