package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"misfit-alliance/internal/ai"
	"misfit-alliance/internal/config"
	"misfit-alliance/internal/database"
	"misfit-alliance/internal/db"
	"misfit-alliance/internal/domain"
	"misfit-alliance/internal/engine"
	"misfit-alliance/internal/ids"
	"misfit-alliance/internal/repository"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var kickoff = time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC)

// a 1x1 PNG header is enough for content sniffing
const pngUpload = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

type fakeCollaborator struct {
	mu sync.Mutex

	match       domain.MatchRecognition
	lineup      domain.LineupRecognition
	backstories []domain.Backstory
	news        domain.NewsReport
	comment     string

	commentRequests []ai.CommentRequest
	matchImages     []string
}

func (f *fakeCollaborator) RecognizeMatch(_ context.Context, imageURL string) domain.MatchRecognition {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matchImages = append(f.matchImages, imageURL)
	return f.match
}

func (f *fakeCollaborator) RecognizeLineup(context.Context, string) domain.LineupRecognition {
	return f.lineup
}

func (f *fakeCollaborator) GenerateBackstories(_ context.Context, players []domain.LineupPlayer) []domain.Backstory {
	return f.backstories
}

func (f *fakeCollaborator) GenerateNews(context.Context, domain.MatchRecognition) domain.NewsReport {
	return f.news
}

func (f *fakeCollaborator) GenerateComment(_ context.Context, req ai.CommentRequest) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commentRequests = append(f.commentRequests, req)
	return f.comment
}

type harness struct {
	clock   *clockwork.FakeClock
	collab  *fakeCollaborator
	players *repository.PlayerRepository
	posts   *repository.PostRepository
	state   *repository.StateRepository
	matches *repository.MatchRepository

	roster    *RosterService
	match     *MatchService
	forum     *ForumService
	dashboard *DashboardService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "league.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	log := zerolog.Nop()
	q := db.New(sqlDB)
	cfg := &config.Config{
		InitialHostility: engine.BootstrapHostility,
		MinPostsPerMatch: 5,
		DraftTTL:         30 * time.Minute,
	}

	h := &harness{
		clock:   clockwork.NewFakeClockAt(kickoff),
		collab:  &fakeCollaborator{news: domain.NewsReport{Title: "Report", Content: "Words.", Highlights: []string{}}},
		players: repository.NewPlayerRepository(sqlDB, q, log),
		posts:   repository.NewPostRepository(sqlDB, q, log),
		state:   repository.NewStateRepository(sqlDB, q, log),
		matches: repository.NewMatchRepository(sqlDB, q, log),
	}

	lock := NewLeagueLock()
	narrator := engine.NewNarrator(engine.FixedRand(0), h.clock, &ids.Sequence{Prefix: "post"})

	h.roster = NewRosterService(h.players, h.collab, h.clock, lock, log)
	h.roster.ids = &ids.Sequence{Prefix: "player"}

	h.match = NewMatchService(cfg, h.players, h.matches, h.state, h.collab, narrator, h.clock, lock, log)
	h.match.ids = &ids.Sequence{Prefix: "match"}

	h.forum = NewForumService(h.posts, h.state, h.clock, lock, log)
	h.forum.ids = &ids.Sequence{Prefix: "reply"}

	h.dashboard = NewDashboardService(cfg, h.players, h.state, h.match, h.clock, lock, log)
	h.dashboard.ids = &ids.Sequence{Prefix: "demo"}

	return h
}

// seed stores a roster and a hostility value directly.
func (h *harness) seed(t *testing.T, hostility float64, players ...domain.Player) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.players.ReplaceRoster(ctx, players))
	require.NoError(t, h.state.SaveHostility(ctx, hostility, kickoff))
}

func player(id, name string, score int) domain.Player {
	return domain.Player{
		ID:              id,
		Name:            name,
		Nickname:        "The " + name,
		RedemptionScore: score,
		History:         []domain.MatchRecord{},
		CreatedAt:       kickoff,
		UpdatedAt:       kickoff,
	}
}

func ptr[T any](v T) *T { return &v }
