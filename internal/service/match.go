package service

import (
	"context"
	"fmt"
	"strings"

	"misfit-alliance/internal/ai"
	"misfit-alliance/internal/config"
	"misfit-alliance/internal/constants"
	"misfit-alliance/internal/domain"
	"misfit-alliance/internal/engine"
	"misfit-alliance/internal/ids"
	"misfit-alliance/internal/imaging"
	"misfit-alliance/internal/metrics"
	"misfit-alliance/internal/repository"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const commentConcurrency = 4

type MatchService struct {
	players  *repository.PlayerRepository
	matches  *repository.MatchRepository
	state    *repository.StateRepository
	collab   Collaborator
	narrator *engine.Narrator
	drafts   *DraftStore
	ids      ids.Generator
	clock    clockwork.Clock
	lock     *LeagueLock
	minPosts int
	logger   zerolog.Logger
}

func NewMatchService(
	cfg *config.Config,
	players *repository.PlayerRepository,
	matches *repository.MatchRepository,
	state *repository.StateRepository,
	collab Collaborator,
	narrator *engine.Narrator,
	clock clockwork.Clock,
	lock *LeagueLock,
	logger zerolog.Logger,
) *MatchService {
	return &MatchService{
		players:  players,
		matches:  matches,
		state:    state,
		collab:   collab,
		narrator: narrator,
		drafts:   NewDraftStore(clock, cfg.DraftTTL),
		ids:      ids.NanoID{},
		clock:    clock,
		lock:     lock,
		minPosts: cfg.MinPostsPerMatch,
		logger:   logger,
	}
}

// PlayerChange is one player's redemption step in a confirmed match.
type PlayerChange struct {
	Player        domain.Player          `json:"player"`
	Delta         int                    `json:"delta"`
	PreviousState domain.RedemptionState `json:"previousState"`
	NewState      domain.RedemptionState `json:"newState"`
	TrustConsumed bool                   `json:"trustConsumed"`
}

// MatchOutcome is everything a confirmed match changed.
type MatchOutcome struct {
	Summary   domain.MatchSummary `json:"summary"`
	Changes   []PlayerChange      `json:"changes"`
	Posts     []domain.ForumPost  `json:"posts"`
	GameState domain.GameState    `json:"gameState"`
	Hostility float64             `json:"hostility"`
	Trend     float64             `json:"trend"`
}

// Upload validates the screenshot, runs recognition and parks the result as
// a draft. League state is not touched.
func (s *MatchService) Upload(ctx context.Context, image string) (Draft, error) {
	img, err := imaging.Parse(image)
	if err != nil {
		s.logger.Info().Err(err).Msg("rejected match upload")
		return Draft{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	rec := s.collab.RecognizeMatch(ctx, img.DataURL())
	draft := s.drafts.Put(s.ids.NewID(), rec)

	s.logger.Info().
		Str("draft_id", draft.ID).
		Str("result", string(rec.Result)).
		Int("players", len(rec.Players)).
		Msg("match draft created")
	return draft, nil
}

// Cancel discards a draft without any state change.
func (s *MatchService) Cancel(_ context.Context, draftID string) error {
	if !s.drafts.Delete(draftID) {
		return domain.ErrDraftNotFound
	}
	s.logger.Info().Str("draft_id", draftID).Msg("match draft cancelled")
	return nil
}

// Confirm applies a draft to the league as one unit. Comments are derived from
// the post-update players and hostility, and everything is committed in a
// single transaction before the draft is dropped.
func (s *MatchService) Confirm(ctx context.Context, draftID string) (*MatchOutcome, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	s.lock.Lock()
	defer s.lock.Unlock()

	draft, err := s.drafts.Get(draftID)
	if err != nil {
		return nil, err
	}
	rec := draft.Recognition
	now := s.clock.Now()

	news := s.collab.GenerateNews(ctx, rec)
	news.Timestamp = now

	roster, err := s.players.List(ctx)
	if err != nil {
		return nil, err
	}
	hostility, err := s.state.LoadHostility(ctx, engine.DefaultHostility)
	if err != nil {
		return nil, err
	}
	gameState, err := s.state.LoadGameState(ctx)
	if err != nil {
		return nil, err
	}

	records := matchRecords(roster, rec.Players)
	updates := engine.BatchUpdateRedemption(roster, records, now)

	gameState = gameState.Record(rec.Result)
	gameState.LastSaved = now

	before := engine.NewSentiment(hostility)
	after := before.ApplyMatch(rec.Result, rec.ScoreDiff(), rec.AverageRating(), gameState.RecentResults)

	var changed []domain.Player
	var changes []PlayerChange
	var playedRecords []domain.MatchRecord
	for i, u := range updates {
		if records[i] == nil {
			continue
		}
		changed = append(changed, u.Player)
		playedRecords = append(playedRecords, u.Player.History[len(u.Player.History)-1])
		changes = append(changes, PlayerChange{
			Player:        u.Player,
			Delta:         u.Delta,
			PreviousState: u.PreviousState,
			NewState:      u.Player.RedemptionState(),
			TrustConsumed: u.TrustConsumed,
		})
	}

	posts, err := s.commentary(ctx, changed, playedRecords, after.Hostility)
	if err != nil {
		return nil, err
	}

	summary := domain.MatchSummary{
		ID:              s.ids.NewID(),
		Result:          rec.Result,
		Possession:      rec.Possession,
		Players:         rec.Players,
		News:            &news,
		HostilityBefore: before.Hostility,
		HostilityAfter:  after.Hostility,
		PlayedAt:        now,
	}
	if rec.Score != nil {
		summary.Score = *rec.Score
	}
	if summary.Players == nil {
		summary.Players = []domain.RecognizedPlayer{}
	}

	err = s.matches.Commit(ctx, repository.MatchCommit{
		Players:   changed,
		Posts:     posts,
		Hostility: after.Hostility,
		GameState: gameState,
		Summary:   summary,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("draft_id", draftID).Msg("failed to commit match")
		return nil, fmt.Errorf("failed to commit match: %w", err)
	}
	s.drafts.Delete(draftID)

	metrics.MatchesConfirmed.WithLabelValues(string(rec.Result)).Inc()
	metrics.Hostility.Set(after.Hostility)
	for _, c := range changes {
		metrics.RedemptionDelta.Observe(float64(c.Delta))
	}

	s.logger.Info().
		Str("match_id", summary.ID).
		Str("result", string(rec.Result)).
		Int("players_updated", len(changed)).
		Int("posts", len(posts)).
		Float64("hostility_before", before.Hostility).
		Float64("hostility_after", after.Hostility).
		Msg("match confirmed")

	if changes == nil {
		changes = []PlayerChange{}
	}
	return &MatchOutcome{
		Summary:   summary,
		Changes:   changes,
		Posts:     posts,
		GameState: gameState,
		Hostility: after.Hostility,
		Trend:     engine.CalculateTrend(gameState.RecentResults),
	}, nil
}

// commentary builds the match's forum posts in a stable order: one post per
// updated player (plus a rebuttal when a Waking player shines), then filler
// until the minimum post count is met. Only the AI calls run concurrently.
func (s *MatchService) commentary(ctx context.Context, players []domain.Player, records []domain.MatchRecord, hostility float64) ([]domain.ForumPost, error) {
	texts := make([]string, len(players))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(commentConcurrency)
	for i, p := range players {
		g.Go(func() error {
			texts[i] = s.collab.GenerateComment(gCtx, ai.CommentRequest{
				Player:    p,
				Record:    records[i],
				Hostility: hostility,
				Tone:      engine.ToneFor(p.RedemptionState(), records[i].Rating),
			})
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to generate comments: %w", err)
	}

	posts := make([]domain.ForumPost, 0, max(s.minPosts, len(players)))
	for i, p := range players {
		posts = append(posts, s.narrator.PlayerPost(p, hostility, records[i], texts[i]))
		if p.RedemptionState() == domain.Waking && engine.ToneFor(domain.Waking, records[i].Rating) == domain.Hype {
			posts = append(posts, s.narrator.RebuttalPost(p, hostility, records[i]))
		}
	}
	for len(posts) < s.minPosts {
		posts = append(posts, s.narrator.FillerPost(hostility))
	}
	return posts, nil
}

func (s *MatchService) History(ctx context.Context) ([]domain.MatchSummary, error) {
	return s.matches.History(ctx, domain.MatchHistoryLimit)
}

// ClearDrafts drops every pending draft; used by league reset.
func (s *MatchService) ClearDrafts() {
	s.drafts.Clear()
}

// matchRecords pairs roster players with recognized players by
// case-insensitive name. Unmatched roster players get nil.
func matchRecords(roster []domain.Player, recognized []domain.RecognizedPlayer) []*domain.MatchRecord {
	byName := make(map[string]domain.RecognizedPlayer, len(recognized))
	for _, r := range recognized {
		key := normalizeName(r.Name)
		if _, seen := byName[key]; key == "" || seen {
			continue
		}
		byName[key] = r
	}

	records := make([]*domain.MatchRecord, len(roster))
	for i, p := range roster {
		r, ok := byName[normalizeName(p.Name)]
		if !ok {
			continue
		}
		records[i] = &domain.MatchRecord{
			Rating:   r.Rating,
			Position: r.Position,
		}
	}
	return records
}

func normalizeName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}
