package service

import (
	"context"
	"fmt"

	"misfit-alliance/internal/config"
	"misfit-alliance/internal/domain"
	"misfit-alliance/internal/engine"
	"misfit-alliance/internal/ids"
	"misfit-alliance/internal/metrics"
	"misfit-alliance/internal/repository"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

const recentRatingsShown = 5

// demoRoster seeds a brand-new league.
var demoRoster = []struct {
	name, nickname, backstory, position string
	score                               int
}{
	{"Griezmann", "The French Jelly-Legs", `Once a Ballon d'Or contender, now a Barcelona benchwarmer the fans call "the fraud".`, "CF", 10},
	{"Coutinho", "Barça's Priciest Flop", "Mr. 160 Million, fallen from Liverpool star to European drifter.", "CAM", 5},
	{"Sancho", "The Premier League Invisible Man", "Dortmund's wonderkid who lost himself after the move to Manchester United.", "RW", 15},
}

type DashboardService struct {
	players          *repository.PlayerRepository
	state            *repository.StateRepository
	matches          *MatchService
	ids              ids.Generator
	clock            clockwork.Clock
	lock             *LeagueLock
	initialHostility float64
	aiEnabled        bool
	logger           zerolog.Logger
}

func NewDashboardService(
	cfg *config.Config,
	players *repository.PlayerRepository,
	state *repository.StateRepository,
	matches *MatchService,
	clock clockwork.Clock,
	lock *LeagueLock,
	logger zerolog.Logger,
) *DashboardService {
	return &DashboardService{
		players:          players,
		state:            state,
		matches:          matches,
		ids:              ids.UUID{},
		clock:            clock,
		lock:             lock,
		initialHostility: cfg.InitialHostility,
		aiEnabled:        cfg.AIEnabled(),
		logger:           logger,
	}
}

type PlayerSummary struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Nickname        string                 `json:"nickname"`
	Position        string                 `json:"position,omitempty"`
	RedemptionScore int                    `json:"redemptionScore"`
	State           domain.RedemptionState `json:"state"`
	TrustBonus      bool                   `json:"trustBonus"`
	RecentRatings   []float64              `json:"recentRatings"`
}

type Dashboard struct {
	Hostility       float64          `json:"hostility"`
	ImpressionScore int              `json:"impressionScore"`
	Label           string           `json:"label"`
	Peak            bool             `json:"peak"`
	Intensity       domain.Intensity `json:"intensity"`
	GameState       domain.GameState `json:"gameState"`
	Players         []PlayerSummary  `json:"players"`
	AIEnabled       bool             `json:"aiEnabled"`
}

// Bootstrap seeds an empty league: the demo roster when there are no players
// and the initial hostility when none was ever stored. Existing data is kept.
func (s *DashboardService) Bootstrap(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.bootstrapLocked(ctx)
}

func (s *DashboardService) bootstrapLocked(ctx context.Context) error {
	count, err := s.players.Count(ctx)
	if err != nil {
		return err
	}
	if count == 0 {
		now := s.clock.Now()
		roster := make([]domain.Player, len(demoRoster))
		for i, d := range demoRoster {
			roster[i] = domain.Player{
				ID:              s.ids.NewID(),
				Name:            d.name,
				Nickname:        d.nickname,
				Backstory:       d.backstory,
				Position:        d.position,
				RedemptionScore: d.score,
				History:         []domain.MatchRecord{},
				CreatedAt:       now,
				UpdatedAt:       now,
			}
		}
		if err := s.players.ReplaceRoster(ctx, roster); err != nil {
			return fmt.Errorf("failed to seed roster: %w", err)
		}
		s.logger.Info().Int("players", len(roster)).Msg("seeded demo roster")
	}

	ok, err := s.state.HasHostility(ctx)
	if err != nil {
		return err
	}
	if !ok {
		h := engine.ClampHostility(s.initialHostility)
		if err := s.state.SaveHostility(ctx, h, s.clock.Now()); err != nil {
			return err
		}
		s.logger.Info().Float64("hostility", h).Msg("seeded initial hostility")
	}

	h, err := s.state.LoadHostility(ctx, engine.DefaultHostility)
	if err != nil {
		return err
	}
	metrics.Hostility.Set(h)
	return nil
}

func (s *DashboardService) Dashboard(ctx context.Context) (*Dashboard, error) {
	hostility, err := s.state.LoadHostility(ctx, engine.DefaultHostility)
	if err != nil {
		return nil, err
	}
	gameState, err := s.state.LoadGameState(ctx)
	if err != nil {
		return nil, err
	}
	players, err := s.players.List(ctx)
	if err != nil {
		return nil, err
	}

	sentiment := engine.NewSentiment(hostility)
	summaries := make([]PlayerSummary, len(players))
	for i, p := range players {
		summaries[i] = PlayerSummary{
			ID:              p.ID,
			Name:            p.Name,
			Nickname:        p.Nickname,
			Position:        p.Position,
			RedemptionScore: p.RedemptionScore,
			State:           p.RedemptionState(),
			TrustBonus:      p.TrustBonus,
			RecentRatings:   p.RecentRatings(recentRatingsShown),
		}
	}

	return &Dashboard{
		Hostility:       sentiment.Hostility,
		ImpressionScore: sentiment.ImpressionScore(),
		Label:           sentiment.Label(),
		Peak:            sentiment.IsPeak(),
		Intensity:       sentiment.Intensity(),
		GameState:       gameState,
		Players:         summaries,
		AIEnabled:       s.aiEnabled,
	}, nil
}

// Reset wipes the league, drops pending drafts and bootstraps it again.
func (s *DashboardService) Reset(ctx context.Context) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.state.Reset(ctx); err != nil {
		return err
	}
	s.matches.ClearDrafts()
	return s.bootstrapLocked(ctx)
}
