package service

import (
	"context"
	"fmt"
	"strings"

	"misfit-alliance/internal/constants"
	"misfit-alliance/internal/domain"
	"misfit-alliance/internal/engine"
	"misfit-alliance/internal/ids"
	"misfit-alliance/internal/imaging"
	"misfit-alliance/internal/repository"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

type RosterService struct {
	players *repository.PlayerRepository
	collab  Collaborator
	ids     ids.Generator
	clock   clockwork.Clock
	lock    *LeagueLock
	logger  zerolog.Logger
}

func NewRosterService(players *repository.PlayerRepository, collab Collaborator, clock clockwork.Clock, lock *LeagueLock, logger zerolog.Logger) *RosterService {
	return &RosterService{
		players: players,
		collab:  collab,
		ids:     ids.UUID{},
		clock:   clock,
		lock:    lock,
		logger:  logger,
	}
}

func (s *RosterService) List(ctx context.Context) ([]domain.Player, error) {
	return s.players.List(ctx)
}

// RecognizeLineup reads a squad screenshot. Only an invalid image is an error.
func (s *RosterService) RecognizeLineup(ctx context.Context, image string) (domain.LineupRecognition, error) {
	img, err := imaging.Parse(image)
	if err != nil {
		return domain.LineupRecognition{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	defer cancel()

	lineup := s.collab.RecognizeLineup(ctx, img.DataURL())
	s.logger.Info().Str("team", lineup.TeamName).Int("players", len(lineup.Players)).Msg("lineup recognized")
	return lineup, nil
}

// ConfirmLineup turns a (possibly edited) lineup into the new roster,
// replacing every existing player.
func (s *RosterService) ConfirmLineup(ctx context.Context, lineup domain.LineupRecognition) ([]domain.Player, error) {
	entries := make([]domain.LineupPlayer, 0, len(lineup.Players))
	for _, p := range lineup.Players {
		p.Name = strings.TrimSpace(p.Name)
		if p.Name == "" {
			continue
		}
		p.Position = strings.TrimSpace(p.Position)
		entries = append(entries, p)
	}
	if len(entries) == 0 {
		return nil, domain.ErrEmptyLineup
	}

	genCtx, cancel := context.WithTimeout(ctx, constants.ExternalAPITimeout)
	backstories := s.collab.GenerateBackstories(genCtx, entries)
	cancel()

	now := s.clock.Now()
	roster := make([]domain.Player, len(entries))
	for i, entry := range entries {
		var story domain.Backstory
		if i < len(backstories) {
			story = backstories[i]
		}

		score := domain.DefaultRedemptionScore
		if story.RedemptionScore != nil {
			score = domain.ClampScore(*story.RedemptionScore)
		}

		roster[i] = domain.Player{
			ID:              s.ids.NewID(),
			Name:            entry.Name,
			Nickname:        strings.TrimSpace(story.Nickname),
			Backstory:       strings.TrimSpace(story.Backstory),
			Position:        entry.Position,
			RedemptionScore: score,
			History:         []domain.MatchRecord{},
			CreatedAt:       now,
			UpdatedAt:       now,
		}
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	if err := s.players.ReplaceRoster(ctx, roster); err != nil {
		s.logger.Error().Err(err).Msg("failed to replace roster")
		return nil, fmt.Errorf("failed to replace roster: %w", err)
	}

	s.logger.Info().Str("team", lineup.TeamName).Int("players", len(roster)).Msg("roster confirmed")
	return roster, nil
}

// GrantTrust arms the one-shot multiplier for the player's next match.
func (s *RosterService) GrantTrust(ctx context.Context, playerID string) (*domain.Player, error) {
	return s.mutate(ctx, playerID, func(p domain.Player) domain.Player {
		return engine.GrantTrust(p)
	})
}

// UpdateProfile is the only way to change nickname or backstory after creation.
// Empty values leave the current text in place.
func (s *RosterService) UpdateProfile(ctx context.Context, playerID, nickname, backstory string) (*domain.Player, error) {
	return s.mutate(ctx, playerID, func(p domain.Player) domain.Player {
		return p.WithProfile(strings.TrimSpace(nickname), strings.TrimSpace(backstory))
	})
}

func (s *RosterService) mutate(ctx context.Context, playerID string, fn func(domain.Player) domain.Player) (*domain.Player, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	player, err := s.players.Get(ctx, playerID)
	if err != nil {
		return nil, err
	}

	updated := fn(*player)
	updated.UpdatedAt = s.clock.Now()
	if err := s.players.Upsert(ctx, &updated); err != nil {
		return nil, fmt.Errorf("failed to save player %s: %w", playerID, err)
	}
	return &updated, nil
}
