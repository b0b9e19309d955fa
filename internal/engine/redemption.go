package engine

import (
	"math"
	"time"

	"misfit-alliance/internal/domain"
)

const (
	hypeRatingThreshold = 7.5
	poorRatingThreshold = 5.0

	strongMatchDelta = 15
	poorMatchDelta   = -5
	risingTrendBonus = 10

	trustMultiplier = 1.5
)

type RedemptionUpdate struct {
	Player        domain.Player
	Delta         int
	NewScore      int
	PreviousState domain.RedemptionState
	TrustConsumed bool
}

// RedemptionDelta computes the score change for a history that already
// contains the newest rating as its last entry. It reports whether the trust
// bonus was consumed so the caller decides how to clear the flag.
func RedemptionDelta(history []domain.MatchRecord, trustBonus bool) (int, bool) {
	if len(history) == 0 {
		return 0, false
	}

	delta := baseDelta(history[len(history)-1].Rating)
	if risingTrend(history) {
		delta += risingTrendBonus
	}

	if !trustBonus {
		return delta, false
	}
	return int(math.Floor(float64(delta) * trustMultiplier)), true
}

func baseDelta(rating float64) int {
	if !domain.ValidRating(rating) {
		return 0
	}
	switch {
	case rating > hypeRatingThreshold:
		return strongMatchDelta
	case rating < poorRatingThreshold:
		return poorMatchDelta
	default:
		return 0
	}
}

// risingTrend is true when the last three ratings are valid and strictly
// increasing. A missing rating breaks the streak.
func risingTrend(history []domain.MatchRecord) bool {
	if len(history) < 3 {
		return false
	}
	r := history[len(history)-3:]
	for _, rec := range r {
		if !domain.ValidRating(rec.Rating) {
			return false
		}
	}
	return r[0].Rating < r[1].Rating && r[1].Rating < r[2].Rating
}

// UpdateRedemption appends the match to the player's bounded history and
// applies the resulting delta. The input player is not modified.
func UpdateRedemption(player domain.Player, rec domain.MatchRecord, now time.Time) RedemptionUpdate {
	if !domain.ValidRating(rec.Rating) {
		rec.Rating = 0
	}
	rec.Timestamp = now

	previous := player.RedemptionState()
	updated := player.WithMatch(rec)

	delta, consumed := RedemptionDelta(updated.History, updated.TrustBonus)
	if consumed {
		updated = updated.WithTrustBonus(false)
	}
	updated = updated.WithScore(updated.RedemptionScore + delta)
	updated.UpdatedAt = now

	return RedemptionUpdate{
		Player:        updated,
		Delta:         delta,
		NewScore:      updated.RedemptionScore,
		PreviousState: previous,
		TrustConsumed: consumed,
	}
}

// BatchUpdateRedemption pairs players with records by index. A nil record
// leaves its player untouched with a zero delta.
func BatchUpdateRedemption(players []domain.Player, records []*domain.MatchRecord, now time.Time) []RedemptionUpdate {
	updates := make([]RedemptionUpdate, len(players))
	for i, p := range players {
		if i < len(records) && records[i] != nil {
			updates[i] = UpdateRedemption(p, *records[i], now)
			continue
		}
		updates[i] = RedemptionUpdate{
			Player:        p,
			NewScore:      p.RedemptionScore,
			PreviousState: p.RedemptionState(),
		}
	}
	return updates
}

// GrantTrust marks the player for a one-shot multiplier on the next update.
func GrantTrust(player domain.Player) domain.Player {
	return player.WithTrustBonus(true)
}
