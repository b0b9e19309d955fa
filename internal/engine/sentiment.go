package engine

import (
	"math"

	"misfit-alliance/internal/domain"
)

const (
	// DefaultHostility is assumed when no value has ever been stored.
	DefaultHostility = 0.5
	// BootstrapHostility seeds a brand-new league: the fans start angry.
	BootstrapHostility = 0.7

	toxicThreshold = 0.5
	peakThreshold  = 0.8

	winBase          = -0.10
	winPerGoal       = -0.02
	drawBase         = -0.03
	lossBase         = 0.15
	lossPerGoal      = 0.03
	lowRatingCeiling = 6.5
	lowRatingWeight  = 0.03
	highRatingFloor  = 7.2
	highRatingWeight = 0.02

	winStreakShift  = -0.20
	lossStreakShift = 0.25

	replyRelief    = 0.05
	dislikePenalty = 0.03
)

// Sentiment is the community mood container handed in and out of the engine.
type Sentiment struct {
	Hostility float64 `json:"hostility"`
}

func NewSentiment(hostility float64) Sentiment {
	return Sentiment{Hostility: ClampHostility(hostility)}
}

func ClampHostility(h float64) float64 {
	if math.IsNaN(h) {
		return DefaultHostility
	}
	return math.Max(0, math.Min(1, h))
}

// UpdateHostility moves hostility by the match outcome and the team's average
// rating. scoreDiff is taken as an absolute value.
func UpdateHostility(current float64, result domain.Outcome, scoreDiff int, averageRating float64) float64 {
	diff := math.Abs(float64(scoreDiff))

	var change float64
	switch result {
	case domain.Win:
		change = winBase + winPerGoal*diff
	case domain.Draw:
		change = drawBase
	case domain.Loss:
		change = lossBase + lossPerGoal*diff
	}

	if math.IsNaN(averageRating) || math.IsInf(averageRating, 0) {
		averageRating = domain.DefaultAverageRating
	}
	switch {
	case averageRating < lowRatingCeiling:
		change += (lowRatingCeiling - averageRating) * lowRatingWeight
	case averageRating > highRatingFloor:
		change -= (averageRating - highRatingFloor) * highRatingWeight
	}

	return ClampHostility(ClampHostility(current) + change)
}

// CalculateTrend looks at the last three outcomes and returns a streak shift.
func CalculateTrend(recent []domain.Outcome) float64 {
	if len(recent) < 3 {
		return 0
	}
	var wins, losses int
	for _, o := range recent[len(recent)-3:] {
		switch o {
		case domain.Win:
			wins++
		case domain.Loss:
			losses++
		}
	}
	switch {
	case wins == 3:
		return winStreakShift
	case losses == 3:
		return lossStreakShift
	default:
		return 0
	}
}

// ApplyMatch is the full per-match hostility step: outcome update, then the
// streak trend on top, clamped again.
func (s Sentiment) ApplyMatch(result domain.Outcome, scoreDiff int, averageRating float64, recent []domain.Outcome) Sentiment {
	h := UpdateHostility(s.Hostility, result, scoreDiff, averageRating)
	return Sentiment{Hostility: ClampHostility(h + CalculateTrend(recent))}
}

// AfterReply reflects the coach engaging with the crowd.
func (s Sentiment) AfterReply() Sentiment {
	return Sentiment{Hostility: ClampHostility(s.Hostility - replyRelief)}
}

func (s Sentiment) AfterDislike() Sentiment {
	return Sentiment{Hostility: ClampHostility(s.Hostility + dislikePenalty)}
}

func (s Sentiment) Intensity() domain.Intensity { return CommentIntensity(s.Hostility) }

func (s Sentiment) ImpressionScore() int { return ImpressionScore(s.Hostility) }

func (s Sentiment) IsPeak() bool { return IsHostilityPeak(s.Hostility) }

func (s Sentiment) Label() string { return HostilityLabel(s.Hostility) }

// CommentIntensity has no hysteresis: exactly 0.5 is still hype.
func CommentIntensity(hostility float64) domain.Intensity {
	if hostility > toxicThreshold {
		return domain.Toxic
	}
	return domain.Hype
}

func ImpressionScore(hostility float64) int {
	score := int(math.Round((1 - ClampHostility(hostility)) * 100))
	return max(0, min(100, score))
}

func IsHostilityPeak(hostility float64) bool {
	return hostility >= peakThreshold
}

func HostilityLabel(hostility float64) string {
	switch {
	case hostility >= 0.8:
		return "Extremely hostile"
	case hostility >= 0.6:
		return "Highly hostile"
	case hostility >= 0.4:
		return "Moderately hostile"
	case hostility >= 0.2:
		return "Mildly hostile"
	default:
		return "Harmonious"
	}
}
