package domain

import (
	"time"
)

const (
	MinRedemptionScore = 0
	MaxRedemptionScore = 100

	// DefaultRedemptionScore is used for confirmed lineups without an AI-assigned score.
	DefaultRedemptionScore = 50

	PlayerHistoryLimit = 20
	RecentResultsLimit = 5
	MatchHistoryLimit  = 15
)

type RedemptionState string

const (
	Fallen   RedemptionState = "Fallen"   // 0-20
	Waking   RedemptionState = "Waking"   // 21-80
	Redeemed RedemptionState = "Redeemed" // 81-100
)

type Intensity string

const (
	Toxic Intensity = "toxic"
	Hype  Intensity = "hype"
)

type Outcome string

const (
	Win  Outcome = "win"
	Draw Outcome = "draw"
	Loss Outcome = "loss"
)

func (o Outcome) Valid() bool {
	return o == Win || o == Draw || o == Loss
}

// MatchRecord is one entry of a player's performance history.
type MatchRecord struct {
	Rating    float64   `json:"rating"`
	Goals     int       `json:"goals"`
	Assists   int       `json:"assists"`
	Position  string    `json:"position,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Player struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Nickname        string        `json:"nickname"`
	Backstory       string        `json:"backstory"`
	Position        string        `json:"position,omitempty"`
	RedemptionScore int           `json:"redemptionScore"`
	History         []MatchRecord `json:"history"`
	TrustBonus      bool          `json:"trustBonus"`
	CreatedAt       time.Time     `json:"createdAt"`
	UpdatedAt       time.Time     `json:"updatedAt"`
}

// StateForScore buckets a redemption score. Boundaries are closed ranges with
// no hysteresis: a score moving between 20 and 21 flips state every time.
func StateForScore(score int) RedemptionState {
	switch {
	case score <= 20:
		return Fallen
	case score <= 80:
		return Waking
	default:
		return Redeemed
	}
}

func ClampScore(score int) int {
	if score < MinRedemptionScore {
		return MinRedemptionScore
	}
	if score > MaxRedemptionScore {
		return MaxRedemptionScore
	}
	return score
}

// RedemptionState is derived from the score on every call and never stored.
func (p Player) RedemptionState() RedemptionState {
	return StateForScore(p.RedemptionScore)
}

// WithMatch returns a copy of p with rec appended to its history, keeping only
// the most recent PlayerHistoryLimit entries.
func (p Player) WithMatch(rec MatchRecord) Player {
	history := make([]MatchRecord, 0, len(p.History)+1)
	history = append(history, p.History...)
	history = append(history, rec)
	if len(history) > PlayerHistoryLimit {
		history = history[len(history)-PlayerHistoryLimit:]
	}
	p.History = history
	return p
}

// WithScore returns a copy of p with the score clamped into range.
func (p Player) WithScore(score int) Player {
	p.RedemptionScore = ClampScore(score)
	return p
}

func (p Player) WithTrustBonus(enabled bool) Player {
	p.TrustBonus = enabled
	return p
}

// WithProfile is the only way display strings change after creation.
// Empty arguments leave the existing value in place.
func (p Player) WithProfile(nickname, backstory string) Player {
	if nickname != "" {
		p.Nickname = nickname
	}
	if backstory != "" {
		p.Backstory = backstory
	}
	return p
}

// RecentRatings returns the ratings of the last n history entries, oldest first.
func (p Player) RecentRatings(n int) []float64 {
	if n > len(p.History) {
		n = len(p.History)
	}
	ratings := make([]float64, 0, n)
	for _, rec := range p.History[len(p.History)-n:] {
		ratings = append(ratings, rec.Rating)
	}
	return ratings
}

type Reply struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

type ForumPost struct {
	ID        string    `json:"id"`
	Author    string    `json:"author"`
	Content   string    `json:"content"`
	Intensity Intensity `json:"intensity"`
	Likes     int       `json:"likes"`
	Dislikes  int       `json:"dislikes"`
	Replies   []Reply   `json:"replies"`
	PlayerID  *string   `json:"playerId"` // nil for filler posts
	Timestamp time.Time `json:"timestamp"`
}

func (p ForumPost) WithReply(r Reply) ForumPost {
	replies := make([]Reply, 0, len(p.Replies)+1)
	replies = append(replies, p.Replies...)
	p.Replies = append(replies, r)
	return p
}

func (p ForumPost) Liked() ForumPost {
	p.Likes++
	return p
}

func (p ForumPost) Disliked() ForumPost {
	p.Dislikes++
	return p
}

// GameState aggregates the season so far. RecentResults only feeds streak detection.
type GameState struct {
	Wins          int       `json:"wins"`
	Losses        int       `json:"losses"`
	Draws         int       `json:"draws"`
	MatchCount    int       `json:"matchCount"`
	RecentResults []Outcome `json:"recentResults"`
	LastSaved     time.Time `json:"lastSaved,omitzero"`
}

func NewGameState() GameState {
	return GameState{RecentResults: []Outcome{}}
}

// Record returns a copy of g with the outcome counted and appended to the
// bounded recent-results window.
func (g GameState) Record(o Outcome) GameState {
	g.MatchCount++
	switch o {
	case Win:
		g.Wins++
	case Draw:
		g.Draws++
	case Loss:
		g.Losses++
	}

	recent := make([]Outcome, 0, len(g.RecentResults)+1)
	recent = append(recent, g.RecentResults...)
	recent = append(recent, o)
	if len(recent) > RecentResultsLimit {
		recent = recent[len(recent)-RecentResultsLimit:]
	}
	g.RecentResults = recent
	return g
}

// MatchSummary is one entry of the league's match history.
type MatchSummary struct {
	ID              string             `json:"id"`
	Result          Outcome            `json:"result"`
	Score           string             `json:"score,omitempty"`
	Possession      float64            `json:"possession"`
	Players         []RecognizedPlayer `json:"players"`
	News            *NewsReport        `json:"news,omitempty"`
	HostilityBefore float64            `json:"hostilityBefore"`
	HostilityAfter  float64            `json:"hostilityAfter"`
	PlayedAt        time.Time          `json:"playedAt"`
}
