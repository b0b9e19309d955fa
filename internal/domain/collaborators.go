package domain

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultAverageRating is the neutral team rating: it moves hostility neither way.
const DefaultAverageRating = 6.5

// MatchRecognition is what the vision collaborator extracts from a result screenshot.
type MatchRecognition struct {
	Result     Outcome            `json:"result"`
	Score      *string            `json:"score,omitempty"`
	Possession float64            `json:"possession"`
	Players    []RecognizedPlayer `json:"players"`
}

type RecognizedPlayer struct {
	Name     string  `json:"name"`
	Position string  `json:"position"`
	Rating   float64 `json:"rating"`
}

// ScoreDiff parses "N-M" into the absolute goal differential. Missing or
// malformed scores count as 0.
func (m MatchRecognition) ScoreDiff() int {
	if m.Score == nil {
		return 0
	}
	home, away, ok := strings.Cut(strings.TrimSpace(*m.Score), "-")
	if !ok {
		return 0
	}
	h, err := strconv.Atoi(strings.TrimSpace(home))
	if err != nil {
		return 0
	}
	a, err := strconv.Atoi(strings.TrimSpace(away))
	if err != nil {
		return 0
	}
	if h < a {
		return a - h
	}
	return h - a
}

// AverageRating is the mean of the valid recognized ratings, DefaultAverageRating when none.
func (m MatchRecognition) AverageRating() float64 {
	var sum float64
	var n int
	for _, p := range m.Players {
		if !ValidRating(p.Rating) {
			continue
		}
		sum += p.Rating
		n++
	}
	if n == 0 {
		return DefaultAverageRating
	}
	return sum / float64(n)
}

// ValidRating reports whether a rating carries information. Non-finite and
// non-positive values are treated as missing.
func ValidRating(r float64) bool {
	return !math.IsNaN(r) && !math.IsInf(r, 0) && r > 0
}

type LineupRecognition struct {
	TeamName string         `json:"teamName,omitempty"`
	Players  []LineupPlayer `json:"players"`
}

type LineupPlayer struct {
	Name     string   `json:"name"`
	Position string   `json:"position,omitempty"`
	Rating   *float64 `json:"rating,omitempty"`
}

// Backstory is aligned by index with the lineup players it was generated for.
type Backstory struct {
	Nickname        string `json:"nickname"`
	Backstory       string `json:"backstory"`
	RedemptionScore *int   `json:"redemptionScore,omitempty"`
}

type NewsReport struct {
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	Highlights []string  `json:"highlights"`
	Timestamp  time.Time `json:"timestamp"`
}
