package engine

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"misfit-alliance/internal/domain"
	"misfit-alliance/internal/ids"

	"github.com/jonboulle/clockwork"
)

const (
	wakingHypeRating     = 7.0
	lukewarmMaxHostility = 0.6
	lukewarmMinRating    = 6.0
	authorNumberSpace    = 9999
)

// Rand is the only source of randomness in narrative selection.
type Rand interface {
	IntN(n int) int
}

// NewRand returns a time-seeded source for production use.
func NewRand() Rand {
	seed := uint64(time.Now().UnixNano())
	return rand.New(rand.NewPCG(seed, seed>>17|1))
}

// FixedRand always picks the same index (clamped to n-1). Useful in tests.
type FixedRand int

func (f FixedRand) IntN(n int) int {
	if int(f) >= n {
		return n - 1
	}
	return int(f)
}

// ToneFor maps a freshly derived redemption state and the match rating to a
// comment tone.
func ToneFor(state domain.RedemptionState, rating float64) domain.Intensity {
	switch state {
	case domain.Fallen:
		return domain.Toxic
	case domain.Waking:
		if rating >= wakingHypeRating {
			return domain.Hype
		}
		return domain.Toxic
	default:
		return domain.Hype
	}
}

type Narrator struct {
	mu    sync.Mutex
	rng   Rand
	clock clockwork.Clock
	ids   ids.Generator
}

func NewNarrator(rng Rand, clock clockwork.Clock, gen ids.Generator) *Narrator {
	return &Narrator{rng: rng, clock: clock, ids: gen}
}

func (n *Narrator) pick(pool []string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return pool[n.rng.IntN(len(pool))]
}

// Author returns a throwaway forum handle.
func (n *Narrator) Author() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return fmt.Sprintf("Fan%d", n.rng.IntN(authorNumberSpace))
}

// LocalComment renders a template for the given tone. Toxic comments soften
// to the lukewarm pool when the crowd is calm and the rating is passable.
func (n *Narrator) LocalComment(player domain.Player, hostility float64, rec domain.MatchRecord, tone domain.Intensity) string {
	vars := templateVars{Name: player.Name, Nickname: player.Nickname, Rating: rec.Rating, Goals: rec.Goals}
	if tone == domain.Hype {
		return render(n.pick(hypeTemplates), vars)
	}
	if hostility > lukewarmMaxHostility || rec.Rating < lukewarmMinRating {
		return render(n.pick(jeeringTemplates), vars)
	}
	return render(n.pick(lukewarmTemplates), vars)
}

// DividedComments returns a supporter and a detractor take on the same match.
func (n *Narrator) DividedComments(player domain.Player, rec domain.MatchRecord) (string, string) {
	vars := templateVars{Name: player.Name, Nickname: player.Nickname, Rating: rec.Rating, Goals: rec.Goals}
	return render(n.pick(hypeTemplates), vars), render(dividedRebuttal, vars)
}

// PlayerPost builds the forum post about one player's match. player must be
// the post-update version and hostility the post-update value. The player's
// tone picks the text; the post's intensity is the crowd's at this moment.
// When aiText is empty the content falls back to a local template.
func (n *Narrator) PlayerPost(player domain.Player, hostility float64, rec domain.MatchRecord, aiText string) domain.ForumPost {
	content := aiText
	if content == "" {
		content = n.LocalComment(player, hostility, rec, ToneFor(player.RedemptionState(), rec.Rating))
	}
	playerID := player.ID
	return n.newPost(content, CommentIntensity(hostility), &playerID)
}

// FillerPost is crowd noise keyed by the current global mood.
func (n *Narrator) FillerPost(hostility float64) domain.ForumPost {
	intensity := CommentIntensity(hostility)
	pool := fillerHypeTemplates
	if intensity == domain.Toxic {
		pool = fillerToxicTemplates
	}
	return n.newPost(n.pick(pool), intensity, nil)
}

// RebuttalPost is the detractor half of a divided reaction, not tied to a player.
func (n *Narrator) RebuttalPost(player domain.Player, hostility float64, rec domain.MatchRecord) domain.ForumPost {
	_, anti := n.DividedComments(player, rec)
	return n.newPost(anti, CommentIntensity(hostility), nil)
}

func (n *Narrator) newPost(content string, intensity domain.Intensity, playerID *string) domain.ForumPost {
	return domain.ForumPost{
		ID:        n.ids.NewID(),
		Author:    n.Author(),
		Content:   content,
		Intensity: intensity,
		Replies:   []domain.Reply{},
		PlayerID:  playerID,
		Timestamp: n.clock.Now(),
	}
}
