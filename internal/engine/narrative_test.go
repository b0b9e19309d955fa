package engine

import (
	"testing"

	"misfit-alliance/internal/domain"
	"misfit-alliance/internal/ids"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestNarrator(pick int) *Narrator {
	return NewNarrator(FixedRand(pick), clockwork.NewFakeClockAt(testNow), &ids.Sequence{Prefix: "post"})
}

var griezmann = domain.Player{ID: "p1", Name: "Griezmann", Nickname: "Soft Shrimp", RedemptionScore: 10}

func TestToneFor(t *testing.T) {
	assert.Equal(t, domain.Toxic, ToneFor(domain.Fallen, 9.5))
	assert.Equal(t, domain.Hype, ToneFor(domain.Waking, 7.0))
	assert.Equal(t, domain.Toxic, ToneFor(domain.Waking, 6.9))
	assert.Equal(t, domain.Hype, ToneFor(domain.Redeemed, 3.0))
}

func TestFixedRand_ClampsToPool(t *testing.T) {
	assert.Equal(t, 2, FixedRand(10).IntN(3))
	assert.Equal(t, 1, FixedRand(1).IntN(3))
}

func TestLocalComment_JeeringWhenHostile(t *testing.T) {
	n := newTestNarrator(0)

	got := n.LocalComment(griezmann, 0.7, domain.MatchRecord{Rating: 6.5}, domain.Toxic)

	assert.Equal(t, `Griezmann rated 6.5? Hilarious. "Soft Shrimp" really lives up to the name.`, got)
}

func TestLocalComment_JeeringWhenRatingPoor(t *testing.T) {
	n := newTestNarrator(3)

	got := n.LocalComment(griezmann, 0.2, domain.MatchRecord{Rating: 5.2}, domain.Toxic)

	assert.Equal(t, `Rated 5.2 and still cashing the paycheck? "Soft Shrimp" fits like a glove.`, got)
}

func TestLocalComment_JeeringReadsWithAnyRating(t *testing.T) {
	cases := []struct {
		pick   int
		rating float64
		want   string
	}{
		{0, 8.0, `Griezmann rated 8.0? Hilarious. "Soft Shrimp" really lives up to the name.`},
		{3, 11.0, `Rated 11.0 and still cashing the paycheck? "Soft Shrimp" fits like a glove.`},
	}
	for _, tc := range cases {
		got := newTestNarrator(tc.pick).LocalComment(griezmann, 0.7, domain.MatchRecord{Rating: tc.rating}, domain.Toxic)
		assert.Equal(t, tc.want, got)
	}
}

func TestLocalComment_LukewarmWhenCalm(t *testing.T) {
	n := newTestNarrator(2)

	got := n.LocalComment(griezmann, 0.4, domain.MatchRecord{Rating: 6.4}, domain.Toxic)

	assert.Equal(t, "Griezmann got a 6.4. Middle of the road, let's see the next one.", got)
}

func TestLocalComment_HypeMentionsGoals(t *testing.T) {
	n := newTestNarrator(1)

	withGoals := n.LocalComment(griezmann, 0.4, domain.MatchRecord{Rating: 8.1, Goals: 2}, domain.Hype)
	noGoals := n.LocalComment(griezmann, 0.4, domain.MatchRecord{Rating: 8.1}, domain.Hype)

	assert.Equal(t, `Griezmann was unstoppable today, scored 2, who was calling him "Soft Shrimp"? Eat your words!`, withGoals)
	assert.Equal(t, `Griezmann was unstoppable today, who was calling him "Soft Shrimp"? Eat your words!`, noGoals)
}

func TestPlayerPost_UsesPostUpdateState(t *testing.T) {
	n := newTestNarrator(0)
	before := griezmann
	after := UpdateRedemption(before, domain.MatchRecord{Rating: 8.0}, testNow).Player
	require.Equal(t, domain.Waking, after.RedemptionState())

	post := n.PlayerPost(after, 0.3, domain.MatchRecord{Rating: 8.0}, "")

	assert.Equal(t, domain.Hype, post.Intensity)
	require.NotNil(t, post.PlayerID)
	assert.Equal(t, "p1", *post.PlayerID)
	assert.Equal(t, "post-1", post.ID)
	assert.Equal(t, "Fan0", post.Author)
	assert.Equal(t, testNow, post.Timestamp)
	assert.Contains(t, post.Content, "Griezmann")
	assert.Zero(t, post.Likes)
	assert.Empty(t, post.Replies)
}

func TestPlayerPost_IntensityFollowsHostilityNotTone(t *testing.T) {
	n := newTestNarrator(0)
	rec := domain.MatchRecord{Rating: 6.0}
	require.Equal(t, domain.Toxic, ToneFor(griezmann.RedemptionState(), rec.Rating))

	local := n.PlayerPost(griezmann, 0.2, rec, "")
	generated := n.PlayerPost(griezmann, 0.2, rec, "ai text")

	want := render(lukewarmTemplates[0], templateVars{Name: griezmann.Name, Nickname: griezmann.Nickname, Rating: 6.0})
	assert.Equal(t, want, local.Content, "a Fallen player still gets a toxic-pool comment")
	assert.Equal(t, domain.Hype, local.Intensity)
	assert.Equal(t, "ai text", generated.Content)
	assert.Equal(t, domain.Hype, generated.Intensity)
}

func TestPlayerPost_AngryCrowdTagsToxic(t *testing.T) {
	n := newTestNarrator(0)

	post := n.PlayerPost(griezmann, 0.51, domain.MatchRecord{Rating: 9.0}, "")

	assert.Equal(t, domain.Toxic, post.Intensity)
}

func TestPlayerPost_PrefersGeneratedText(t *testing.T) {
	n := newTestNarrator(0)

	post := n.PlayerPost(griezmann, 0.9, domain.MatchRecord{Rating: 4.0}, "generated take")

	assert.Equal(t, "generated take", post.Content)
	assert.Equal(t, domain.Toxic, post.Intensity)
}

func TestFillerPost_FollowsGlobalMood(t *testing.T) {
	n := newTestNarrator(0)

	toxic := n.FillerPost(0.51)
	hype := n.FillerPost(0.5)

	assert.Equal(t, domain.Toxic, toxic.Intensity)
	assert.Equal(t, fillerToxicTemplates[0], toxic.Content)
	assert.Nil(t, toxic.PlayerID)
	assert.Equal(t, domain.Hype, hype.Intensity)
	assert.Equal(t, fillerHypeTemplates[0], hype.Content)
	assert.Nil(t, hype.PlayerID)
}

func TestDividedComments(t *testing.T) {
	n := newTestNarrator(4)

	pro, anti := n.DividedComments(griezmann, domain.MatchRecord{Rating: 7.3})

	assert.Equal(t, "Griezmann has finally woken up. This is the genius we remember!", pro)
	assert.Equal(t, `Rated 7.3? One good game and you want to wash him clean? "Soft Shrimp" will always be "Soft Shrimp"!`, anti)
}

func TestRebuttalPost_IsUnlinked(t *testing.T) {
	n := newTestNarrator(0)

	calm := n.RebuttalPost(griezmann, 0.3, domain.MatchRecord{Rating: 7.3})
	angry := n.RebuttalPost(griezmann, 0.7, domain.MatchRecord{Rating: 7.3})

	assert.Equal(t, domain.Hype, calm.Intensity)
	assert.Equal(t, domain.Toxic, angry.Intensity)
	assert.Nil(t, calm.PlayerID)
	assert.Contains(t, calm.Content, "Soft Shrimp")
}
