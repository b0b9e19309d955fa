package engine

import (
	"fmt"
	"strings"
)

// Template placeholders: {name}, {nickname}, {rating}, {goals}.
var (
	jeeringTemplates = []string{
		"{name} rated {rating}? Hilarious. \"{nickname}\" really lives up to the name.",
		"{name} sleepwalked through another one. Weld the exit shut, he's not getting out of this hole.",
		"Just retire {name} already. Watching him is bad for my blood pressure.",
		"Rated {rating} and still cashing the paycheck? \"{nickname}\" fits like a glove.",
		"{name}: \"I'm not saying you're all rubbish\" (proceeds to be the most rubbish one on the pitch).",
		"Lost again? This coach and {name} deserve each other.",
	}

	lukewarmTemplates = []string{
		"{name} was just okay today, a {rating}. Form still isn't there.",
		"They don't call him \"{nickname}\" for nothing. {name} still has plenty to prove.",
		"{name} got a {rating}. Middle of the road, let's see the next one.",
	}

	hypeTemplates = []string{
		"{name} is a beast! {rating} and man of the match, THAT is real quality!",
		"{name} was unstoppable today, {goals}who was calling him \"{nickname}\"? Eat your words!",
		"{name}: \"I'll prove it to all of you!\" Rated {rating}, flawless!",
		"Where are the {name} haters now? Come out and say something. Good enough for you?",
		"{name} has finally woken up. This is the genius we remember!",
		"Watching {name} today I believe in love again. The road to redemption starts here!",
	}

	dividedRebuttal = "Rated {rating}? One good game and you want to wash him clean? \"{nickname}\" will always be \"{nickname}\"!"

	fillerToxicTemplates = []string{
		"Can't believe I'm still watching this team.",
		"Sack the coach. Sack everyone. Start over.",
		"Same story every week. Why do I bother.",
		"My cat could organise that midfield better.",
	}

	fillerHypeTemplates = []string{
		"Something is brewing with this squad, I can feel it!",
		"Best atmosphere in months, let's keep it going!",
		"Told you all to keep the faith.",
		"The misfits are coming for everyone this season!",
	}
)

type templateVars struct {
	Name     string
	Nickname string
	Rating   float64
	Goals    int
}

func render(tmpl string, v templateVars) string {
	goals := ""
	if v.Goals > 0 {
		goals = fmt.Sprintf("scored %d, ", v.Goals)
	}
	r := strings.NewReplacer(
		"{name}", v.Name,
		"{nickname}", v.Nickname,
		"{rating}", formatRating(v.Rating),
		"{goals}", goals,
	)
	return r.Replace(tmpl)
}

func formatRating(r float64) string {
	return fmt.Sprintf("%.1f", r)
}
