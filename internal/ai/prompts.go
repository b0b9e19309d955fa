package ai

import (
	"fmt"
	"strings"

	"misfit-alliance/internal/domain"
)

const visionPrompt = `Identify the eFootball match result in this screenshot and answer with JSON only:
{"result":"win|draw|loss","score":"N-M","possession":<percent number>,"players":[{"name":"...","position":"...","rating":<number>}]}
The result is from the perspective of the user's team. Omit "score" if it is not visible.`

const lineupPrompt = `List the players of the squad in this eFootball lineup screenshot and answer with JSON only:
{"teamName":"...","players":[{"name":"...","position":"...","rating":<number>}]}
Omit fields you cannot read.`

const backstorySystem = `You write short, sardonic football fan lore. For each player you are given,
invent a mocking nickname, a one or two sentence fall-from-grace backstory and a starting
redemption score between 0 and 100 (lower means the fans hate them more).
Answer with a JSON array aligned with the input order:
[{"nickname":"...","backstory":"...","redemptionScore":<int>}]`

const newsSystem = `You are a sports journalist covering a club nobody believes in.
Write a short match report and answer with JSON only: {"title":"...","content":"...","highlights":["...","..."]}`

const commentSystem = `You are a football forum user. Write one short forum comment (at most two sentences)
about the player. Match the requested tone: "toxic" is mocking and bitter, "hype" is euphoric.
Answer with the comment text only.`

func backstoryPrompt(players []domain.LineupPlayer) string {
	var b strings.Builder
	b.WriteString("Players:\n")
	for i, p := range players {
		fmt.Fprintf(&b, "%d. %s", i+1, p.Name)
		if p.Position != "" {
			fmt.Fprintf(&b, " (%s)", p.Position)
		}
		if p.Rating != nil {
			fmt.Fprintf(&b, " rated %.1f", *p.Rating)
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func newsPrompt(rec domain.MatchRecognition) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Result: %s\n", rec.Result)
	if rec.Score != nil {
		fmt.Fprintf(&b, "Score: %s\n", *rec.Score)
	}
	fmt.Fprintf(&b, "Possession: %.0f%%\n", rec.Possession)
	for _, p := range rec.Players {
		fmt.Fprintf(&b, "- %s (%s) rating %.1f\n", p.Name, p.Position, p.Rating)
	}
	return b.String()
}

// CommentRequest is the post-match context a generated comment is based on.
type CommentRequest struct {
	Player    domain.Player
	Record    domain.MatchRecord
	Hostility float64
	Tone      domain.Intensity
}

func commentPrompt(req CommentRequest) string {
	return fmt.Sprintf("Player: %s (nickname %q), rating this match: %.1f, goals: %d, redemption state: %s, community hostility: %.2f, tone: %s",
		req.Player.Name,
		req.Player.Nickname,
		req.Record.Rating,
		req.Record.Goals,
		req.Player.RedemptionState(),
		req.Hostility,
		req.Tone,
	)
}
