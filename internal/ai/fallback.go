package ai

import (
	"fmt"

	"misfit-alliance/internal/domain"
)

// mockMatches stand in for the vision model when it is absent or fails.
var mockMatches = []domain.MatchRecognition{
	{
		Result:     domain.Win,
		Possession: 58,
		Players: []domain.RecognizedPlayer{
			{Name: "Griezmann", Position: "CF", Rating: 8.5},
			{Name: "Coutinho", Position: "CAM", Rating: 7.8},
		},
	},
	{
		Result:     domain.Loss,
		Possession: 42,
		Players: []domain.RecognizedPlayer{
			{Name: "Griezmann", Position: "CF", Rating: 5.8},
			{Name: "Sancho", Position: "RW", Rating: 6.2},
		},
	},
	{
		Result:     domain.Draw,
		Possession: 51,
		Players: []domain.RecognizedPlayer{
			{Name: "Coutinho", Position: "CAM", Rating: 7.0},
			{Name: "Sancho", Position: "RW", Rating: 7.2},
		},
	},
}

func mockMatch(i int) domain.MatchRecognition {
	m := mockMatches[i]
	m.Players = append([]domain.RecognizedPlayer(nil), m.Players...)
	return m
}

func mockLineup() domain.LineupRecognition {
	return domain.LineupRecognition{
		TeamName: "Misfit Alliance",
		Players: []domain.LineupPlayer{
			{Name: "Griezmann", Position: "CF"},
			{Name: "Coutinho", Position: "CAM"},
			{Name: "Sancho", Position: "RW"},
		},
	}
}

var mockNews = map[domain.Outcome]domain.NewsReport{
	domain.Win: {
		Title:      "Against the odds! The Misfit Alliance finally wins",
		Content:    "The Misfit Alliance showed a stubborn fighting spirit in today's match.",
		Highlights: []string{"Team morale is soaring", "Several players rated above 7.5", "Clear possession advantage"},
	},
	domain.Draw: {
		Title:      "A hard-fought draw, the misfits show signs of life",
		Content:    "Facing a strong opponent, the Misfit Alliance held on for a draw.",
		Highlights: []string{"Solid at the back", "Players slowly finding form", "Possession numbers improving"},
	},
	domain.Loss: {
		Title:      "Another defeat, the misfits still stuck at rock bottom",
		Content:    "The Misfit Alliance tasted defeat once again today.",
		Highlights: []string{"Too little of the ball, always chasing", "Several players rated below a pass mark", "Online sentiment keeps getting worse"},
	},
}

func mockNewsFor(result domain.Outcome) domain.NewsReport {
	n, ok := mockNews[result]
	if !ok {
		n = mockNews[domain.Loss]
	}
	n.Highlights = append([]string(nil), n.Highlights...)
	return n
}

// defaultBackstory carries no score so the roster falls back to the default.
func defaultBackstory(p domain.LineupPlayer) domain.Backstory {
	position := p.Position
	if position == "" {
		position = "footballer"
	}
	return domain.Backstory{
		Nickname:  "The Forgotten " + position,
		Backstory: fmt.Sprintf("%s was once tipped for greatness. Nobody at the club remembers exactly when it all went wrong.", p.Name),
	}
}
