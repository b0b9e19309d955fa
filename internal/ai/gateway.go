package ai

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"misfit-alliance/internal/api"
	"misfit-alliance/internal/domain"
	"misfit-alliance/internal/engine"
	"misfit-alliance/internal/metrics"

	"github.com/rs/zerolog"
)

const (
	opRecognizeMatch  = "recognize_match"
	opRecognizeLineup = "recognize_lineup"
	opBackstories     = "backstories"
	opNews            = "news"
	opComment         = "comment"
)

// Completer is the chat completion transport.
type Completer interface {
	Enabled() bool
	Complete(ctx context.Context, messages []api.Message) (string, error)
}

// Gateway fronts every AI collaborator. Its methods never fail: upstream
// errors, unparsable answers and a missing API key all resolve to fixed
// fallback results.
type Gateway struct {
	client Completer
	logger zerolog.Logger

	mu  sync.Mutex
	rng engine.Rand
}

func NewGateway(client *api.ArkClient, logger zerolog.Logger) *Gateway {
	return NewGatewayWith(client, engine.NewRand(), logger)
}

func NewGatewayWith(client Completer, rng engine.Rand, logger zerolog.Logger) *Gateway {
	return &Gateway{
		client: client,
		rng:    rng,
		logger: logger.With().Str("component", "ai").Logger(),
	}
}

func (g *Gateway) complete(ctx context.Context, op string, messages ...api.Message) (string, error) {
	if !g.client.Enabled() {
		return "", api.ErrNotConfigured
	}
	start := time.Now()
	text, err := g.client.Complete(ctx, messages)
	metrics.CollaboratorDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	return text, err
}

var errEmptyComment = errors.New("model returned an empty comment")

func (g *Gateway) fallback(op string, err error) {
	metrics.CollaboratorFallbacks.WithLabelValues(op).Inc()
	if errors.Is(err, api.ErrNotConfigured) {
		g.logger.Debug().Str("operation", op).Msg("AI disabled, using fallback")
		return
	}
	g.logger.Warn().Err(err).Str("operation", op).Msg("AI collaborator failed, using fallback")
}

// RecognizeMatch reads a match result screenshot.
func (g *Gateway) RecognizeMatch(ctx context.Context, imageURL string) domain.MatchRecognition {
	text, err := g.complete(ctx, opRecognizeMatch, api.VisionMessage(imageURL, visionPrompt))
	if err == nil {
		var rec domain.MatchRecognition
		rec, err = decodeObject[domain.MatchRecognition](text)
		if err == nil && !rec.Result.Valid() {
			err = errors.New("unknown match result " + string(rec.Result))
		}
		if err == nil {
			if rec.Players == nil {
				rec.Players = []domain.RecognizedPlayer{}
			}
			return rec
		}
	}

	g.fallback(opRecognizeMatch, err)
	g.mu.Lock()
	i := g.rng.IntN(len(mockMatches))
	g.mu.Unlock()
	return mockMatch(i)
}

// RecognizeLineup reads a squad screenshot. An empty recognition counts as a failure.
func (g *Gateway) RecognizeLineup(ctx context.Context, imageURL string) domain.LineupRecognition {
	text, err := g.complete(ctx, opRecognizeLineup, api.VisionMessage(imageURL, lineupPrompt))
	if err == nil {
		var lineup domain.LineupRecognition
		lineup, err = decodeObject[domain.LineupRecognition](text)
		if err == nil && len(lineup.Players) == 0 {
			err = errors.New("lineup has no players")
		}
		if err == nil {
			return lineup
		}
	}

	g.fallback(opRecognizeLineup, err)
	return mockLineup()
}

// GenerateBackstories returns one backstory per player, aligned by index.
// Entries the model skipped or left blank get a default.
func (g *Gateway) GenerateBackstories(ctx context.Context, players []domain.LineupPlayer) []domain.Backstory {
	out := make([]domain.Backstory, len(players))
	for i, p := range players {
		out[i] = defaultBackstory(p)
	}
	if len(players) == 0 {
		return out
	}

	text, err := g.complete(ctx, opBackstories, api.SystemMessage(backstorySystem), api.UserMessage(backstoryPrompt(players)))
	if err == nil {
		var generated []domain.Backstory
		generated, err = decodeArray[[]domain.Backstory](text)
		if err == nil {
			for i := range min(len(generated), len(out)) {
				if strings.TrimSpace(generated[i].Nickname) == "" || strings.TrimSpace(generated[i].Backstory) == "" {
					continue
				}
				out[i] = generated[i]
			}
			return out
		}
	}

	g.fallback(opBackstories, err)
	return out
}

// GenerateNews writes a match report. The caller stamps the timestamp.
func (g *Gateway) GenerateNews(ctx context.Context, rec domain.MatchRecognition) domain.NewsReport {
	text, err := g.complete(ctx, opNews, api.SystemMessage(newsSystem), api.UserMessage(newsPrompt(rec)))
	if err == nil {
		var news domain.NewsReport
		news, err = decodeObject[domain.NewsReport](text)
		if err == nil && strings.TrimSpace(news.Title) == "" {
			err = errors.New("news report has no title")
		}
		if err == nil {
			if news.Highlights == nil {
				news.Highlights = []string{}
			}
			news.Timestamp = time.Time{}
			return news
		}
	}

	g.fallback(opNews, err)
	return mockNewsFor(rec.Result)
}

// GenerateComment returns a forum comment, or "" when none could be produced
// and the caller should use a local template.
func (g *Gateway) GenerateComment(ctx context.Context, req CommentRequest) string {
	text, err := g.complete(ctx, opComment, api.SystemMessage(commentSystem), api.UserMessage(commentPrompt(req)))
	if err != nil {
		g.fallback(opComment, err)
		return ""
	}
	text = strings.TrimSpace(text)
	if text == "" {
		g.fallback(opComment, errEmptyComment)
	}
	return text
}
