package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"misfit-alliance/internal/ai"
	"misfit-alliance/internal/api"
	"misfit-alliance/internal/config"
	"misfit-alliance/internal/database"
	"misfit-alliance/internal/db"
	"misfit-alliance/internal/engine"
	"misfit-alliance/internal/ids"
	"misfit-alliance/internal/repository"
	"misfit-alliance/internal/service"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pngUpload = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNk+M9QDwADhgGAWjR9awAAAABJRU5ErkJggg=="

// offline behaves like an ArkClient without a key.
type offline struct{}

func (offline) Enabled() bool { return false }

func (offline) Complete(context.Context, []api.Message) (string, error) {
	return "", api.ErrNotConfigured
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	log := zerolog.Nop()
	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "league.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	cfg := &config.Config{InitialHostility: engine.BootstrapHostility, MinPostsPerMatch: 5, DraftTTL: time.Hour}
	q := db.New(sqlDB)
	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 14, 20, 0, 0, 0, time.UTC))
	lock := service.NewLeagueLock()
	players := repository.NewPlayerRepository(sqlDB, q, log)
	posts := repository.NewPostRepository(sqlDB, q, log)
	state := repository.NewStateRepository(sqlDB, q, log)
	matches := repository.NewMatchRepository(sqlDB, q, log)
	gateway := ai.NewGatewayWith(offline{}, engine.FixedRand(0), log)
	narrator := engine.NewNarrator(engine.FixedRand(0), clock, ids.NanoID{})

	roster := service.NewRosterService(players, gateway, clock, lock, log)
	matchSvc := service.NewMatchService(cfg, players, matches, state, gateway, narrator, clock, lock, log)
	forum := service.NewForumService(posts, state, clock, lock, log)
	dashboard := service.NewDashboardService(cfg, players, state, matchSvc, clock, lock, log)
	require.NoError(t, dashboard.Bootstrap(context.Background()))

	path, handler := NewAllianceServer(roster, matchSvc, forum, dashboard, log).Handler()
	mux := http.NewServeMux()
	mux.Handle(path, handler)
	mux.Handle("/healthz", NewHealth(sqlDB, clock))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// call posts a connect unary request and decodes the answer into out.
func call(t *testing.T, srv *httptest.Server, procedure string, in, out any) int {
	t.Helper()

	body, err := json.Marshal(in)
	require.NoError(t, err)

	resp, err := http.Post(srv.URL+procedure, "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp.StatusCode
}

type connectError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func TestAllianceServer_Dashboard(t *testing.T) {
	srv := newTestServer(t)

	var d service.Dashboard
	require.Equal(t, http.StatusOK, call(t, srv, GetDashboardProcedure, Empty{}, &d))

	assert.Equal(t, 0.7, d.Hostility)
	assert.Equal(t, "Highly hostile", d.Label)
	assert.False(t, d.AIEnabled)
	require.Len(t, d.Players, 3)
	assert.Equal(t, "Griezmann", d.Players[0].Name)
}

func TestAllianceServer_MatchFlow(t *testing.T) {
	srv := newTestServer(t)

	var draft service.Draft
	require.Equal(t, http.StatusOK, call(t, srv, UploadMatchProcedure, ImageRequest{Image: pngUpload}, &draft))
	require.NotEmpty(t, draft.ID)
	assert.Equal(t, "win", string(draft.Recognition.Result))

	var outcome service.MatchOutcome
	require.Equal(t, http.StatusOK, call(t, srv, ConfirmMatchProcedure, DraftRequest{DraftID: draft.ID}, &outcome))
	assert.Equal(t, "win", string(outcome.Summary.Result))
	assert.Less(t, outcome.Hostility, 0.7, "a win calms the fans")
	assert.GreaterOrEqual(t, len(outcome.Posts), 5)

	var posts PostsResponse
	require.Equal(t, http.StatusOK, call(t, srv, ListPostsProcedure, ListPostsRequest{}, &posts))
	assert.Len(t, posts.Posts, len(outcome.Posts))

	var history MatchHistoryResponse
	require.Equal(t, http.StatusOK, call(t, srv, ListMatchHistoryProcedure, Empty{}, &history))
	require.Len(t, history.Matches, 1)
	assert.Equal(t, outcome.Summary.ID, history.Matches[0].ID)

	var cerr connectError
	assert.Equal(t, http.StatusNotFound, call(t, srv, ConfirmMatchProcedure, DraftRequest{DraftID: draft.ID}, &cerr))
	assert.Equal(t, "not_found", cerr.Code)
}

func TestAllianceServer_ForumActions(t *testing.T) {
	srv := newTestServer(t)

	var draft service.Draft
	require.Equal(t, http.StatusOK, call(t, srv, UploadMatchProcedure, ImageRequest{Image: pngUpload}, &draft))
	var outcome service.MatchOutcome
	require.Equal(t, http.StatusOK, call(t, srv, ConfirmMatchProcedure, DraftRequest{DraftID: draft.ID}, &outcome))
	postID := outcome.Posts[0].ID

	var replied service.PostUpdate
	require.Equal(t, http.StatusOK, call(t, srv, ReplyPostProcedure, ReplyPostRequest{PostID: postID, Content: "Patience."}, &replied))
	assert.InDelta(t, outcome.Hostility-0.05, replied.Hostility, 1e-9)
	require.Len(t, replied.Post.Replies, 1)
	assert.Equal(t, service.CoachAuthor, replied.Post.Replies[0].Author)

	var liked service.PostUpdate
	require.Equal(t, http.StatusOK, call(t, srv, LikePostProcedure, PostRequest{PostID: postID}, &liked))
	assert.Equal(t, 1, liked.Post.Likes)

	var cerr connectError
	assert.Equal(t, http.StatusBadRequest, call(t, srv, ReplyPostProcedure, ReplyPostRequest{PostID: postID, Content: "  "}, &cerr))
	assert.Equal(t, "invalid_argument", cerr.Code)

	assert.Equal(t, http.StatusNotFound, call(t, srv, DislikePostProcedure, PostRequest{PostID: "nope"}, &cerr))
	assert.Equal(t, "not_found", cerr.Code)
}

func TestAllianceServer_Roster(t *testing.T) {
	srv := newTestServer(t)

	var lineup struct {
		TeamName string `json:"teamName"`
		Players  []struct {
			Name string `json:"name"`
		} `json:"players"`
	}
	require.Equal(t, http.StatusOK, call(t, srv, RecognizeLineupProcedure, ImageRequest{Image: pngUpload}, &lineup))
	assert.Equal(t, "Misfit Alliance", lineup.TeamName)

	var roster PlayersResponse
	require.Equal(t, http.StatusOK, call(t, srv, ConfirmLineupProcedure, map[string]any{
		"players": []map[string]string{{"name": "Dele", "position": "CAM"}},
	}, &roster))
	require.Len(t, roster.Players, 1)
	assert.Equal(t, 50, roster.Players[0].RedemptionScore)

	var trusted PlayerResponse
	require.Equal(t, http.StatusOK, call(t, srv, GrantTrustProcedure, PlayerRequest{PlayerID: roster.Players[0].ID}, &trusted))
	assert.True(t, trusted.Player.TrustBonus)

	var renamed PlayerResponse
	require.Equal(t, http.StatusOK, call(t, srv, UpdateProfileProcedure, UpdateProfileRequest{PlayerID: roster.Players[0].ID, Nickname: "Ghost"}, &renamed))
	assert.Equal(t, "Ghost", renamed.Player.Nickname)

	var cerr connectError
	assert.Equal(t, http.StatusBadRequest, call(t, srv, ConfirmLineupProcedure, map[string]any{"players": []any{}}, &cerr))
	assert.Equal(t, http.StatusNotFound, call(t, srv, GrantTrustProcedure, PlayerRequest{PlayerID: "nobody"}, &cerr))
	assert.Equal(t, http.StatusBadRequest, call(t, srv, UploadMatchProcedure, ImageRequest{Image: "garbage"}, &cerr))
}

func TestAllianceServer_CancelAndReset(t *testing.T) {
	srv := newTestServer(t)

	var draft service.Draft
	require.Equal(t, http.StatusOK, call(t, srv, UploadMatchProcedure, ImageRequest{Image: pngUpload}, &draft))
	require.Equal(t, http.StatusOK, call(t, srv, CancelMatchProcedure, DraftRequest{DraftID: draft.ID}, &Empty{}))

	var cerr connectError
	assert.Equal(t, http.StatusNotFound, call(t, srv, CancelMatchProcedure, DraftRequest{DraftID: draft.ID}, &cerr))

	var d service.Dashboard
	require.Equal(t, http.StatusOK, call(t, srv, ResetLeagueProcedure, Empty{}, &d))
	assert.Equal(t, 0.7, d.Hostility)
	assert.Len(t, d.Players, 3)
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
}
