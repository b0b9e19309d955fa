package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"misfit-alliance/internal/domain"
	"misfit-alliance/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

const (
	ServiceName = "misfit.v1.AllianceService"
	ServicePath = "/" + ServiceName + "/"
)

const (
	GetDashboardProcedure     = ServicePath + "GetDashboard"
	ListPlayersProcedure      = ServicePath + "ListPlayers"
	RecognizeLineupProcedure  = ServicePath + "RecognizeLineup"
	ConfirmLineupProcedure    = ServicePath + "ConfirmLineup"
	GrantTrustProcedure       = ServicePath + "GrantTrust"
	UpdateProfileProcedure    = ServicePath + "UpdateProfile"
	UploadMatchProcedure      = ServicePath + "UploadMatch"
	ConfirmMatchProcedure     = ServicePath + "ConfirmMatch"
	CancelMatchProcedure      = ServicePath + "CancelMatch"
	ListMatchHistoryProcedure = ServicePath + "ListMatchHistory"
	ListPostsProcedure        = ServicePath + "ListPosts"
	ReplyPostProcedure        = ServicePath + "ReplyPost"
	LikePostProcedure         = ServicePath + "LikePost"
	DislikePostProcedure      = ServicePath + "DislikePost"
	ResetLeagueProcedure      = ServicePath + "ResetLeague"
)

type AllianceServer struct {
	roster    *service.RosterService
	matches   *service.MatchService
	forum     *service.ForumService
	dashboard *service.DashboardService
	logger    zerolog.Logger
}

func NewAllianceServer(
	roster *service.RosterService,
	matches *service.MatchService,
	forum *service.ForumService,
	dashboard *service.DashboardService,
	logger zerolog.Logger,
) *AllianceServer {
	return &AllianceServer{
		roster:    roster,
		matches:   matches,
		forum:     forum,
		dashboard: dashboard,
		logger:    logger.With().Str("component", "rpc").Logger(),
	}
}

// Handler mounts every procedure under ServicePath.
func (s *AllianceServer) Handler() (string, http.Handler) {
	opts := append(Codecs(), connect.WithInterceptors(s.timing()))

	mux := http.NewServeMux()
	mux.Handle(GetDashboardProcedure, connect.NewUnaryHandler(GetDashboardProcedure, s.GetDashboard, opts...))
	mux.Handle(ListPlayersProcedure, connect.NewUnaryHandler(ListPlayersProcedure, s.ListPlayers, opts...))
	mux.Handle(RecognizeLineupProcedure, connect.NewUnaryHandler(RecognizeLineupProcedure, s.RecognizeLineup, opts...))
	mux.Handle(ConfirmLineupProcedure, connect.NewUnaryHandler(ConfirmLineupProcedure, s.ConfirmLineup, opts...))
	mux.Handle(GrantTrustProcedure, connect.NewUnaryHandler(GrantTrustProcedure, s.GrantTrust, opts...))
	mux.Handle(UpdateProfileProcedure, connect.NewUnaryHandler(UpdateProfileProcedure, s.UpdateProfile, opts...))
	mux.Handle(UploadMatchProcedure, connect.NewUnaryHandler(UploadMatchProcedure, s.UploadMatch, opts...))
	mux.Handle(ConfirmMatchProcedure, connect.NewUnaryHandler(ConfirmMatchProcedure, s.ConfirmMatch, opts...))
	mux.Handle(CancelMatchProcedure, connect.NewUnaryHandler(CancelMatchProcedure, s.CancelMatch, opts...))
	mux.Handle(ListMatchHistoryProcedure, connect.NewUnaryHandler(ListMatchHistoryProcedure, s.ListMatchHistory, opts...))
	mux.Handle(ListPostsProcedure, connect.NewUnaryHandler(ListPostsProcedure, s.ListPosts, opts...))
	mux.Handle(ReplyPostProcedure, connect.NewUnaryHandler(ReplyPostProcedure, s.ReplyPost, opts...))
	mux.Handle(LikePostProcedure, connect.NewUnaryHandler(LikePostProcedure, s.LikePost, opts...))
	mux.Handle(DislikePostProcedure, connect.NewUnaryHandler(DislikePostProcedure, s.DislikePost, opts...))
	mux.Handle(ResetLeagueProcedure, connect.NewUnaryHandler(ResetLeagueProcedure, s.ResetLeague, opts...))
	return ServicePath, mux
}

// timing logs each procedure with its latency.
func (s *AllianceServer) timing() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)

			ev := s.log(ctx).Debug()
			if err != nil {
				ev = s.log(ctx).Info().Str("code", connect.CodeOf(err).String())
			}
			ev.Str("procedure", req.Spec().Procedure).
				Int64("duration_ms", time.Since(start).Milliseconds()).
				Msg("rpc handled")
			return resp, err
		}
	}
}

func (s *AllianceServer) log(ctx context.Context) *zerolog.Logger {
	if l := zerolog.Ctx(ctx); l.GetLevel() != zerolog.Disabled {
		return l
	}
	return &s.logger
}

// toConnectError maps domain sentinels onto connect codes; anything else is internal.
func (s *AllianceServer) toConnectError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrPlayerNotFound),
		errors.Is(err, domain.ErrPostNotFound),
		errors.Is(err, domain.ErrDraftNotFound):
		return connect.NewError(connect.CodeNotFound, err)
	case errors.Is(err, domain.ErrInvalidImage),
		errors.Is(err, domain.ErrEmptyReply),
		errors.Is(err, domain.ErrEmptyLineup):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	default:
		s.log(ctx).Error().Err(err).Msg("request failed")
		return connect.NewError(connect.CodeInternal, errors.New("internal error"))
	}
}

func (s *AllianceServer) GetDashboard(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[service.Dashboard], error) {
	d, err := s.dashboard.Dashboard(ctx)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(d), nil
}

func (s *AllianceServer) ListPlayers(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[PlayersResponse], error) {
	players, err := s.roster.List(ctx)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&PlayersResponse{Players: players}), nil
}

func (s *AllianceServer) RecognizeLineup(ctx context.Context, req *connect.Request[ImageRequest]) (*connect.Response[domain.LineupRecognition], error) {
	lineup, err := s.roster.RecognizeLineup(ctx, req.Msg.Image)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&lineup), nil
}

func (s *AllianceServer) ConfirmLineup(ctx context.Context, req *connect.Request[domain.LineupRecognition]) (*connect.Response[PlayersResponse], error) {
	players, err := s.roster.ConfirmLineup(ctx, *req.Msg)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&PlayersResponse{Players: players}), nil
}

func (s *AllianceServer) GrantTrust(ctx context.Context, req *connect.Request[PlayerRequest]) (*connect.Response[PlayerResponse], error) {
	player, err := s.roster.GrantTrust(ctx, req.Msg.PlayerID)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&PlayerResponse{Player: *player}), nil
}

func (s *AllianceServer) UpdateProfile(ctx context.Context, req *connect.Request[UpdateProfileRequest]) (*connect.Response[PlayerResponse], error) {
	player, err := s.roster.UpdateProfile(ctx, req.Msg.PlayerID, req.Msg.Nickname, req.Msg.Backstory)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&PlayerResponse{Player: *player}), nil
}

func (s *AllianceServer) UploadMatch(ctx context.Context, req *connect.Request[ImageRequest]) (*connect.Response[service.Draft], error) {
	draft, err := s.matches.Upload(ctx, req.Msg.Image)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&draft), nil
}

func (s *AllianceServer) ConfirmMatch(ctx context.Context, req *connect.Request[DraftRequest]) (*connect.Response[service.MatchOutcome], error) {
	outcome, err := s.matches.Confirm(ctx, req.Msg.DraftID)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(outcome), nil
}

func (s *AllianceServer) CancelMatch(ctx context.Context, req *connect.Request[DraftRequest]) (*connect.Response[Empty], error) {
	if err := s.matches.Cancel(ctx, req.Msg.DraftID); err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&Empty{}), nil
}

func (s *AllianceServer) ListMatchHistory(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[MatchHistoryResponse], error) {
	matches, err := s.matches.History(ctx)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&MatchHistoryResponse{Matches: matches}), nil
}

func (s *AllianceServer) ListPosts(ctx context.Context, req *connect.Request[ListPostsRequest]) (*connect.Response[PostsResponse], error) {
	posts, err := s.forum.List(ctx, req.Msg.Limit)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(&PostsResponse{Posts: posts}), nil
}

func (s *AllianceServer) ReplyPost(ctx context.Context, req *connect.Request[ReplyPostRequest]) (*connect.Response[service.PostUpdate], error) {
	update, err := s.forum.Reply(ctx, req.Msg.PostID, req.Msg.Content)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(update), nil
}

func (s *AllianceServer) LikePost(ctx context.Context, req *connect.Request[PostRequest]) (*connect.Response[service.PostUpdate], error) {
	update, err := s.forum.Like(ctx, req.Msg.PostID)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(update), nil
}

func (s *AllianceServer) DislikePost(ctx context.Context, req *connect.Request[PostRequest]) (*connect.Response[service.PostUpdate], error) {
	update, err := s.forum.Dislike(ctx, req.Msg.PostID)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	return connect.NewResponse(update), nil
}

// ResetLeague wipes everything and answers with the freshly seeded dashboard.
func (s *AllianceServer) ResetLeague(ctx context.Context, _ *connect.Request[Empty]) (*connect.Response[service.Dashboard], error) {
	if err := s.dashboard.Reset(ctx); err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	d, err := s.dashboard.Dashboard(ctx)
	if err != nil {
		return nil, s.toConnectError(ctx, err)
	}
	s.log(ctx).Info().Msg("league reset")
	return connect.NewResponse(d), nil
}
