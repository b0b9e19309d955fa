package server

import "misfit-alliance/internal/domain"

type Empty struct{}

// ImageRequest carries a screenshot as a data URL or bare base64.
type ImageRequest struct {
	Image string `json:"image"`
}

type PlayerRequest struct {
	PlayerID string `json:"playerId"`
}

type UpdateProfileRequest struct {
	PlayerID  string `json:"playerId"`
	Nickname  string `json:"nickname"`
	Backstory string `json:"backstory"`
}

type DraftRequest struct {
	DraftID string `json:"draftId"`
}

type ListPostsRequest struct {
	Limit int `json:"limit"`
}

type PostRequest struct {
	PostID string `json:"postId"`
}

type ReplyPostRequest struct {
	PostID  string `json:"postId"`
	Content string `json:"content"`
}

type PlayerResponse struct {
	Player domain.Player `json:"player"`
}

type PlayersResponse struct {
	Players []domain.Player `json:"players"`
}

type MatchHistoryResponse struct {
	Matches []domain.MatchSummary `json:"matches"`
}

type PostsResponse struct {
	Posts []domain.ForumPost `json:"posts"`
}
