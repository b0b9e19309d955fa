package db

import (
	"database/sql"
	"time"
)

type Player struct {
	ID              string
	Name            string
	Nickname        string
	Backstory       string
	Position        string
	RedemptionScore int64
	TrustBonus      bool
	History         string
	RosterOrder     int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Post struct {
	ID        string
	Author    string
	Content   string
	Intensity string
	Likes     int64
	Dislikes  int64
	PlayerID  sql.NullString
	CreatedAt time.Time
}

type PostReply struct {
	ID        string
	PostID    string
	Author    string
	Content   string
	CreatedAt time.Time
}

type CommunityState struct {
	Key       string
	Value     string
	UpdatedAt time.Time
}

type MatchHistory struct {
	ID              string
	Result          string
	Score           string
	Possession      float64
	Players         string
	News            sql.NullString
	HostilityBefore float64
	HostilityAfter  float64
	PlayedAt        time.Time
}
