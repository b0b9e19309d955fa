package domain

import "errors"

var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrPostNotFound   = errors.New("post not found")
	ErrDraftNotFound  = errors.New("match draft not found or expired")
	ErrInvalidImage   = errors.New("invalid image")
	ErrEmptyReply     = errors.New("reply content is empty")
	ErrEmptyLineup    = errors.New("lineup has no players")
)
