package constants

import "time"

const (
	ExternalAPITimeout = 60 * time.Second
	RequestTimeout     = 90 * time.Second
	ProxyTimeout       = 120 * time.Second
)

const (
	DBMaxOpenConns    = 1
	DBMaxIdleConns    = 1
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout   = 5 * time.Second
	ReadHeaderTimeout = 10 * time.Second
)

const (
	MaxImageBytes    = 10 * 1024 * 1024
	DefaultPostLimit = 50
	MaxPostLimit     = 200
	MaxReplyLength   = 500
)

const (
	BreakerFailureThreshold = 5
	BreakerSuccessThreshold = 1
	BreakerDelay            = 30 * time.Second
)
