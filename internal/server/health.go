package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
)

const healthTimeout = 2 * time.Second

// Health reports liveness plus a database ping.
type Health struct {
	db    *sql.DB
	clock clockwork.Clock
	start time.Time
}

func NewHealth(db *sql.DB, clock clockwork.Clock) *Health {
	return &Health{db: db, clock: clock, start: clock.Now()}
}

func (h *Health) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := h.db.PingContext(ctx); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":       "unhealthy",
			"failed_check": "sqlite",
			"error":        err.Error(),
		})
		return
	}

	_ = json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"uptime": h.clock.Since(h.start).Seconds(),
	})
}
