package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// League metrics
var (
	// MatchesConfirmed counts committed matches by result
	MatchesConfirmed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "misfit_matches_confirmed_total",
			Help: "Confirmed matches by result",
		},
		[]string{"result"},
	)

	// Hostility mirrors the last persisted community hostility
	Hostility = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "misfit_community_hostility",
			Help: "Current community hostility in [0,1]",
		},
	)

	RedemptionDelta = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "misfit_redemption_delta",
			Help:    "Redemption score change applied per player per match",
			Buckets: []float64{-8, -5, 0, 10, 15, 22, 25, 37},
		},
	)

	// ForumActions counts coach interactions by kind (reply/like/dislike)
	ForumActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "misfit_forum_actions_total",
			Help: "Forum interactions by kind",
		},
		[]string{"kind"},
	)
)

// Collaborator metrics
var (
	// CollaboratorFallbacks counts AI calls answered by the local fallback
	CollaboratorFallbacks = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "misfit_collaborator_fallbacks_total",
			Help: "AI collaborator calls served by the fallback, by operation",
		},
		[]string{"operation"},
	)

	// CollaboratorDuration tracks upstream chat completion latency in seconds
	CollaboratorDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "misfit_collaborator_duration_seconds",
			Help:    "Upstream AI call duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"operation"},
	)

	// ProxyRequests counts passthrough calls by the status returned to the caller
	ProxyRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "misfit_ai_proxy_requests_total",
			Help: "AI passthrough requests by response status code",
		},
		[]string{"code"},
	)

	// CircuitBreakerStateChanges tracks circuit breaker state transitions
	CircuitBreakerStateChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_changes_total",
			Help: "Circuit breaker state transitions by component and new state",
		},
		[]string{"component", "state"},
	)

	// CircuitBreakerState tracks current circuit breaker state (0=closed, 1=half-open, 2=open)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Current circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"component"},
	)
)
