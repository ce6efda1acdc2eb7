package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for gameplay and sessions.
type Metrics struct {
	RoundsStarted    prometheus.Counter
	Guesses          *prometheus.CounterVec
	HighScoreUpdates prometheus.Counter
	SessionsCreated  prometheus.Counter
	SessionsJoined   prometheus.Counter
	PoolLoadFailures prometheus.Counter
}

// NewMetrics registers gameplay counters on the default registry.
func NewMetrics() *Metrics {
	return &Metrics{
		RoundsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wanderwhiz_rounds_started_total",
			Help: "Rounds started across all players.",
		}),
		Guesses: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "wanderwhiz_guesses_total",
			Help: "Guesses submitted, labeled by outcome.",
		}, []string{"outcome"}),
		HighScoreUpdates: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wanderwhiz_high_score_updates_total",
			Help: "High score writes that raised a stored best.",
		}),
		SessionsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wanderwhiz_sessions_created_total",
			Help: "Multiplayer sessions created.",
		}),
		SessionsJoined: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wanderwhiz_sessions_joined_total",
			Help: "Multiplayer session joins.",
		}),
		PoolLoadFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "wanderwhiz_pool_load_failures_total",
			Help: "Destination pool loads that failed.",
		}),
	}
}
