package authapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"warden/cmd/internal/auth/strategy"
)

// Gate outcomes.
const (
	OutcomePublic        = "public"
	OutcomeUnauthorized  = "unauthorized"
	OutcomeForbidden     = "forbidden"
	OutcomeAuthenticated = "authenticated"
	OutcomeOpen          = "open"
)

// Metrics counts gate decisions and session operations.
type Metrics struct {
	Decisions  *prometheus.CounterVec
	SessionOps *prometheus.CounterVec
}

// NewMetrics registers the counters with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Decisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warden",
			Name:      "auth_decisions_total",
			Help:      "Authentication gate decisions by outcome.",
		}, []string{"outcome"}),
		SessionOps: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "warden",
			Name:      "session_ops_total",
			Help:      "Session operations by kind and result.",
		}, []string{"op", "result"}),
	}
}

// SessionObserver feeds session outcomes into SessionOps.
func (m *Metrics) SessionObserver() strategy.Observer {
	if m == nil {
		return nil
	}
	return func(op, result string) {
		m.SessionOps.WithLabelValues(op, result).Inc()
	}
}

func (m *Metrics) decision(outcome string) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(outcome).Inc()
}
