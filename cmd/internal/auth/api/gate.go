package authapi

import (
	"log/slog"
	"net/http"

	"warden/cmd/internal/auth/strategy"
)

// Gate enforces a strategy on every request it wraps.
type Gate struct {
	strategy strategy.Strategy
	log      *slog.Logger
	metrics  *Metrics
}

// NewGate returns a gate for s. A nil s lets every request through.
func NewGate(log *slog.Logger, s strategy.Strategy, m *Metrics) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{strategy: s, log: log, metrics: m}
}

// Wrap returns next behind the gate.
func (g *Gate) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if g == nil || g.strategy == nil {
			g.metrics.decision(OutcomeOpen)
			next.ServeHTTP(w, r)
			return
		}

		s := g.strategy
		if !s.RequiresAuth(r.URL.Path) {
			g.metrics.decision(OutcomePublic)
			next.ServeHTTP(w, r)
			return
		}

		_, hasHeader := s.AuthorizationHeader(r)
		_, hasCookie := s.SessionCookie(r)
		if !hasHeader && !hasCookie {
			g.metrics.decision(OutcomeUnauthorized)
			writeStatus(w, http.StatusUnauthorized)
			return
		}

		u, ok := s.Identify(r.Context(), r)
		if !ok {
			g.log.Info("auth.gate.forbidden", "path", r.URL.Path)
			g.metrics.decision(OutcomeForbidden)
			writeStatus(w, http.StatusForbidden)
			return
		}

		g.metrics.decision(OutcomeAuthenticated)
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), u)))
	})
}
