package strategy

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/thejerf/abtime"

	"warden/cmd/identity"
	"warden/cmd/internal/auth/session"
)

// Observer is told the outcome of every session operation.
// op is "create", "resolve" or "destroy"; result is "ok", "miss",
// "expired" or "error".
type Observer func(op, result string)

// Option configures a Session strategy.
type Option func(*Session)

// WithClock sets the clock used to stamp and expire sessions.
func WithClock(c abtime.AbstractTime) Option {
	return func(s *Session) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithLogger sets the logger for unexpected backend failures.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.log = l
		}
	}
}

// WithObserver registers fn for session operation outcomes.
func WithObserver(fn Observer) Option {
	return func(s *Session) { s.observe = fn }
}

// Session identifies users from a session cookie.
type Session struct {
	Base
	backend session.Backend
	users   identity.Getter
	clock   abtime.AbstractTime
	log     *slog.Logger
	observe Observer
}

func newSession(base Base, users identity.Getter, opts []Option) *Session {
	s := &Session{
		Base:  base,
		users: users,
		clock: abtime.NewRealTime(),
		log:   slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// NewSession keeps sessions in memory with no expiry.
func NewSession(base Base, users identity.Getter, opts ...Option) *Session {
	s := newSession(base, users, opts)
	s.backend = session.NewMemoryStore(0)
	return s
}

// NewExpiringSession keeps sessions in memory and expires them after ttl.
func NewExpiringSession(base Base, users identity.Getter, ttl time.Duration, opts ...Option) *Session {
	s := newSession(base, users, opts)
	s.backend = session.NewExpiring(session.NewMemoryStore(0), ttl, s.clock)
	return s
}

// NewPersistedSession stores sessions through p and expires them after ttl.
func NewPersistedSession(base Base, users identity.Getter, ttl time.Duration, p session.Persistence, opts ...Option) *Session {
	s := newSession(base, users, opts)
	s.backend = session.NewExpiring(session.NewPersistent(p), ttl, s.clock)
	return s
}

// Backend returns the session backend in use.
func (s *Session) Backend() session.Backend { return s.backend }

// CreateSession starts a session for userID and returns its ID.
func (s *Session) CreateSession(ctx context.Context, userID string) (string, bool) {
	if userID == "" {
		s.record("create", "miss")
		return "", false
	}
	rec, err := s.backend.Create(ctx, s.clock.Now(), userID)
	if err != nil {
		s.log.Error("auth.session.create.fail", "err", err)
		s.record("create", "error")
		return "", false
	}
	s.record("create", "ok")
	return rec.SessionID, true
}

// ResolveSession returns the user ID bound to sessionID.
func (s *Session) ResolveSession(ctx context.Context, sessionID string) (string, bool) {
	if sessionID == "" {
		s.record("resolve", "miss")
		return "", false
	}
	rec, err := s.backend.Lookup(ctx, sessionID)
	switch {
	case err == nil:
		s.record("resolve", "ok")
		return rec.UserID, true
	case errors.Is(err, session.ErrSessionNotFound):
		s.record("resolve", "miss")
	case errors.Is(err, session.ErrSessionExpired):
		s.record("resolve", "expired")
	default:
		s.log.Error("auth.session.resolve.fail", "err", err)
		s.record("resolve", "error")
	}
	return "", false
}

// DestroySession ends the session named by the request's cookie.
func (s *Session) DestroySession(ctx context.Context, r *http.Request) bool {
	sid, ok := s.SessionCookie(r)
	if !ok || sid == "" {
		s.record("destroy", "miss")
		return false
	}
	removed, err := s.backend.Destroy(ctx, sid)
	if err != nil {
		s.log.Error("auth.session.destroy.fail", "err", err)
		s.record("destroy", "error")
		return false
	}
	if !removed {
		s.record("destroy", "miss")
		return false
	}
	s.record("destroy", "ok")
	return true
}

// Identify resolves the cookie to a session and the session to a user.
func (s *Session) Identify(ctx context.Context, r *http.Request) (identity.User, bool) {
	sid, ok := s.SessionCookie(r)
	if !ok {
		return identity.User{}, false
	}
	uid, ok := s.ResolveSession(ctx, sid)
	if !ok {
		return identity.User{}, false
	}
	if s.users == nil {
		return identity.User{}, false
	}
	u, err := s.users.GetByID(ctx, uid)
	if err != nil {
		if !identity.IsNotFound(err) {
			s.log.Error("auth.session.user.fail", "err", err)
		}
		return identity.User{}, false
	}
	return u, true
}

func (s *Session) record(op, result string) {
	if s.observe != nil {
		s.observe(op, result)
	}
}
