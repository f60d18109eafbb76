package strategy

import (
	"context"
	"net/http"

	"warden/cmd/identity"
	"warden/cmd/internal/auth/credential"
	"warden/cmd/internal/auth/pathguard"
	"warden/cmd/internal/auth/session"
)

// Base gates paths and extracts credentials but identifies nobody.
type Base struct {
	guard      *pathguard.Guard
	cookieName string
}

// NewBase returns a Base excluding the given path patterns.
// An empty cookieName uses session.DefaultCookieName.
func NewBase(excluded []string, cookieName string) Base {
	if cookieName == "" {
		cookieName = session.DefaultCookieName
	}
	return Base{guard: pathguard.New(excluded...), cookieName: cookieName}
}

// RequiresAuth reports whether path is outside every exclusion.
func (b Base) RequiresAuth(path string) bool {
	return b.guard.RequiresAuth(path)
}

// AuthorizationHeader returns the raw Authorization header.
func (b Base) AuthorizationHeader(r *http.Request) (string, bool) {
	return credential.AuthorizationHeader(r)
}

// SessionCookie returns the session cookie value.
func (b Base) SessionCookie(r *http.Request) (string, bool) {
	return credential.SessionCookie(r, b.cookieName)
}

// CookieName returns the configured session cookie name.
func (b Base) CookieName() string { return b.cookieName }

// Identify always fails; a gate maps that to Forbidden.
func (Base) Identify(context.Context, *http.Request) (identity.User, bool) {
	return identity.User{}, false
}
