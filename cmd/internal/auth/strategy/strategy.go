package strategy

import (
	"context"
	"net/http"

	"warden/cmd/identity"
)

// Strategy is what a request gate needs from an authentication scheme.
type Strategy interface {
	RequiresAuth(path string) bool
	AuthorizationHeader(r *http.Request) (string, bool)
	SessionCookie(r *http.Request) (string, bool)
	Identify(ctx context.Context, r *http.Request) (identity.User, bool)
}

// SessionStrategy is a Strategy that can also manage sessions.
type SessionStrategy interface {
	Strategy
	CookieName() string
	CreateSession(ctx context.Context, userID string) (string, bool)
	ResolveSession(ctx context.Context, sessionID string) (string, bool)
	DestroySession(ctx context.Context, r *http.Request) bool
}
