package strategy

import (
	"context"
	"net/http"

	"warden/cmd/identity"
	"warden/cmd/internal/auth/credential"
)

// Basic identifies users from an Authorization: Basic header.
type Basic struct {
	Base
	users  identity.Finder
	verify credential.VerifyFunc
}

// NewBasic returns a Basic strategy looking users up in users and checking
// secrets with verify.
func NewBasic(base Base, users identity.Finder, verify credential.VerifyFunc) *Basic {
	return &Basic{Base: base, users: users, verify: verify}
}

// Identify decodes the header and verifies the secret against every user
// sharing the identifier.
func (s *Basic) Identify(ctx context.Context, r *http.Request) (identity.User, bool) {
	header, ok := s.AuthorizationHeader(r)
	if !ok {
		return identity.User{}, false
	}
	cred, ok := credential.Decode(header)
	if !ok {
		return identity.User{}, false
	}
	return credential.ResolveUser(ctx, cred, s.users, s.verify)
}
