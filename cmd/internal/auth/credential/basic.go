package credential

import (
	"context"
	"encoding/base64"
	"strings"
	"unicode/utf8"

	"warden/cmd/identity"
)

// SchemeBasic is the literal prefix of a Basic header, trailing space included.
const SchemeBasic = "Basic "

// Credential is an identifier/secret pair decoded from a request.
// It is never stored.
type Credential struct {
	Identifier string
	Secret     string
}

// VerifyFunc reports whether plaintext matches a stored hash.
type VerifyFunc func(plaintext, hash string) bool

// StripScheme returns the token after "Basic ".
func StripScheme(header string) (string, bool) {
	if !strings.HasPrefix(header, SchemeBasic) {
		return "", false
	}
	return header[len(SchemeBasic):], true
}

// DecodeBase64 decodes token with the standard alphabet and requires UTF-8 output.
func DecodeBase64(token string) (string, bool) {
	raw, err := base64.StdEncoding.Strict().DecodeString(token)
	if err != nil {
		return "", false
	}
	if !utf8.Valid(raw) {
		return "", false
	}
	return string(raw), true
}

// SplitCredentials splits on the first ':'. The secret may contain more colons.
func SplitCredentials(plaintext string) (Credential, bool) {
	id, secret, ok := strings.Cut(plaintext, ":")
	if !ok {
		return Credential{}, false
	}
	return Credential{Identifier: id, Secret: secret}, true
}

// Decode runs StripScheme, DecodeBase64 and SplitCredentials in order.
func Decode(header string) (Credential, bool) {
	token, ok := StripScheme(header)
	if !ok {
		return Credential{}, false
	}
	plain, ok := DecodeBase64(token)
	if !ok {
		return Credential{}, false
	}
	return SplitCredentials(plain)
}

// EncodeBasic builds an Authorization header value for id and secret.
func EncodeBasic(id, secret string) string {
	return SchemeBasic + base64.StdEncoding.EncodeToString([]byte(id+":"+secret))
}

// ResolveUser looks up every user with the credential's identifier and
// returns the first whose hash verifies. Lookup errors resolve to no user.
func ResolveUser(ctx context.Context, cred Credential, finder identity.Finder, verify VerifyFunc) (identity.User, bool) {
	if finder == nil || verify == nil || cred.Identifier == "" {
		return identity.User{}, false
	}

	users, err := finder.FindByEmail(ctx, cred.Identifier)
	if err != nil {
		return identity.User{}, false
	}
	for _, u := range users {
		if verify(cred.Secret, u.PasswordHash) {
			return u, true
		}
	}
	return identity.User{}, false
}
