package authapi

import (
	"context"

	"warden/cmd/identity"
)

type userContextKeyType struct{}

var userKey = userContextKeyType{}

// UserFromContext returns the user the gate identified for this request.
func UserFromContext(ctx context.Context) (identity.User, bool) {
	u, ok := ctx.Value(userKey).(identity.User)
	return u, ok
}

func withUser(ctx context.Context, u identity.User) context.Context {
	return context.WithValue(ctx, userKey, u)
}
