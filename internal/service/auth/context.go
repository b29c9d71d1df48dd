package auth

import (
	"context"

	"github.com/talkeasy/backend/internal/model/user"
)

type ctxKey struct{}

// WithUser stores the authenticated user on ctx.
func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

// UserFromContext returns the user stored by WithUser.
func UserFromContext(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(user.User)
	return u, ok
}
