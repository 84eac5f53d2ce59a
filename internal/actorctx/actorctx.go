package actorctx

import (
	"context"

	"github.com/geocoder89/taskhub/internal/domain/user"
)

type ctxKey struct{}

// WithUser binds the authenticated user to ctx for the rest of the request.
func WithUser(ctx context.Context, u user.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func UserFrom(ctx context.Context) (user.User, bool) {
	u, ok := ctx.Value(ctxKey{}).(user.User)

	return u, ok && u.ID != ""
}

func UserIDFrom(ctx context.Context) (string, bool) {
	u, ok := UserFrom(ctx)

	return u.ID, ok
}
