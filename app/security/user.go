package security

import (
	"context"
	"log/slog"
)

type User struct {
	Name        string
	IsAnonymous bool
}

var (
	Anonymous = User{Name: `extranet\Anonymous`, IsAnonymous: true}
	System    = User{Name: `sitecore\Admin`}
)

type userKey struct{}

func WithUser(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext returns the identity carried by ctx, System when none is set.
func UserFromContext(ctx context.Context) User {
	if user, ok := ctx.Value(userKey{}).(User); ok {
		return user
	}
	return System
}

// RunAs executes fn with user as the current identity. The caller's context is
// never modified, so its identity applies again as soon as fn returns or panics.
func RunAs(ctx context.Context, user User, fn func(ctx context.Context) error) error {
	slog.Debug("Switching user", "from", UserFromContext(ctx).Name, "to", user.Name)
	return fn(WithUser(ctx, user))
}
