package handlers

import (
	"context"

	"github.com/iudanet/medrecords/internal/models"
)

// contextKey is the type of request context keys owned by this package.
type contextKey string

const userKey contextKey = "user"

// WithUser returns ctx carrying the authenticated identity.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the identity stored by the auth middleware.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok && user != nil
}
