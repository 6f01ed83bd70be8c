package handlers

import (
	"context"

	"github.com/shadowdreamer/drawwat/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// WithUser attaches the authenticated user to the context. The auth
// middleware is the only production caller.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// GetUserFromContext returns the authenticated user, or nil for anonymous
// requests.
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(userContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
