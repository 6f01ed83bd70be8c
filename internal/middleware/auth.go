package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/shadowdreamer/drawwat/internal/handlers"
	"github.com/shadowdreamer/drawwat/internal/models"
)

// SessionResolver resolves a bearer token to a user id.
type SessionResolver interface {
	GetSession(ctx context.Context, token string) (uuid.UUID, error)
}

// UserLoader loads the user record behind a session.
type UserLoader interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

// Authenticator resolves Authorization bearer tokens into a context user.
// Requests without a valid token pass through anonymous; endpoint handlers
// decide whether that is acceptable.
type Authenticator struct {
	sessions SessionResolver
	users    UserLoader
}

func NewAuthenticator(sessions SessionResolver, users UserLoader) *Authenticator {
	return &Authenticator{sessions: sessions, users: users}
}

func (a *Authenticator) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		userID, err := a.sessions.GetSession(r.Context(), token)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		user, err := a.users.GetByID(r.Context(), userID)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, r.WithContext(handlers.WithUser(r.Context(), user)))
	})
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
