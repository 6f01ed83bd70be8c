package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/shadowdreamer/drawwat/internal/handlers"
	"github.com/shadowdreamer/drawwat/internal/models"
)

type fakeSessions struct {
	userID uuid.UUID
	err    error
	token  string
}

func (s *fakeSessions) GetSession(ctx context.Context, token string) (uuid.UUID, error) {
	s.token = token
	if s.err != nil {
		return uuid.Nil, s.err
	}
	return s.userID, nil
}

type fakeUsers struct {
	user *models.User
	err  error
}

func (u *fakeUsers) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if u.err != nil {
		return nil, u.err
	}
	return u.user, nil
}

func contextUserRecorder(captured **models.User) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*captured = handlers.GetUserFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthenticator_ValidToken(t *testing.T) {
	userID := uuid.New()
	sessions := &fakeSessions{userID: userID}
	users := &fakeUsers{user: &models.User{ID: userID, Username: "alice"}}
	auth := NewAuthenticator(sessions, users)

	var got *models.User
	req := httptest.NewRequest(http.MethodGet, "/api/user/me", nil)
	req.Header.Set("Authorization", "Bearer abc123")
	rr := httptest.NewRecorder()
	auth.Middleware(contextUserRecorder(&got)).ServeHTTP(rr, req)

	if sessions.token != "abc123" {
		t.Fatalf("expected token abc123, got %q", sessions.token)
	}
	if got == nil || got.ID != userID {
		t.Fatalf("expected context user %v, got %+v", userID, got)
	}
}

func TestAuthenticator_NoHeader(t *testing.T) {
	auth := NewAuthenticator(&fakeSessions{}, &fakeUsers{})

	var got *models.User
	req := httptest.NewRequest(http.MethodGet, "/api/puzzles", nil)
	rr := httptest.NewRecorder()
	auth.Middleware(contextUserRecorder(&got)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("anonymous request must pass through, got %d", rr.Code)
	}
	if got != nil {
		t.Fatalf("expected anonymous context, got %+v", got)
	}
}

func TestAuthenticator_InvalidToken(t *testing.T) {
	sessions := &fakeSessions{err: errors.New("session not found")}
	auth := NewAuthenticator(sessions, &fakeUsers{})

	var got *models.User
	req := httptest.NewRequest(http.MethodGet, "/api/puzzles", nil)
	req.Header.Set("Authorization", "Bearer expired")
	rr := httptest.NewRecorder()
	auth.Middleware(contextUserRecorder(&got)).ServeHTTP(rr, req)

	if rr.Code != http.StatusOK || got != nil {
		t.Fatalf("invalid token must fall back to anonymous, code=%d user=%+v", rr.Code, got)
	}
}

func TestAuthenticator_MalformedHeader(t *testing.T) {
	sessions := &fakeSessions{userID: uuid.New()}
	auth := NewAuthenticator(sessions, &fakeUsers{})

	var got *models.User
	req := httptest.NewRequest(http.MethodGet, "/api/puzzles", nil)
	req.Header.Set("Authorization", "Token abc123")
	rr := httptest.NewRecorder()
	auth.Middleware(contextUserRecorder(&got)).ServeHTTP(rr, req)

	if sessions.token != "" {
		t.Fatalf("malformed header must not reach the session store, got %q", sessions.token)
	}
	if got != nil {
		t.Fatalf("expected anonymous context, got %+v", got)
	}
}
