package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/shadowdreamer/drawwat/internal/models"
	"github.com/shadowdreamer/drawwat/internal/services"
)

type stubProvider struct {
	name   services.Provider
	claims services.IdentityClaims
	err    error
}

func (p *stubProvider) Provider() services.Provider { return p.name }

func (p *stubProvider) Exchange(_ context.Context, code string) (services.IdentityClaims, error) {
	if p.err != nil {
		return services.IdentityClaims{}, p.err
	}
	return p.claims, nil
}

func newAuthHandler(users services.UserServiceInterface, sessions services.AuthServiceInterface, provider *stubProvider) *AuthHandler {
	providers := map[services.Provider]services.OAuthProvider{}
	if provider != nil {
		providers[provider.name] = provider
	}
	return NewAuthHandler(users, sessions, providers)
}

func TestAuthHandler_Login_UnknownProvider(t *testing.T) {
	handler := newAuthHandler(&mockUserService{}, &mockAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/github", bytes.NewBufferString(`{"code":"x"}`))
	req.SetPathValue("provider", "github")
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestAuthHandler_Login_MissingCode(t *testing.T) {
	provider := &stubProvider{name: services.ProviderGitHub}
	handler := newAuthHandler(&mockUserService{}, &mockAuthService{}, provider)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/github", bytes.NewBufferString(`{"code":" "}`))
	req.SetPathValue("provider", "github")
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	assertErrorResponse(t, rr, http.StatusBadRequest, "Authorization code is required")
}

func TestAuthHandler_Login_RejectedCode(t *testing.T) {
	provider := &stubProvider{name: services.ProviderGitHub, err: errors.New("bad code")}
	handler := newAuthHandler(&mockUserService{}, &mockAuthService{}, provider)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/github", bytes.NewBufferString(`{"code":"x"}`))
	req.SetPathValue("provider", "github")
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	assertErrorResponse(t, rr, http.StatusUnauthorized, "Authorization code rejected")
}

func TestAuthHandler_Login_IssuesSession(t *testing.T) {
	userID := uuid.New()
	provider := &stubProvider{
		name: services.ProviderGitHub,
		claims: services.IdentityClaims{
			Provider:  services.ProviderGitHub,
			Subject:   "42",
			Username:  "alice",
			AvatarURL: "https://avatars.example.com/42",
		},
	}

	var gotParams models.CreateUserParams
	users := &mockUserService{
		UpsertFromProviderFunc: func(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
			gotParams = params
			return &models.User{ID: userID, Provider: params.Provider, Username: params.Username}, nil
		},
	}
	sessions := &mockAuthService{
		CreateSessionFunc: func(ctx context.Context, gotUserID uuid.UUID) (string, error) {
			if gotUserID != userID {
				t.Fatalf("expected user %v, got %v", userID, gotUserID)
			}
			return "session-token", nil
		},
	}
	handler := newAuthHandler(users, sessions, provider)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/github", bytes.NewBufferString(`{"code":"good"}`))
	req.SetPathValue("provider", "github")
	rr := httptest.NewRecorder()
	handler.Login(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if gotParams.Provider != "github" || gotParams.ProviderUserID != "42" {
		t.Fatalf("unexpected upsert params: %+v", gotParams)
	}
	if gotParams.AvatarURL == nil || *gotParams.AvatarURL != "https://avatars.example.com/42" {
		t.Fatalf("unexpected avatar: %v", gotParams.AvatarURL)
	}
	if gotParams.Email != nil {
		t.Fatalf("absent email must stay nil, got %v", gotParams.Email)
	}

	var resp LoginResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "session-token" || resp.User == nil || resp.User.ID != userID {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	var deletedToken string
	sessions := &mockAuthService{
		DeleteSessionFunc: func(ctx context.Context, token string) error {
			deletedToken = token
			return nil
		},
	}
	handler := newAuthHandler(&mockUserService{}, sessions, nil)

	req := authedRequest(http.MethodPost, "/api/auth/logout", nil, &models.User{ID: uuid.New()})
	req.Header.Set("Authorization", "Bearer session-token")
	rr := httptest.NewRecorder()
	handler.Logout(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if deletedToken != "session-token" {
		t.Fatalf("expected session deleted, got %q", deletedToken)
	}
}

func TestAuthHandler_Logout_RequiresAuth(t *testing.T) {
	handler := newAuthHandler(&mockUserService{}, &mockAuthService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/logout", nil)
	rr := httptest.NewRecorder()
	handler.Logout(rr, req)

	assertErrorResponse(t, rr, http.StatusUnauthorized, "Authentication required")
}
