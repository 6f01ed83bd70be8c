package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/shadowdreamer/drawwat/internal/models"
	"github.com/shadowdreamer/drawwat/internal/services"
)

// AuthHandler turns a provider OAuth code into a session token. The SPA
// performs the redirect dance itself and posts the resulting code here.
type AuthHandler struct {
	users     services.UserServiceInterface
	sessions  services.AuthServiceInterface
	providers map[string]services.OAuthProvider
}

func NewAuthHandler(users services.UserServiceInterface, sessions services.AuthServiceInterface, providers map[services.Provider]services.OAuthProvider) *AuthHandler {
	normalized := make(map[string]services.OAuthProvider, len(providers))
	for key, provider := range providers {
		normalized[strings.ToLower(string(key))] = provider
	}
	return &AuthHandler{users: users, sessions: sessions, providers: normalized}
}

type LoginRequest struct {
	Code string `json:"code"`
}

type LoginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[strings.ToLower(r.PathValue("provider"))]
	if !ok {
		http.NotFound(w, r)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if strings.TrimSpace(req.Code) == "" {
		writeError(w, http.StatusBadRequest, "Authorization code is required")
		return
	}

	claims, err := provider.Exchange(r.Context(), req.Code)
	if err != nil {
		log.Printf("Provider exchange failed: %v", err)
		writeError(w, http.StatusUnauthorized, "Authorization code rejected")
		return
	}

	params := models.CreateUserParams{
		Provider:       string(claims.Provider),
		ProviderUserID: claims.Subject,
		Username:       claims.Username,
	}
	if claims.AvatarURL != "" {
		params.AvatarURL = &claims.AvatarURL
	}
	if claims.Email != "" {
		params.Email = &claims.Email
	}

	user, err := h.users.UpsertFromProvider(r.Context(), params)
	if err != nil {
		log.Printf("Error upserting user: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	token, err := h.sessions.CreateSession(r.Context(), user.ID)
	if err != nil {
		log.Printf("Error creating session: %v", err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{Token: token, User: user})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 {
		if err := h.sessions.DeleteSession(r.Context(), strings.TrimSpace(parts[1])); err != nil {
			log.Printf("Error deleting session: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
