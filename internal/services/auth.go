package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const sessionTTL = 30 * 24 * time.Hour

var (
	ErrInvalidSession = errors.New("invalid session")
)

// AuthService issues and resolves opaque bearer tokens. Only a hash of the
// token is stored, so a leaked session store cannot be replayed.
type AuthService struct {
	store RedisClient
}

func NewAuthService(store RedisClient) *AuthService {
	return &AuthService{store: store}
}

// CreateSession mints a bearer token for the user.
func (s *AuthService) CreateSession(ctx context.Context, userID uuid.UUID) (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := s.store.Set(ctx, sessionKey(token), userID.String(), sessionTTL); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return token, nil
}

// GetSession resolves a bearer token to a user id, refreshing the TTL.
func (s *AuthService) GetSession(ctx context.Context, token string) (uuid.UUID, error) {
	if token == "" {
		return uuid.Nil, ErrInvalidSession
	}

	value, err := s.store.Get(ctx, sessionKey(token))
	if err != nil || value == "" {
		return uuid.Nil, ErrInvalidSession
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, ErrInvalidSession
	}

	_ = s.store.Expire(ctx, sessionKey(token), sessionTTL)
	return userID, nil
}

func (s *AuthService) DeleteSession(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.store.Del(ctx, sessionKey(token))
}

func sessionKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return "session:" + hex.EncodeToString(sum[:])
}
