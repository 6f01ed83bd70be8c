package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shadowdreamer/drawwat/internal/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
)

const usernameCacheTTL = 10 * time.Minute

// UserService resolves provider identities to internal users. Username
// lookups run through a Redis-backed cache with a TTL so display-name
// resolution stays bounded instead of living in process-wide state.
type UserService struct {
	db    DB
	cache RedisClient
}

func NewUserService(db DB, cache RedisClient) *UserService {
	return &UserService{db: db, cache: cache}
}

// UpsertFromProvider finds or creates the user for a provider identity.
// Repeated logins refresh username, avatar, and email from the provider.
func (s *UserService) UpsertFromProvider(ctx context.Context, params models.CreateUserParams) (*models.User, error) {
	provider := strings.TrimSpace(params.Provider)
	subject := strings.TrimSpace(params.ProviderUserID)
	if provider == "" || subject == "" {
		return nil, fmt.Errorf("provider and subject are required")
	}
	username := strings.TrimSpace(params.Username)
	if username == "" {
		username = provider + ":" + subject
	}

	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`INSERT INTO users (provider, provider_user_id, username, avatar_url, email)
		 VALUES ($1, $2, $3, $4, $5)
		 ON CONFLICT (provider, provider_user_id)
		 DO UPDATE SET username = EXCLUDED.username,
		               avatar_url = EXCLUDED.avatar_url,
		               email = COALESCE(EXCLUDED.email, users.email)
		 RETURNING id, provider, provider_user_id, username, avatar_url, email, created_at`,
		provider, subject, username, params.AvatarURL, params.Email,
	).Scan(&user.ID, &user.Provider, &user.ProviderUserID, &user.Username,
		&user.AvatarURL, &user.Email, &user.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("upserting user: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, usernameCacheKey(user.ID), user.Username, usernameCacheTTL); err != nil {
			// Cache failures never fail the login.
			_ = err
		}
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user := &models.User{}
	err := s.db.QueryRow(ctx,
		`SELECT id, provider, provider_user_id, username, avatar_url, email, created_at
		 FROM users WHERE id = $1`,
		userID,
	).Scan(&user.ID, &user.Provider, &user.ProviderUserID, &user.Username,
		&user.AvatarURL, &user.Email, &user.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting user: %w", err)
	}
	return user, nil
}

// ResolveUsername returns the display name for a user id, consulting the
// cache first and falling back to the database on a miss.
func (s *UserService) ResolveUsername(ctx context.Context, userID uuid.UUID) (string, error) {
	if s.cache != nil {
		if username, err := s.cache.Get(ctx, usernameCacheKey(userID)); err == nil && username != "" {
			return username, nil
		}
	}

	var username string
	err := s.db.QueryRow(ctx, "SELECT username FROM users WHERE id = $1", userID).Scan(&username)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("resolving username: %w", err)
	}

	if s.cache != nil {
		_ = s.cache.Set(ctx, usernameCacheKey(userID), username, usernameCacheTTL)
	}
	return username, nil
}

func usernameCacheKey(userID uuid.UUID) string {
	return "username:" + userID.String()
}
