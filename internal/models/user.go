package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID             uuid.UUID `json:"id"`
	Provider       string    `json:"provider"`
	ProviderUserID string    `json:"-"`
	Username       string    `json:"username"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	Email          *string   `json:"email,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

type CreateUserParams struct {
	Provider       string
	ProviderUserID string
	Username       string
	AvatarURL      *string
	Email          *string
}
