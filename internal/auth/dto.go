package auth

import (
	"time"

	"github.com/google/uuid"

	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/enums"
)

// RegisterDTO carries the signup payload.
type RegisterDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=128"`
	Name     string `json:"name" validate:"required,min=2,max=120"`
}

// LoginDTO carries the login payload.
type LoginDTO struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshDTO carries a refresh token exchange.
type RefreshDTO struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// UserView is the public shape of an account.
type UserView struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	Name        string         `json:"name"`
	Role        enums.UserRole `json:"role"`
	ShelterID   *uuid.UUID     `json:"shelter_id,omitempty"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// NewUserView maps a user model and optional shelter to the public shape.
func NewUserView(user *models.User, shelterID *uuid.UUID) UserView {
	return UserView{
		ID:          user.ID,
		Email:       user.Email,
		Name:        user.Name,
		Role:        user.Role,
		ShelterID:   shelterID,
		LastLoginAt: user.LastLoginAt,
		CreatedAt:   user.CreatedAt,
	}
}

// TokenPair is returned by login and refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// AuthResult bundles the authenticated user with fresh tokens.
type AuthResult struct {
	User   UserView  `json:"user"`
	Tokens TokenPair `json:"tokens"`
}
