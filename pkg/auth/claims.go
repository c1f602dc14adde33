package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/utulok/shelter-backend/pkg/enums"
)

// Claims is the access-token payload. ShelterID is set only for users
// who own a shelter profile.
type Claims struct {
	UserID    uuid.UUID      `json:"uid"`
	ShelterID *uuid.UUID     `json:"sid,omitempty"`
	Role      enums.UserRole `json:"role"`
	jwt.RegisteredClaims
}
