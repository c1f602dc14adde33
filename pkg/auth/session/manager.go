package session

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/redis"
)

// refreshTokenBytes is the entropy of an opaque refresh token.
const refreshTokenBytes = 32

// Manager issues and rotates opaque refresh tokens backed by Redis.
// Only a SHA-256 digest of the token is stored server-side.
type Manager struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewManager builds a session manager with the given refresh token TTL.
func NewManager(client *redis.Client, ttl time.Duration) *Manager {
	return &Manager{redis: client, ttl: ttl}
}

// Issue creates a new refresh token for a user and stores its digest.
func (m *Manager) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	raw := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(raw); err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, err, "failed to generate refresh token")
	}
	token := hex.EncodeToString(raw)

	if err := m.redis.Set(ctx, m.key(token), userID.String(), m.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Resolve returns the user a refresh token belongs to.
func (m *Manager) Resolve(ctx context.Context, token string) (uuid.UUID, error) {
	value, found, err := m.redis.Get(ctx, m.key(token))
	if err != nil {
		return uuid.Nil, err
	}
	if !found {
		return uuid.Nil, apperrors.New(apperrors.CodeUnauthorized, "refresh token is invalid or expired")
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, apperrors.Wrap(apperrors.CodeInternal, err, "corrupt session record")
	}
	return userID, nil
}

// Rotate invalidates the presented token and issues a replacement for
// the same user. Reuse of a rotated token fails resolution.
func (m *Manager) Rotate(ctx context.Context, token string) (uuid.UUID, string, error) {
	userID, err := m.Resolve(ctx, token)
	if err != nil {
		return uuid.Nil, "", err
	}
	if err := m.Revoke(ctx, token); err != nil {
		return uuid.Nil, "", err
	}
	next, err := m.Issue(ctx, userID)
	if err != nil {
		return uuid.Nil, "", err
	}
	return userID, next, nil
}

// Revoke deletes a refresh token.
func (m *Manager) Revoke(ctx context.Context, token string) error {
	return m.redis.Del(ctx, m.key(token))
}

func (m *Manager) key(token string) string {
	digest := sha256.Sum256([]byte(token))
	return m.redis.Key("session", hex.EncodeToString(digest[:]))
}
