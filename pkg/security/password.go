package security

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"

	apperrors "github.com/utulok/shelter-backend/pkg/errors"
)

// HashParams tunes the argon2id key derivation.
type HashParams struct {
	Time    uint32
	Memory  uint32
	Threads uint8
	KeyLen  uint32
	SaltLen uint32
}

// DefaultHashParams is a reasonable interactive-login cost profile.
func DefaultHashParams() HashParams {
	return HashParams{
		Time:    3,
		Memory:  64 * 1024,
		Threads: 2,
		KeyLen:  32,
		SaltLen: 16,
	}
}

// PasswordHasher derives and verifies argon2id password hashes in the
// standard $argon2id$v=19$m=...,t=...,p=...$salt$hash encoding.
type PasswordHasher struct {
	params HashParams
}

// NewPasswordHasher builds a hasher. Zero fields fall back to defaults.
func NewPasswordHasher(params HashParams) *PasswordHasher {
	defaults := DefaultHashParams()
	if params.Time == 0 {
		params.Time = defaults.Time
	}
	if params.Memory == 0 {
		params.Memory = defaults.Memory
	}
	if params.Threads == 0 {
		params.Threads = defaults.Threads
	}
	if params.KeyLen == 0 {
		params.KeyLen = defaults.KeyLen
	}
	if params.SaltLen == 0 {
		params.SaltLen = defaults.SaltLen
	}
	return &PasswordHasher{params: params}
}

// Hash derives an encoded argon2id hash from a plaintext password.
func (h *PasswordHasher) Hash(password string) (string, error) {
	salt := make([]byte, h.params.SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", apperrors.Wrap(apperrors.CodeInternal, err, "failed to generate password salt")
	}

	key := argon2.IDKey([]byte(password), salt, h.params.Time, h.params.Memory, h.params.Threads, h.params.KeyLen)

	encoded := fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Time,
		h.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
	return encoded, nil
}

// Verify compares a plaintext password against an encoded hash in
// constant time. It returns false, nil for a mismatch and a non-nil
// error only when the stored hash is malformed.
func (h *PasswordHasher) Verify(password, encoded string) (bool, error) {
	params, salt, key, err := decodeHash(encoded)
	if err != nil {
		return false, err
	}

	candidate := argon2.IDKey([]byte(password), salt, params.Time, params.Memory, params.Threads, uint32(len(key)))
	return subtle.ConstantTimeCompare(candidate, key) == 1, nil
}

func decodeHash(encoded string) (HashParams, []byte, []byte, error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return HashParams{}, nil, nil, apperrors.New(apperrors.CodeInternal, "malformed password hash")
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return HashParams{}, nil, nil, apperrors.Wrap(apperrors.CodeInternal, err, "malformed password hash version")
	}
	if version != argon2.Version {
		return HashParams{}, nil, nil, apperrors.New(apperrors.CodeInternal, "unsupported password hash version")
	}

	var params HashParams
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &params.Memory, &params.Time, &params.Threads); err != nil {
		return HashParams{}, nil, nil, apperrors.Wrap(apperrors.CodeInternal, err, "malformed password hash parameters")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return HashParams{}, nil, nil, apperrors.Wrap(apperrors.CodeInternal, err, "malformed password hash salt")
	}
	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return HashParams{}, nil, nil, apperrors.Wrap(apperrors.CodeInternal, err, "malformed password hash key")
	}

	return params, salt, key, nil
}
