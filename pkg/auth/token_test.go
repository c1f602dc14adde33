package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/utulok/shelter-backend/pkg/enums"
)

func TestIssueAndVerify(t *testing.T) {
	issuer := NewTokenIssuer("secret", "shelter-api", "shelter-frontend", time.Hour)
	userID := uuid.New()
	shelterID := uuid.New()

	signed, err := issuer.Issue(userID, &shelterID, enums.UserRoleShelter, time.Now().UTC())
	require.NoError(t, err)

	claims, err := issuer.Verify(signed)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.NotNil(t, claims.ShelterID)
	require.Equal(t, shelterID, *claims.ShelterID)
	require.Equal(t, enums.UserRoleShelter, claims.Role)
	require.Equal(t, userID.String(), claims.Subject)
}

func TestVerify_Expired(t *testing.T) {
	issuer := NewTokenIssuer("secret", "shelter-api", "shelter-frontend", time.Minute)

	signed, err := issuer.Issue(uuid.New(), nil, enums.UserRoleUser, time.Now().UTC().Add(-2*time.Hour))
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	require.Error(t, err)
}

func TestVerify_WrongSecret(t *testing.T) {
	issuer := NewTokenIssuer("secret-a", "shelter-api", "shelter-frontend", time.Hour)
	other := NewTokenIssuer("secret-b", "shelter-api", "shelter-frontend", time.Hour)

	signed, err := issuer.Issue(uuid.New(), nil, enums.UserRoleUser, time.Now().UTC())
	require.NoError(t, err)

	_, err = other.Verify(signed)
	require.Error(t, err)
}

func TestVerify_IssuerAndAudienceChecked(t *testing.T) {
	issuer := NewTokenIssuer("secret", "shelter-api", "shelter-frontend", time.Hour)
	wrongIssuer := NewTokenIssuer("secret", "someone-else", "shelter-frontend", time.Hour)
	wrongAudience := NewTokenIssuer("secret", "shelter-api", "other-app", time.Hour)

	signed, err := issuer.Issue(uuid.New(), nil, enums.UserRoleUser, time.Now().UTC())
	require.NoError(t, err)

	_, err = wrongIssuer.Verify(signed)
	require.Error(t, err)

	_, err = wrongAudience.Verify(signed)
	require.Error(t, err)
}

func TestVerify_Garbage(t *testing.T) {
	issuer := NewTokenIssuer("secret", "shelter-api", "shelter-frontend", time.Hour)

	for _, raw := range []string{"", "not.a.jwt", "abc"} {
		_, err := issuer.Verify(raw)
		require.Error(t, err, "token %q", raw)
	}
}
