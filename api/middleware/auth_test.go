package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	pkgAuth "github.com/utulok/shelter-backend/pkg/auth"
	"github.com/utulok/shelter-backend/pkg/enums"
	"github.com/utulok/shelter-backend/pkg/logger"
)

func newTestVerifier() *pkgAuth.TokenIssuer {
	return pkgAuth.NewTokenIssuer("secret", "shelter-api", "shelter-frontend", time.Hour)
}

func testMiddlewareLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func TestAuth_SeedsContextFromClaims(t *testing.T) {
	issuer := newTestVerifier()
	userID := uuid.New()
	shelterID := uuid.New()
	token, err := issuer.Issue(userID, &shelterID, enums.UserRoleShelter, time.Now().UTC())
	require.NoError(t, err)

	var gotUser, gotRole, gotShelter string
	handler := Auth(issuer, testMiddlewareLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFromContext(r.Context())
		gotRole = RoleFromContext(r.Context())
		gotShelter = ShelterIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, userID.String(), gotUser)
	require.Equal(t, string(enums.UserRoleShelter), gotRole)
	require.Equal(t, shelterID.String(), gotShelter)
}

func TestAuth_RejectsMissingOrBadTokens(t *testing.T) {
	issuer := newTestVerifier()
	handler := Auth(issuer, testMiddlewareLogger())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	cases := map[string]string{
		"no header":    "",
		"empty bearer": "Bearer   ",
		"garbage":      "Bearer not.a.token",
	}
	for name, header := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code, name)
	}
}

func TestRequireRole(t *testing.T) {
	issuer := newTestVerifier()
	adminToken, err := issuer.Issue(uuid.New(), nil, enums.UserRolePlatformAdmin, time.Now().UTC())
	require.NoError(t, err)
	userToken, err := issuer.Issue(uuid.New(), nil, enums.UserRoleUser, time.Now().UTC())
	require.NoError(t, err)

	logg := testMiddlewareLogger()
	handler := Auth(issuer, logg)(
		RequireRole(logg, string(enums.UserRolePlatformAdmin))(
			http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			})))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/admin/v1/users", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusForbidden, rec.Code)
}
