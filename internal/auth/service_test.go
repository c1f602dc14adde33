package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/utulok/shelter-backend/internal/users"
	pkgAuth "github.com/utulok/shelter-backend/pkg/auth"
	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/enums"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/security"
)

func TestRegister_CreatesUserAndIssuesTokens(t *testing.T) {
	store := newStubUserStore()
	svc, tokens := buildAuthService(t, store, &stubShelterLookup{})

	result, err := svc.Register(context.Background(), RegisterDTO{
		Email:    "  Ada@Example.COM ",
		Password: "correct-horse-battery",
		Name:     "Ada",
	})
	require.NoError(t, err)

	// Email is normalized before storage.
	require.NotNil(t, store.byEmail["ada@example.com"])
	require.Equal(t, enums.UserRoleUser, result.User.Role)
	require.NotEmpty(t, result.Tokens.AccessToken)
	require.NotEmpty(t, result.Tokens.RefreshToken)
	require.EqualValues(t, (30 * time.Minute).Seconds(), result.Tokens.ExpiresIn)

	claims, err := tokens.Verify(result.Tokens.AccessToken)
	require.NoError(t, err)
	require.Equal(t, result.User.ID, claims.UserID)
	require.Equal(t, enums.UserRoleUser, claims.Role)
	require.Nil(t, claims.ShelterID)
}

func TestRegister_DuplicateEmailConflicts(t *testing.T) {
	store := newStubUserStore()
	store.add(&models.User{ID: uuid.New(), Email: "taken@example.com", Role: enums.UserRoleUser})
	svc, _ := buildAuthService(t, store, &stubShelterLookup{})

	_, err := svc.Register(context.Background(), RegisterDTO{
		Email:    "Taken@example.com",
		Password: "irrelevant-password",
		Name:     "Dup",
	})
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestLogin_Succeeds(t *testing.T) {
	password := "swordfish-swordfish"
	store := newStubUserStore()
	user := &models.User{
		ID:           uuid.New(),
		Email:        "fin@example.com",
		PasswordHash: mustHash(t, password),
		Name:         "Fin",
		Role:         enums.UserRoleUser,
	}
	store.add(user)
	svc, _ := buildAuthService(t, store, &stubShelterLookup{})

	result, err := svc.Login(context.Background(), LoginDTO{Email: user.Email, Password: password})
	require.NoError(t, err)
	require.Equal(t, user.ID, result.User.ID)
	require.NotNil(t, result.User.LastLoginAt)
	require.NotEmpty(t, result.Tokens.RefreshToken)
}

func TestLogin_InvalidCredentialsIndistinguishable(t *testing.T) {
	store := newStubUserStore()
	store.add(&models.User{
		ID:           uuid.New(),
		Email:        "real@example.com",
		PasswordHash: mustHash(t, "the-real-password"),
		Role:         enums.UserRoleUser,
	})
	svc, _ := buildAuthService(t, store, &stubShelterLookup{})

	_, wrongPassword := svc.Login(context.Background(), LoginDTO{Email: "real@example.com", Password: "wrong"})
	_, unknownEmail := svc.Login(context.Background(), LoginDTO{Email: "ghost@example.com", Password: "wrong"})

	require.Error(t, wrongPassword)
	require.Error(t, unknownEmail)
	require.Equal(t, pkgerrors.As(wrongPassword).Message(), pkgerrors.As(unknownEmail).Message())
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(wrongPassword).Code())
	require.Equal(t, pkgerrors.CodeUnauthorized, pkgerrors.As(unknownEmail).Code())
}

func TestLogin_ShelterOwnerGetsShelterClaim(t *testing.T) {
	password := "kennel-keeper-pass"
	shelterID := uuid.New()
	store := newStubUserStore()
	user := &models.User{
		ID:           uuid.New(),
		Email:        "owner@example.com",
		PasswordHash: mustHash(t, password),
		Role:         enums.UserRoleShelter,
	}
	store.add(user)
	svc, tokens := buildAuthService(t, store, &stubShelterLookup{
		byOwner: map[uuid.UUID]*models.Shelter{
			user.ID: {ID: shelterID, OwnerID: user.ID, Name: "Paws"},
		},
	})

	result, err := svc.Login(context.Background(), LoginDTO{Email: user.Email, Password: password})
	require.NoError(t, err)
	require.NotNil(t, result.User.ShelterID)
	require.Equal(t, shelterID, *result.User.ShelterID)

	claims, err := tokens.Verify(result.Tokens.AccessToken)
	require.NoError(t, err)
	require.NotNil(t, claims.ShelterID)
	require.Equal(t, shelterID, *claims.ShelterID)
}

func TestRefresh_RotatesSession(t *testing.T) {
	store := newStubUserStore()
	user := &models.User{ID: uuid.New(), Email: "rot@example.com", Role: enums.UserRoleUser}
	store.add(user)
	svc, _ := buildAuthService(t, store, &stubShelterLookup{})

	sessions := svc.sessions.(*stubSessions)
	token, err := sessions.Issue(context.Background(), user.ID)
	require.NoError(t, err)

	result, err := svc.Refresh(context.Background(), RefreshDTO{RefreshToken: token})
	require.NoError(t, err)
	require.NotEmpty(t, result.Tokens.RefreshToken)
	require.NotEqual(t, token, result.Tokens.RefreshToken)

	// The rotated-out token no longer resolves.
	_, err = svc.Refresh(context.Background(), RefreshDTO{RefreshToken: token})
	require.Error(t, err)
}

func TestLogout_RequiresToken(t *testing.T) {
	svc, _ := buildAuthService(t, newStubUserStore(), &stubShelterLookup{})
	err := svc.Logout(context.Background(), "   ")
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func buildAuthService(t *testing.T, store *stubUserStore, shelters *stubShelterLookup) (*Service, *pkgAuth.TokenIssuer) {
	t.Helper()
	tokens := pkgAuth.NewTokenIssuer("test-secret", "shelter-api", "shelter-frontend", 30*time.Minute)
	svc, err := NewService(ServiceParams{
		UserRepo:    store,
		ShelterRepo: shelters,
		Hasher:      security.NewPasswordHasher(security.DefaultHashParams()),
		Tokens:      tokens,
		Sessions:    newStubSessions(),
	})
	require.NoError(t, err)
	return svc, tokens
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := security.NewPasswordHasher(security.DefaultHashParams()).Hash(password)
	require.NoError(t, err)
	return hash
}

type stubUserStore struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
}

func newStubUserStore() *stubUserStore {
	return &stubUserStore{
		byEmail: map[string]*models.User{},
		byID:    map[uuid.UUID]*models.User{},
	}
}

func (s *stubUserStore) add(user *models.User) {
	s.byEmail[strings.ToLower(user.Email)] = user
	s.byID[user.ID] = user
}

func (s *stubUserStore) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	user := &models.User{
		ID:           uuid.New(),
		Email:        strings.ToLower(dto.Email),
		PasswordHash: dto.PasswordHash,
		Name:         dto.Name,
		Role:         dto.Role,
		CreatedAt:    time.Now().UTC(),
	}
	s.add(user)
	return user, nil
}

func (s *stubUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserStore) UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	if user, ok := s.byID[id]; ok {
		user.LastLoginAt = &at
	}
	return nil
}

type stubShelterLookup struct {
	byOwner map[uuid.UUID]*models.Shelter
}

func (s *stubShelterLookup) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) (*models.Shelter, error) {
	return s.byOwner[ownerID], nil
}

type stubSessions struct {
	tokens map[string]uuid.UUID
}

func newStubSessions() *stubSessions {
	return &stubSessions{tokens: map[string]uuid.UUID{}}
}

func (s *stubSessions) Issue(ctx context.Context, userID uuid.UUID) (string, error) {
	token := "rt_" + uuid.NewString()
	s.tokens[token] = userID
	return token, nil
}

func (s *stubSessions) Rotate(ctx context.Context, token string) (uuid.UUID, string, error) {
	userID, ok := s.tokens[token]
	if !ok {
		return uuid.Nil, "", pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")
	}
	delete(s.tokens, token)
	next, err := s.Issue(ctx, userID)
	if err != nil {
		return uuid.Nil, "", err
	}
	return userID, next, nil
}

func (s *stubSessions) Revoke(ctx context.Context, token string) error {
	delete(s.tokens, token)
	return nil
}
