package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/utulok/shelter-backend/internal/users"
	pkgAuth "github.com/utulok/shelter-backend/pkg/auth"
	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/enums"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/security"
)

type shelterLookup interface {
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) (*models.Shelter, error)
}

type userStore interface {
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

type sessionManager interface {
	Issue(ctx context.Context, userID uuid.UUID) (string, error)
	Rotate(ctx context.Context, token string) (uuid.UUID, string, error)
	Revoke(ctx context.Context, token string) error
}

// ServiceParams wires the auth service dependencies.
type ServiceParams struct {
	UserRepo    userStore
	ShelterRepo shelterLookup
	Hasher      *security.PasswordHasher
	Tokens      *pkgAuth.TokenIssuer
	Sessions    sessionManager
}

// Service implements account registration and credential flows.
type Service struct {
	userRepo    userStore
	shelterRepo shelterLookup
	hasher      *security.PasswordHasher
	tokens      *pkgAuth.TokenIssuer
	sessions    sessionManager
}

// NewService validates dependencies and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repo required")
	}
	if params.ShelterRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shelter repo required")
	}
	if params.Hasher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "password hasher required")
	}
	if params.Tokens == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "token issuer required")
	}
	if params.Sessions == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "session manager required")
	}
	return &Service{
		userRepo:    params.UserRepo,
		shelterRepo: params.ShelterRepo,
		hasher:      params.Hasher,
		tokens:      params.Tokens,
		sessions:    params.Sessions,
	}, nil
}

// Register creates an account and signs the user in.
func (s *Service) Register(ctx context.Context, dto RegisterDTO) (*AuthResult, error) {
	email := strings.ToLower(strings.TrimSpace(dto.Email))

	if existing, err := s.userRepo.FindByEmail(ctx, email); err == nil && existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
	} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up email")
	}

	hash, err := s.hasher.Hash(dto.Password)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.Create(ctx, users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		Name:         dto.Name,
		Role:         enums.UserRoleUser,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}

	return s.issueTokens(ctx, user)
}

// Login verifies credentials and issues a fresh token pair. Invalid
// email and invalid password are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, dto.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up user")
	}

	ok, err := s.hasher.Verify(dto.Password, user.PasswordHash)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid credentials")
	}

	now := time.Now().UTC()
	if err := s.userRepo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record login")
	}
	user.LastLoginAt = &now

	return s.issueTokens(ctx, user)
}

// Refresh rotates the refresh token and mints a new access token.
func (s *Service) Refresh(ctx context.Context, dto RefreshDTO) (*AuthResult, error) {
	userID, nextToken, err := s.sessions.Rotate(ctx, dto.RefreshToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "session user missing")
	}

	shelterID, err := s.shelterIDFor(ctx, user)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.Issue(user.ID, shelterID, user.Role, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User: NewUserView(user, shelterID),
		Tokens: TokenPair{
			AccessToken:  access,
			RefreshToken: nextToken,
			ExpiresIn:    int64(s.tokens.TTL().Seconds()),
		},
	}, nil
}

// Logout revokes the presented refresh token.
func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "refresh token required")
	}
	return s.sessions.Revoke(ctx, refreshToken)
}

// Me returns the authenticated user's profile.
func (s *Service) Me(ctx context.Context, userID uuid.UUID) (*UserView, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}

	shelterID, err := s.shelterIDFor(ctx, user)
	if err != nil {
		return nil, err
	}

	view := NewUserView(user, shelterID)
	return &view, nil
}

func (s *Service) issueTokens(ctx context.Context, user *models.User) (*AuthResult, error) {
	shelterID, err := s.shelterIDFor(ctx, user)
	if err != nil {
		return nil, err
	}

	access, err := s.tokens.Issue(user.ID, shelterID, user.Role, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	refresh, err := s.sessions.Issue(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &AuthResult{
		User: NewUserView(user, shelterID),
		Tokens: TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
			ExpiresIn:    int64(s.tokens.TTL().Seconds()),
		},
	}, nil
}

func (s *Service) shelterIDFor(ctx context.Context, user *models.User) (*uuid.UUID, error) {
	if user.Role != enums.UserRoleShelter {
		return nil, nil
	}
	shelter, err := s.shelterRepo.FindByOwnerID(ctx, user.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shelter")
	}
	if shelter == nil {
		return nil, nil
	}
	id := shelter.ID
	return &id, nil
}
