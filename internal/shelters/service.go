package shelters

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/enums"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/pagination"
)

type userRoleUpdater interface {
	UpdateRole(ctx context.Context, id uuid.UUID, role string) error
}

type billingReader interface {
	SumSucceededDonations(ctx context.Context, shelterID uuid.UUID) (decimal.Decimal, error)
	LatestSubscriptionForShelter(ctx context.Context, shelterID uuid.UUID) (*models.Subscription, error)
}

type dogCounter interface {
	CountByStatus(ctx context.Context, shelterID uuid.UUID) (map[enums.DogStatus]int64, error)
}

// ServiceParams wires the shelter service dependencies.
type ServiceParams struct {
	Repo        *Repository
	UserRepo    userRoleUpdater
	BillingRepo billingReader
	DogRepo     dogCounter
}

// Service implements shelter profile management and dashboards.
type Service struct {
	repo        *Repository
	userRepo    userRoleUpdater
	billingRepo billingReader
	dogRepo     dogCounter
}

// NewService validates dependencies and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shelter repo required")
	}
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repo required")
	}
	if params.BillingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "billing repo required")
	}
	if params.DogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "dog repo required")
	}
	return &Service{
		repo:        params.Repo,
		userRepo:    params.UserRepo,
		billingRepo: params.BillingRepo,
		dogRepo:     params.DogRepo,
	}, nil
}

// Create registers a shelter profile for the owner and promotes their
// role. The profile starts inactive until billing confirms payment.
func (s *Service) Create(ctx context.Context, ownerID uuid.UUID, dto CreateShelterDTO) (*models.Shelter, error) {
	existing, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "look up shelter")
	}
	if existing != nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "user already owns a shelter")
	}

	shelter := dto.ToModel(ownerID)
	if err := s.repo.Create(ctx, shelter); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create shelter")
	}

	if err := s.userRepo.UpdateRole(ctx, ownerID, string(enums.UserRoleShelter)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "promote shelter owner")
	}

	return shelter, nil
}

// GetPublic returns an active shelter by id. Inactive shelters are not
// distinguishable from missing ones.
func (s *Service) GetPublic(ctx context.Context, id uuid.UUID) (*models.Shelter, error) {
	shelter, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shelter not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shelter")
	}
	if !shelter.Active {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shelter not found")
	}
	return shelter, nil
}

// GetOwn returns the caller's shelter regardless of active state.
func (s *Service) GetOwn(ctx context.Context, ownerID uuid.UUID) (*models.Shelter, error) {
	shelter, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shelter")
	}
	if shelter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shelter not found")
	}
	return shelter, nil
}

// Update applies a partial profile update to the caller's shelter.
func (s *Service) Update(ctx context.Context, ownerID uuid.UUID, dto UpdateShelterDTO) (*models.Shelter, error) {
	shelter, err := s.GetOwn(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	dto.Apply(shelter)
	if err := s.repo.Update(ctx, shelter); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shelter")
	}
	return shelter, nil
}

// List returns active shelters for the public directory.
func (s *Service) List(ctx context.Context, city *string, params pagination.Params) ([]models.Shelter, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	result, next, err := s.repo.List(ctx, ListQuery{
		OnlyActive: true,
		City:       city,
		Limit:      params.Limit,
		Cursor:     cursor,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shelters")
	}
	return result, next, nil
}

// Dashboard aggregates billing and listing state for the owner view.
type Dashboard struct {
	Shelter            *models.Shelter           `json:"shelter"`
	DonationTotal      decimal.Decimal           `json:"donation_total"`
	DogCounts          map[enums.DogStatus]int64 `json:"dog_counts"`
	SubscriptionStatus *enums.SubscriptionStatus `json:"subscription_status,omitempty"`
}

// GetDashboard builds the owner dashboard for the caller's shelter.
func (s *Service) GetDashboard(ctx context.Context, ownerID uuid.UUID) (*Dashboard, error) {
	shelter, err := s.GetOwn(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	total, err := s.billingRepo.SumSucceededDonations(ctx, shelter.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum donations")
	}

	counts, err := s.dogRepo.CountByStatus(ctx, shelter.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count dogs")
	}

	dashboard := &Dashboard{
		Shelter:       shelter,
		DonationTotal: total,
		DogCounts:     counts,
	}

	sub, err := s.billingRepo.LatestSubscriptionForShelter(ctx, shelter.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	if sub != nil {
		status := sub.Status
		dashboard.SubscriptionStatus = &status
	}

	return dashboard, nil
}
