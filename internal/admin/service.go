package admin

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/utulok/shelter-backend/internal/billing"
	"github.com/utulok/shelter-backend/internal/shelters"
	"github.com/utulok/shelter-backend/internal/users"
	"github.com/utulok/shelter-backend/pkg/db/models"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/pagination"
)

// ServiceParams wires the admin service dependencies.
type ServiceParams struct {
	UserRepo    *users.Repository
	ShelterRepo *shelters.Repository
	BillingRepo billing.Repository
}

// Service backs the platform-admin surface. It reads across tenants
// and can force a shelter's visibility regardless of billing state.
type Service struct {
	userRepo    *users.Repository
	shelterRepo *shelters.Repository
	billingRepo billing.Repository
}

// NewService validates dependencies and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.UserRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "user repo required")
	}
	if params.ShelterRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shelter repo required")
	}
	if params.BillingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "billing repo required")
	}
	return &Service{
		userRepo:    params.UserRepo,
		shelterRepo: params.ShelterRepo,
		billingRepo: params.BillingRepo,
	}, nil
}

// ListUsers pages through every account.
func (s *Service) ListUsers(ctx context.Context, params pagination.Params) ([]models.User, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	result, next, err := s.userRepo.List(ctx, params.Limit, cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list users")
	}
	return result, next, nil
}

// ListShelters pages through every shelter, inactive included.
func (s *Service) ListShelters(ctx context.Context, params pagination.Params) ([]models.Shelter, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	result, next, err := s.shelterRepo.List(ctx, shelters.ListQuery{
		Limit:  params.Limit,
		Cursor: cursor,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list shelters")
	}
	return result, next, nil
}

// SetShelterActive overrides a shelter's visibility flag. The next
// billing event will reassert the billing-derived state.
func (s *Service) SetShelterActive(ctx context.Context, shelterID uuid.UUID, active bool) (*models.Shelter, error) {
	shelter, err := s.shelterRepo.FindByID(ctx, shelterID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shelter not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shelter")
	}

	if shelter.Active != active {
		shelter.Active = active
		if err := s.shelterRepo.Update(ctx, shelter); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shelter")
		}
	}
	return shelter, nil
}

// ListPayments pages through the full payment ledger.
func (s *Service) ListPayments(ctx context.Context, query billing.ListPaymentsQuery, params pagination.Params) ([]models.Payment, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	query.Limit = params.Limit
	query.Cursor = cursor

	result, next, err := s.billingRepo.ListPayments(ctx, query)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list payments")
	}
	return result, next, nil
}
