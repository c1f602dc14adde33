package dogs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/enums"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/pagination"
)

type shelterReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shelter, error)
}

// ServiceParams wires the dog service dependencies.
type ServiceParams struct {
	Repo        *Repository
	ShelterRepo shelterReader
}

// Service implements dog listing management.
type Service struct {
	repo        *Repository
	shelterRepo shelterReader
}

// NewService validates dependencies and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "dog repo required")
	}
	if params.ShelterRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shelter repo required")
	}
	return &Service{
		repo:        params.Repo,
		shelterRepo: params.ShelterRepo,
	}, nil
}

// Create adds a listing under the caller's shelter.
func (s *Service) Create(ctx context.Context, shelterID uuid.UUID, dto CreateDogDTO) (*models.Dog, error) {
	dog := dto.ToModel(shelterID)
	if err := s.repo.Create(ctx, dog); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create dog")
	}
	return dog, nil
}

// GetPublic returns a dog only when its shelter is active.
func (s *Service) GetPublic(ctx context.Context, id uuid.UUID) (*models.Dog, error) {
	dog, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dog not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dog")
	}

	shelter, err := s.shelterRepo.FindByID(ctx, dog.ShelterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shelter")
	}
	if !shelter.Active {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dog not found")
	}
	return dog, nil
}

// GetOwned returns the dog when it belongs to the given shelter.
func (s *Service) GetOwned(ctx context.Context, shelterID, dogID uuid.UUID) (*models.Dog, error) {
	dog, err := s.repo.FindByID(ctx, dogID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "dog not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load dog")
	}
	if dog.ShelterID != shelterID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "dog belongs to another shelter")
	}
	return dog, nil
}

// Update applies a partial update to a listing owned by the shelter.
func (s *Service) Update(ctx context.Context, shelterID, dogID uuid.UUID, dto UpdateDogDTO) (*models.Dog, error) {
	dog, err := s.GetOwned(ctx, shelterID, dogID)
	if err != nil {
		return nil, err
	}

	dto.Apply(dog)
	if err := s.repo.Update(ctx, dog); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update dog")
	}
	return dog, nil
}

// Delete removes a listing owned by the shelter.
func (s *Service) Delete(ctx context.Context, shelterID, dogID uuid.UUID) error {
	if _, err := s.GetOwned(ctx, shelterID, dogID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, dogID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete dog")
	}
	return nil
}

// ListFilters narrows the public dog directory.
type ListFilters struct {
	ShelterID *uuid.UUID
	Status    *enums.DogStatus
	Breed     *string
}

// ListPublic returns listings from active shelters only.
func (s *Service) ListPublic(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Dog, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	result, next, err := s.repo.List(ctx, ListQuery{
		ShelterID:      filters.ShelterID,
		Status:         filters.Status,
		Breed:          filters.Breed,
		OnlyActiveOrgs: true,
		Limit:          params.Limit,
		Cursor:         cursor,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dogs")
	}
	return result, next, nil
}

// ListOwned returns all of a shelter's own listings, active or not.
func (s *Service) ListOwned(ctx context.Context, shelterID uuid.UUID, params pagination.Params) ([]models.Dog, *pagination.Cursor, error) {
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	result, next, err := s.repo.List(ctx, ListQuery{
		ShelterID: &shelterID,
		Limit:     params.Limit,
		Cursor:    cursor,
	})
	if err != nil {
		return nil, nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list dogs")
	}
	return result, next, nil
}
