package shelters

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/pagination"
)

// Repository exposes shelter persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a shelters repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new shelter profile.
func (r *Repository) Create(ctx context.Context, shelter *models.Shelter) error {
	return r.db.WithContext(ctx).Create(shelter).Error
}

// FindByID loads a shelter by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Shelter, error) {
	var shelter models.Shelter
	if err := r.db.WithContext(ctx).First(&shelter, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shelter, nil
}

// FindByOwnerID loads the shelter owned by the given user, nil when the
// user owns none.
func (r *Repository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) (*models.Shelter, error) {
	var shelter models.Shelter
	if err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		First(&shelter).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &shelter, nil
}

// Update persists all fields of the shelter.
func (r *Repository) Update(ctx context.Context, shelter *models.Shelter) error {
	return r.db.WithContext(ctx).Save(shelter).Error
}

// ListQuery configures shelter list queries.
type ListQuery struct {
	OnlyActive bool
	City       *string
	Limit      int
	Cursor     *pagination.Cursor
}

// List returns shelters newest-first with cursor pagination.
func (r *Repository) List(ctx context.Context, params ListQuery) ([]models.Shelter, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Shelter{})
	if params.OnlyActive {
		query = query.Where("active")
	}
	if params.City != nil {
		query = query.Where("LOWER(city) = LOWER(?)", *params.City)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var result []models.Shelter
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&result).Error; err != nil {
		return nil, nil, err
	}

	if len(result) > limit {
		next := result[limit]
		result = result[:limit]
		return result, &pagination.Cursor{
			CreatedAt: next.CreatedAt,
			ID:        next.ID,
		}, nil
	}

	return result, nil, nil
}

// FindByIDWithTx loads a shelter inside an open transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Shelter, error) {
	var shelter models.Shelter
	if err := tx.First(&shelter, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &shelter, nil
}

// UpdateWithTx persists a shelter inside an open transaction.
func (r *Repository) UpdateWithTx(tx *gorm.DB, shelter *models.Shelter) error {
	return tx.Save(shelter).Error
}
