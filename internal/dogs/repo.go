package dogs

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/enums"
	"github.com/utulok/shelter-backend/pkg/pagination"
)

// Repository exposes dog listing persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a dogs repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new dog listing.
func (r *Repository) Create(ctx context.Context, dog *models.Dog) error {
	return r.db.WithContext(ctx).Create(dog).Error
}

// FindByID loads a dog by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Dog, error) {
	var dog models.Dog
	if err := r.db.WithContext(ctx).First(&dog, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dog, nil
}

// Update persists all fields of the dog.
func (r *Repository) Update(ctx context.Context, dog *models.Dog) error {
	return r.db.WithContext(ctx).Save(dog).Error
}

// Delete removes the dog. Attachments cascade at the database level.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Dog{}, "id = ?", id).Error
}

// SetImageURL mirrors the newest attachment URL onto the listing.
func (r *Repository) SetImageURL(ctx context.Context, id uuid.UUID, url *string) error {
	return r.db.WithContext(ctx).
		Model(&models.Dog{}).
		Where("id = ?", id).
		UpdateColumn("image_url", url).Error
}

// ListQuery configures dog list queries.
type ListQuery struct {
	ShelterID      *uuid.UUID
	Status         *enums.DogStatus
	Breed          *string
	OnlyActiveOrgs bool
	Limit          int
	Cursor         *pagination.Cursor
}

// List returns dogs newest-first with cursor pagination. When
// OnlyActiveOrgs is set, listings of inactive shelters are hidden.
func (r *Repository) List(ctx context.Context, params ListQuery) ([]models.Dog, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Dog{})
	if params.OnlyActiveOrgs {
		query = query.Where("shelter_id IN (?)",
			r.db.Model(&models.Shelter{}).Select("id").Where("active"))
	}
	if params.ShelterID != nil {
		query = query.Where("shelter_id = ?", *params.ShelterID)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Breed != nil {
		query = query.Where("LOWER(breed) = LOWER(?)", *params.Breed)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var result []models.Dog
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

// CountByStatus tallies a shelter's listings per adoption status.
func (r *Repository) CountByStatus(ctx context.Context, shelterID uuid.UUID) (map[enums.DogStatus]int64, error) {
	type row struct {
		Status enums.DogStatus
		Count  int64
	}
	var rows []row
	if err := r.db.WithContext(ctx).
		Model(&models.Dog{}).
		Select("status, COUNT(*) AS count").
		Where("shelter_id = ?", shelterID).
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := map[enums.DogStatus]int64{}
	for _, r := range rows {
		counts[r.Status] = r.Count
	}
	return counts, nil
}
