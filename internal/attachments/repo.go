package attachments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/utulok/shelter-backend/pkg/db/models"
)

// Repository exposes attachment persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an attachments repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new attachment row.
func (r *Repository) Create(ctx context.Context, attachment *models.Attachment) error {
	return r.db.WithContext(ctx).Create(attachment).Error
}

// FindByID loads an attachment by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := r.db.WithContext(ctx).First(&attachment, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attachment, nil
}

// ListByDog returns a dog's attachments newest-first.
func (r *Repository) ListByDog(ctx context.Context, dogID uuid.UUID) ([]models.Attachment, error) {
	var result []models.Attachment
	if err := r.db.WithContext(ctx).
		Where("dog_id = ?", dogID).
		Order("created_at DESC").
		Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// Newest returns the most recent attachment for a dog, nil when none.
func (r *Repository) Newest(ctx context.Context, dogID uuid.UUID) (*models.Attachment, error) {
	var attachment models.Attachment
	if err := r.db.WithContext(ctx).
		Where("dog_id = ?", dogID).
		Order("created_at DESC").
		First(&attachment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &attachment, nil
}

// Delete removes an attachment row.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.Attachment{}, "id = ?", id).Error
}
