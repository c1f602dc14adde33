package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/utulok/shelter-backend/pkg/enums"
)

// Dog is a single adoption listing owned by a shelter. ImageURL mirrors
// the newest attachment so list endpoints avoid a join.
type Dog struct {
	ID          uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShelterID   uuid.UUID        `gorm:"column:shelter_id;type:uuid;not null;index"`
	Name        string           `gorm:"column:name;not null"`
	Breed       *string          `gorm:"column:breed"`
	AgeMonths   *int             `gorm:"column:age_months"`
	Gender      *enums.DogGender `gorm:"column:gender;type:dog_gender"`
	Size        *string          `gorm:"column:size"`
	Description *string          `gorm:"column:description"`
	Traits      pq.StringArray   `gorm:"column:traits;type:text[]"`
	Status      enums.DogStatus  `gorm:"column:status;type:dog_status;not null;default:'available'"`
	ImageURL    *string          `gorm:"column:image_url"`
	CreatedAt   time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
