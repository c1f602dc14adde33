package models

import (
	"time"

	"github.com/google/uuid"
)

// Shelter is the organization profile a shelter-role user manages.
// Active gates public visibility and is driven by billing state.
type Shelter struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID     uuid.UUID `gorm:"column:owner_id;type:uuid;not null;unique"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	City        *string   `gorm:"column:city"`
	Country     *string   `gorm:"column:country"`
	Phone       *string   `gorm:"column:phone"`
	Email       *string   `gorm:"column:email"`
	Website     *string   `gorm:"column:website"`
	LogoURL     *string   `gorm:"column:logo_url"`
	Active      bool      `gorm:"column:active;not null;default:false"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
