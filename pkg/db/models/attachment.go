package models

import (
	"time"

	"github.com/google/uuid"
)

// Attachment is an uploaded image tied to a dog listing.
type Attachment struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	DogID       uuid.UUID `gorm:"column:dog_id;type:uuid;not null;index"`
	URL         string    `gorm:"column:url;not null"`
	FileName    string    `gorm:"column:file_name;not null"`
	ContentType string    `gorm:"column:content_type;not null"`
	SizeBytes   int64     `gorm:"column:size_bytes;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
}
