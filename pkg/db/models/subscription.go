package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/utulok/shelter-backend/pkg/enums"
)

// Subscription mirrors provider subscription state per shelter.
// ProviderSubscriptionID is unique so webhook redeliveries upsert the
// same row instead of inserting duplicates.
type Subscription struct {
	ID                     uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ShelterID              uuid.UUID                `gorm:"column:shelter_id;type:uuid;not null;index"`
	Provider               enums.PaymentProvider    `gorm:"column:provider;type:payment_provider;not null;default:'stripe'"`
	ProviderSubscriptionID string                   `gorm:"column:provider_subscription_id;not null;unique"`
	Status                 enums.SubscriptionStatus `gorm:"column:status;type:subscription_status;not null;default:'active'"`
	PriceID                *string                  `gorm:"column:price_id"`
	StartAt                time.Time                `gorm:"column:start_at;not null"`
	CanceledAt             *time.Time               `gorm:"column:canceled_at"`
	CreatedAt              time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
