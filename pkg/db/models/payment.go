package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/utulok/shelter-backend/pkg/enums"
)

// Payment is one row in the billing ledger. ProviderPaymentID is the
// checkout session identifier and is unique so provider redeliveries
// cannot duplicate rows.
type Payment struct {
	ID                uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	UserID            uuid.UUID             `gorm:"column:user_id;type:uuid;not null;index"`
	ShelterID         *uuid.UUID            `gorm:"column:shelter_id;type:uuid;index"`
	Provider          enums.PaymentProvider `gorm:"column:provider;type:payment_provider;not null;default:'stripe'"`
	ProviderPaymentID string                `gorm:"column:provider_payment_id;not null;unique"`
	Purpose           enums.PaymentPurpose  `gorm:"column:purpose;type:payment_purpose;not null"`
	Status            enums.PaymentStatus   `gorm:"column:status;type:payment_status;not null;default:'pending'"`
	AmountCents       int64                 `gorm:"column:amount_cents;not null"`
	Currency          string                `gorm:"column:currency;not null;default:'usd'"`
	CreatedAt         time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
