package billing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/enums"
	"github.com/utulok/shelter-backend/pkg/pagination"
)

// Repository handles payment and subscription persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository

	CreatePayment(ctx context.Context, payment *models.Payment) error
	FindPaymentByProviderID(ctx context.Context, providerPaymentID string) (*models.Payment, error)
	MarkPaymentIfPending(ctx context.Context, providerPaymentID string, status enums.PaymentStatus) (bool, error)
	ListPayments(ctx context.Context, params ListPaymentsQuery) ([]models.Payment, *pagination.Cursor, error)
	SumSucceededDonations(ctx context.Context, shelterID uuid.UUID) (decimal.Decimal, error)

	CreateSubscription(ctx context.Context, subscription *models.Subscription) error
	UpdateSubscription(ctx context.Context, subscription *models.Subscription) error
	FindSubscriptionByProviderID(ctx context.Context, providerSubscriptionID string) (*models.Subscription, error)
	ListSubscriptionsByShelter(ctx context.Context, shelterID uuid.UUID) ([]models.Subscription, error)
	LatestSubscriptionForShelter(ctx context.Context, shelterID uuid.UUID) (*models.Subscription, error)
}

type repository struct {
	db *gorm.DB
}

// ListPaymentsQuery configures payment list queries.
type ListPaymentsQuery struct {
	UserID    *uuid.UUID
	ShelterID *uuid.UUID
	Purpose   *enums.PaymentPurpose
	Status    *enums.PaymentStatus
	Limit     int
	Cursor    *pagination.Cursor
}

// NewRepository returns a billing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) FindPaymentByProviderID(ctx context.Context, providerPaymentID string) (*models.Payment, error) {
	if providerPaymentID == "" {
		return nil, nil
	}
	var payment models.Payment
	if err := r.db.WithContext(ctx).
		Where("provider_payment_id = ?", providerPaymentID).
		First(&payment).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &payment, nil
}

// MarkPaymentIfPending flips a pending payment into a terminal status.
// The WHERE clause guards terminal rows, so a redelivered event can
// never reverse succeeded or failed.
func (r *repository) MarkPaymentIfPending(ctx context.Context, providerPaymentID string, status enums.PaymentStatus) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("provider_payment_id = ? AND status = ?", providerPaymentID, enums.PaymentStatusPending).
		Update("status", status)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) ListPayments(ctx context.Context, params ListPaymentsQuery) ([]models.Payment, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(params.Limit)
	query := r.db.WithContext(ctx).Model(&models.Payment{})
	if params.UserID != nil {
		query = query.Where("user_id = ?", *params.UserID)
	}
	if params.ShelterID != nil {
		query = query.Where("shelter_id = ?", *params.ShelterID)
	}
	if params.Purpose != nil {
		query = query.Where("purpose = ?", *params.Purpose)
	}
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.Cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", params.Cursor.CreatedAt, params.Cursor.ID)
	}

	var payments []models.Payment
	if err := query.Order("created_at DESC, id DESC").Limit(pagination.LimitWithBuffer(limit)).Find(&payments).Error; err != nil {
		return nil, nil, err
	}

	if len(payments) > limit {
		next := payments[limit]
		payments = payments[:limit]
		return payments, &pagination.Cursor{
			CreatedAt: next.CreatedAt,
			ID:        next.ID,
		}, nil
	}

	return payments, nil, nil
}

func (r *repository) SumSucceededDonations(ctx context.Context, shelterID uuid.UUID) (decimal.Decimal, error) {
	var totalCents int64
	err := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("shelter_id = ? AND purpose = ? AND status = ?",
			shelterID, enums.PaymentPurposeDonation, enums.PaymentStatusSucceeded).
		Select("COALESCE(SUM(amount_cents), 0)").
		Scan(&totalCents).Error
	if err != nil {
		return decimal.Zero, err
	}
	return decimal.NewFromInt(totalCents).Div(decimal.NewFromInt(100)), nil
}

func (r *repository) CreateSubscription(ctx context.Context, subscription *models.Subscription) error {
	return r.db.WithContext(ctx).Create(subscription).Error
}

func (r *repository) UpdateSubscription(ctx context.Context, subscription *models.Subscription) error {
	return r.db.WithContext(ctx).Save(subscription).Error
}

func (r *repository) FindSubscriptionByProviderID(ctx context.Context, providerSubscriptionID string) (*models.Subscription, error) {
	if providerSubscriptionID == "" {
		return nil, nil
	}
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Where("provider_subscription_id = ?", providerSubscriptionID).
		First(&sub).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) ListSubscriptionsByShelter(ctx context.Context, shelterID uuid.UUID) ([]models.Subscription, error) {
	var subs []models.Subscription
	if err := r.db.WithContext(ctx).
		Where("shelter_id = ?", shelterID).
		Order("created_at DESC").
		Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repository) LatestSubscriptionForShelter(ctx context.Context, shelterID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Where("shelter_id = ?", shelterID).
		Order("created_at DESC").
		First(&sub).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

// StartAtOrNow returns the subscription period start reported by the
// provider, falling back to the current time.
func StartAtOrNow(at *time.Time) time.Time {
	if at != nil && !at.IsZero() {
		return at.UTC()
	}
	return time.Now().UTC()
}
