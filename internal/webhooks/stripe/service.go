package stripewebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/utulok/shelter-backend/internal/billing"
	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/enums"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/logger"
)

const metadataShelterID = "shelter_id"

type shelterRepository interface {
	FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Shelter, error)
	UpdateWithTx(tx *gorm.DB, shelter *models.Shelter) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires the webhook reconciler dependencies.
type ServiceParams struct {
	BillingRepo       billing.Repository
	ShelterRepo       shelterRepository
	TransactionRunner txRunner
	Logger            *logger.Logger
}

// Service reconciles provider billing events into local payment,
// subscription, and shelter state. Every event is applied in a single
// transaction so partial effects never land.
type Service struct {
	billingRepo billing.Repository
	shelterRepo shelterRepository
	txRunner    txRunner
	logg        *logger.Logger
}

// NewService validates dependencies and builds the reconciler.
func NewService(params ServiceParams) (*Service, error) {
	if params.BillingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "billing repo required")
	}
	if params.ShelterRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shelter repo required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &Service{
		billingRepo: params.BillingRepo,
		shelterRepo: params.ShelterRepo,
		txRunner:    params.TransactionRunner,
		logg:        params.Logger,
	}, nil
}

// Handled reports whether the reconciler acts on the event type.
// Unhandled types are acknowledged without side effects.
func Handled(eventType stripe.EventType) bool {
	switch eventType {
	case stripe.EventTypeCheckoutSessionCompleted,
		stripe.EventTypeInvoicePaymentSucceeded,
		stripe.EventTypeInvoicePaymentFailed:
		return true
	default:
		return false
	}
}

// HandleEvent applies one provider event. Returning an error means the
// event produced no local effects and may be redelivered.
func (s *Service) HandleEvent(ctx context.Context, event *stripe.Event) error {
	if event == nil || event.Data == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "stripe event data required")
	}

	switch event.Type {
	case stripe.EventTypeCheckoutSessionCompleted:
		var session stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode checkout session event")
		}
		return s.handleCheckoutCompleted(ctx, &session)
	case stripe.EventTypeInvoicePaymentSucceeded:
		return s.handleInvoice(ctx, event, enums.SubscriptionStatusActive)
	case stripe.EventTypeInvoicePaymentFailed:
		return s.handleInvoice(ctx, event, enums.SubscriptionStatusPastDue)
	default:
		return nil
	}
}

// handleCheckoutCompleted flips the pending ledger row for the session
// and, for subscription checkouts, upserts the subscription and
// activates the shelter.
func (s *Service) handleCheckoutCompleted(ctx context.Context, session *stripe.CheckoutSession) error {
	if session == nil || session.ID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "checkout session id required")
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.billingRepo.WithTx(tx)

		payment, err := repo.FindPaymentByProviderID(ctx, session.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}
		if payment == nil {
			// Session created outside this backend. Acknowledge and move on.
			if s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "session_id", session.ID), "webhook.payment_row_missing")
			}
			return nil
		}

		flipped, err := repo.MarkPaymentIfPending(ctx, session.ID, enums.PaymentStatusSucceeded)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment succeeded")
		}
		if !flipped && s.logg != nil {
			s.logg.Info(s.logg.WithField(ctx, "session_id", session.ID), "webhook.payment_already_terminal")
		}

		if payment.Purpose != enums.PaymentPurposeSubscription {
			return nil
		}

		shelterID, err := s.resolveShelterID(session.Metadata, payment)
		if err != nil {
			return err
		}

		providerSubID := ""
		if session.Subscription != nil {
			providerSubID = session.Subscription.ID
		}
		if providerSubID == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "subscription id missing from checkout session")
		}

		if err := s.upsertSubscription(ctx, tx, repo, providerSubID, shelterID, enums.SubscriptionStatusActive, time.Now().UTC()); err != nil {
			return err
		}
		return s.setShelterActive(tx, shelterID, true)
	})
}

// handleInvoice moves an existing subscription to the given status and
// aligns the shelter's visibility flag. Invoices for subscriptions this
// backend never recorded are acknowledged without effect.
func (s *Service) handleInvoice(ctx context.Context, event *stripe.Event, status enums.SubscriptionStatus) error {
	providerSubID := invoiceSubscriptionID(event)
	if providerSubID == "" {
		if s.logg != nil {
			s.logg.Warn(ctx, "webhook.invoice_without_subscription")
		}
		return nil
	}

	return s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.billingRepo.WithTx(tx)

		sub, err := repo.FindSubscriptionByProviderID(ctx, providerSubID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
		}
		if sub == nil {
			if s.logg != nil {
				s.logg.Warn(s.logg.WithField(ctx, "provider_subscription_id", providerSubID), "webhook.unknown_subscription")
			}
			return nil
		}

		sub.Status = status
		if status == enums.SubscriptionStatusActive {
			sub.StartAt = time.Now().UTC()
		}
		if err := repo.UpdateSubscription(ctx, sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscription")
		}

		return s.setShelterActive(tx, sub.ShelterID, status.IsActive())
	})
}

// upsertSubscription keys on the provider subscription id, so a
// redelivered checkout event updates the existing row instead of
// inserting a duplicate.
func (s *Service) upsertSubscription(ctx context.Context, tx *gorm.DB, repo billing.Repository, providerSubID string, shelterID uuid.UUID, status enums.SubscriptionStatus, startAt time.Time) error {
	stored, err := repo.FindSubscriptionByProviderID(ctx, providerSubID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}

	if stored == nil {
		sub := &models.Subscription{
			ShelterID:              shelterID,
			Provider:               enums.PaymentProviderStripe,
			ProviderSubscriptionID: providerSubID,
			Status:                 status,
			StartAt:                startAt,
		}
		if err := repo.CreateSubscription(ctx, sub); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create subscription")
		}
		return nil
	}

	stored.Status = status
	stored.StartAt = startAt
	if err := repo.UpdateSubscription(ctx, stored); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update subscription")
	}
	return nil
}

func (s *Service) setShelterActive(tx *gorm.DB, shelterID uuid.UUID, active bool) error {
	shelter, err := s.shelterRepo.FindByIDWithTx(tx, shelterID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return pkgerrors.New(pkgerrors.CodeNotFound, "shelter not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shelter")
	}

	if shelter.Active != active {
		shelter.Active = active
		if err := s.shelterRepo.UpdateWithTx(tx, shelter); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update shelter active flag")
		}
	}
	return nil
}

func (s *Service) resolveShelterID(metadata map[string]string, payment *models.Payment) (uuid.UUID, error) {
	if raw, ok := metadata[metadataShelterID]; ok && raw != "" {
		id, err := uuid.Parse(raw)
		if err == nil {
			return id, nil
		}
	}
	if payment != nil && payment.ShelterID != nil {
		return *payment.ShelterID, nil
	}
	return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "shelter id missing from session metadata")
}

// invoiceSubscriptionID digs the subscription reference out of an
// invoice event, covering both the legacy top-level field and the
// newer parent object.
func invoiceSubscriptionID(event *stripe.Event) string {
	if event == nil {
		return ""
	}
	if id := event.GetObjectValue("subscription"); id != "" {
		return id
	}
	return event.GetObjectValue("parent", "subscription_details", "subscription")
}
