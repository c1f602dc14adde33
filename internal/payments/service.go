package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/utulok/shelter-backend/internal/billing"
	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/enums"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
)

const (
	// MinDonationCents rejects sub-dollar donations, matching the
	// provider's own minimum charge.
	MinDonationCents = 100
	// MaxDonationCents caps a single donation at $10,000.
	MaxDonationCents = 1_000_000

	metadataUserID    = "user_id"
	metadataShelterID = "shelter_id"
	metadataPurpose   = "purpose"
)

type shelterReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Shelter, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) (*models.Shelter, error)
}

// ServiceParams wires the payment service dependencies.
type ServiceParams struct {
	BillingRepo         billing.Repository
	ShelterRepo         shelterReader
	StripeClient        StripeCheckoutClient
	FrontendBaseURL     string
	SubscriptionPriceID string
	Currency            string
}

// Service creates provider checkout sessions and records the matching
// pending ledger rows before returning the redirect URL.
type Service struct {
	billingRepo billing.Repository
	shelterRepo shelterReader
	stripe      StripeCheckoutClient
	frontendURL string
	priceID     string
	currency    string
}

// NewService validates dependencies and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.BillingRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "billing repo required")
	}
	if params.ShelterRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "shelter repo required")
	}
	if params.StripeClient == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	if params.FrontendBaseURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "frontend base url required")
	}
	currency := params.Currency
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		billingRepo: params.BillingRepo,
		shelterRepo: params.ShelterRepo,
		stripe:      params.StripeClient,
		frontendURL: params.FrontendBaseURL,
		priceID:     params.SubscriptionPriceID,
		currency:    currency,
	}, nil
}

// CheckoutResult carries what the frontend needs to redirect.
type CheckoutResult struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// CreateSubscriptionSession starts recurring billing checkout for the
// caller's shelter. A pending ledger row keyed by the session id is
// written before the URL is returned, so the webhook reconciler always
// finds a row to flip.
func (s *Service) CreateSubscriptionSession(ctx context.Context, userID uuid.UUID) (*CheckoutResult, error) {
	if s.priceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "subscription price not configured")
	}

	shelter, err := s.shelterRepo.FindByOwnerID(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load shelter")
	}
	if shelter == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "user does not own a shelter")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(fmt.Sprintf("%s/billing/success?session_id={CHECKOUT_SESSION_ID}", s.frontendURL)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/billing/cancel", s.frontendURL)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(s.priceID),
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata(metadataUserID, userID.String())
	params.AddMetadata(metadataShelterID, shelter.ID.String())
	params.AddMetadata(metadataPurpose, string(enums.PaymentPurposeSubscription))
	params.SubscriptionData = &stripe.CheckoutSessionSubscriptionDataParams{
		Metadata: map[string]string{
			metadataShelterID: shelter.ID.String(),
		},
	}

	session, err := s.stripe.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	shelterID := shelter.ID
	payment := &models.Payment{
		UserID:            userID,
		ShelterID:         &shelterID,
		Provider:          enums.PaymentProviderStripe,
		ProviderPaymentID: session.ID,
		Purpose:           enums.PaymentPurposeSubscription,
		Status:            enums.PaymentStatusPending,
		AmountCents:       session.AmountTotal,
		Currency:          s.currency,
	}
	if err := s.billingRepo.CreatePayment(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record pending payment")
	}

	return &CheckoutResult{SessionID: session.ID, CheckoutURL: session.URL}, nil
}

// CreateDonationSession starts a one-time donation checkout toward an
// active shelter.
func (s *Service) CreateDonationSession(ctx context.Context, userID, shelterID uuid.UUID, amountCents int64) (*CheckoutResult, error) {
	if amountCents < MinDonationCents || amountCents > MaxDonationCents {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("donation amount must be between %d and %d cents", MinDonationCents, MaxDonationCents))
	}

	shelter, err := s.shelterRepo.FindByID(ctx, shelterID)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shelter not found")
	}
	if !shelter.Active {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "shelter not found")
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(fmt.Sprintf("%s/donation/success?session_id={CHECKOUT_SESSION_ID}", s.frontendURL)),
		CancelURL:  stripe.String(fmt.Sprintf("%s/shelters/%s", s.frontendURL, shelter.ID)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripe.String(s.currency),
					UnitAmount: stripe.Int64(amountCents),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(fmt.Sprintf("Donation to %s", shelter.Name)),
					},
				},
				Quantity: stripe.Int64(1),
			},
		},
	}
	params.AddMetadata(metadataUserID, userID.String())
	params.AddMetadata(metadataShelterID, shelter.ID.String())
	params.AddMetadata(metadataPurpose, string(enums.PaymentPurposeDonation))

	session, err := s.stripe.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}

	payment := &models.Payment{
		UserID:            userID,
		ShelterID:         &shelterID,
		Provider:          enums.PaymentProviderStripe,
		ProviderPaymentID: session.ID,
		Purpose:           enums.PaymentPurposeDonation,
		Status:            enums.PaymentStatusPending,
		AmountCents:       amountCents,
		Currency:          s.currency,
	}
	if err := s.billingRepo.CreatePayment(ctx, payment); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record pending payment")
	}

	return &CheckoutResult{SessionID: session.ID, CheckoutURL: session.URL}, nil
}
