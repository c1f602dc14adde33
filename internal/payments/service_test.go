package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stripe/stripe-go/v84"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/utulok/shelter-backend/internal/billing"
	"github.com/utulok/shelter-backend/pkg/db/models"
	"github.com/utulok/shelter-backend/pkg/enums"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/pagination"
)

func TestCreateSubscriptionSession_RecordsPendingPayment(t *testing.T) {
	userID := uuid.New()
	shelterID := uuid.New()

	billingRepo := &capturingBillingRepo{}
	checkout := &fakeCheckoutClient{
		session: &stripe.CheckoutSession{
			ID:          "cs_" + uuid.NewString(),
			URL:         "https://checkout.stripe.com/c/pay/cs_test",
			AmountTotal: 2900,
		},
	}
	svc := newPaymentsService(t, billingRepo, &stubShelterReader{
		byOwner: map[uuid.UUID]*models.Shelter{
			userID: {ID: shelterID, OwnerID: userID, Name: "Happy Tails"},
		},
	}, checkout, "price_monthly")

	result, err := svc.CreateSubscriptionSession(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, checkout.session.ID, result.SessionID)
	require.Equal(t, checkout.session.URL, result.CheckoutURL)

	require.NotNil(t, billingRepo.created)
	require.Equal(t, checkout.session.ID, billingRepo.created.ProviderPaymentID)
	require.Equal(t, enums.PaymentPurposeSubscription, billingRepo.created.Purpose)
	require.Equal(t, enums.PaymentStatusPending, billingRepo.created.Status)
	require.Equal(t, userID, billingRepo.created.UserID)
	require.NotNil(t, billingRepo.created.ShelterID)
	require.Equal(t, shelterID, *billingRepo.created.ShelterID)

	// Subscription metadata travels on the session so the webhook can
	// resolve the shelter.
	require.Equal(t, shelterID.String(), checkout.params.Metadata["shelter_id"])
	require.Equal(t, shelterID.String(), checkout.params.SubscriptionData.Metadata["shelter_id"])
}

func TestCreateSubscriptionSession_RequiresShelter(t *testing.T) {
	svc := newPaymentsService(t, &capturingBillingRepo{}, &stubShelterReader{}, &fakeCheckoutClient{}, "price_monthly")

	_, err := svc.CreateSubscriptionSession(context.Background(), uuid.New())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
}

func TestCreateSubscriptionSession_RequiresConfiguredPrice(t *testing.T) {
	svc := newPaymentsService(t, &capturingBillingRepo{}, &stubShelterReader{}, &fakeCheckoutClient{}, "")

	_, err := svc.CreateSubscriptionSession(context.Background(), uuid.New())
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeInternal, pkgerrors.As(err).Code())
}

func TestCreateDonationSession_RecordsPendingPayment(t *testing.T) {
	userID := uuid.New()
	shelterID := uuid.New()

	billingRepo := &capturingBillingRepo{}
	checkout := &fakeCheckoutClient{
		session: &stripe.CheckoutSession{
			ID:  "cs_" + uuid.NewString(),
			URL: "https://checkout.stripe.com/c/pay/cs_test",
		},
	}
	svc := newPaymentsService(t, billingRepo, &stubShelterReader{
		byID: map[uuid.UUID]*models.Shelter{
			shelterID: {ID: shelterID, Name: "Happy Tails", Active: true},
		},
	}, checkout, "")

	result, err := svc.CreateDonationSession(context.Background(), userID, shelterID, 2500)
	require.NoError(t, err)
	require.Equal(t, checkout.session.ID, result.SessionID)

	require.NotNil(t, billingRepo.created)
	require.Equal(t, enums.PaymentPurposeDonation, billingRepo.created.Purpose)
	require.Equal(t, enums.PaymentStatusPending, billingRepo.created.Status)
	require.EqualValues(t, 2500, billingRepo.created.AmountCents)
}

func TestCreateDonationSession_AmountBounds(t *testing.T) {
	svc := newPaymentsService(t, &capturingBillingRepo{}, &stubShelterReader{}, &fakeCheckoutClient{}, "")

	for _, amount := range []int64{0, MinDonationCents - 1, MaxDonationCents + 1} {
		_, err := svc.CreateDonationSession(context.Background(), uuid.New(), uuid.New(), amount)
		require.Error(t, err, "amount %d", amount)
		require.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
	}
}

func TestCreateDonationSession_InactiveShelterHidden(t *testing.T) {
	shelterID := uuid.New()
	svc := newPaymentsService(t, &capturingBillingRepo{}, &stubShelterReader{
		byID: map[uuid.UUID]*models.Shelter{
			shelterID: {ID: shelterID, Name: "Dormant", Active: false},
		},
	}, &fakeCheckoutClient{}, "")

	_, err := svc.CreateDonationSession(context.Background(), uuid.New(), shelterID, 500)
	require.Error(t, err)
	require.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestCreateDonationSession_ProviderFailureCreatesNoRow(t *testing.T) {
	shelterID := uuid.New()
	billingRepo := &capturingBillingRepo{}
	svc := newPaymentsService(t, billingRepo, &stubShelterReader{
		byID: map[uuid.UUID]*models.Shelter{
			shelterID: {ID: shelterID, Name: "Happy Tails", Active: true},
		},
	}, &fakeCheckoutClient{err: errors.New("stripe 500")}, "")

	_, err := svc.CreateDonationSession(context.Background(), uuid.New(), shelterID, 500)
	require.Error(t, err)
	require.Nil(t, billingRepo.created)
}

func newPaymentsService(t *testing.T, repo billing.Repository, shelterRepo shelterReader, checkout StripeCheckoutClient, priceID string) *Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		BillingRepo:         repo,
		ShelterRepo:         shelterRepo,
		StripeClient:        checkout,
		FrontendBaseURL:     "https://shelter.example.org",
		SubscriptionPriceID: priceID,
	})
	require.NoError(t, err)
	return svc
}

type fakeCheckoutClient struct {
	session *stripe.CheckoutSession
	params  *stripe.CheckoutSessionParams
	err     error
}

func (f *fakeCheckoutClient) CreateSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.params = params
	if f.err != nil {
		return nil, f.err
	}
	return f.session, nil
}

type stubShelterReader struct {
	byID    map[uuid.UUID]*models.Shelter
	byOwner map[uuid.UUID]*models.Shelter
}

func (s *stubShelterReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Shelter, error) {
	shelter, ok := s.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return shelter, nil
}

func (s *stubShelterReader) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) (*models.Shelter, error) {
	return s.byOwner[ownerID], nil
}

type capturingBillingRepo struct {
	created *models.Payment
}

func (c *capturingBillingRepo) WithTx(tx *gorm.DB) billing.Repository { return c }

func (c *capturingBillingRepo) CreatePayment(ctx context.Context, payment *models.Payment) error {
	c.created = payment
	return nil
}

func (c *capturingBillingRepo) FindPaymentByProviderID(ctx context.Context, providerPaymentID string) (*models.Payment, error) {
	return nil, nil
}

func (c *capturingBillingRepo) MarkPaymentIfPending(ctx context.Context, providerPaymentID string, status enums.PaymentStatus) (bool, error) {
	return false, nil
}

func (c *capturingBillingRepo) ListPayments(ctx context.Context, params billing.ListPaymentsQuery) ([]models.Payment, *pagination.Cursor, error) {
	return nil, nil, nil
}

func (c *capturingBillingRepo) SumSucceededDonations(ctx context.Context, shelterID uuid.UUID) (decimal.Decimal, error) {
	return decimal.Zero, nil
}

func (c *capturingBillingRepo) CreateSubscription(ctx context.Context, subscription *models.Subscription) error {
	return nil
}

func (c *capturingBillingRepo) UpdateSubscription(ctx context.Context, subscription *models.Subscription) error {
	return nil
}

func (c *capturingBillingRepo) FindSubscriptionByProviderID(ctx context.Context, providerSubscriptionID string) (*models.Subscription, error) {
	return nil, nil
}

func (c *capturingBillingRepo) ListSubscriptionsByShelter(ctx context.Context, shelterID uuid.UUID) ([]models.Subscription, error) {
	return nil, nil
}

func (c *capturingBillingRepo) LatestSubscriptionForShelter(ctx context.Context, shelterID uuid.UUID) (*models.Subscription, error) {
	return nil, nil
}
