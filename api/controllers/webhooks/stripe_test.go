package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"github.com/stretchr/testify/require"

	stripewebhook "github.com/utulok/shelter-backend/internal/webhooks/stripe"
	"github.com/utulok/shelter-backend/pkg/logger"
)

func TestStripeWebhook_SuccessAndIdempotent(t *testing.T) {
	payload, header := buildSignedEvent(t, "whsec_test")
	service := &fakeWebhookService{}
	guard := newGuard(t)
	handler := StripeWebhook(service, &fakeSigningClient{secret: "whsec_test"}, guard, nil, testLogger())

	rec := deliver(handler, payload, header)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"received":true}`, rec.Body.String())
	require.Equal(t, 1, service.calls)

	// Replay the same event.
	rec2 := deliver(handler, payload, header)
	require.Equal(t, http.StatusOK, rec2.Code)
	require.JSONEq(t, `{"received":true}`, rec2.Body.String())
	require.Equal(t, 1, service.calls)
}

func TestStripeWebhook_InvalidSignature(t *testing.T) {
	payload, _ := buildSignedEvent(t, "whsec_test")
	service := &fakeWebhookService{}
	handler := StripeWebhook(service, &fakeSigningClient{secret: "whsec_test"}, newGuard(t), nil, testLogger())

	rec := deliver(handler, payload, "t=1,v1=deadbeef")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Zero(t, service.calls)
}

func TestStripeWebhook_MissingSignatureHeader(t *testing.T) {
	payload, _ := buildSignedEvent(t, "whsec_test")
	handler := StripeWebhook(&fakeWebhookService{}, &fakeSigningClient{secret: "whsec_test"}, newGuard(t), nil, testLogger())

	rec := deliver(handler, payload, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStripeWebhook_HandlerFailureReleasesGuard(t *testing.T) {
	payload, header := buildSignedEvent(t, "whsec_test")
	service := &fakeWebhookService{err: errors.New("db offline")}
	handler := StripeWebhook(service, &fakeSigningClient{secret: "whsec_test"}, newGuard(t), nil, testLogger())

	// Failure is still acknowledged so the provider retries on its own
	// schedule instead of escalating.
	rec := deliver(handler, payload, header)
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"received":true}`, rec.Body.String())
	require.Equal(t, 1, service.calls)

	// Guard was released, so the redelivery is processed again.
	service.err = nil
	rec2 := deliver(handler, payload, header)
	require.Equal(t, http.StatusOK, rec2.Code)
	require.Equal(t, 2, service.calls)
}

func TestStripeWebhook_UnhandledTypeAcknowledged(t *testing.T) {
	event := &stripe.Event{
		ID:   "evt_" + uuid.NewString(),
		Type: stripe.EventTypeCustomerCreated,
		Data: &stripe.EventData{Raw: json.RawMessage(`{}`)},
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)
	header := buildSignatureHeader(payload, "whsec_test", time.Now().Unix())

	service := &fakeWebhookService{}
	handler := StripeWebhook(service, &fakeSigningClient{secret: "whsec_test"}, newGuard(t), nil, testLogger())

	rec := deliver(handler, payload, header)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, service.calls)
}

func TestStripeWebhook_GuardUnavailableAcknowledges(t *testing.T) {
	payload, header := buildSignedEvent(t, "whsec_test")
	service := &fakeWebhookService{}
	guard := &failingGuard{}
	handler := StripeWebhook(service, &fakeSigningClient{secret: "whsec_test"}, guard, nil, testLogger())

	rec := deliver(handler, payload, header)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Zero(t, service.calls)
}

func deliver(handler http.HandlerFunc, payload []byte, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/payments/webhook", bytes.NewReader(payload))
	if header != "" {
		req.Header.Set("Stripe-Signature", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func buildSignedEvent(t *testing.T, secret string) ([]byte, string) {
	t.Helper()

	session := &stripe.CheckoutSession{
		ID: "cs_" + uuid.NewString(),
		Metadata: map[string]string{
			"shelter_id": uuid.NewString(),
			"purpose":    "subscription",
		},
		Subscription: &stripe.Subscription{ID: "sub_" + uuid.NewString()},
	}
	rawSession, err := json.Marshal(session)
	require.NoError(t, err)

	event := &stripe.Event{
		ID:         "evt_" + uuid.NewString(),
		Type:       stripe.EventTypeCheckoutSessionCompleted,
		Object:     "event",
		APIVersion: stripe.APIVersion,
		Data:       &stripe.EventData{Raw: rawSession},
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return payload, buildSignatureHeader(payload, secret, time.Now().Unix())
}

func buildSignatureHeader(payload []byte, secret string, ts int64) string {
	signedPayload := fmt.Sprintf("%d.%s", ts, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newGuard(t *testing.T) *stripewebhook.IdempotencyGuard {
	t.Helper()
	guard, err := stripewebhook.NewIdempotencyGuard(newInMemoryStore(), time.Minute, "stripe")
	require.NoError(t, err)
	return guard
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

type fakeWebhookService struct {
	calls int
	err   error
}

func (f *fakeWebhookService) HandleEvent(ctx context.Context, event *stripe.Event) error {
	f.calls++
	return f.err
}

type fakeSigningClient struct {
	secret string
}

func (c *fakeSigningClient) SigningSecret() string {
	return c.secret
}

type failingGuard struct{}

func (f *failingGuard) CheckAndMark(ctx context.Context, eventID string) (bool, error) {
	return false, errors.New("redis unavailable")
}

func (f *failingGuard) Delete(ctx context.Context, eventID string) error {
	return errors.New("redis unavailable")
}

type inMemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{data: make(map[string]string)}
}

func (s *inMemoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("shl:idemp:%s:%s", scope, id)
}

func (s *inMemoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = fmt.Sprintf("%v", value)
	return true, nil
}

func (s *inMemoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}
