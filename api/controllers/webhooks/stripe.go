package webhooks

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/webhook"

	"github.com/utulok/shelter-backend/api/responses"
	stripewebhook "github.com/utulok/shelter-backend/internal/webhooks/stripe"
	pkgerrors "github.com/utulok/shelter-backend/pkg/errors"
	"github.com/utulok/shelter-backend/pkg/logger"
	"github.com/utulok/shelter-backend/pkg/metrics"
)

type StripeWebhookService interface {
	HandleEvent(ctx context.Context, event *stripe.Event) error
}

type stripeWebhookGuard interface {
	CheckAndMark(ctx context.Context, eventID string) (bool, error)
	Delete(ctx context.Context, eventID string) error
}

type stripeClient interface {
	SigningSecret() string
}

// StripeWebhook receives provider billing events. The contract with the
// provider is asymmetric: a 400 is returned only when the signature
// cannot be verified; every other outcome, including handler failures,
// acknowledges with 200 so the provider's retry schedule, not its
// escalation path, drives redelivery. Failed events release their
// idempotency mark so a redelivery is reprocessed.
func StripeWebhook(svc StripeWebhookService, client stripeClient, guard stripeWebhookGuard, m *metrics.WebhookMetrics, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		if svc == nil || client == nil || guard == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "webhook pipeline unavailable"))
			return
		}

		payload, err := io.ReadAll(r.Body)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read request body"))
			return
		}

		event, err := parseEvent(ctx, payload, r.Header.Get("Stripe-Signature"), client.SigningSecret(), logg)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		ctx = logg.WithFields(ctx, map[string]any{
			"event_id":   event.ID,
			"event_type": string(event.Type),
		})

		if !stripewebhook.Handled(event.Type) {
			m.IncIgnored(string(event.Type))
			writeReceived(w)
			return
		}

		alreadyProcessed, err := guard.CheckAndMark(ctx, event.ID)
		if err != nil {
			// Redis down: acknowledge without processing and let the
			// provider redeliver once the guard is back.
			logg.Error(ctx, "webhook.idempotency_check_failed", err)
			m.IncFailed(string(event.Type))
			writeReceived(w)
			return
		}
		if alreadyProcessed {
			logg.Info(ctx, "webhook.duplicate_delivery")
			m.IncDuplicate(string(event.Type))
			writeReceived(w)
			return
		}

		start := time.Now()
		if err := svc.HandleEvent(ctx, event); err != nil {
			_ = guard.Delete(ctx, event.ID)
			logg.Error(ctx, "webhook.event_failed", err)
			m.IncFailed(string(event.Type))
			writeReceived(w)
			return
		}

		m.IncProcessed(string(event.Type))
		m.ObserveDuration(string(event.Type), time.Since(start))
		logg.Info(ctx, "webhook.event_processed")
		writeReceived(w)
	}
}

// parseEvent verifies the provider signature. With no signing secret
// configured (test mode only) the payload is trusted as-is.
func parseEvent(ctx context.Context, payload []byte, sigHeader, secret string, logg *logger.Logger) (*stripe.Event, error) {
	if secret == "" {
		if logg != nil {
			logg.Warn(ctx, "webhook.signature_verification_skipped")
		}
		var event stripe.Event
		if err := json.Unmarshal(payload, &event); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook payload")
		}
		return &event, nil
	}

	if sigHeader == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe signature missing")
	}
	event, err := webhook.ConstructEvent(payload, sigHeader, secret)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid webhook signature")
	}
	return &event, nil
}

func writeReceived(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]bool{"received": true})
}
