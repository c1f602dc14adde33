package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// WebhookMetrics records processing outcomes per webhook event type.
type WebhookMetrics struct {
	events   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewWebhookMetrics registers the webhook metrics on the provided registerer.
func NewWebhookMetrics(reg prometheus.Registerer) *WebhookMetrics {
	if reg == nil {
		return &WebhookMetrics{}
	}
	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "webhook_events_total",
		Help: "Processed webhook events by type and outcome.",
	}, []string{"event_type", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "webhook_event_duration_seconds",
		Help:    "Webhook handler duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"event_type"})
	reg.MustRegister(events, duration)
	return &WebhookMetrics{
		events:   events,
		duration: duration,
	}
}

// IncProcessed counts a fully handled event.
func (w *WebhookMetrics) IncProcessed(eventType string) {
	w.inc(eventType, "processed")
}

// IncDuplicate counts an event skipped by the idempotency guard.
func (w *WebhookMetrics) IncDuplicate(eventType string) {
	w.inc(eventType, "duplicate")
}

// IncIgnored counts an event type the reconciler does not handle.
func (w *WebhookMetrics) IncIgnored(eventType string) {
	w.inc(eventType, "ignored")
}

// IncFailed counts an event whose handler returned an error.
func (w *WebhookMetrics) IncFailed(eventType string) {
	w.inc(eventType, "failed")
}

// ObserveDuration records how long one event took to handle.
func (w *WebhookMetrics) ObserveDuration(eventType string, duration time.Duration) {
	if w == nil || w.duration == nil {
		return
	}
	w.duration.WithLabelValues(normalizeLabel(eventType)).Observe(duration.Seconds())
}

func (w *WebhookMetrics) inc(eventType, outcome string) {
	if w == nil || w.events == nil {
		return
	}
	w.events.WithLabelValues(normalizeLabel(eventType), outcome).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
