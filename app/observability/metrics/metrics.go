package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/FACorreiaa/travelmate-api/internal/types"
)

// AppMetrics holds the application's metric instruments.
// Make fields public so they can be accessed from other packages.
type AppMetrics struct {
	GenerationRequestsTotal     metric.Int64Counter
	GenerationDurationSeconds   metric.Float64Histogram
	ExternalCallDurationSeconds metric.Float64Histogram
}

var (
	// Global instance of AppMetrics (initialized once)
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("TravelMate")
		var err error
		m := &AppMetrics{}

		m.GenerationRequestsTotal, err = meter.Int64Counter(
			"generation_requests_total",
			metric.WithDescription("Total number of AI generation requests completed"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create generation_requests_total: %v", err)
		}

		m.GenerationDurationSeconds, err = meter.Float64Histogram(
			"generation_duration_seconds",
			metric.WithDescription("Duration of AI generation requests in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create generation_duration_seconds: %v", err)
		}

		m.ExternalCallDurationSeconds, err = meter.Float64Histogram(
			"external_call_duration_seconds",
			metric.WithDescription("Duration of outbound HTTP calls in seconds"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create external_call_duration_seconds: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance, or nil when
// InitAppMetrics was never called (tests). The recording methods tolerate a
// nil receiver so callers never need to check.
func Get() *AppMetrics {
	return appMetrics
}

// Outcome renders an error as a metric label: "success" for nil, the
// classification kind for classified failures, "internal_error" otherwise.
func Outcome(err error) string {
	if err == nil {
		return "success"
	}
	if kind := types.KindOf(err); kind != "" {
		return string(kind)
	}
	return "internal_error"
}

// RecordGeneration counts one finished generation and observes its duration.
func (m *AppMetrics) RecordGeneration(ctx context.Context, feature, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("feature", feature),
		attribute.String("outcome", outcome),
	)
	m.GenerationRequestsTotal.Add(ctx, 1, attrs)
	m.GenerationDurationSeconds.Record(ctx, d.Seconds(), attrs)
}

// RecordExternalCall observes the duration of one outbound HTTP attempt.
func (m *AppMetrics) RecordExternalCall(ctx context.Context, target, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ExternalCallDurationSeconds.Record(ctx, d.Seconds(), metric.WithAttributes(
		attribute.String("target", target),
		attribute.String("outcome", outcome),
	))
}
