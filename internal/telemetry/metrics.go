package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// CheckoutMetrics records checkout progress and gateway health.
type CheckoutMetrics struct {
	transitions     metric.Int64Counter
	advanceDuration metric.Float64Histogram
	gatewayFailures metric.Int64Counter
}

// NewCheckoutMetrics registers checkout instruments on meter.
func NewCheckoutMetrics(meter metric.Meter) (*CheckoutMetrics, error) {
	m := &CheckoutMetrics{}

	var err error

	m.transitions, err = meter.Int64Counter(
		"checkout_transitions_total",
		metric.WithDescription("Checkout state transitions attempted"),
		metric.WithUnit("{transition}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout_transitions_total counter: %w", err)
	}

	m.advanceDuration, err = meter.Float64Histogram(
		"checkout_advance_duration_seconds",
		metric.WithDescription("Duration of a checkout advance including persistence"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout_advance_duration_seconds histogram: %w", err)
	}

	m.gatewayFailures, err = meter.Int64Counter(
		"payment_gateway_failures_total",
		metric.WithDescription("Payment gateway calls that failed"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create payment_gateway_failures_total counter: %w", err)
	}

	return m, nil
}

// RecordTransition counts an advance attempt from one state to another.
func (m *CheckoutMetrics) RecordTransition(ctx context.Context, from, to string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	m.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("from", from),
		attribute.String("to", to),
		attribute.String("result", result),
	))
}

// RecordAdvanceDuration observes the time spent in one advance.
func (m *CheckoutMetrics) RecordAdvanceDuration(ctx context.Context, d time.Duration) {
	m.advanceDuration.Record(ctx, d.Seconds())
}

// RecordGatewayFailure counts a failed gateway call.
func (m *CheckoutMetrics) RecordGatewayFailure(ctx context.Context, timeout bool) {
	m.gatewayFailures.Add(ctx, 1, metric.WithAttributes(attribute.Bool("timeout", timeout)))
}
