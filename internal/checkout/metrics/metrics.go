package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	sessionsCreatedTotal    metric.Int64Counter
	sessionCreationDuration metric.Float64Histogram
	paymentsCompletedTotal  metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.sessionsCreatedTotal, err = meter.Int64Counter(
		"checkout_sessions_created_total",
		metric.WithDescription("Total number of payment sessions requested"),
		metric.WithUnit("{session}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout_sessions_created_total counter: %w", err)
	}

	m.sessionCreationDuration, err = meter.Float64Histogram(
		"checkout_session_creation_duration_seconds",
		metric.WithDescription("Duration of payment session creation"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout_session_creation_duration histogram: %w", err)
	}

	m.paymentsCompletedTotal, err = meter.Int64Counter(
		"checkout_payments_completed_total",
		metric.WithDescription("Payments confirmed by webhook or return redirect"),
		metric.WithUnit("{payment}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create checkout_payments_completed_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordSessionCreated(ctx context.Context, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.sessionsCreatedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordSessionCreationDuration(ctx context.Context, durationSeconds float64) {
	m.sessionCreationDuration.Record(ctx, durationSeconds)
}

// RecordPaymentCompleted counts a cleared cart by how the payment was
// confirmed: "webhook" or "redirect".
func (m *Metrics) RecordPaymentCompleted(ctx context.Context, source string) {
	m.paymentsCompletedTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("source", source),
	))
}
