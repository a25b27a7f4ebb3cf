package storage

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	operationDuration metric.Float64Histogram
	operationErrors   metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.operationDuration, err = meter.Float64Histogram(
		"storage_operation_duration_seconds",
		metric.WithDescription("Key/value storage operation duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create storage_operation_duration histogram: %w", err)
	}

	m.operationErrors, err = meter.Int64Counter(
		"storage_operation_errors_total",
		metric.WithDescription("Key/value storage operations that failed"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create storage_operation_errors counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordOperation(ctx context.Context, backend, operation string, durationSeconds float64, err error) {
	attrs := metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("operation", operation),
	)
	m.operationDuration.Record(ctx, durationSeconds, attrs)
	// A miss is an expected outcome, not a failure.
	if err != nil && !errors.Is(err, ErrNotFound) {
		m.operationErrors.Add(ctx, 1, attrs)
	}
}
