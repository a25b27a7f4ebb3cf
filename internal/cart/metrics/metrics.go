package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	mutationsTotal        metric.Int64Counter
	snapshotFailuresTotal metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.mutationsTotal, err = meter.Int64Counter(
		"cart_mutations_total",
		metric.WithDescription("Cart mutations by operation"),
		metric.WithUnit("{mutation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cart_mutations_total counter: %w", err)
	}

	m.snapshotFailuresTotal, err = meter.Int64Counter(
		"cart_snapshot_failures_total",
		metric.WithDescription("Cart snapshot loads or writes that fell back to memory"),
		metric.WithUnit("{failure}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cart_snapshot_failures_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordMutation(ctx context.Context, operation string) {
	m.mutationsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}

func (m *Metrics) RecordSnapshotFailure(ctx context.Context, operation string) {
	m.snapshotFailuresTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
	))
}
