package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	submissionsTotal metric.Int64Counter
	appendDuration   metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.submissionsTotal, err = meter.Int64Counter(
		"form_submissions_total",
		metric.WithDescription("Form submissions by form and outcome"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create form_submissions_total counter: %w", err)
	}

	m.appendDuration, err = meter.Float64Histogram(
		"form_append_duration_seconds",
		metric.WithDescription("Duration of spreadsheet appends"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create form_append_duration histogram: %w", err)
	}

	return m, nil
}

// RecordSubmission counts a submission; status is "success", "invalid" or
// "error".
func (m *Metrics) RecordSubmission(ctx context.Context, form, status string) {
	m.submissionsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("form", form),
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordAppendDuration(ctx context.Context, form string, durationSeconds float64) {
	m.appendDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("form", form),
	))
}
