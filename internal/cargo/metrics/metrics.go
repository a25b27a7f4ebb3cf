package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	quotesTotal     metric.Int64Counter
	quoteTotalValue metric.Float64Histogram
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.quotesTotal, err = meter.Int64Counter(
		"cargo_quotes_total",
		metric.WithDescription("Total number of cargo quotes requested"),
		metric.WithUnit("{quote}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cargo_quotes_total counter: %w", err)
	}

	m.quoteTotalValue, err = meter.Float64Histogram(
		"cargo_quote_total_usd",
		metric.WithDescription("Quoted cargo totals"),
		metric.WithUnit("USD"),
	)
	if err != nil {
		return nil, fmt.Errorf("create cargo_quote_total_usd histogram: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordQuote(ctx context.Context, route string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	m.quotesTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("route", route),
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordQuoteTotal(ctx context.Context, route string, total float64) {
	m.quoteTotalValue.Record(ctx, total, metric.WithAttributes(
		attribute.String("route", route),
	))
}
