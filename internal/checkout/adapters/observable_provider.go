package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/skygate/internal/checkout/domain"
	"github.com/dejobratic/skygate/internal/checkout/ports"
	"github.com/dejobratic/skygate/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ProviderMetrics times calls to the payment provider.
type ProviderMetrics struct {
	callDuration metric.Float64Histogram
}

func NewProviderMetrics(meter metric.Meter) (*ProviderMetrics, error) {
	h, err := meter.Float64Histogram(
		"payment_provider_call_duration_seconds",
		metric.WithDescription("Duration of payment provider calls"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &ProviderMetrics{callDuration: h}, nil
}

func (m *ProviderMetrics) record(ctx context.Context, op string, seconds float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.callDuration.Record(ctx, seconds, metric.WithAttributes(
		attribute.String("operation", op),
		attribute.String("status", status),
	))
}

type ObservableProvider struct {
	provider ports.PaymentProvider
	metrics  *ProviderMetrics
}

func NewObservableProvider(provider ports.PaymentProvider, metrics *ProviderMetrics) *ObservableProvider {
	return &ObservableProvider{provider: provider, metrics: metrics}
}

func (o *ObservableProvider) CreateSession(ctx context.Context, req domain.SessionRequest) (domain.SessionHandle, error) {
	ctx, span := telemetry.StartSpan(ctx, "PaymentProvider.CreateSession")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", req.OrderID),
		attribute.Int("payment.line_items", len(req.LineItems)),
	)

	start := time.Now()
	handle, err := o.provider.CreateSession(ctx, req)
	o.metrics.record(ctx, "create_session", time.Since(start).Seconds(), err)

	if err == nil {
		telemetry.AddSpanAttributes(span, attribute.String("payment.session_id", handle.ID))
	}
	telemetry.EndSpan(span, err)
	return handle, err
}

func (o *ObservableProvider) ParseEvent(payload []byte, signature string) (domain.Event, error) {
	start := time.Now()
	event, err := o.provider.ParseEvent(payload, signature)
	o.metrics.record(context.Background(), "parse_event", time.Since(start).Seconds(), err)
	return event, err
}

// Unconfigured stands in when no payment credentials are set.
type Unconfigured struct{}

func (Unconfigured) CreateSession(context.Context, domain.SessionRequest) (domain.SessionHandle, error) {
	return domain.SessionHandle{}, domain.ErrPaymentUnavailable
}

func (Unconfigured) ParseEvent([]byte, string) (domain.Event, error) {
	return domain.Event{}, domain.ErrPaymentUnavailable
}
