package app

import (
	"context"
	"log/slog"

	"github.com/dejobratic/skygate/internal/cargo/domain"
	"github.com/dejobratic/skygate/internal/cargo/metrics"
	"github.com/dejobratic/skygate/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Service prices cargo shipments.
type Service struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewService(logger *slog.Logger, metrics *metrics.Metrics) *Service {
	return &Service{logger: logger, metrics: metrics}
}

func (s *Service) Quote(ctx context.Context, req domain.QuoteRequest) (domain.Quote, error) {
	ctx, span := telemetry.StartSpan(ctx, "CargoService.Quote")
	defer span.End()

	route := req.Route.String()
	telemetry.AddSpanAttributes(span,
		attribute.String("cargo.route", route),
		attribute.String("cargo.type", string(req.CargoType)),
	)

	quote, err := domain.CalculateQuote(req)
	s.metrics.RecordQuote(ctx, route, err == nil)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		s.logger.InfoContext(ctx, "cargo quote rejected", "route", route, "error", err)
		return domain.Quote{}, err
	}

	total, _ := quote.Total.Float64()
	s.metrics.RecordQuoteTotal(ctx, route, total)
	telemetry.AddSpanAttributes(span, attribute.String("cargo.total", quote.Total.String()))
	telemetry.SetSpanSuccess(span)

	s.logger.InfoContext(ctx, "cargo quote calculated",
		"route", route,
		"chargeable_weight_kg", quote.ChargeableWeight.String(),
		"total", quote.Total.String(),
	)
	return quote, nil
}
