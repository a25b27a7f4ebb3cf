package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dejobratic/skygate/internal/flights/domain"
	"github.com/dejobratic/skygate/internal/flights/ports"
	"github.com/dejobratic/skygate/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

var ErrSearchFailed = errors.New("flight search failed")

type Service struct {
	searcher ports.Searcher
	logger   *slog.Logger
}

// NewService accepts a nil searcher when no provider is configured; searches
// then return no offers.
func NewService(searcher ports.Searcher, logger *slog.Logger) *Service {
	return &Service{searcher: searcher, logger: logger}
}

func (s *Service) Search(ctx context.Context, params domain.SearchParams) ([]domain.Offer, error) {
	params = params.Normalize()
	if err := params.Validate(); err != nil {
		return nil, err
	}

	if s.searcher == nil {
		s.logger.WarnContext(ctx, "flight search provider not configured, returning no offers")
		return []domain.Offer{}, nil
	}

	ctx, span := telemetry.StartSpan(ctx, "FlightService.Search")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("flight.origin", params.Origin),
		attribute.String("flight.destination", params.Destination),
		attribute.String("flight.departure_date", params.DepartureDate),
	)

	offers, err := s.searcher.Search(ctx, params)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		s.logger.ErrorContext(ctx, "flight search failed",
			"origin", params.Origin,
			"destination", params.Destination,
			"error", err,
		)
		return nil, errors.Join(ErrSearchFailed, err)
	}

	telemetry.AddSpanAttributes(span, attribute.Int("flight.offers", len(offers)))
	telemetry.SetSpanSuccess(span)
	if offers == nil {
		offers = []domain.Offer{}
	}
	return offers, nil
}
