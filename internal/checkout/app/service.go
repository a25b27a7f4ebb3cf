package app

import (
	"context"
	"log/slog"
	"strings"

	"github.com/dejobratic/skygate/internal/checkout/app/commands"
	"github.com/dejobratic/skygate/internal/checkout/domain"
	"github.com/dejobratic/skygate/internal/checkout/metrics"
	"github.com/dejobratic/skygate/internal/checkout/ports"
	"github.com/dejobratic/skygate/internal/events"
	"github.com/dejobratic/skygate/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// Service bundles the checkout use cases exposed over HTTP.
type Service struct {
	carts                ports.Carts
	provider             ports.PaymentProvider
	events               events.Publisher
	idemStore            ports.IdempotencyStore
	logger               *slog.Logger
	metrics              *metrics.Metrics
	createSessionHandler commands.CommandHandler
}

// NewService wires required dependencies.
func NewService(
	carts ports.Carts,
	provider ports.PaymentProvider,
	publisher events.Publisher,
	idem ports.IdempotencyStore,
	logger *slog.Logger,
	metrics *metrics.Metrics,
	siteURL string,
) *Service {
	coreHandler := commands.NewCreateSessionCommandHandler(carts, provider, publisher, siteURL)
	observableHandler := commands.NewObservableCommandHandler(coreHandler, logger, metrics)

	return &Service{
		carts:                carts,
		provider:             provider,
		events:               publisher,
		idemStore:            idem,
		logger:               logger,
		metrics:              metrics,
		createSessionHandler: observableHandler,
	}
}

// CreateSession opens a payment session for the cart of cartSessionID. A
// non-empty idempotencyKey is forwarded to the provider. A lost
// checkout.started event does not fail the request.
func (s *Service) CreateSession(ctx context.Context, cartSessionID, idempotencyKey string) (*commands.Result, error) {
	result, err := s.createSessionHandler.Handle(ctx, commands.CreateSessionCommand{
		CartSessionID:  cartSessionID,
		IdempotencyKey: idempotencyKey,
	})
	if result != nil {
		return result, nil
	}
	return nil, err
}

// HandleWebhook verifies a provider notification. A completed checkout
// clears the cart of the session named in its metadata; other events are
// acknowledged and ignored.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, signature string) error {
	ctx, span := telemetry.StartSpan(ctx, "CheckoutService.HandleWebhook")
	defer span.End()

	event, err := s.provider.ParseEvent(payload, signature)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		s.logger.WarnContext(ctx, "rejected payment webhook", "error", err)
		return err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("payment.event_id", event.ID),
		attribute.String("payment.event_type", event.Type),
	)

	if event.Type != domain.EventCheckoutCompleted {
		s.logger.DebugContext(ctx, "ignoring payment event", "event_type", event.Type, "event_id", event.ID)
		telemetry.SetSpanSuccess(span)
		return nil
	}

	cartSession := event.CartSessionID()
	if cartSession == "" {
		s.logger.WarnContext(ctx, "completed payment without cart session",
			"event_id", event.ID,
			"payment_session_id", event.PaymentSessionID,
		)
		telemetry.SetSpanSuccess(span)
		return nil
	}

	err = s.complete(ctx, cartSession, event.PaymentSessionID, event.OrderID(), "webhook")
	telemetry.EndSpan(span, err)
	return err
}

// ConfirmReturn handles the success redirect. The cart is cleared only when
// the redirect carries a payment session id.
func (s *Service) ConfirmReturn(ctx context.Context, cartSessionID, paymentSessionID string) error {
	ctx, span := telemetry.StartSpan(ctx, "CheckoutService.ConfirmReturn")
	defer span.End()

	if strings.TrimSpace(paymentSessionID) == "" {
		telemetry.RecordSpanError(span, domain.ErrMissingPaymentToken)
		return domain.ErrMissingPaymentToken
	}

	err := s.complete(ctx, cartSessionID, paymentSessionID, "", "redirect")
	telemetry.EndSpan(span, err)
	return err
}

func (s *Service) complete(ctx context.Context, cartSession, paymentSessionID, orderID, source string) error {
	if err := s.carts.Clear(ctx, cartSession); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear cart after payment",
			"error", err,
			"cart_session", cartSession,
			"payment_session_id", paymentSessionID,
		)
		return err
	}

	s.metrics.RecordPaymentCompleted(ctx, source)
	s.logger.InfoContext(ctx, "payment completed, cart cleared",
		"cart_session", cartSession,
		"payment_session_id", paymentSessionID,
		"source", source,
	)

	if err := s.events.Publish(ctx, events.Event{
		Topic: events.TopicCheckoutCompleted,
		Key:   paymentSessionID,
		Attributes: map[string]string{
			"cart_session": cartSession,
			"order_id":     orderID,
			"source":       source,
		},
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to publish checkout completion", "error", err)
	}
	return nil
}

// SaveIdempotentResponse writes response details for a key.
func (s *Service) SaveIdempotentResponse(ctx context.Context, key string, response ports.StoredResponse) error {
	return s.idemStore.Save(ctx, key, response)
}

// GetIdempotentResponse retrieves previously stored response data.
func (s *Service) GetIdempotentResponse(ctx context.Context, key string) (*ports.StoredResponse, error) {
	return s.idemStore.Get(ctx, key)
}
