package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/dejobratic/skygate/internal/checkout/metrics"
	"github.com/dejobratic/skygate/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableCommandHandler struct {
	handler CommandHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableCommandHandler(handler CommandHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableCommandHandler {
	return &ObservableCommandHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableCommandHandler) Handle(ctx context.Context, cmd CreateSessionCommand) (*Result, error) {
	ctx, span := telemetry.StartSpan(ctx, "CreateSessionCommand.Handle")
	defer span.End()

	start := time.Now()
	var success bool
	defer func() {
		o.metrics.RecordSessionCreationDuration(ctx, time.Since(start).Seconds())
		o.metrics.RecordSessionCreated(ctx, success)
	}()

	o.logger.InfoContext(ctx, "creating payment session", "cart_session", cmd.CartSessionID)

	result, err := o.handler.Handle(ctx, cmd)
	if err != nil && result == nil {
		telemetry.RecordSpanError(span, err)
		o.logger.ErrorContext(ctx, "failed to create payment session",
			"error", err,
			"cart_session", cmd.CartSessionID,
		)
		return nil, err
	}

	telemetry.AddSpanAttributes(span,
		attribute.String("order.id", result.OrderID),
		attribute.String("payment.session_id", result.Session.ID),
	)

	success = true
	if err != nil {
		// The provider session exists; only the notification was lost.
		o.logger.WarnContext(ctx, "payment session created with errors", "error", err, "order_id", result.OrderID)
		telemetry.RecordSpanError(span, err)
		return result, err
	}

	o.logger.InfoContext(ctx, "payment session created",
		"order_id", result.OrderID,
		"payment_session_id", result.Session.ID,
	)
	telemetry.SetSpanSuccess(span)

	return result, nil
}
