package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dejobratic/skygate/internal/checkout/domain"
	"github.com/dejobratic/skygate/internal/checkout/ports"
	"github.com/dejobratic/skygate/internal/events"
	"github.com/google/uuid"
)

type CreateSessionCommand struct {
	CartSessionID  string
	IdempotencyKey string
}

func (c CreateSessionCommand) Validate() error {
	if strings.TrimSpace(c.CartSessionID) == "" {
		return errors.New("cart session is required")
	}
	return nil
}

// Result is the opened payment session and the order id it was tagged with.
type Result struct {
	OrderID string
	Session domain.SessionHandle
}

type CommandHandler interface {
	Handle(ctx context.Context, cmd CreateSessionCommand) (*Result, error)
}

type CreateSessionCommandHandler struct {
	carts    ports.Carts
	provider ports.PaymentProvider
	events   events.Publisher
	siteURL  string
}

func NewCreateSessionCommandHandler(
	carts ports.Carts,
	provider ports.PaymentProvider,
	publisher events.Publisher,
	siteURL string,
) *CreateSessionCommandHandler {
	return &CreateSessionCommandHandler{
		carts:    carts,
		provider: provider,
		events:   publisher,
		siteURL:  siteURL,
	}
}

func (h *CreateSessionCommandHandler) Handle(ctx context.Context, cmd CreateSessionCommand) (*Result, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	items, err := h.carts.Snapshot(ctx, cmd.CartSessionID)
	if err != nil {
		return nil, fmt.Errorf("read cart: %w", err)
	}

	lineItems, err := domain.LineItemsFromCart(items)
	if err != nil {
		return nil, err
	}

	success, cancel := domain.ReturnURLs(h.siteURL)
	req := domain.SessionRequest{
		OrderID:        uuid.NewString(),
		CartSessionID:  cmd.CartSessionID,
		LineItems:      lineItems,
		SuccessURL:     success,
		CancelURL:      cancel,
		IdempotencyKey: cmd.IdempotencyKey,
	}

	handle, err := h.provider.CreateSession(ctx, req)
	if err != nil {
		return nil, err
	}

	result := &Result{OrderID: req.OrderID, Session: handle}

	if err := h.events.Publish(ctx, events.Event{
		Topic: events.TopicCheckoutStarted,
		Key:   req.OrderID,
		Attributes: map[string]string{
			"cart_session":       cmd.CartSessionID,
			"payment_session_id": handle.ID,
		},
	}); err != nil {
		return result, fmt.Errorf("session created but failed to publish event: %w", err)
	}

	return result, nil
}
