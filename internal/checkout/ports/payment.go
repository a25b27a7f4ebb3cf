package ports

import (
	"context"

	"github.com/dejobratic/skygate/internal/checkout/domain"
)

// PaymentProvider opens hosted checkout sessions and verifies the
// notifications it sends back.
type PaymentProvider interface {
	CreateSession(ctx context.Context, req domain.SessionRequest) (domain.SessionHandle, error)
	ParseEvent(payload []byte, signature string) (domain.Event, error)
}
