package ports

import (
	"context"

	cartdomain "github.com/dejobratic/skygate/internal/cart/domain"
)

// Carts gives checkout read access to a session's cart and lets a completed
// payment empty it.
type Carts interface {
	Snapshot(ctx context.Context, sessionID string) ([]cartdomain.Item, error)
	Clear(ctx context.Context, sessionID string) error
}
