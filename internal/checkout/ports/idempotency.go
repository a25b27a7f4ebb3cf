package ports

import (
	"context"
	"time"
)

// ReplayWindow is how long a stored response is replayed. It matches the
// payment provider's own idempotency window; an older key starts over.
const ReplayWindow = 24 * time.Hour

// StoredResponse contains the response data to replay for a reused key.
type StoredResponse struct {
	StatusCode       int
	Body             []byte
	PaymentSessionID string
}

// IdempotencyStore lets clients retry session creation without opening a
// second payment session. Get returns nil, nil for unknown or expired keys.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (*StoredResponse, error)
	Save(ctx context.Context, key string, response StoredResponse) error
}
