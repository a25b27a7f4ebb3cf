package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dejobratic/skygate/internal/checkout/ports"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists replayable checkout responses in idempotency_keys.
type Store struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool, now: time.Now}
}

func (s *Store) cutoff() time.Time {
	return s.now().Add(-ports.ReplayWindow)
}

func (s *Store) Get(ctx context.Context, key string) (*ports.StoredResponse, error) {
	query := `
		SELECT status_code, body, payment_session_id
		FROM idempotency_keys
		WHERE key = $1 AND created_at > $2
	`

	var resp ports.StoredResponse
	err := s.pool.QueryRow(ctx, query, key, s.cutoff()).Scan(
		&resp.StatusCode,
		&resp.Body,
		&resp.PaymentSessionID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select idempotency key: %w", err)
	}

	return &resp, nil
}

// Save keeps the first response stored under key until it leaves the replay
// window, after which the key is reusable.
func (s *Store) Save(ctx context.Context, key string, response ports.StoredResponse) error {
	query := `
		INSERT INTO idempotency_keys (key, status_code, body, payment_session_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (key) DO UPDATE SET
			status_code = EXCLUDED.status_code,
			body = EXCLUDED.body,
			payment_session_id = EXCLUDED.payment_session_id,
			created_at = EXCLUDED.created_at
		WHERE idempotency_keys.created_at <= $6
	`

	_, err := s.pool.Exec(ctx, query,
		key,
		response.StatusCode,
		response.Body,
		response.PaymentSessionID,
		s.now(),
		s.cutoff(),
	)
	if err != nil {
		return fmt.Errorf("upsert idempotency key: %w", err)
	}

	return nil
}
