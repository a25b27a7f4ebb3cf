package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// pingTimeout keeps readiness probes from hanging on a stalled connection.
const pingTimeout = 2 * time.Second

// CheckHealth pings the pool. The error carries pool usage so a saturated
// pool is told apart from an unreachable server.
func CheckHealth(ctx context.Context, pool *pgxpool.Pool) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		stat := pool.Stat()
		return fmt.Errorf("ping postgres (%d/%d connections in use): %w",
			stat.AcquiredConns(), stat.MaxConns(), err)
	}
	return nil
}
