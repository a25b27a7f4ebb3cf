package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/skygate/internal/database"
	"github.com/dejobratic/skygate/internal/storage"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists values in the kv_entries table.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, namespace, key string) (string, error) {
	query := `
		SELECT value
		FROM kv_entries
		WHERE namespace = $1 AND key = $2
	`

	var value string
	if err := s.pool.QueryRow(ctx, query, namespace, key).Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("select kv entry: %w", err)
	}

	return value, nil
}

func (s *Store) Set(ctx context.Context, namespace, key, value string) error {
	query := `
		INSERT INTO kv_entries (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, key) DO UPDATE
		SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`

	if _, err := s.pool.Exec(ctx, query, namespace, key, value); err != nil {
		return fmt.Errorf("upsert kv entry: %w", err)
	}

	return nil
}

func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	query := `
		DELETE FROM kv_entries
		WHERE namespace = $1 AND key = $2
	`

	if _, err := s.pool.Exec(ctx, query, namespace, key); err != nil {
		return fmt.Errorf("delete kv entry: %w", err)
	}

	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return database.CheckHealth(ctx, s.pool)
}
