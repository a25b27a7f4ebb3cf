package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/dejobratic/skygate/internal/storage"
	goredis "github.com/go-redis/redis/v8"
)

const keyPrefix = "skygate"

// Store keeps values as plain redis strings under "skygate:<namespace>:<key>".
type Store struct {
	client *goredis.Client
}

func NewStore(client *goredis.Client) *Store {
	return &Store{client: client}
}

// NewClient parses a redis:// URL into a client.
func NewClient(url string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	return goredis.NewClient(opts), nil
}

func (s *Store) Get(ctx context.Context, namespace, key string) (string, error) {
	value, err := s.client.Get(ctx, redisKey(namespace, key)).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", storage.ErrNotFound
		}
		return "", fmt.Errorf("redis get: %w", err)
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, namespace, key, value string) error {
	if err := s.client.Set(ctx, redisKey(namespace, key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, namespace, key string) error {
	if err := s.client.Del(ctx, redisKey(namespace, key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func redisKey(namespace, key string) string {
	return keyPrefix + ":" + namespace + ":" + key
}
