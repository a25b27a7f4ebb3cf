//go:build integration

package redis_test

import (
	"context"
	"testing"

	"github.com/dejobratic/skygate/internal/storage"
	"github.com/dejobratic/skygate/internal/storage/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func setupStore(t *testing.T) *redis.Store {
	t.Helper()
	ctx := context.Background()

	container, err := testredis.Run(ctx, "redis:7-alpine")
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	url, err := container.ConnectionString(ctx)
	require.NoError(t, err)

	client, err := redis.NewClient(url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return redis.NewStore(client)
}

func TestStore(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	require.NoError(t, store.Ping(ctx))

	_, err := store.Get(ctx, "session-a", "cart-snapshot")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, store.Set(ctx, "session-a", "cart-snapshot", `[{"id":"pkg1"}]`))
	value, err := store.Get(ctx, "session-a", "cart-snapshot")
	require.NoError(t, err)
	assert.Equal(t, `[{"id":"pkg1"}]`, value)

	require.NoError(t, store.Delete(ctx, "session-a", "cart-snapshot"))
	_, err = store.Get(ctx, "session-a", "cart-snapshot")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
