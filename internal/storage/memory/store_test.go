package memory_test

import (
	"context"
	"testing"

	"github.com/dejobratic/skygate/internal/storage"
	"github.com/dejobratic/skygate/internal/storage/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()

	t.Run("returns ErrNotFound for missing key", func(t *testing.T) {
		store := memory.NewStore()

		_, err := store.Get(ctx, "session-a", "cart-snapshot")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("overwrites value on set", func(t *testing.T) {
		store := memory.NewStore()

		require.NoError(t, store.Set(ctx, "session-a", "currency-preference", "USD"))
		require.NoError(t, store.Set(ctx, "session-a", "currency-preference", "AED"))

		value, err := store.Get(ctx, "session-a", "currency-preference")
		require.NoError(t, err)
		assert.Equal(t, "AED", value)
	})

	t.Run("isolates namespaces", func(t *testing.T) {
		store := memory.NewStore()
		require.NoError(t, store.Set(ctx, "session-a", "cart-snapshot", "[]"))

		_, err := store.Get(ctx, "session-b", "cart-snapshot")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		store := memory.NewStore()
		require.NoError(t, store.Set(ctx, "session-a", "cart-snapshot", "[]"))

		require.NoError(t, store.Delete(ctx, "session-a", "cart-snapshot"))
		require.NoError(t, store.Delete(ctx, "session-a", "cart-snapshot"))

		_, err := store.Get(ctx, "session-a", "cart-snapshot")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("scoped kv binds the namespace", func(t *testing.T) {
		store := memory.NewStore()
		kv := storage.Scope(store, "session-c")

		require.NoError(t, kv.Set(ctx, "currency-preference", "AED"))

		value, err := store.Get(ctx, "session-c", "currency-preference")
		require.NoError(t, err)
		assert.Equal(t, "AED", value)
	})
}
