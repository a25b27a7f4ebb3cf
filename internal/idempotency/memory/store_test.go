package memory

import (
	"context"
	"testing"
	"time"

	"github.com/dejobratic/skygate/internal/checkout/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore(t *testing.T) {
	ctx := context.Background()
	store := NewStore()

	missing, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, missing)

	first := ports.StoredResponse{StatusCode: 201, Body: []byte(`{"id":"cs_1"}`), PaymentSessionID: "cs_1"}
	require.NoError(t, store.Save(ctx, "k1", first))
	require.NoError(t, store.Save(ctx, "k1", ports.StoredResponse{StatusCode: 201, PaymentSessionID: "cs_2"}))

	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, &first, got)

	got.Body[0] = 'x'
	again, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, first.Body, again.Body)
}

func TestStoreExpiresAfterReplayWindow(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	store := NewStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, "k1", ports.StoredResponse{StatusCode: 201, PaymentSessionID: "cs_old"}))

	now = now.Add(ports.ReplayWindow - time.Minute)
	got, err := store.Get(ctx, "k1")
	require.NoError(t, err)
	require.NotNil(t, got)

	now = now.Add(2 * time.Minute)
	got, err = store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, got, "expired responses are not replayed")

	require.NoError(t, store.Save(ctx, "k1", ports.StoredResponse{StatusCode: 201, PaymentSessionID: "cs_new"}))
	got, err = store.Get(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "cs_new", got.PaymentSessionID)
}
