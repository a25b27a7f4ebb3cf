package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	cartapp "github.com/dejobratic/skygate/internal/cart/app"
	cartdomain "github.com/dejobratic/skygate/internal/cart/domain"
	cartmetrics "github.com/dejobratic/skygate/internal/cart/metrics"
	"github.com/dejobratic/skygate/internal/checkout/app"
	"github.com/dejobratic/skygate/internal/checkout/domain"
	"github.com/dejobratic/skygate/internal/checkout/metrics"
	"github.com/dejobratic/skygate/internal/checkout/ports"
	"github.com/dejobratic/skygate/internal/events"
	idemmemory "github.com/dejobratic/skygate/internal/idempotency/memory"
	"github.com/dejobratic/skygate/internal/storage"
	"github.com/dejobratic/skygate/internal/storage/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

// carts is a minimal session directory over one storage backend.
type carts struct {
	t        *testing.T
	backend  *memory.Store
	sessions map[string]*cartapp.Store
}

func newCarts(t *testing.T) *carts {
	return &carts{t: t, backend: memory.NewStore(), sessions: map[string]*cartapp.Store{}}
}

func (c *carts) store(id string) *cartapp.Store {
	if s, ok := c.sessions[id]; ok {
		return s
	}
	m, err := cartmetrics.NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(c.t, err)
	s := cartapp.NewStore(storage.Scope(c.backend, id), discardLogger(), m)
	require.NoError(c.t, s.Load(context.Background()))
	c.sessions[id] = s
	return s
}

func (c *carts) Snapshot(_ context.Context, id string) ([]cartdomain.Item, error) {
	return c.store(id).Snapshot(), nil
}

func (c *carts) Clear(ctx context.Context, id string) error {
	c.store(id).ClearCart(ctx)
	return nil
}

type fakeProvider struct {
	event    domain.Event
	parseErr error
	created  int
}

func (f *fakeProvider) CreateSession(_ context.Context, req domain.SessionRequest) (domain.SessionHandle, error) {
	f.created++
	return domain.SessionHandle{ID: "cs_" + req.CartSessionID, URL: "https://pay.example"}, nil
}

func (f *fakeProvider) ParseEvent([]byte, string) (domain.Event, error) {
	return f.event, f.parseErr
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newService(t *testing.T, c ports.Carts, provider ports.PaymentProvider, recorder *events.Recorder) *app.Service {
	t.Helper()
	m, err := metrics.NewMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)
	return app.NewService(c, provider, recorder, idemmemory.NewStore(), discardLogger(), m, "https://skygate.example")
}

func addItem(t *testing.T, c *carts, session, id string) {
	t.Helper()
	require.NoError(t, c.store(session).AddItem(context.Background(), cartdomain.Item{
		ID:       id,
		Name:     "Desert safari",
		Price:    decimal.NewFromInt(75),
		Category: cartdomain.CategoryPackage,
	}))
}

func TestServiceCreateSession(t *testing.T) {
	c := newCarts(t)
	addItem(t, c, "s1", "p1")
	provider := &fakeProvider{}
	svc := newService(t, c, provider, events.NewRecorder())

	result, err := svc.CreateSession(context.Background(), "s1", "")
	require.NoError(t, err)
	assert.Equal(t, "cs_s1", result.Session.ID)

	_, err = svc.CreateSession(context.Background(), "empty", "")
	assert.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Equal(t, 1, provider.created)
}

func TestServiceHandleWebhook(t *testing.T) {
	ctx := context.Background()

	t.Run("completed checkout clears only the referenced cart", func(t *testing.T) {
		c := newCarts(t)
		addItem(t, c, "s1", "p1")
		addItem(t, c, "s2", "p2")
		recorder := events.NewRecorder()
		provider := &fakeProvider{event: domain.Event{
			ID:               "evt_1",
			Type:             domain.EventCheckoutCompleted,
			PaymentSessionID: "cs_s1",
			Metadata:         map[string]string{domain.MetadataCartSession: "s1", domain.MetadataOrderID: "o1"},
		}}
		svc := newService(t, c, provider, recorder)

		require.NoError(t, svc.HandleWebhook(ctx, []byte(`{}`), "sig"))

		assert.Empty(t, c.store("s1").Snapshot())
		assert.Len(t, c.store("s2").Snapshot(), 1)
		assert.Equal(t, []string{events.TopicCheckoutCompleted}, recorder.Topics())
	})

	t.Run("other events are acknowledged without side effects", func(t *testing.T) {
		c := newCarts(t)
		addItem(t, c, "s1", "p1")
		recorder := events.NewRecorder()
		provider := &fakeProvider{event: domain.Event{
			Type:     "payment_intent.created",
			Metadata: map[string]string{domain.MetadataCartSession: "s1"},
		}}
		svc := newService(t, c, provider, recorder)

		require.NoError(t, svc.HandleWebhook(ctx, []byte(`{}`), "sig"))
		assert.Len(t, c.store("s1").Snapshot(), 1)
		assert.Empty(t, recorder.Events())
	})

	t.Run("completed checkout without a cart session is acknowledged", func(t *testing.T) {
		provider := &fakeProvider{event: domain.Event{Type: domain.EventCheckoutCompleted}}
		svc := newService(t, newCarts(t), provider, events.NewRecorder())

		assert.NoError(t, svc.HandleWebhook(ctx, []byte(`{}`), "sig"))
	})

	t.Run("bad signatures are rejected", func(t *testing.T) {
		provider := &fakeProvider{parseErr: domain.ErrInvalidSignature}
		svc := newService(t, newCarts(t), provider, events.NewRecorder())

		err := svc.HandleWebhook(ctx, []byte(`{}`), "forged")
		assert.ErrorIs(t, err, domain.ErrInvalidSignature)
	})
}

func TestServiceConfirmReturn(t *testing.T) {
	ctx := context.Background()
	c := newCarts(t)
	addItem(t, c, "s1", "p1")
	svc := newService(t, c, &fakeProvider{}, events.NewRecorder())

	err := svc.ConfirmReturn(ctx, "s1", " ")
	assert.True(t, errors.Is(err, domain.ErrMissingPaymentToken))
	assert.Len(t, c.store("s1").Snapshot(), 1)

	require.NoError(t, svc.ConfirmReturn(ctx, "s1", "cs_s1"))
	assert.Empty(t, c.store("s1").Snapshot())
}

func TestServiceIdempotentResponses(t *testing.T) {
	ctx := context.Background()
	svc := newService(t, newCarts(t), &fakeProvider{}, events.NewRecorder())

	stored, err := svc.GetIdempotentResponse(ctx, "k1")
	require.NoError(t, err)
	assert.Nil(t, stored)

	require.NoError(t, svc.SaveIdempotentResponse(ctx, "k1", ports.StoredResponse{StatusCode: 201, PaymentSessionID: "cs_1"}))
	stored, err = svc.GetIdempotentResponse(ctx, "k1")
	require.NoError(t, err)
	assert.Equal(t, "cs_1", stored.PaymentSessionID)
}
