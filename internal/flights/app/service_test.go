package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/dejobratic/skygate/internal/flights/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	got    domain.SearchParams
	offers []domain.Offer
	err    error
}

func (s *stubSearcher) Search(_ context.Context, p domain.SearchParams) ([]domain.Offer, error) {
	s.got = p
	return s.offers, s.err
}

var logger = slog.New(slog.NewTextHandler(io.Discard, nil))

func params() domain.SearchParams {
	return domain.SearchParams{Origin: "Addis Ababa (ADD)", Destination: "Dubai (DXB)", DepartureDate: "2026-06-01"}
}

func TestSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("unconfigured provider yields no offers", func(t *testing.T) {
		offers, err := NewService(nil, logger).Search(ctx, params())
		require.NoError(t, err)
		assert.NotNil(t, offers)
		assert.Empty(t, offers)
	})

	t.Run("normalizes params before searching", func(t *testing.T) {
		stub := &stubSearcher{offers: []domain.Offer{{ID: "1"}}}
		offers, err := NewService(stub, logger).Search(ctx, params())
		require.NoError(t, err)

		assert.Len(t, offers, 1)
		assert.Equal(t, "ADD", stub.got.Origin)
		assert.Equal(t, "USD", stub.got.Currency)
		assert.Equal(t, 20, stub.got.Max)
	})

	t.Run("invalid params never reach the provider", func(t *testing.T) {
		stub := &stubSearcher{}
		p := params()
		p.DepartureDate = "soon"
		_, err := NewService(stub, logger).Search(ctx, p)
		assert.ErrorIs(t, err, domain.ErrInvalidSearch)
		assert.Empty(t, stub.got.Origin)
	})

	t.Run("provider errors are surfaced", func(t *testing.T) {
		stub := &stubSearcher{err: errors.New("rate limited")}
		_, err := NewService(stub, logger).Search(ctx, params())
		assert.ErrorIs(t, err, ErrSearchFailed)
	})
}
