package ports

import (
	"context"

	"github.com/dejobratic/skygate/internal/flights/domain"
)

// Searcher queries a flight-offer provider.
type Searcher interface {
	Search(ctx context.Context, params domain.SearchParams) ([]domain.Offer, error)
}
