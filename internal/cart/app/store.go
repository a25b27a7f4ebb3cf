package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"

	"github.com/dejobratic/skygate/internal/cart/domain"
	"github.com/dejobratic/skygate/internal/cart/metrics"
	"github.com/dejobratic/skygate/internal/storage"
	"github.com/shopspring/decimal"
)

// SnapshotKey is the storage key holding the JSON array of cart items.
const SnapshotKey = "cart-snapshot"

// FeeRate is the taxes-and-fees loading shown on the checkout summary.
var FeeRate = decimal.RequireFromString("0.10")

// Summary is the display breakdown of a cart in the reference currency.
type Summary struct {
	Subtotal decimal.Decimal
	Fees     decimal.Decimal
	Total    decimal.Decimal
}

// Store is the authoritative cart of one session. Every mutation rewrites the
// full snapshot; an empty cart has no snapshot at all. Write failures are
// logged and never reach callers.
type Store struct {
	mu      sync.RWMutex
	cart    domain.Cart
	stale   bool
	kv      storage.KV
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewStore(kv storage.KV, logger *slog.Logger, metrics *metrics.Metrics) *Store {
	return &Store{kv: kv, logger: logger, metrics: metrics}
}

// Load replaces the in-memory cart with the stored snapshot. Missing or
// corrupt snapshots yield an empty cart. When storage cannot be read the
// current cart is kept, the error is returned, and the next mutation retries
// the read before writing.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(ctx)
}

// load must be called with s.mu held.
func (s *Store) load(ctx context.Context) error {
	items, err := s.readSnapshot(ctx)
	if err != nil {
		s.stale = true
		s.metrics.RecordSnapshotFailure(ctx, "load")
		s.logger.WarnContext(ctx, "failed to load cart snapshot", "error", err)
		return err
	}
	s.stale = false
	s.cart = domain.NewCart(items)
	return nil
}

func (s *Store) readSnapshot(ctx context.Context) ([]domain.Item, error) {
	raw, err := s.kv.Get(ctx, SnapshotKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var items []domain.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		s.logger.WarnContext(ctx, "discarding corrupt cart snapshot", "error", err)
		return nil, nil
	}
	return items, nil
}

// AddItem inserts item or replaces the entry with the same id in place.
func (s *Store) AddItem(ctx context.Context, item domain.Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.resync(ctx)
	replaced := s.cart.Add(item)
	s.persist(ctx)

	operation := "add"
	if replaced {
		operation = "replace"
	}
	s.metrics.RecordMutation(ctx, operation)
	s.logger.DebugContext(ctx, "cart item stored", "item_id", item.ID, "category", item.Category, "replaced", replaced)
	return nil
}

// RemoveItem deletes the entry with id. Absent ids are ignored.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.resync(ctx)
	if !s.cart.Remove(id) {
		return
	}
	s.persist(ctx)
	s.metrics.RecordMutation(ctx, "remove")
}

// ClearCart empties the cart and deletes the snapshot.
func (s *Store) ClearCart(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cart.Clear()
	s.stale = false
	s.persist(ctx)
	s.metrics.RecordMutation(ctx, "clear")
}

// GetTotal sums prices in the reference currency.
func (s *Store) GetTotal() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Total()
}

// Snapshot returns a read-only copy of the items in cart order.
func (s *Store) Snapshot() []domain.Item {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.Items()
}

func (s *Store) Summary() Summary {
	subtotal := s.GetTotal()
	fees := subtotal.Mul(FeeRate)
	return Summary{Subtotal: subtotal, Fees: fees, Total: subtotal.Add(fees)}
}

// resync retries a failed load so a write never overwrites a snapshot this
// store has not seen. Must be called with s.mu held.
func (s *Store) resync(ctx context.Context) {
	if s.stale {
		_ = s.load(ctx)
	}
}

// persist must be called with s.mu held. Nothing is written while the stored
// snapshot is still unreadable.
func (s *Store) persist(ctx context.Context) {
	if s.stale {
		s.logger.WarnContext(ctx, "skipping cart snapshot write, stored cart unreadable")
		return
	}
	if s.cart.IsEmpty() {
		if err := s.kv.Delete(ctx, SnapshotKey); err != nil {
			s.metrics.RecordSnapshotFailure(ctx, "delete")
			s.logger.WarnContext(ctx, "failed to delete cart snapshot", "error", err)
		}
		return
	}

	raw, err := json.Marshal(s.cart.Items())
	if err != nil {
		s.metrics.RecordSnapshotFailure(ctx, "encode")
		s.logger.ErrorContext(ctx, "failed to encode cart snapshot", "error", err)
		return
	}

	if err := s.kv.Set(ctx, SnapshotKey, string(raw)); err != nil {
		s.metrics.RecordSnapshotFailure(ctx, "write")
		s.logger.WarnContext(ctx, "failed to write cart snapshot", "error", err)
	}
}
