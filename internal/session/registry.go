// Package session maps browser session ids onto their cart and currency
// preference, keeping recently used sessions in memory.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	cartapp "github.com/dejobratic/skygate/internal/cart/app"
	"github.com/dejobratic/skygate/internal/cart/domain"
	cartmetrics "github.com/dejobratic/skygate/internal/cart/metrics"
	"github.com/dejobratic/skygate/internal/currency"
	"github.com/dejobratic/skygate/internal/storage"
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

var ErrInvalidSessionID = errors.New("invalid session id")

// Session is the per-visitor state. Its stores are safe for concurrent use.
type Session struct {
	ID       string
	Cart     *cartapp.Store
	Currency *currency.Preference

	loadedAt atomic.Int64
}

// Registry hands out one Session per id. Cached sessions older than the
// configured TTL are refreshed in place from storage on next access so writes
// made by other replicas become visible. A session whose storage could not be
// read is served but not cached.
type Registry struct {
	backend     storage.Backend
	cache       *lru.Cache[string, *Session]
	group       singleflight.Group
	ttl         time.Duration
	logger      *slog.Logger
	cartMetrics *cartmetrics.Metrics
	now         func() time.Time
}

func NewRegistry(backend storage.Backend, size int, ttl time.Duration, logger *slog.Logger, cartMetrics *cartmetrics.Metrics) (*Registry, error) {
	cache, err := lru.New[string, *Session](size)
	if err != nil {
		return nil, fmt.Errorf("create session cache: %w", err)
	}
	return &Registry{
		backend:     backend,
		cache:       cache,
		ttl:         ttl,
		logger:      logger,
		cartMetrics: cartMetrics,
		now:         time.Now,
	}, nil
}

// NewID returns a fresh random session id.
func NewID() string {
	return uuid.NewString()
}

// Get returns the session for id, loading it from storage on first use.
// Concurrent first requests for the same id share a single load, which is
// detached from the caller's cancellation.
func (r *Registry) Get(ctx context.Context, id string) (*Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrInvalidSessionID
	}

	if s, ok := r.cache.Get(id); ok && !r.expired(s) {
		return s, nil
	}

	v, err, _ := r.group.Do(id, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)

		if s, ok := r.cache.Get(id); ok {
			if r.expired(s) {
				r.refresh(loadCtx, s)
			}
			return s, nil
		}

		s, err := r.load(loadCtx, id)
		if err != nil {
			r.logger.WarnContext(ctx, "session storage unreadable, not caching", "session_id", id, "error", err)
			return s, nil
		}
		r.cache.Add(id, s)
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Session), nil
}

// Snapshot returns the cart items of session id.
func (r *Registry) Snapshot(ctx context.Context, id string) ([]domain.Item, error) {
	s, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.Cart.Snapshot(), nil
}

// Clear empties the cart of session id.
func (r *Registry) Clear(ctx context.Context, id string) error {
	s, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	s.Cart.ClearCart(ctx)
	return nil
}

// Forget drops id from memory. Stored state is untouched.
func (r *Registry) Forget(id string) {
	r.cache.Remove(id)
}

func (r *Registry) Len() int {
	return r.cache.Len()
}

func (r *Registry) expired(s *Session) bool {
	return r.ttl > 0 && r.now().Sub(time.Unix(0, s.loadedAt.Load())) > r.ttl
}

func (r *Registry) load(ctx context.Context, id string) (*Session, error) {
	kv := storage.Scope(r.backend, id)
	logger := r.logger.With("session_id", id)

	s := &Session{
		ID:       id,
		Cart:     cartapp.NewStore(kv, logger, r.cartMetrics),
		Currency: currency.NewPreference(kv, logger),
	}
	if err := s.reload(ctx); err != nil {
		return s, err
	}
	s.loadedAt.Store(r.now().UnixNano())
	return s, nil
}

// refresh reloads s in place so handlers holding s keep writing to the live
// stores. On failure the current state is kept and the next access retries.
func (r *Registry) refresh(ctx context.Context, s *Session) {
	if err := s.reload(ctx); err != nil {
		r.logger.WarnContext(ctx, "session refresh failed, keeping cached state", "session_id", s.ID, "error", err)
		return
	}
	s.loadedAt.Store(r.now().UnixNano())
}

func (s *Session) reload(ctx context.Context) error {
	return errors.Join(s.Cart.Load(ctx), s.Currency.Load(ctx))
}
