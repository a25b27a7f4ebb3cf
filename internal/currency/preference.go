package currency

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/dejobratic/skygate/internal/storage"
)

// PreferenceKey is the storage key for the chosen display currency.
const PreferenceKey = "currency-preference"

// Preference is a session's display currency, mirrored to storage.
type Preference struct {
	mu      sync.RWMutex
	kv      storage.KV
	logger  *slog.Logger
	current Currency
}

func NewPreference(kv storage.KV, logger *slog.Logger) *Preference {
	return &Preference{kv: kv, logger: logger, current: Reference}
}

// Load restores the stored preference. Missing or unknown values leave the
// current choice in place. A storage failure is returned.
func (p *Preference) Load(ctx context.Context) error {
	value, err := p.kv.Get(ctx, PreferenceKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		p.logger.WarnContext(ctx, "failed to load currency preference", "error", err)
		return err
	}

	c, err := ParseCurrency(value)
	if err != nil {
		p.logger.WarnContext(ctx, "ignoring stored currency preference", "value", value)
		return nil
	}

	p.mu.Lock()
	p.current = c
	p.mu.Unlock()
	return nil
}

func (p *Preference) Get() Currency {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Set updates the preference and writes it through. A failed write is logged;
// the in-memory value still changes.
func (p *Preference) Set(ctx context.Context, c Currency) {
	p.mu.Lock()
	p.current = c
	p.mu.Unlock()

	if err := p.kv.Set(ctx, PreferenceKey, string(c)); err != nil {
		p.logger.WarnContext(ctx, "failed to persist currency preference", "currency", c, "error", err)
	}
}
