package memory

import (
	"context"
	"sync"
)

// Appender keeps appended rows per range in memory.
type Appender struct {
	mu   sync.Mutex
	rows map[string][][]any
}

func NewAppender() *Appender {
	return &Appender{rows: make(map[string][][]any)}
}

func (a *Appender) Append(_ context.Context, rng string, row []any) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.rows[rng] = append(a.rows[rng], append([]any(nil), row...))
	return nil
}

// Rows returns the rows appended to rng, oldest first.
func (a *Appender) Rows(rng string) [][]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([][]any, len(a.rows[rng]))
	copy(out, a.rows[rng])
	return out
}
