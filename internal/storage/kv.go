// Package storage holds the string key/value port used for session-scoped
// durable state (cart snapshots and currency preferences) and its adapters.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("key not found")

// Backend stores string values under (namespace, key) pairs. Writes are full
// overwrites; the last writer wins.
type Backend interface {
	Get(ctx context.Context, namespace, key string) (string, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
}

// KV is a Backend bound to a single namespace, typically a browsing session.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// Pinger is implemented by backends that can report readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Scope binds backend to namespace.
func Scope(backend Backend, namespace string) KV {
	return scoped{backend: backend, namespace: namespace}
}

type scoped struct {
	backend   Backend
	namespace string
}

func (s scoped) Get(ctx context.Context, key string) (string, error) {
	return s.backend.Get(ctx, s.namespace, key)
}

func (s scoped) Set(ctx context.Context, key, value string) error {
	return s.backend.Set(ctx, s.namespace, key, value)
}

func (s scoped) Delete(ctx context.Context, key string) error {
	return s.backend.Delete(ctx, s.namespace, key)
}
