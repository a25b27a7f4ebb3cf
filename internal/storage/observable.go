package storage

import (
	"context"
	"errors"
	"time"

	"github.com/dejobratic/skygate/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

// ObservableBackend traces and times every call to the wrapped backend.
type ObservableBackend struct {
	backend Backend
	name    string
	metrics *Metrics
}

func NewObservableBackend(backend Backend, name string, metrics *Metrics) *ObservableBackend {
	return &ObservableBackend{backend: backend, name: name, metrics: metrics}
}

func (o *ObservableBackend) Get(ctx context.Context, namespace, key string) (string, error) {
	var value string
	err := o.observe(ctx, "get", namespace, key, func(ctx context.Context) error {
		var err error
		value, err = o.backend.Get(ctx, namespace, key)
		return err
	})
	return value, err
}

func (o *ObservableBackend) Set(ctx context.Context, namespace, key, value string) error {
	return o.observe(ctx, "set", namespace, key, func(ctx context.Context) error {
		return o.backend.Set(ctx, namespace, key, value)
	})
}

func (o *ObservableBackend) Delete(ctx context.Context, namespace, key string) error {
	return o.observe(ctx, "delete", namespace, key, func(ctx context.Context) error {
		return o.backend.Delete(ctx, namespace, key)
	})
}

// Ping forwards to the wrapped backend when it supports readiness checks.
func (o *ObservableBackend) Ping(ctx context.Context) error {
	if p, ok := o.backend.(Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (o *ObservableBackend) observe(ctx context.Context, operation, namespace, key string, fn func(context.Context) error) error {
	ctx, span := telemetry.StartSpan(ctx, "Storage."+operation)
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("storage.backend", o.name),
		attribute.String("storage.namespace", namespace),
		attribute.String("storage.key", key),
	)

	start := time.Now()
	err := fn(ctx)
	o.metrics.RecordOperation(ctx, o.name, operation, time.Since(start).Seconds(), err)

	if err != nil && !errors.Is(err, ErrNotFound) {
		telemetry.RecordSpanError(span, err)
		return err
	}

	telemetry.SetSpanSuccess(span)
	return err
}
