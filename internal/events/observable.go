package events

import (
	"context"
	"time"

	"github.com/dejobratic/skygate/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservablePublisher struct {
	publisher Publisher
	metrics   *Metrics
}

func NewObservablePublisher(publisher Publisher, metrics *Metrics) *ObservablePublisher {
	return &ObservablePublisher{
		publisher: publisher,
		metrics:   metrics,
	}
}

func (o *ObservablePublisher) Publish(ctx context.Context, event Event) error {
	ctx, span := telemetry.StartSpan(ctx, "EventBus.Publish")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("event.type", event.Topic),
		attribute.String("event.key", event.Key),
	)

	start := time.Now()
	err := o.publisher.Publish(ctx, event)
	o.metrics.RecordPublish(ctx, event.Topic, time.Since(start).Seconds(), err == nil)

	telemetry.EndSpan(span, err)
	return err
}
