package events

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

type failingPublisher struct{}

func (failingPublisher) Publish(context.Context, Event) error {
	return errors.New("broker unavailable")
}

func TestLogPublisher(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := NewLogPublisher(logger).Publish(context.Background(), Event{
		Topic:      TopicCheckoutStarted,
		Key:        "order-1",
		Attributes: map[string]string{"session_id": "s1"},
	})
	if err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"event::checkout.started", "key=order-1", "session_id=s1"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected log to contain %q, got %s", want, out)
		}
	}
}

func TestRecorder(t *testing.T) {
	r := NewRecorder()
	ctx := context.Background()
	_ = r.Publish(ctx, Event{Topic: TopicCheckoutStarted, Key: "a"})
	_ = r.Publish(ctx, Event{Topic: TopicCheckoutCompleted, Key: "a"})

	topics := r.Topics()
	if len(topics) != 2 || topics[0] != TopicCheckoutStarted || topics[1] != TopicCheckoutCompleted {
		t.Errorf("unexpected topics %v", topics)
	}
	if r.Events()[1].Key != "a" {
		t.Errorf("expected key to be recorded")
	}
}

func TestObservablePublisher(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	otel.SetTracerProvider(trace.NewTracerProvider(trace.WithSyncer(exp)))
	defer otel.SetTracerProvider(tracenoop.NewTracerProvider())

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	ctx := context.Background()

	ok := NewObservablePublisher(NewRecorder(), metrics)
	if err := ok.Publish(ctx, Event{Topic: TopicFormSubmitted, Key: "visa"}); err != nil {
		t.Fatalf("Publish() failed: %v", err)
	}

	failing := NewObservablePublisher(failingPublisher{}, metrics)
	if err := failing.Publish(ctx, Event{Topic: TopicCheckoutCompleted, Key: "order-1"}); err == nil {
		t.Fatal("expected publish error")
	}

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[1].Status.Code != codes.Error {
		t.Errorf("expected error status on failed publish, got %v", spans[1].Status.Code)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}

	found := false
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "event_publish_latency_seconds" {
				continue
			}
			found = true
			histogram, ok := m.Data.(metricdata.Histogram[float64])
			if !ok {
				t.Fatal("expected Histogram[float64] data type")
			}
			if len(histogram.DataPoints) != 2 {
				t.Errorf("expected 2 data points, got %d", len(histogram.DataPoints))
			}
		}
	}
	if !found {
		t.Error("event_publish_latency_seconds metric not found")
	}
}
