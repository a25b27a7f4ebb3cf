package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
)

func testConfig() Config {
	return Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		SampleRate:     1.0,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid", func(*Config) {}, nil},
		{"missing service name", func(c *Config) { c.ServiceName = "" }, ErrMissingServiceName},
		{"missing service version", func(c *Config) { c.ServiceVersion = "" }, ErrMissingServiceVersion},
		{"negative sample rate", func(c *Config) { c.SampleRate = -0.1 }, ErrInvalidSampleRate},
		{"sample rate above one", func(c *Config) { c.SampleRate = 1.1 }, ErrInvalidSampleRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestInitialize(t *testing.T) {
	t.Run("installs both providers with supplied exporters", func(t *testing.T) {
		cfg := testConfig()
		cfg.EnableTracing = true
		cfg.EnableMetrics = true

		tel, err := Initialize(context.Background(), cfg,
			WithTraceExporter(NewNoopTraceExporter()),
			WithMetricExporter(NewNoopMetricExporter()),
		)
		if err != nil {
			t.Fatalf("Initialize() failed: %v", err)
		}
		t.Cleanup(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tel.Shutdown(ctx); err != nil {
				t.Errorf("shutdown failed: %v", err)
			}
		})

		if tel.TracerProvider() == nil {
			t.Error("expected tracer provider")
		}
		if tel.MeterProvider() == nil {
			t.Error("expected meter provider")
		}
	})

	t.Run("falls back to no-op exporters without an endpoint", func(t *testing.T) {
		cfg := testConfig()
		cfg.EnableMetrics = true

		tel, err := Initialize(context.Background(), cfg)
		if err != nil {
			t.Fatalf("Initialize() failed: %v", err)
		}
		defer func() { _ = tel.Shutdown(context.Background()) }()

		if tel.TracerProvider() != nil {
			t.Error("expected tracing to stay disabled")
		}
		if tel.Meter("test") == nil {
			t.Error("expected a meter")
		}
	})

	t.Run("rejects invalid config", func(t *testing.T) {
		cfg := testConfig()
		cfg.ServiceName = ""

		if _, err := Initialize(context.Background(), cfg); !errors.Is(err, ErrInvalidConfig) {
			t.Fatalf("expected ErrInvalidConfig, got %v", err)
		}
	})
}

func TestMeterOnNilTelemetry(t *testing.T) {
	var tel *Telemetry
	if tel.Meter("test") == nil {
		t.Fatal("expected no-op meter")
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for input, want := range tests {
		if got := ParseLevel(input); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", input, got, want)
		}
	}
}

func TestLoggerIncludesTraceContext(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo).With("component", "cart")

	exp := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exp))
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(tracenoop.NewTracerProvider())

	ctx, span := StartSpan(context.Background(), "test-span")
	logger.InfoContext(ctx, "item added", "item_id", "hotel-1")
	span.End()

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}

	if entry["trace_id"] != TraceID(ctx) {
		t.Errorf("expected trace_id %q, got %v", TraceID(ctx), entry["trace_id"])
	}
	if entry["span_id"] != SpanID(ctx) {
		t.Errorf("expected span_id %q, got %v", SpanID(ctx), entry["span_id"])
	}
	if entry["component"] != "cart" {
		t.Errorf("expected component attr, got %v", entry["component"])
	}
}

func TestLoggerWithoutSpan(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, slog.LevelInfo).WithGroup("req")

	logger.Info("plain", "path", "/v1/cart")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output: %v", err)
	}
	if _, ok := entry["trace_id"]; ok {
		t.Error("expected no trace_id outside a span")
	}
	group, ok := entry["req"].(map[string]any)
	if !ok || group["path"] != "/v1/cart" {
		t.Errorf("expected grouped path attr, got %v", entry["req"])
	}
}

func TestEndSpan(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	tp := trace.NewTracerProvider(trace.WithSyncer(exp))
	otel.SetTracerProvider(tp)
	defer otel.SetTracerProvider(tracenoop.NewTracerProvider())

	_, ok := StartSpan(context.Background(), "ok")
	EndSpan(ok, nil)
	ok.End()

	_, failed := StartSpan(context.Background(), "failed")
	EndSpan(failed, errors.New("boom"))
	failed.End()

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Status.Code != codes.Ok {
		t.Errorf("expected ok status, got %v", spans[0].Status.Code)
	}
	if spans[1].Status.Code != codes.Error || len(spans[1].Events) == 0 {
		t.Errorf("expected error status with recorded event, got %+v", spans[1].Status)
	}
}
