package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.HTTP.Port != defaultHTTPPort {
		t.Errorf("expected port %d, got %d", defaultHTTPPort, cfg.HTTP.Port)
	}
	if cfg.Storage.Backend != StorageMemory {
		t.Errorf("expected storage backend %q, got %q", StorageMemory, cfg.Storage.Backend)
	}
	if cfg.Session.CookieName != defaultCookieName {
		t.Errorf("expected cookie name %q, got %q", defaultCookieName, cfg.Session.CookieName)
	}
	if cfg.Payment.Enabled() {
		t.Error("expected payment to be disabled without a secret key")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("API_HTTP_PORT", "9090")
	t.Setenv("STORAGE_BACKEND", "Redis")
	t.Setenv("SITE_URL", "https://skygate.example/")
	t.Setenv("SESSION_CACHE_TTL", "5m")
	t.Setenv("GOOGLE_SHEETS_PRIVATE_KEY", `line1\nline2`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Storage.Backend != StorageRedis {
		t.Errorf("expected redis backend, got %q", cfg.Storage.Backend)
	}
	if cfg.HTTP.SiteURL != "https://skygate.example" {
		t.Errorf("expected trailing slash trimmed, got %q", cfg.HTTP.SiteURL)
	}
	if cfg.Session.CacheTTL != 5*time.Minute {
		t.Errorf("expected 5m ttl, got %s", cfg.Session.CacheTTL)
	}
	if cfg.Sheets.PrivateKey != "line1\nline2" {
		t.Errorf("expected escaped newlines to be expanded, got %q", cfg.Sheets.PrivateKey)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non numeric port", "API_HTTP_PORT", "eighty"},
		{"unknown storage backend", "STORAGE_BACKEND", "cassandra"},
		{"bad sample rate", "OTEL_SAMPLE_RATE", "high"},
		{"bad upstream timeout", "UPSTREAM_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
