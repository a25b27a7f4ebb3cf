package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration for the booking API.
type Config struct {
	HTTP         HTTPConfig
	Storage      StorageConfig
	Database     DatabaseConfig
	Redis        RedisConfig
	Session      SessionConfig
	Telemetry    TelemetryConfig
	Service      ServiceConfig
	Payment      PaymentConfig
	Sheets       SheetsConfig
	FlightSearch FlightSearchConfig
	RateLimit    RateLimitConfig
}

type HTTPConfig struct {
	Port          int
	SiteURL       string
	ShutdownGrace int
}

// StorageConfig selects the backend holding cart snapshots and preferences.
type StorageConfig struct {
	Backend string
}

type DatabaseConfig struct {
	URL            string
	AutoMigrate    bool
	MigrationsPath string
}

type RedisConfig struct {
	URL string
}

type SessionConfig struct {
	CookieName string
	CacheSize  int
	CacheTTL   time.Duration
}

type TelemetryConfig struct {
	LogLevel      string
	OTelEndpoint  string
	EnableTracing bool
	EnableMetrics bool
	SampleRate    float64
}

type ServiceConfig struct {
	Name        string
	Version     string
	Environment string
}

type PaymentConfig struct {
	SecretKey     string
	WebhookSecret string
	Timeout       time.Duration
}

type SheetsConfig struct {
	ClientEmail   string
	PrivateKey    string
	SpreadsheetID string
	Timeout       time.Duration
}

type FlightSearchConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	Timeout      time.Duration
}

type RateLimitConfig struct {
	FormsPerSecond int
	FormsBurst     int
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

const (
	defaultHTTPPort         = 8080
	defaultSiteURL          = "http://localhost:3000"
	defaultShutdownGrace    = 15
	defaultStorageBackend   = StorageMemory
	defaultMigrationsPath   = "migrations"
	defaultAutoMigrate      = true
	defaultRedisURL         = "redis://localhost:6379/0"
	defaultCookieName       = "skygate_session"
	defaultSessionCacheSize = 4096
	defaultSessionCacheTTL  = 30 * time.Minute
	defaultServiceName      = "skygate-api"
	defaultServiceVersion   = "0.1.0"
	defaultEnvironment      = "development"
	defaultLogLevel         = "info"
	defaultOTelSampleRate   = 1.0
	defaultUpstreamTimeout  = 10 * time.Second
	defaultFlightSearchURL  = "https://test.api.amadeus.com"
	defaultFormsPerSecond   = 2
	defaultFormsBurst       = 5
)

// Load reads configuration from environment variables, applying defaults when needed.
func Load() (*Config, error) {
	httpCfg, err := loadHTTPConfig()
	if err != nil {
		return nil, fmt.Errorf("loading HTTP config: %w", err)
	}

	storageCfg, err := loadStorageConfig()
	if err != nil {
		return nil, fmt.Errorf("loading storage config: %w", err)
	}

	sessionCfg, err := loadSessionConfig()
	if err != nil {
		return nil, fmt.Errorf("loading session config: %w", err)
	}

	telCfg, err := loadTelemetryConfig()
	if err != nil {
		return nil, fmt.Errorf("loading telemetry config: %w", err)
	}

	timeout, err := getDurationEnv("UPSTREAM_TIMEOUT", defaultUpstreamTimeout)
	if err != nil {
		return nil, fmt.Errorf("loading upstream timeout: %w", err)
	}

	rateCfg, err := loadRateLimitConfig()
	if err != nil {
		return nil, fmt.Errorf("loading rate limit config: %w", err)
	}

	return &Config{
		HTTP:      httpCfg,
		Storage:   storageCfg,
		Database:  loadDatabaseConfig(),
		Redis:     RedisConfig{URL: getEnvOrDefault("REDIS_URL", defaultRedisURL)},
		Session:   sessionCfg,
		Telemetry: telCfg,
		Service:   loadServiceConfig(),
		Payment: PaymentConfig{
			SecretKey:     os.Getenv("STRIPE_SECRET_KEY"),
			WebhookSecret: os.Getenv("STRIPE_WEBHOOK_SECRET"),
			Timeout:       timeout,
		},
		Sheets: SheetsConfig{
			ClientEmail: os.Getenv("GOOGLE_SHEETS_CLIENT_EMAIL"),
			// Keys pasted into env files usually carry escaped newlines.
			PrivateKey:    strings.ReplaceAll(os.Getenv("GOOGLE_SHEETS_PRIVATE_KEY"), `\n`, "\n"),
			SpreadsheetID: os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID"),
			Timeout:       timeout,
		},
		FlightSearch: FlightSearchConfig{
			ClientID:     os.Getenv("AMADEUS_CLIENT_ID"),
			ClientSecret: os.Getenv("AMADEUS_CLIENT_SECRET"),
			BaseURL:      getEnvOrDefault("AMADEUS_BASE_URL", defaultFlightSearchURL),
			Timeout:      timeout,
		},
		RateLimit: rateCfg,
	}, nil
}

// Enabled reports whether payment credentials are present.
func (c PaymentConfig) Enabled() bool {
	return c.SecretKey != ""
}

func (c SheetsConfig) Enabled() bool {
	return c.ClientEmail != "" && c.PrivateKey != "" && c.SpreadsheetID != ""
}

func (c FlightSearchConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

func loadHTTPConfig() (HTTPConfig, error) {
	port, err := getIntEnv("API_HTTP_PORT", defaultHTTPPort)
	if err != nil {
		return HTTPConfig{}, err
	}

	shutdownGrace, err := getIntEnv("API_SHUTDOWN_GRACE_SECONDS", defaultShutdownGrace)
	if err != nil {
		return HTTPConfig{}, err
	}

	return HTTPConfig{
		Port:          port,
		SiteURL:       strings.TrimSuffix(getEnvOrDefault("SITE_URL", defaultSiteURL), "/"),
		ShutdownGrace: shutdownGrace,
	}, nil
}

func loadStorageConfig() (StorageConfig, error) {
	backend := strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", defaultStorageBackend))
	switch backend {
	case StorageMemory, StoragePostgres, StorageRedis:
		return StorageConfig{Backend: backend}, nil
	default:
		return StorageConfig{}, fmt.Errorf("invalid STORAGE_BACKEND %q", backend)
	}
}

func loadDatabaseConfig() DatabaseConfig {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		databaseURL = buildDatabaseURL()
	}

	return DatabaseConfig{
		URL:            databaseURL,
		AutoMigrate:    getBoolEnv("AUTO_MIGRATE", defaultAutoMigrate),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", defaultMigrationsPath),
	}
}

func loadSessionConfig() (SessionConfig, error) {
	size, err := getIntEnv("SESSION_CACHE_SIZE", defaultSessionCacheSize)
	if err != nil {
		return SessionConfig{}, err
	}

	ttl, err := getDurationEnv("SESSION_CACHE_TTL", defaultSessionCacheTTL)
	if err != nil {
		return SessionConfig{}, err
	}

	return SessionConfig{
		CookieName: getEnvOrDefault("SESSION_COOKIE_NAME", defaultCookieName),
		CacheSize:  size,
		CacheTTL:   ttl,
	}, nil
}

func loadTelemetryConfig() (TelemetryConfig, error) {
	sampleRate := defaultOTelSampleRate
	if value, ok := os.LookupEnv("OTEL_SAMPLE_RATE"); ok {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return TelemetryConfig{}, fmt.Errorf("invalid OTEL_SAMPLE_RATE: %w", err)
		}
		sampleRate = parsed
	}

	return TelemetryConfig{
		LogLevel:      getEnvOrDefault("LOG_LEVEL", defaultLogLevel),
		OTelEndpoint:  getEnvOrDefault("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
		EnableTracing: getBoolEnv("OTEL_ENABLE_TRACING", true),
		EnableMetrics: getBoolEnv("OTEL_ENABLE_METRICS", true),
		SampleRate:    sampleRate,
	}, nil
}

func loadServiceConfig() ServiceConfig {
	return ServiceConfig{
		Name:        getEnvOrDefault("API_SERVICE_NAME", defaultServiceName),
		Version:     getEnvOrDefault("SERVICE_VERSION", defaultServiceVersion),
		Environment: getEnvOrDefault("ENVIRONMENT", defaultEnvironment),
	}
}

func loadRateLimitConfig() (RateLimitConfig, error) {
	perSecond, err := getIntEnv("FORMS_RATE_PER_SECOND", defaultFormsPerSecond)
	if err != nil {
		return RateLimitConfig{}, err
	}

	burst, err := getIntEnv("FORMS_RATE_BURST", defaultFormsBurst)
	if err != nil {
		return RateLimitConfig{}, err
	}

	return RateLimitConfig{FormsPerSecond: perSecond, FormsBurst: burst}, nil
}

func buildDatabaseURL() string {
	host := getEnvOrDefault("DB_HOST", "localhost")
	port := getEnvOrDefault("DB_PORT", "5432")
	user := getEnvOrDefault("DB_USER", "postgres")
	password := getEnvOrDefault("DB_PASSWORD", "postgres")
	dbName := getEnvOrDefault("DB_NAME", "skygate")
	sslMode := getEnvOrDefault("DB_SSLMODE", "disable")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s&pool_max_conns=%s&pool_min_conns=%s",
		user, password, host, port, dbName, sslMode,
		getEnvOrDefault("DB_MAX_CONNS", "10"),
		getEnvOrDefault("DB_MIN_CONNS", "2"),
	)
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		return value == "true"
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return parsed, nil
}
