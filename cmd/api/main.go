package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"

	cargoapp "github.com/dejobratic/skygate/internal/cargo/app"
	cargometrics "github.com/dejobratic/skygate/internal/cargo/metrics"
	cartmetrics "github.com/dejobratic/skygate/internal/cart/metrics"
	checkoutadapters "github.com/dejobratic/skygate/internal/checkout/adapters"
	"github.com/dejobratic/skygate/internal/checkout/adapters/stripe"
	checkoutapp "github.com/dejobratic/skygate/internal/checkout/app"
	checkoutmetrics "github.com/dejobratic/skygate/internal/checkout/metrics"
	"github.com/dejobratic/skygate/internal/checkout/ports"
	"github.com/dejobratic/skygate/internal/config"
	"github.com/dejobratic/skygate/internal/database"
	"github.com/dejobratic/skygate/internal/events"
	"github.com/dejobratic/skygate/internal/flights/adapters/amadeus"
	flightsapp "github.com/dejobratic/skygate/internal/flights/app"
	flightsports "github.com/dejobratic/skygate/internal/flights/ports"
	formsmemory "github.com/dejobratic/skygate/internal/forms/adapters/memory"
	"github.com/dejobratic/skygate/internal/forms/adapters/sheets"
	formsapp "github.com/dejobratic/skygate/internal/forms/app"
	formsmetrics "github.com/dejobratic/skygate/internal/forms/metrics"
	formsports "github.com/dejobratic/skygate/internal/forms/ports"
	"github.com/dejobratic/skygate/internal/httpapi"
	idemmemory "github.com/dejobratic/skygate/internal/idempotency/memory"
	idempostgres "github.com/dejobratic/skygate/internal/idempotency/postgres"
	"github.com/dejobratic/skygate/internal/session"
	"github.com/dejobratic/skygate/internal/storage"
	storagememory "github.com/dejobratic/skygate/internal/storage/memory"
	storagepostgres "github.com/dejobratic/skygate/internal/storage/postgres"
	storageredis "github.com/dejobratic/skygate/internal/storage/redis"
	"github.com/dejobratic/skygate/internal/telemetry"
)

const meterName = "github.com/dejobratic/skygate"

func main() {
	logger := telemetry.NewLogger(os.Stdout, slog.LevelInfo)
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger = telemetry.NewLogger(os.Stdout, telemetry.ParseLevel(cfg.Telemetry.LogLevel)).With(
		"service", cfg.Service.Name,
		"version", cfg.Service.Version,
	)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tel, err := telemetry.Initialize(ctx, telemetry.Config{
		ServiceName:    cfg.Service.Name,
		ServiceVersion: cfg.Service.Version,
		Environment:    cfg.Service.Environment,
		OTLPEndpoint:   cfg.Telemetry.OTelEndpoint,
		EnableTracing:  cfg.Telemetry.EnableTracing,
		EnableMetrics:  cfg.Telemetry.EnableMetrics,
		SampleRate:     cfg.Telemetry.SampleRate,
	})
	if err != nil {
		logger.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Error("telemetry shutdown failed", "error", err)
		}
	}()
	meter := tel.Meter(meterName)

	var pool *pgxpool.Pool
	if cfg.Storage.Backend == config.StoragePostgres {
		pool, err = openDatabase(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("failed to open database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
	}

	backend, closeBackend, err := newBackend(cfg, pool, meter)
	if err != nil {
		logger.Error("failed to create storage backend", "backend", cfg.Storage.Backend, "error", err)
		os.Exit(1)
	}
	defer closeBackend()

	var idemStore ports.IdempotencyStore = idemmemory.NewStore()
	if pool != nil {
		idemStore = idempostgres.NewStore(pool)
	}

	cartMetrics, err := cartmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create cart metrics", "error", err)
		os.Exit(1)
	}
	registry, err := session.NewRegistry(backend, cfg.Session.CacheSize, cfg.Session.CacheTTL, logger, cartMetrics)
	if err != nil {
		logger.Error("failed to create session registry", "error", err)
		os.Exit(1)
	}

	publisher, err := newPublisher(logger, meter)
	if err != nil {
		logger.Error("failed to create event publisher", "error", err)
		os.Exit(1)
	}

	provider, err := newPaymentProvider(cfg.Payment, meter, logger)
	if err != nil {
		logger.Error("failed to create payment provider", "error", err)
		os.Exit(1)
	}

	appender, err := newRowAppender(ctx, cfg.Sheets, logger)
	if err != nil {
		logger.Error("failed to create spreadsheet client", "error", err)
		os.Exit(1)
	}

	cargoMetrics, err := cargometrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create cargo metrics", "error", err)
		os.Exit(1)
	}
	checkoutMetrics, err := checkoutmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create checkout metrics", "error", err)
		os.Exit(1)
	}
	formsMetrics, err := formsmetrics.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create forms metrics", "error", err)
		os.Exit(1)
	}
	httpMetrics, err := httpapi.NewMetrics(meter)
	if err != nil {
		logger.Error("failed to create http metrics", "error", err)
		os.Exit(1)
	}

	limiter, err := httpapi.NewRateLimiter(cfg.RateLimit.FormsPerSecond, cfg.RateLimit.FormsBurst, logger, httpMetrics)
	if err != nil {
		logger.Error("failed to create rate limiter", "error", err)
		os.Exit(1)
	}

	var readiness storage.Pinger
	if pinger, ok := backend.(storage.Pinger); ok {
		readiness = pinger
	}

	handler := httpapi.NewHandler(httpapi.Dependencies{
		Logger:        logger,
		Metrics:       httpMetrics,
		Sessions:      registry,
		Readiness:     readiness,
		Cargo:         cargoapp.NewService(logger, cargoMetrics),
		Checkout:      checkoutapp.NewService(registry, provider, publisher, idemStore, logger, checkoutMetrics, cfg.HTTP.SiteURL),
		Forms:         formsapp.NewService(appender, publisher, logger, formsMetrics),
		Flights:       flightsapp.NewService(newFlightSearcher(ctx, cfg.FlightSearch, logger), logger),
		FormsLimiter:  limiter,
		CookieName:    cfg.Session.CookieName,
		SecureCookies: strings.HasPrefix(cfg.HTTP.SiteURL, "https://"),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           otelhttp.NewHandler(handler.Routes(), "skygate-api"),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "port", cfg.HTTP.Port, "storage", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownGrace)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	} else {
		logger.Info("http server stopped")
	}
}

func openDatabase(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*pgxpool.Pool, error) {
	pool, err := database.NewPool(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		logger.Info("running database migrations", "path", cfg.MigrationsPath)
		if err := database.RunMigrations(cfg.URL, cfg.MigrationsPath); err != nil {
			pool.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		logger.Info("migrations completed successfully")
	}
	return pool, nil
}

// newBackend builds the configured KV backend wrapped with tracing and
// metrics. The returned func releases backend-owned connections.
func newBackend(cfg *config.Config, pool *pgxpool.Pool, meter metric.Meter) (storage.Backend, func(), error) {
	metrics, err := storage.NewMetrics(meter)
	if err != nil {
		return nil, nil, err
	}

	var (
		backend storage.Backend
		closer  = func() {}
	)
	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		backend = storagepostgres.NewStore(pool)
	case config.StorageRedis:
		client, err := storageredis.NewClient(cfg.Redis.URL)
		if err != nil {
			return nil, nil, err
		}
		backend = storageredis.NewStore(client)
		closer = func() { _ = client.Close() }
	default:
		backend = storagememory.NewStore()
	}

	return storage.NewObservableBackend(backend, cfg.Storage.Backend, metrics), closer, nil
}

func newPublisher(logger *slog.Logger, meter metric.Meter) (events.Publisher, error) {
	metrics, err := events.NewMetrics(meter)
	if err != nil {
		return nil, err
	}
	return events.NewObservablePublisher(events.NewLogPublisher(logger), metrics), nil
}

func outboundClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: otelhttp.NewTransport(http.DefaultTransport),
		Timeout:   timeout,
	}
}

func newPaymentProvider(cfg config.PaymentConfig, meter metric.Meter, logger *slog.Logger) (ports.PaymentProvider, error) {
	metrics, err := checkoutadapters.NewProviderMetrics(meter)
	if err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		logger.Warn("payment provider not configured, checkout is unavailable")
		return checkoutadapters.NewObservableProvider(checkoutadapters.Unconfigured{}, metrics), nil
	}
	provider := stripe.NewProvider(stripe.Config{
		SecretKey:     cfg.SecretKey,
		WebhookSecret: cfg.WebhookSecret,
		HTTPClient:    outboundClient(cfg.Timeout),
	})
	return checkoutadapters.NewObservableProvider(provider, metrics), nil
}

func newRowAppender(ctx context.Context, cfg config.SheetsConfig, logger *slog.Logger) (formsports.RowAppender, error) {
	if !cfg.Enabled() {
		logger.Warn("spreadsheet not configured, form submissions are kept in memory")
		return formsmemory.NewAppender(), nil
	}
	return sheets.NewAppender(ctx, sheets.Config{
		ClientEmail:   cfg.ClientEmail,
		PrivateKey:    cfg.PrivateKey,
		SpreadsheetID: cfg.SpreadsheetID,
		HTTPClient:    outboundClient(cfg.Timeout),
	})
}

// newFlightSearcher returns nil when no provider credentials are set.
func newFlightSearcher(ctx context.Context, cfg config.FlightSearchConfig, logger *slog.Logger) flightsports.Searcher {
	if !cfg.Enabled() {
		logger.Warn("flight search provider not configured, searches return no offers")
		return nil
	}
	return amadeus.NewClient(ctx, amadeus.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		BaseURL:      cfg.BaseURL,
		HTTPClient:   outboundClient(cfg.Timeout),
	})
}
