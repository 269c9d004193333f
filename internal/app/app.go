package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ahmad5farah/AmaKart/internal/account"
	"github.com/ahmad5farah/AmaKart/internal/auth"
	"github.com/ahmad5farah/AmaKart/internal/cache"
	"github.com/ahmad5farah/AmaKart/internal/catalog"
	"github.com/ahmad5farah/AmaKart/internal/checkout"
	"github.com/ahmad5farah/AmaKart/internal/config"
	"github.com/ahmad5farah/AmaKart/internal/domain"
	"github.com/ahmad5farah/AmaKart/internal/event"
	"github.com/ahmad5farah/AmaKart/internal/gateway"
	"github.com/ahmad5farah/AmaKart/internal/gateway/postgres"
	handler "github.com/ahmad5farah/AmaKart/internal/handler/http"
	"github.com/ahmad5farah/AmaKart/internal/notify"
	"github.com/ahmad5farah/AmaKart/internal/state"
	"github.com/ahmad5farah/AmaKart/internal/storage"
	"github.com/ahmad5farah/AmaKart/migrations"
	"github.com/ahmad5farah/AmaKart/pkg/database"
	"github.com/ahmad5farah/AmaKart/pkg/health"
	"github.com/ahmad5farah/AmaKart/pkg/httpclient"
	pkgkafka "github.com/ahmad5farah/AmaKart/pkg/kafka"
	"github.com/ahmad5farah/AmaKart/pkg/middleware"
	"github.com/ahmad5farah/AmaKart/pkg/tracing"
)

// ServiceName identifies the storefront in logs, metrics and traces.
const ServiceName = "amakart"

// pruneInterval is how often idle rate limiter entries are dropped.
const pruneInterval = time.Minute

// Infra holds the connected backends the storefront runs on. Pool and Kafka
// may be nil.
type Infra struct {
	Products gateway.Products
	Accounts gateway.Accounts
	Orders   gateway.Orders
	Store    storage.Store
	Pool     *pgxpool.Pool
	Kafka    *pkgkafka.Producer
}

// App wires together all dependencies and runs the storefront.
type App struct {
	cfg            *config.Config
	logger         *slog.Logger
	infra          Infra
	httpServer     *http.Server
	authLimiter    *middleware.RateLimiter
	resets         *auth.ResetLimiter
	tracerShutdown func(context.Context) error
	wg             sync.WaitGroup
}

// NewApp connects to PostgreSQL, the state store and Kafka, then builds the
// storefront on top of them.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	tracerShutdown, err := tracing.InitTracer(ctx, tracing.Config{
		ServiceName:    ServiceName,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		OTLPEndpoint:   cfg.OTELEndpoint,
		SampleRate:     cfg.OTELSampleRate,
		Enabled:        cfg.TracingEnabled(),
	})
	if err != nil {
		return nil, fmt.Errorf("init tracer: %w", err)
	}

	pool, err := database.NewPostgresPool(ctx, database.PostgresConfig{
		URL:             cfg.DatabaseURL,
		MaxConns:        cfg.DBMaxConns,
		MinConns:        cfg.DBMinConns,
		MaxConnLifetime: time.Hour,
		MaxConnIdleTime: 30 * time.Minute,
		ConnectAttempts: 5,
	}, logger)
	if err != nil {
		return nil, errors.Join(fmt.Errorf("connect to postgres: %w", err), tracerShutdown(ctx))
	}
	logger.Info("connected to PostgreSQL")

	if _, err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, errors.Join(fmt.Errorf("run migrations: %w", err), tracerShutdown(ctx))
	}
	logger.Info("database migrations completed")

	store, err := OpenStore(ctx, cfg)
	if err != nil {
		pool.Close()
		return nil, errors.Join(err, tracerShutdown(ctx))
	}
	logger.Info("state store ready", slog.String("backend", cfg.StorageBackend))

	var producer *pkgkafka.Producer
	if len(cfg.KafkaBrokers) > 0 {
		producer = pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
		logger.Info("kafka producer initialized", slog.Any("brokers", cfg.KafkaBrokers))
	} else {
		logger.Info("no kafka brokers configured, order events disabled")
	}

	a := New(cfg, logger, Infra{
		Products: postgres.NewProductStore(pool, logger),
		Accounts: postgres.NewAccountStore(pool, cfg.BcryptCost),
		Orders:   postgres.NewOrderStore(pool),
		Store:    store,
		Pool:     pool,
		Kafka:    producer,
	}, prometheus.NewRegistry())
	a.tracerShutdown = tracerShutdown
	return a, nil
}

// OpenStore opens the configured visitor state backend.
func OpenStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.StorageBackend {
	case storage.BackendSQLite:
		store, err := storage.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		client, err := database.NewRedisClient(ctx, database.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect to redis: %w", err)
		}
		return storage.NewRedisStore(client), nil
	}
}

// New builds the dependency graph over already connected backends and
// registers every collector on reg.
func New(cfg *config.Config, logger *slog.Logger, infra Infra, reg *prometheus.Registry) *App {
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	if infra.Pool != nil {
		reg.MustRegister(database.NewPoolStatsCollector(infra.Pool))
	}

	// Catalog read-through caches.
	caches := catalog.Caches{
		Lists: cache.New[[]domain.Product](cfg.CacheTTL,
			cache.WithMetrics[[]domain.Product](cache.NewMetrics("product_lists", reg))),
		Products: cache.New[domain.Product](cfg.CacheTTL,
			cache.WithMetrics[domain.Product](cache.NewMetrics("products", reg))),
		Categories: cache.New[[]string](cfg.CacheTTL,
			cache.WithMetrics[[]string](cache.NewMetrics("categories", reg))),
	}

	// Mail relay behind a circuit breaker.
	relay := httpclient.NewCircuitBreakerClient(
		httpclient.New(httpclient.DefaultConfig()),
		httpclient.DefaultCircuitBreakerConfig("notifier"),
		httpclient.NewBreakerMetrics(reg),
		logger,
	)
	notifier := notify.NewNotifier(relay, cfg.NotifierURL, cfg.SupportEmail, logger)

	events := event.NewProducer(infra.Kafka, logger)
	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	resets := auth.NewResetLimiter(cfg.ResetMax, cfg.ResetWindow)

	authSvc := auth.NewService(
		infra.Accounts,
		tokens,
		auth.NewLockout(cfg.LockoutMax, cfg.LockoutWindow),
		resets,
		notifier,
		auth.NewMetrics(reg),
		logger,
	)
	authLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, 10*time.Minute, logger)

	// Health checks.
	healthHandler := health.NewHandler(2 * time.Second)
	healthHandler.Register("state_store", infra.Store.Ping)
	if infra.Pool != nil {
		healthHandler.Register("postgres", infra.Pool.Ping)
	}
	if infra.Kafka != nil {
		healthHandler.Register("kafka", infra.Kafka.Ping)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowedOrigins = cfg.CORSOrigins

	var adminCIDRs []string
	if cfg.PprofEnabled {
		adminCIDRs = cfg.AdminCIDRs
	}

	router := handler.NewRouter(handler.RouterDeps{
		ServiceName:    ServiceName,
		States:         state.NewManager(infra.Store, cfg.SessionTTL, logger),
		Catalog:        catalog.NewService(infra.Products, caches, logger),
		Checkout:       checkout.NewService(infra.Orders, events, logger),
		Account:        account.NewService(infra.Orders, events, logger),
		Auth:           authSvc,
		Notifier:       notifier,
		Tokens:         tokens.Validate,
		Health:         healthHandler,
		Metrics:        middleware.NewHTTPMetrics(ServiceName, reg),
		Gatherer:       reg,
		AuthLimiter:    authLimiter,
		CORS:           cors,
		AdminCIDRs:     adminCIDRs,
		ProductMaxAge:  cfg.CacheTTL,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         logger,
	})

	return &App{
		cfg:         cfg,
		logger:      logger,
		infra:       infra,
		authLimiter: authLimiter,
		resets:      resets,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
			Handler:           router,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}
}

// Handler returns the root HTTP handler.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server and background sweepers, blocking until the
// context is canceled.
func (a *App) Run(ctx context.Context) error {
	bgCtx, stopBackground := context.WithCancel(ctx)
	defer stopBackground()

	a.wg.Add(2)
	go func() {
		defer a.wg.Done()
		a.authLimiter.Run(bgCtx)
	}()
	go func() {
		defer a.wg.Done()
		a.pruneResets(bgCtx)
	}()

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("starting HTTP server", slog.String("addr", a.httpServer.Addr))
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case runErr = <-errCh:
	}

	stopBackground()
	a.wg.Wait()
	return errors.Join(runErr, a.Shutdown())
}

func (a *App) pruneResets(ctx context.Context) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			a.resets.Prune()
		}
	}
}

// Shutdown gracefully stops all components in order:
// 1. HTTP server
// 2. Tracer
// 3. Kafka producer
// 4. State store
// 5. PostgreSQL pool
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	httpCtx, httpCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer httpCancel()
	if err := a.httpServer.Shutdown(httpCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.tracerShutdown != nil {
		tracerCtx, tracerCancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer tracerCancel()
		if err := a.tracerShutdown(tracerCtx); err != nil {
			a.logger.Error("tracer shutdown error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if a.infra.Kafka != nil {
		if err := a.infra.Kafka.Close(); err != nil {
			a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}

	if err := a.infra.Store.Close(); err != nil {
		a.logger.Error("state store close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if a.infra.Pool != nil {
		a.infra.Pool.Close()
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
