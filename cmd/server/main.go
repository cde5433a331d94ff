package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dukerupert/shopcore/internal"
	"github.com/dukerupert/shopcore/internal/address"
	"github.com/dukerupert/shopcore/internal/catalog"
	"github.com/dukerupert/shopcore/internal/domain"
	"github.com/dukerupert/shopcore/internal/events"
	"github.com/dukerupert/shopcore/internal/handler/api"
	"github.com/dukerupert/shopcore/internal/middleware"
	"github.com/dukerupert/shopcore/internal/postgres"
	"github.com/dukerupert/shopcore/internal/redis"
	"github.com/dukerupert/shopcore/internal/router"
	"github.com/dukerupert/shopcore/internal/routes"
	"github.com/dukerupert/shopcore/internal/service"
	"github.com/dukerupert/shopcore/internal/shipping"
	"github.com/dukerupert/shopcore/internal/storage"
	"github.com/dukerupert/shopcore/internal/tax"
	"github.com/dukerupert/shopcore/internal/telemetry"
	"github.com/dukerupert/shopcore/internal/worker"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const (
	publishTimeout  = 5 * time.Second
	shutdownTimeout = 10 * time.Second
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Initialize Sentry (no-op without a DSN)
	flushSentry, err := telemetry.InitSentry(telemetry.SentryConfig{
		DSN:         cfg.Sentry.DSN,
		Environment: cfg.Sentry.Environment,
		Release:     cfg.Sentry.Release,
		SampleRate:  cfg.Sentry.SampleRate,
		Debug:       cfg.Sentry.Debug,
	}, logger)
	if err != nil {
		return fmt.Errorf("sentry initialization failed: %w", err)
	}
	defer flushSentry()

	// Initialize Prometheus metrics
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	businessMetrics := telemetry.NewBusinessMetrics(reg, cfg.Metrics.Namespace)
	httpMetrics := middleware.NewMetrics(reg, cfg.Metrics.Namespace)

	// ==========================================================================
	// Catalog
	// ==========================================================================

	docs, err := storage.NewStorage(storage.Config{
		Provider:      cfg.Storage.Provider,
		LocalPath:     cfg.Storage.LocalPath,
		R2AccountID:   cfg.Storage.R2AccountID,
		R2AccessKeyID: cfg.Storage.R2AccessKeyID,
		R2SecretKey:   cfg.Storage.R2SecretKey,
		R2BucketName:  cfg.Storage.R2BucketName,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	logger.Info("Loading catalog document...", "provider", cfg.Storage.Provider, "key", cfg.Catalog.Path)
	source, err := catalog.OpenSource(ctx, docs, cfg.Catalog.Path, catalog.FileSourceConfig{
		TotalPages: cfg.Catalog.TotalPages,
		PageSize:   cfg.Catalog.PageSize,
		Latency:    cfg.Catalog.Latency,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize catalog source: %w", err)
	}
	logger.Info("Catalog document loaded", "products", source.Len())

	catalogStore := service.NewCatalogStore(source, cfg.Catalog.PageSize, logger, businessMetrics)

	// ==========================================================================
	// Orders
	// ==========================================================================

	var orders domain.OrderRepository
	if cfg.DatabaseUrl != "" {
		pool, closeDB, err := openDatabase(ctx, cfg.DatabaseUrl, logger)
		if err != nil {
			return err
		}
		defer closeDB()
		orders = postgres.NewOrderRepository(pool)
	} else {
		logger.Info("DATABASE_URL not set, orders are kept in memory")
		orders = service.NewLocalOrderSubmitter()
	}

	// ==========================================================================
	// Cart and checkout
	// ==========================================================================

	cart := service.NewCartStore(
		tax.NewPercentageCalculator(cfg.Pricing.TaxRate),
		shipping.NewFlatRateProvider(shipping.FlatRate{
			ServiceName:   "Standard Shipping",
			ServiceCode:   "STD",
			Fee:           cfg.Pricing.ShippingFlatFee,
			FreeThreshold: cfg.Pricing.FreeShippingThreshold,
			DaysMin:       3,
			DaysMax:       5,
		}),
		logger,
		businessMetrics,
	)

	checkout := service.NewCheckout(cart, address.NewBasicValidator(), orders, logger, businessMetrics)

	if cfg.Redis.URL != "" {
		closeRedis, err := restoreCart(ctx, cfg.Redis, cart, logger)
		if err != nil {
			return err
		}
		defer closeRedis()
	}

	// ==========================================================================
	// Events
	// ==========================================================================

	publisher, err := newPublisher(cfg.Events, logger, businessMetrics)
	if err != nil {
		return err
	}
	defer publisher.Close()

	cart.OnItemAdded(func(item domain.CartItem, added int) {
		publish(logger, publisher, events.SubjectCartItemAdded, events.CartItemAdded{
			ItemID:      item.ID,
			ProductID:   item.Product.ID,
			ProductName: item.Product.Name,
			Quantity:    added,
			Color:       item.Variant.Color,
			Size:        item.Variant.Size,
		})
	})
	checkout.OnPlaced(func(order domain.Order) {
		publish(logger, publisher, events.SubjectOrderPlaced, events.OrderPlaced{
			OrderID:       order.ID,
			ItemCount:     len(order.Items),
			Total:         order.Total,
			PaymentMethod: string(order.PaymentMethod),
		})
	})

	// ==========================================================================
	// Background work
	// ==========================================================================

	go func() {
		if err := catalogStore.LoadInitial(ctx); err != nil {
			logger.Error("Initial catalog load failed", "error", err, "retryable", domain.IsRetryable(err))
		}
	}()

	if cfg.Catalog.RefreshInterval > 0 {
		w := worker.NewWorker(catalogStore, worker.Config{PollInterval: cfg.Catalog.RefreshInterval}, logger)
		go func() {
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Worker stopped", "error", err)
			}
		}()
	}

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	r := router.New(
		router.Recovery(logger),
		telemetry.SentryMiddleware(),
		middleware.RequestID,
		middleware.WithRequestLogger(logger),
		httpMetrics.Middleware,
		router.CORS(cfg.CORSOrigins),
		router.Logger(logger),
	)

	routes.RegisterOpsRoutes(r, routes.OpsDeps{
		MetricsHandler: httpMetrics.Handler(),
		Ready: func() bool {
			return len(catalogStore.Snapshot().Products) > 0
		},
	})
	routes.RegisterAPIRoutes(r, routes.APIDeps{
		CatalogHandler:  api.NewCatalogHandler(catalogStore, businessMetrics),
		CartHandler:     api.NewCartHandler(cart, catalogStore, businessMetrics),
		CheckoutHandler: api.NewCheckoutHandler(checkout),
		OrderHandler:    api.NewOrderHandler(orders),
	})
	logger.Debug("Routes registered", "count", len(r.Routes()))

	// ==========================================================================
	// Start server
	// ==========================================================================

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server", "address", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		logger.Info("Shutting down server...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info("Server stopped")

	return nil
}

// openDatabase runs migrations over database/sql and returns the pgx pool
// used by the application.
func openDatabase(ctx context.Context, url string, logger *slog.Logger) (*pgxpool.Pool, func(), error) {
	logger.Info("Connecting to database...")
	sqlDB, err := sql.Open("pgx", url)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	defer sqlDB.Close()

	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, nil, fmt.Errorf("database ping failed: %w", err)
	}

	logger.Info("Running database migrations...")
	if err := internal.RunMigrations(sqlDB); err != nil {
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database migrations completed successfully")

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return pool, pool.Close, nil
}

// restoreCart loads the saved cart into the store and keeps the snapshot
// current on every change.
func restoreCart(ctx context.Context, cfg internal.RedisConfig, cart service.CartStore, logger *slog.Logger) (func(), error) {
	client, err := redis.Connect(ctx, cfg.URL)
	if err != nil {
		return nil, err
	}

	snapshots := redis.NewCartSnapshotStore(client, cfg.CartKey, cfg.CartTTL)
	items, err := snapshots.Load(ctx)
	if err != nil {
		logger.Warn("Could not restore cart, starting empty", "error", err)
	} else if len(items) > 0 {
		cart.Restore(items)
		logger.Info("Cart restored", "lines", len(items))
	}

	cart.OnChange(func(items []domain.CartItem) {
		saveCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := snapshots.Save(saveCtx, items); err != nil {
			logger.Warn("Failed to save cart snapshot", "error", err)
		}
	})

	return func() { _ = client.Close() }, nil
}

func newPublisher(cfg internal.EventsConfig, logger *slog.Logger, metrics *telemetry.BusinessMetrics) (events.Publisher, error) {
	switch {
	case cfg.NATSURL != "":
		p, err := events.ConnectNATS(events.NATSConfig{URL: cfg.NATSURL}, logger, metrics)
		if err != nil {
			return nil, err
		}
		return p, nil
	case len(cfg.KafkaBrokers) > 0:
		p, err := events.NewKafkaPublisher(events.KafkaConfig{Brokers: cfg.KafkaBrokers}, logger, metrics)
		if err != nil {
			return nil, err
		}
		logger.Info("Publishing events to Kafka", "brokers", cfg.KafkaBrokers)
		return p, nil
	default:
		logger.Info("No event transport configured, events are discarded")
		return events.NopPublisher{}, nil
	}
}

// publish delivers an event without holding up the request that raised it.
func publish(logger *slog.Logger, p events.Publisher, subject string, payload any) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := p.Publish(ctx, subject, payload); err != nil {
			logger.Warn("Failed to publish event", "subject", subject, "error", err)
		}
	}()
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
