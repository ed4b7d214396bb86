// Package app wires the admin server dependencies and runs it.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"github.com/go-faster/sdk/zctx"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xenking/store-admin/internal/cache"
	"github.com/xenking/store-admin/internal/domain/order"
	"github.com/xenking/store-admin/internal/domain/settings"
	"github.com/xenking/store-admin/internal/handler"
	"github.com/xenking/store-admin/internal/repository"
	"github.com/xenking/store-admin/pkg/health"
	"github.com/xenking/store-admin/pkg/httpmiddleware"
)

// Run creates all dependencies, starts the HTTP server, and handles graceful
// shutdown. It is the single wiring point for the application.
func Run(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *Config) error {
	lg.Info("Initializing", zap.String("addr", cfg.Addr))

	// PostgreSQL pool + migrations.
	pool, err := repository.NewPool(ctx, cfg.DatabaseURL, repository.WithMaxConns(cfg.MaxConns))
	if err != nil {
		return errors.Wrap(err, "create db pool")
	}
	defer pool.Close()

	if err := repository.RunMigrations(ctx, pool); err != nil {
		return errors.Wrap(err, "run migrations")
	}

	healthSvc := health.New()
	healthSvc.Register("postgres", health.Readiness, health.PingCheck("postgres", pool),
		health.WithTimeout(5*time.Second))
	healthSvc.Register("goroutines", health.Liveness, health.GoroutineCountCheck(10000))

	// Repositories.
	var settingsRepo settings.Repository = repository.NewSettingsRepository(pool)
	orderRepo := repository.NewOrderRepository(pool)
	productRepo := repository.NewProductRepository(pool)

	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return errors.Wrap(err, "parse redis url")
		}
		rdb := redis.NewClient(opts)
		defer func() { _ = rdb.Close() }()

		settingsRepo = cache.NewSettingsCache(settingsRepo, rdb, cfg.Redis.TTL)
		healthSvc.Register("redis", health.Readiness, func(ctx context.Context) error {
			return errors.Wrap(rdb.Ping(ctx).Err(), "ping redis")
		})
		lg.Info("Settings cache enabled", zap.String("redis", opts.Addr), zap.Duration("ttl", cfg.Redis.TTL))
	}

	// Domain services.
	settingsProvider := settings.NewProvider(settingsRepo)
	orderService, err := order.NewService(orderRepo, m.MeterProvider())
	if err != nil {
		return errors.Wrap(err, "create order service")
	}
	stats := order.NewStats(orderRepo, orderRepo, productRepo, order.StatsConfig{
		LowStockThreshold: cfg.LowStock.Threshold,
		ListLimit:         cfg.LowStock.Limit,
	})

	// HTTP handlers.
	previewSubtotal, err := cfg.PreviewSubtotal()
	if err != nil {
		return err
	}
	h := handler.New(
		handler.Config{
			PreviewSubtotal:   previewSubtotal,
			LowStockThreshold: cfg.LowStock.Threshold,
		},
		settingsProvider,
		orderService,
		stats,
		productRepo,
	)
	router := handler.NewRouter(h, healthSvc,
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(zctx.From(ctx)),
		httpmiddleware.LogRequests(),
	)

	healthSvc.Start(ctx, 10*time.Second)
	healthSvc.SetReady(true)

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler: httpmiddleware.Wrap(router,
			httpmiddleware.Recovery(),
			httpmiddleware.CORS(httpmiddleware.CORSConfig{
				Origins:     cfg.CORS.Origins,
				Headers:     []string{"Content-Type", "Authorization", httpmiddleware.RequestIDHeader},
				Expose:      []string{httpmiddleware.RequestIDHeader},
				Credentials: cfg.CORS.AllowCredentials,
				MaxAge:      cfg.CORS.MaxAge,
			}),
			httpmiddleware.Instrument("store-admin", m.TracerProvider(), m.MeterProvider()),
		),
	}

	// Graceful shutdown: wait for context cancellation, drain, then stop.
	shutdownDone := make(chan struct{})
	go func() {
		<-ctx.Done()
		healthSvc.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			lg.Error("Server shutdown error", zap.Error(err))
		}
		healthSvc.Stop()
		close(shutdownDone)
	}()

	lg.Info("Server listening", zap.String("addr", cfg.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "server")
	}
	<-shutdownDone
	return nil
}
