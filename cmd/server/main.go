package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/V4T54L/storesync/internal/adapter/api"
	"github.com/V4T54L/storesync/internal/adapter/api/middleware"
	"github.com/V4T54L/storesync/internal/adapter/metrics"
	"github.com/V4T54L/storesync/internal/adapter/repository/postgres"
	redisrepo "github.com/V4T54L/storesync/internal/adapter/repository/redis"
	"github.com/V4T54L/storesync/internal/domain"
	"github.com/V4T54L/storesync/internal/pkg/config"
	"github.com/V4T54L/storesync/internal/pkg/logger"
	"github.com/V4T54L/storesync/internal/usecase"
	"github.com/V4T54L/storesync/migrations"

	_ "github.com/lib/pq" // postgres driver
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := logger.New(cfg.LogLevel)
	slog.SetDefault(logger)

	m := metrics.NewIngestMetrics(prometheus.DefaultRegisterer)

	// --- Graceful Shutdown Context ---
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// --- Database Connection and Migrations ---
	// The pool is the only long-lived persistence handle: created here,
	// injected downward, closed on the way out.
	db, err := sql.Open("postgres", cfg.PostgresURL)
	if err != nil {
		logger.Error("failed to open postgres connection", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		logger.Error("failed to set migration dialect", "error", err)
		os.Exit(1)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}
	logger.Info("database migrations applied")

	// --- Repositories ---
	syncRepo := postgres.NewSyncRepository(db, logger)

	var tenants domain.TenantRepository = postgres.NewTenantRepository(db, logger)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("could not connect to redis, tenant lookups will hit the database directly", "error", err)
		}
		tenants = redisrepo.NewTenantCache(tenants, redisClient, cfg.TenantCacheTTL, logger, m)
		defer redisClient.Close()
	}

	// --- Use Cases ---
	syncUseCase := usecase.NewSyncWebhookUseCase(syncRepo, logger)

	// --- Admin and Metrics Server ---
	adminMux := http.NewServeMux()
	adminMux.Handle("/metrics", promhttp.Handler())
	adminMux.Handle("/", api.NewAdminRouter(tenants, logger))

	adminServer := &http.Server{
		Addr:    cfg.AdminServerAddr,
		Handler: middleware.Logging(logger)(adminMux),
	}

	go func() {
		logger.Info("starting admin & metrics server", "addr", adminServer.Addr)
		if err := adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("admin & metrics server failed", "error", err)
		}
	}()

	// --- Webhook Server ---
	router := api.NewRouter(cfg, logger, tenants, syncRepo, syncUseCase, m)
	webhookServer := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      middleware.Logging(logger)(router),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	go func() {
		logger.Info("starting webhook server", "addr", webhookServer.Addr)
		if err := webhookServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("webhook server failed", "error", err)
			stop() // Trigger shutdown on server error
		}
	}()

	// --- Wait for shutdown signal ---
	<-ctx.Done()
	logger.Info("shutting down servers...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := webhookServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("webhook server shutdown failed", "error", err)
	}
	if err := adminServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("admin server shutdown failed", "error", err)
	}

	logger.Info("servers shut down gracefully")
}
