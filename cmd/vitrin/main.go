package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/vitrin-app/vitrin/internal/admin"
	"github.com/vitrin-app/vitrin/internal/app"
	"github.com/vitrin-app/vitrin/internal/catalog"
	"github.com/vitrin-app/vitrin/internal/dashboard"
	"github.com/vitrin-app/vitrin/internal/display"
	"github.com/vitrin-app/vitrin/internal/importer"
	"github.com/vitrin-app/vitrin/internal/platform/cache"
	"github.com/vitrin-app/vitrin/internal/platform/db"
	"github.com/vitrin-app/vitrin/internal/shared"
	"github.com/vitrin-app/vitrin/internal/stocksync"
	"github.com/vitrin-app/vitrin/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr, cfg.RedisDB)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	repo := catalog.NewRepository(pool)
	store := stocksync.NewStore(repo, stocksync.NewRedisSnapshotStore(redisClient), logger, stocksync.Config{
		PageSize:       cfg.SyncPageSize,
		MaxPages:       cfg.SyncMaxPages,
		RefreshTimeout: cfg.RefreshTimeout,
	})
	if err := store.WarmStart(ctx); err != nil {
		logger.Warn("warm start", slog.Any("error", err))
	}

	ledger := display.NewLedger(display.NewRedisSnapshotStore(redisClient))
	if err := ledger.Restore(ctx); err != nil {
		logger.Warn("restore display ledger", slog.Any("error", err))
	}
	scanner := display.NewScanner(ledger)
	defer scanner.Stop()

	publisher := stocksync.NewPublisher(redisClient)
	subscriber := stocksync.NewSubscriber(redisClient, store, logger)
	go func() {
		if err := subscriber.Run(ctx); err != nil && err != context.Canceled {
			logger.Error("change subscriber", slog.Any("error", err))
		}
	}()

	importService := importer.NewService(repo, store, publisher, logger)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger: logger,
		Config: cfg,
		DashboardHandler: dashboard.NewHandler(logger, store, ledger, dashboard.Thresholds{
			Low:       cfg.LowStockThreshold,
			High:      cfg.HighStockThreshold,
			UnitPrice: cfg.UnitPriceEstimate,
		}),
		DisplayHandler: display.NewHandler(logger, ledger, scanner, store),
		ImportHandler:  importer.NewHandler(logger, importService, cfg.MaxImportBytes),
		AdminHandler:   admin.NewHandler(logger, store, shared.NewAuditLogger(pool), publisher, cfg.AdminTokenHash),
		JobsHandler:    jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
