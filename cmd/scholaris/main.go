package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/scholaris-erp/scholaris-erp/internal/accrual"
	"github.com/scholaris-erp/scholaris-erp/internal/adjustment"
	"github.com/scholaris-erp/scholaris-erp/internal/app"
	"github.com/scholaris-erp/scholaris-erp/internal/assets"
	"github.com/scholaris-erp/scholaris-erp/internal/cashbook"
	"github.com/scholaris-erp/scholaris-erp/internal/category"
	"github.com/scholaris-erp/scholaris-erp/internal/observability"
	"github.com/scholaris-erp/scholaris-erp/internal/reporting"
	"github.com/scholaris-erp/scholaris-erp/internal/settlement"
	"github.com/scholaris-erp/scholaris-erp/internal/shared"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := pgxpool.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	settlementDefaults, err := settlement.LoadDefaults(cfg.SettlementDefaultsPath)
	if err != nil {
		logger.Error("load settlement defaults", slog.Any("error", err))
		os.Exit(1)
	}

	auditLogger := shared.NewAuditLogger(dbpool)
	idempotencyStore := shared.NewIdempotencyStore(dbpool)
	reportCache := reporting.NewCache(redisClient, cfg.ReportCacheTTL)

	categoryRepo := category.NewRepository(dbpool)
	categoryService := category.NewService(categoryRepo)
	categoryHandler := category.NewHandler(logger, categoryService)

	cashbookRepo := cashbook.NewRepository(dbpool)
	cashbookService := cashbook.NewService(cashbookRepo, categoryService, auditLogger, reportCache)
	cashbookHandler := cashbook.NewHandler(logger, cashbookService)

	accrualRepo := accrual.NewRepository(dbpool)
	accrualService := accrual.NewService(accrualRepo, categoryService, auditLogger, reportCache)
	accrualHandler := accrual.NewHandler(logger, accrualService)

	metrics := observability.NewMetrics()

	settlementRepo := settlement.NewRepository(dbpool)
	settlementService, err := settlement.NewService(settlementRepo, settlementDefaults, idempotencyStore, auditLogger, reportCache)
	if err != nil {
		logger.Error("build settlement service", slog.Any("error", err))
		os.Exit(1)
	}
	settlementHandler := settlement.NewHandler(logger, settlementService, metrics)

	assetsRepo := assets.NewRepository(dbpool)
	assetsService := assets.NewService(assetsRepo, auditLogger, reportCache)
	assetsHandler := assets.NewHandler(logger, assetsService)

	adjustmentRepo := adjustment.NewRepository(dbpool)
	adjustmentService := adjustment.NewService(adjustmentRepo, auditLogger, reportCache)
	adjustmentHandler := adjustment.NewHandler(logger, adjustmentService)

	reportingRepo := reporting.NewRepository(dbpool)
	reportingService := reporting.NewService(reportingRepo, reportCache)
	reportingHandler := reporting.NewHandler(logger, reportingService)

	router := app.NewRouter(app.RouterConfig{
		Middleware: app.MiddlewareStack(app.MiddlewareConfig{
			Logger:  logger,
			Config:  cfg,
			Metrics: metrics,
		}),
		Metrics:    metrics,
		Cashbook:   cashbookHandler,
		Accrual:    accrualHandler,
		Settlement: settlementHandler,
		Category:   categoryHandler,
		Assets:     assetsHandler,
		Adjustment: adjustmentHandler,
		Reporting:  reportingHandler,
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
