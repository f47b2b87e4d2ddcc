package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	appinv "github.com/erp/core/internal/application/inventory"
	apptrade "github.com/erp/core/internal/application/trade"
	"github.com/erp/core/internal/domain/shared"
	"github.com/erp/core/internal/domain/trade"
	"github.com/erp/core/internal/infrastructure/auth"
	"github.com/erp/core/internal/infrastructure/cache"
	"github.com/erp/core/internal/infrastructure/config"
	"github.com/erp/core/internal/infrastructure/logger"
	"github.com/erp/core/internal/infrastructure/persistence"
	"github.com/erp/core/internal/infrastructure/telemetry"
	"github.com/erp/core/internal/interfaces/http/handler"
	"github.com/erp/core/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if err := run(cfg, log); err != nil {
		log.Fatal("Server exited with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	gormLogLevel := gormlogger.Warn
	if cfg.App.IsProduction() {
		gormLogLevel = gormlogger.Error
	}
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.NewGormLogger(log, gormLogLevel))
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var idemStore shared.IdempotencyStore
	if cfg.Idempotency.Enabled {
		redisStore, err := cache.NewRedisIdempotencyStore(cfg.Redis)
		if err != nil {
			log.Warn("Redis unavailable, using in-memory idempotency store", zap.Error(err))
			idemStore = cache.NewInMemoryIdempotencyStore()
		} else {
			idemStore = redisStore
		}
		defer func() { _ = idemStore.Close() }()
	}

	var metrics *telemetry.BusinessMetrics
	if cfg.Telemetry.Enabled {
		meter := otel.GetMeterProvider().Meter(cfg.Telemetry.ServiceName)
		metrics, err = telemetry.NewBusinessMetrics(meter)
		if err != nil {
			return err
		}
	}

	gate := auth.NewStaticPermissionGate()
	gate.GrantSystem(trade.SystemActorID,
		trade.PermissionForTarget(trade.OrderStatusConfirmed),
		trade.PermissionForTarget(trade.OrderStatusShipped),
		trade.PermissionForTarget(trade.OrderStatusCompleted),
		trade.PermissionForTarget(trade.OrderStatusCancelled),
	)

	statusService := apptrade.NewSalesOrderStatusService(
		persistence.NewGormTradeTransactionScope(db.DB),
		gate,
		persistence.NewGormSalesOrderRepository(db.DB),
		persistence.NewGormStatusEventRepository(db.DB),
		nil,
		metrics,
		log.Named("trade"),
	)

	receivingService := appinv.NewReceivingService(
		persistence.NewGormInventoryTransactionScope(db.DB),
		persistence.NewGormReceiptRepository(db.DB),
		persistence.NewGormBalanceRepository(db.DB),
		persistence.NewGormLedgerRepository(db.DB),
		persistence.NewGormProductReader(db.DB),
		idemStore,
		shared.IdempotencyConfig{Enabled: cfg.Idempotency.Enabled, TTL: cfg.Idempotency.TTL},
		nil,
		metrics,
		log.Named("inventory"),
	)

	engine := router.New(router.Dependencies{
		Config:           cfg,
		Logger:           log.Named("http"),
		SalesOrderStatus: handler.NewSalesOrderStatusHandler(statusService),
		Receiving:        handler.NewReceivingHandler(receivingService),
		HealthCheck:      db.Ping,
	})

	server := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("Shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
