package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	webAdapter "retail-ops/internal/adapters/web"
	"retail-ops/internal/app"
	"retail-ops/internal/config"
	"retail-ops/internal/core"
	"retail-ops/internal/db"
	"retail-ops/internal/events"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	defer pool.Close()

	producer := events.NewProducer(cfg.KafkaBrokers, cfg.StockEventsTopic, logger)
	defer producer.Close()
	if cfg.KafkaBrokers == "" {
		logger.Info("kafka disabled, stock events stay in-process")
	}

	watcher := core.NewStockWatcher()

	catalogService := core.NewCatalogService(pool, watcher, producer, logger)
	categoryService := core.NewCategoryService(pool)
	warehouseService := core.NewWarehouseService(pool)
	transferService := core.NewTransferService(pool, watcher, producer, logger)
	salesService := core.NewSalesService(pool, watcher, producer, logger)
	profileService := core.NewProfileService(pool, logger)
	reportingService := core.NewReportingService(pool, transferService, cfg.LowStockThreshold)

	svc := app.NewAppService(
		catalogService,
		categoryService,
		warehouseService,
		transferService,
		salesService,
		profileService,
		reportingService,
		watcher,
		cfg.LowStockThreshold,
	)

	handler := webAdapter.NewHandler(svc, cfg.AllowedOrigins, cfg.JWTSecret, logger)

	addr := ":" + cfg.Port
	logger.Info("server starting", zap.String("addr", addr))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
