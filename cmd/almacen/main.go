package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/hibiken/asynq"

	"github.com/almacen-erp/almacen-erp/internal/app"
	"github.com/almacen-erp/almacen-erp/internal/clients"
	"github.com/almacen-erp/almacen-erp/internal/observability"
	"github.com/almacen-erp/almacen-erp/internal/platform/cache"
	"github.com/almacen-erp/almacen-erp/internal/platform/db"
	"github.com/almacen-erp/almacen-erp/internal/products"
	"github.com/almacen-erp/almacen-erp/internal/sales"
	"github.com/almacen-erp/almacen-erp/internal/suppliers"
	"github.com/almacen-erp/almacen-erp/internal/users"
	"github.com/almacen-erp/almacen-erp/jobs"
)

func main() {
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
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	// The cache and the job queue are conveniences. A missing Redis must not
	// keep the API from serving.
	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, serving without cache", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				logger.Warn("redis close", slog.Any("error", err))
			}
		}
	}()
	store := cache.NewStore(redisClient, cfg.CacheTTL)

	var notifier sales.Notifier
	var inspector *asynq.Inspector
	if redisClient != nil {
		redisOpts := asynq.RedisClientOpt{Addr: cfg.RedisAddr}
		queue := jobs.NewClient(redisOpts)
		defer func() {
			if err := queue.Close(); err != nil {
				logger.Warn("queue close", slog.Any("error", err))
			}
		}()
		notifier = queue
		inspector = asynq.NewInspector(redisOpts)
	}

	metrics := observability.NewMetrics()
	validate := validator.New()

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService, validate)

	clientsRepo := clients.NewRepository(pool)
	clientsService := clients.NewService(clientsRepo)
	clientsHandler := clients.NewHandler(logger, clientsService, validate)

	suppliersRepo := suppliers.NewRepository(pool)
	suppliersService := suppliers.NewService(suppliersRepo)
	suppliersHandler := suppliers.NewHandler(logger, suppliersService, validate)

	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo, usersService, suppliersService)
	productsHandler := products.NewHandler(logger, productsService, validate)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(logger, salesRepo, productsRepo, usersService, clientsService, metrics, notifier, cfg.LowStockThreshold)
	salesHandler := sales.NewHandler(logger, salesService, store)

	jobsHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:    logger,
		Config:    cfg,
		Metrics:   metrics,
		Sales:     salesHandler,
		Products:  productsHandler,
		Users:     usersHandler,
		Clients:   clientsHandler,
		Suppliers: suppliersHandler,
		Jobs:      jobsHandler,
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
