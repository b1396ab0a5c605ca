package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/odyssey-erp/productmanage/internal/app"
	"github.com/odyssey-erp/productmanage/internal/auth"
	"github.com/odyssey-erp/productmanage/internal/finance"
	"github.com/odyssey-erp/productmanage/internal/inventory"
	"github.com/odyssey-erp/productmanage/internal/masterdata/categories"
	"github.com/odyssey-erp/productmanage/internal/masterdata/products"
	"github.com/odyssey-erp/productmanage/internal/masterdata/suppliers"
	"github.com/odyssey-erp/productmanage/internal/observability"
	"github.com/odyssey-erp/productmanage/internal/platform/cache"
	"github.com/odyssey-erp/productmanage/internal/platform/db"
	"github.com/odyssey-erp/productmanage/internal/rbac"
	"github.com/odyssey-erp/productmanage/internal/roles"
	"github.com/odyssey-erp/productmanage/internal/supplies"
	"github.com/odyssey-erp/productmanage/internal/users"
	"github.com/odyssey-erp/productmanage/jobs"
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

	dbpool, err := db.New(ctx, cfg.PGDSN, db.PoolOptions{MaxConns: cfg.PGMaxConns})
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	if cfg.AutoMigrate {
		if err := migrate(dbpool, logger); err != nil {
			logger.Error("apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
	}

	redisClient, err := cache.New(ctx, cfg.Redis())
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()
	guard := rbac.New(logger)

	usersService := users.NewService(users.NewRepository(dbpool), logger)
	authService := auth.NewService(usersService, auth.NewSessionStore(redisClient, cfg.SessionTTL), logger)
	usersService.UseSessionRevoker(authService)

	inventoryService := inventory.NewService(inventory.NewRepository(dbpool), logger, metrics)
	suppliesService := supplies.NewService(supplies.NewRepository(dbpool), logger, metrics)
	reportCache := cache.NewVersioned(redisClient, "finance:report", cfg.ReportCacheTTL)
	financeService := finance.NewService(finance.NewRepository(dbpool), reportCache, logger, metrics)

	jobClient := jobs.NewClient(cfg.Redis().AsynqOpt())
	defer func() {
		if err := jobClient.Close(); err != nil {
			logger.Warn("job client close", slog.Any("error", err))
		}
	}()
	inspector := asynq.NewInspector(cfg.Redis().AsynqOpt())
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()

	router := app.NewRouter(app.RouterParams{
		Logger:       logger,
		Config:       cfg,
		Metrics:      metrics,
		Authenticate: auth.Middleware(authService, logger),
		Health: map[string]app.Pinger{
			"postgres": dbpool,
			"redis":    redisPinger(redisClient),
		},
		AuthHandler:       auth.NewHandler(logger, authService, cfg.LoginLimitPerMinute),
		ProductsHandler:   products.NewHandler(logger, products.NewService(products.NewRepository(dbpool)), guard),
		InventoryHandler:  inventory.NewHandler(logger, inventoryService, guard),
		CategoriesHandler: categories.NewHandler(logger, categories.NewService(categories.NewRepository(dbpool)), guard),
		SuppliersHandler:  suppliers.NewHandler(logger, suppliers.NewService(suppliers.NewRepository(dbpool)), guard),
		SuppliesHandler:   supplies.NewHandler(logger, suppliesService, guard),
		FinanceHandler:    finance.NewHandler(logger, financeService, guard, jobClient),
		UsersHandler:      users.NewHandler(logger, usersService, guard),
		RolesHandler:      roles.NewHandler(logger, roles.NewService(roles.NewRepository(dbpool)), guard),
		JobHandler:        jobs.NewHandler(inspector, logger),
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr), slog.String("env", cfg.AppEnv))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

func redisPinger(client *redis.Client) app.Pinger {
	return app.PingFunc(func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
}
