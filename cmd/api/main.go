package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"

	"github.com/tradelinkhq/tradelink-backend/api/routes"
	"github.com/tradelinkhq/tradelink-backend/internal/orders"
	"github.com/tradelinkhq/tradelink-backend/internal/pricelists"
	"github.com/tradelinkhq/tradelink-backend/internal/pricing"
	"github.com/tradelinkhq/tradelink-backend/internal/products"
	"github.com/tradelinkhq/tradelink-backend/internal/stock"
	"github.com/tradelinkhq/tradelink-backend/pkg/config"
	"github.com/tradelinkhq/tradelink-backend/pkg/db"
	"github.com/tradelinkhq/tradelink-backend/pkg/logger"
	"github.com/tradelinkhq/tradelink-backend/pkg/metrics"
	"github.com/tradelinkhq/tradelink-backend/pkg/migrate"
	"github.com/tradelinkhq/tradelink-backend/pkg/redis"
)

const shutdownGrace = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	orderMetrics := metrics.NewOrderMetrics(registry)

	productsRepo := products.NewRepository(dbClient.DB())
	pricingRepo := pricing.NewRepository(dbClient.DB())
	stockRepo := stock.NewRepository(dbClient.DB())
	ordersRepo := orders.NewRepository(dbClient.DB())
	pricelistsRepo := pricelists.NewRepository(dbClient.DB())

	pricingSvc, err := pricing.NewService(pricingRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create pricing service", err)
		os.Exit(1)
	}
	stockSvc, err := stock.NewService(stockRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create stock service", err)
		os.Exit(1)
	}
	pricelistsSvc, err := pricelists.NewService(pricelistsRepo, productsRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create price list service", err)
		os.Exit(1)
	}
	ordersSvc, err := orders.NewService(ordersRepo, productsRepo, pricingSvc, stockSvc, dbClient, orderMetrics, cfg.Orders)
	if err != nil {
		logg.Error(context.Background(), "failed to create orders service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg, logg, dbClient, redisClient, registry,
			productsRepo, pricingSvc, pricelistsSvc, stockSvc, ordersSvc,
		),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stopCh := make(chan os.Signal, 1)
	signal.Notify(stopCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case sig := <-stopCh:
		logg.Info(logg.WithField(ctx, "signal", sig.String()), "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		if err := shutdown(shutdownCtx, server, dbClient, redisClient); err != nil {
			logg.Error(ctx, "shutdown finished with errors", err)
			os.Exit(1)
		}
	}

	logg.Info(ctx, "api server stopped")
}

// shutdown drains the HTTP server before releasing the backing connections,
// collecting every close error rather than stopping at the first.
func shutdown(ctx context.Context, server *http.Server, dbClient *db.Client, redisClient *redis.Client) error {
	var errs error
	if err := server.Shutdown(ctx); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := dbClient.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}
	if err := redisClient.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}
