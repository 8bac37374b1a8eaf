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

	"github.com/origen-putumayo/storefront/api/routes"
	"github.com/origen-putumayo/storefront/internal/admins"
	"github.com/origen-putumayo/storefront/internal/cart"
	"github.com/origen-putumayo/storefront/internal/checkout"
	product "github.com/origen-putumayo/storefront/internal/products"
	"github.com/origen-putumayo/storefront/pkg/config"
	"github.com/origen-putumayo/storefront/pkg/db"
	"github.com/origen-putumayo/storefront/pkg/logger"
	"github.com/origen-putumayo/storefront/pkg/metrics"
	"github.com/origen-putumayo/storefront/pkg/migrate"
	"github.com/origen-putumayo/storefront/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

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
		Env:         cfg.App.Env,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	storefrontMetrics := metrics.NewStorefrontMetrics(prometheus.DefaultRegisterer)

	productService, err := product.NewService(product.NewRepository(dbClient.DB()), dbClient)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}

	adminChecker, err := admins.NewChecker(admins.NewRepository(dbClient.DB()), cfg.Auth.AdminCheckTimeout)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin checker", err)
		os.Exit(1)
	}

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Repo:      checkout.NewRepository(dbClient.DB()),
		Assembler: checkout.NewAssembler(productService, cfg.Checkout.DefaultSellerLabel, logg),
		Formatter: checkout.NewMessageFormatter(cfg.Checkout.Brand, cfg.Checkout.SiteName, cfg.Checkout.Locale),
		Links:     checkout.LinkBuilder{Host: cfg.Dispatch.Host, Recipient: cfg.Dispatch.Recipient},
		Guard:     checkout.NewSubmissionGuard(redisClient, cfg.Checkout),
		Metrics:   storefrontMetrics,
		Logger:    logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create checkout service", err)
		os.Exit(1)
	}
	if cfg.Dispatch.Recipient == "" {
		logg.Warn(context.Background(), "dispatch recipient not configured, checkout will fall back to copy")
	}

	carts := cart.NewRegistry(cart.RegistryOptions{
		Storage: cart.NewRedisStorage(redisClient, cfg.Cart.StorageTTL),
		KeyFor: func(sessionID string) string {
			return redisClient.CartKey(sessionID, cfg.Cart.StorageKey)
		},
		Budget:      cfg.Cart.NotificationBudget,
		SaveTimeout: cfg.Cart.SaveTimeout,
		IdleTTL:     cfg.Cart.IdleEviction,
		Logger:      logg,
		Metrics:     storefrontMetrics,
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx := logg.WithFields(runCtx, map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})

	go carts.Run(ctx, sweepInterval(cfg.Cart.IdleEviction))

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:          cfg,
			Logger:          logg,
			DB:              dbClient,
			Redis:           redisClient,
			Gatherer:        prometheus.DefaultGatherer,
			Carts:           carts,
			Admins:          adminChecker,
			ProductService:  productService,
			CheckoutService: checkoutService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error(ctx, "api server shutdown failed", err)
	}
	if err := carts.Close(shutdownCtx); err != nil {
		logg.Error(ctx, "failed to flush carts on shutdown", err)
	}
	logg.Info(ctx, "api server shutting down gracefully")
}

// sweepInterval checks for idle carts a few times per eviction window.
func sweepInterval(idle time.Duration) time.Duration {
	if idle <= 0 {
		return 0
	}
	interval := idle / 4
	if interval < time.Second {
		return time.Second
	}
	return interval
}
