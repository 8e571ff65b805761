package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/naturlife/storefront/internal/auth"
	"github.com/naturlife/storefront/internal/config"
	"github.com/naturlife/storefront/internal/db"
	httpx "github.com/naturlife/storefront/internal/http"
	"github.com/naturlife/storefront/internal/http/handlers"
	"github.com/naturlife/storefront/internal/observability"
	"github.com/naturlife/storefront/internal/repo/postgres"
	"github.com/naturlife/storefront/internal/repo/rediscart"
	"github.com/naturlife/storefront/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env)
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("api stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.SetupTracing(ctx, observability.TracingConfig{
		Enabled:     cfg.OTelEnabled,
		ServiceName: "storefront-api",
		Env:         cfg.Env,
		Endpoint:    cfg.OTelEndpoint,
	})
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := config.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(ctx)
	}()

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}

	seeded, err := db.EnsureAdminUser(ctx, pool, db.AdminSeed{
		Email:    cfg.AdminEmail,
		Password: cfg.AdminPassword,
		Name:     cfg.AdminName,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	log.Info("admin seed", "result", string(seeded))

	rdb, err := rediscart.Connect(ctx, rediscart.ClientConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return err
	}
	defer rdb.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	// repositories
	users := postgres.NewUsersRepo(pool, prom)
	products := postgres.NewProductsRepo(pool, prom)
	reviews := postgres.NewReviewsRepo(pool, prom)
	orders := postgres.NewOrdersRepo(pool, prom)
	stats := postgres.NewDashboardRepo(pool, prom)
	jobsRepo := postgres.NewJobsRepo(pool, prom)
	carts := rediscart.New(rdb, cfg.CartTTL)

	// services
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTokenTTL)
	guard := service.NewGuard(auth.NewGate(tokens), prom)

	catalog := service.NewCatalog(products, cfg.CatalogCacheTTL, prom)
	cartSvc := service.NewCarts(carts, catalog)

	router := httpx.NewRouter(httpx.Deps{
		Log:      log,
		Config:   cfg,
		Verifier: tokens,
		Prom:     prom,
		Metrics:  reg,
		Checks: map[string]handlers.Check{
			"db":    pool.Ping,
			"redis": rediscart.Ping(rdb),
		},

		Accounts:   service.NewAccounts(users, tokens, jobsRepo, log, prom),
		AdminUsers: service.NewAdminUsers(guard, users, log),

		Catalog:       catalog,
		Reviews:       service.NewReviews(reviews, catalog),
		Carts:         cartSvc,
		Checkout:      service.NewCheckout(orders, users, cartSvc, catalog, jobsRepo, log, prom),
		AdminProducts: service.NewAdminProducts(guard, products, catalog, log),
		AdminOrders:   service.NewAdminOrders(guard, orders, catalog, log),
		Dashboard:     service.NewDashboard(guard, stats, orders),
		AdminJobs:     service.NewAdminJobs(guard, jobsRepo, log),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", "port", cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("server shutting down")

	shutdownCtx, cancel := config.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
