package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/naturlife/storefront/internal/config"
	"github.com/naturlife/storefront/internal/db"
	"github.com/naturlife/storefront/internal/notifications"
	"github.com/naturlife/storefront/internal/observability"
	"github.com/naturlife/storefront/internal/queue/worker"
	"github.com/naturlife/storefront/internal/repo/postgres"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	log := observability.NewLogger(cfg.Env).With("process", "worker")
	slog.SetDefault(log)

	if err := run(cfg, log); err != nil {
		log.Error("worker stopped with error", "err", err)
		os.Exit(1)
	}
	log.Info("worker shutdown complete")
}

func run(cfg config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DBURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	prom := observability.NewProm(reg)

	notifier := notifications.NewProtectedNotifier(
		notifications.NewLogNotifier(log, notifications.LogNotifierOptions{
			Delay: cfg.NotifierDelay,
			Fail:  cfg.NotifierFail,
		}),
		notifications.ProtectedNotifierConfig{
			Timeout:          3 * time.Second,
			FailureThreshold: 5,
			Cooldown:         30 * time.Second,
		},
	)

	host, _ := os.Hostname()
	w := worker.New(worker.Config{
		WorkerID:      host + "-" + strconv.Itoa(os.Getpid()),
		PollInterval:  cfg.WorkerPoll,
		Concurrency:   cfg.WorkerConcurrency,
		ShutdownGrace: 10 * time.Second,
	},
		postgres.NewJobsRepo(pool, prom),
		postgres.NewNotificationDeliveriesRepo(pool, prom),
		notifier,
		log,
		prom,
	)

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	mux.Handle("/", w.HealthHandler(pool))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerHealthPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health server failed", "err", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := config.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	return w.Run(ctx)
}
