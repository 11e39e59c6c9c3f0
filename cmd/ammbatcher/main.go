package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/efreitasn/ammbatcher/internal/config"
	"github.com/efreitasn/ammbatcher/internal/engine"
	"github.com/efreitasn/ammbatcher/internal/handler"
	"github.com/efreitasn/ammbatcher/internal/service"
	"github.com/efreitasn/ammbatcher/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// -healthcheck: GET localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	// Stores.
	poolStore := store.NewPoolStore()
	orderStore := store.NewOrderStore()
	webhookStore := store.NewWebhookStore()

	// Per-pool pending queues.
	queues := engine.NewQueueManager()

	// Services.
	webhookSvc := service.NewWebhookService(webhookStore, poolStore, cfg.WebhookTimeout, logger)
	poolSvc := service.NewPoolService(poolStore, queues, cfg.DefaultFeeRate)
	orderSvc := service.NewOrderService(poolStore, orderStore, queues)
	batchSvc := service.NewBatchService(poolStore, orderStore, queues, webhookSvc, cfg.MaxBatchSize, logger)

	router := handler.NewRouter(poolSvc, orderSvc, batchSvc, webhookSvc, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scheduler := engine.NewScheduler(cfg.BatchInterval, batchSvc)
	if scheduler.Enabled() {
		logger.Info("batch scheduler enabled", slog.Duration("interval", cfg.BatchInterval))
	}
	scheduler.Start(ctx)

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.Int("max_batch_size", cfg.MaxBatchSize),
			slog.Float64("default_fee_rate", cfg.DefaultFeeRate),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Stop accepting requests, join the scheduler so no batch can start
	// another delivery, then let in-flight webhook deliveries finish.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()
	scheduler.Wait()
	webhookSvc.Wait()

	logger.Info("server stopped")
}
