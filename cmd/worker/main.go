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

	"github.com/geocoder89/taskhub/internal/config"
	"github.com/geocoder89/taskhub/internal/notifications"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/queue/redisclient"
	"github.com/geocoder89/taskhub/internal/queue/worker"
)

const serviceName = "taskhub-worker"

func main() {
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env, serviceName)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	rdb := redisclient.New(redisclient.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer rdb.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	err := rdb.Ping(pingCtx)
	cancel()
	if err != nil {
		log.Error("redis connect failed", "addr", cfg.RedisAddr, "err", err)
		os.Exit(1)
	}

	var inner notifications.Notifier = notifications.NewLogNotifier(log)
	if cfg.SendGridAPIKey != "" {
		inner = notifications.NewSendGridNotifier(cfg.SendGridAPIKey, cfg.EmailFrom)
	}
	notifier := notifications.NewProtectedNotifier(inner, notifications.ProtectedNotifierConfig{
		Timeout:          10 * time.Second,
		FailureThreshold: 5,
		Cooldown:         30 * time.Second,
	})

	w := worker.New(worker.Config{
		QueueKey:   cfg.EmailQueueKey,
		PopTimeout: 5 * time.Second,
	}, rdb, notifier, observability.NewDeliveryMetrics(), log)

	healthSrv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.WorkerHealthPort),
		Handler:           w.HealthHandler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Info("worker health server starting", "port", cfg.WorkerHealthPort)
		if err := healthSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("health server failed", "err", err)
		}
	}()

	if err := w.Run(ctx); err != nil {
		log.Error("worker stopped with error", "err", err)
	}

	shutdownCtx, cancel := config.WithTimeout(5 * time.Second)
	defer cancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("health server shutdown failed", "err", err)
	}

	log.Info("worker shutdown complete", "stats", w.Metrics().Snapshot())
}
