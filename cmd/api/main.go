package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/geocoder89/taskhub/internal/auth"
	"github.com/geocoder89/taskhub/internal/config"
	httpx "github.com/geocoder89/taskhub/internal/http"
	"github.com/geocoder89/taskhub/internal/notifications"
	"github.com/geocoder89/taskhub/internal/observability"
	"github.com/geocoder89/taskhub/internal/queue/redisclient"
	"github.com/geocoder89/taskhub/internal/service"
	"github.com/geocoder89/taskhub/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const serviceName = "taskhub-api"

func main() {
	// Load the config set up
	cfg := config.Load()

	log := observability.NewLogger(cfg.Env, serviceName)
	slog.SetDefault(log)

	ctx := context.Background()

	shutdownTracer, err := observability.InitTracer(ctx, cfg.OTelEnabled, serviceName, cfg.Env, cfg.OTelEndpoint)
	if err != nil {
		log.Error("tracer init failed", "err", err)
		os.Exit(1)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	prom := observability.NewProm(reg)

	st, err := store.Open(ctx, cfg, prom, log)
	if err != nil {
		log.Error("store open failed", "driver", cfg.StoreDriver, "err", err)
		os.Exit(1)
	}

	notifier, closeNotifier := buildNotifier(cfg, log)
	mailer := notifications.NewDispatcher(notifier, log, prom, 10*time.Second)

	accounts := service.NewAccounts(st.Users, st.Tasks, auth.NewManager(cfg.JWTSecret), mailer)

	router := httpx.NewRouter(httpx.RouterDeps{
		Log:            log,
		Env:            cfg.Env,
		Accounts:       accounts,
		Tasks:          st.Tasks,
		Ping:           st.Ping,
		Prom:           prom,
		ServiceName:    serviceName,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		MaxBodyBytes:   cfg.MaxBodyBytes,
	})

	// server set up
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("Server starting", "port", cfg.Port, "env", cfg.Env, "store", st.Driver)
		err := srv.ListenAndServe()

		if err != nil && err != http.ErrServerClosed {
			log.Error("server failed", "err", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("server shutting down")

	shutdownCh := make(chan struct{})

	go func() {
		defer close(shutdownCh)

		ctx, cancel := config.WithTimeout(10 * time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("graceful shutdown failed", "err", err)
		}

		// emails already accepted get their chance to go out
		if err := mailer.Wait(ctx); err != nil {
			log.Warn("pending emails abandoned", "err", err)
		}

		closeNotifier()

		if err := st.Close(ctx); err != nil {
			log.Error("store close failed", "err", err)
		}
		if err := shutdownTracer(ctx); err != nil {
			log.Error("tracer shutdown failed", "err", err)
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("shutdown complete")

	case <-time.After(12 * time.Second):
		log.Error("shutdown timed out")
	}
}

// buildNotifier picks the email transport. The returned func releases
// whatever the transport holds open.
func buildNotifier(cfg config.Config, log *slog.Logger) (notifications.Notifier, func()) {
	switch cfg.Notifier {
	case config.NotifierSendGrid:
		sg := notifications.NewSendGridNotifier(cfg.SendGridAPIKey, cfg.EmailFrom)
		return notifications.NewProtectedNotifier(sg, notifications.ProtectedNotifierConfig{}), func() {}

	case config.NotifierQueue:
		rdb := redisclient.New(redisclient.Config{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		log.Info("emails are queued for the worker", "queue", cfg.EmailQueueKey)
		return notifications.NewQueueNotifier(rdb, cfg.EmailQueueKey), func() { _ = rdb.Close() }

	default:
		return notifications.NewLogNotifier(log), func() {}
	}
}
