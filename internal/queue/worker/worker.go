package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/notifications"
	"github.com/geocoder89/taskhub/internal/observability"
)

// Queue is the slice of the redis client the worker needs.
type Queue interface {
	Pop(ctx context.Context, key string, timeout time.Duration) ([]byte, error)
	Ping(ctx context.Context) error
}

type Config struct {
	WorkerID   string
	QueueKey   string
	PopTimeout time.Duration
}

type Worker struct {
	cfg      Config
	queue    Queue
	notifier notifications.Notifier
	metrics  *observability.DeliveryMetrics
	log      *slog.Logger

	readyMu sync.RWMutex
	ready   bool

	// sleep is swapped in tests
	sleep func(ctx context.Context, d time.Duration)
}

func New(cfg Config, queue Queue, notifier notifications.Notifier, metrics *observability.DeliveryMetrics, log *slog.Logger) *Worker {
	if cfg.WorkerID == "" {
		host, _ := os.Hostname()
		cfg.WorkerID = fmt.Sprintf("%s-%d", host, os.Getpid())
	}
	if cfg.PopTimeout <= 0 {
		cfg.PopTimeout = 5 * time.Second
	}
	if metrics == nil {
		metrics = observability.NewDeliveryMetrics()
	}
	if log == nil {
		log = slog.Default()
	}

	return &Worker{
		cfg:      cfg,
		queue:    queue,
		notifier: notifier,
		metrics:  metrics,
		log:      log.With("worker_id", cfg.WorkerID),
		sleep:    sleepCtx,
	}
}

// Run drains the queue until ctx is cancelled. Queue errors back off
// exponentially; delivery failures never stop the loop.
func (w *Worker) Run(ctx context.Context) error {
	w.setReady(true)
	defer w.setReady(false)

	w.log.Info("worker started", "queue", w.cfg.QueueKey)

	attempt := 0
	for {
		if ctx.Err() != nil {
			w.log.Info("worker received shutdown signal")
			return nil
		}

		_, err := w.ProcessOne(ctx)
		if err == nil {
			attempt = 0
			continue
		}
		if ctx.Err() != nil {
			continue
		}

		delay := Backoff(attempt)
		w.log.Error("queue pop failed", "err", err, "attempt", attempt, "retry_in", delay.String())
		attempt++
		w.sleep(ctx, delay)
	}
}

func (w *Worker) Metrics() *observability.DeliveryMetrics {
	return w.metrics
}

func (w *Worker) setReady(v bool) {
	w.readyMu.Lock()
	w.ready = v
	w.readyMu.Unlock()
}

func (w *Worker) isReady() bool {
	w.readyMu.RLock()
	defer w.readyMu.RUnlock()
	return w.ready
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
