package notifications

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/geocoder89/taskhub/internal/actorctx"
)

// Observer records the outcome of a send (observability.Prom satisfies it).
type Observer interface {
	ObserveEmail(kind string, d time.Duration, err error)
}

// Dispatcher sends emails without making the caller wait. Each send runs on
// its own goroutine with a context detached from the request, bounded by
// timeout. Failures are logged and otherwise dropped.
type Dispatcher struct {
	inner   Notifier
	log     *slog.Logger
	obs     Observer
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(inner Notifier, log *slog.Logger, obs Observer, timeout time.Duration) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Dispatcher{inner: inner, log: log, obs: obs, timeout: timeout}
}

func (d *Dispatcher) Welcome(ctx context.Context, to Email) {
	d.dispatch(ctx, KindWelcome, to, d.inner.SendWelcome)
}

func (d *Dispatcher) Cancellation(ctx context.Context, to Email) {
	d.dispatch(ctx, KindCancellation, to, d.inner.SendCancellation)
}

func (d *Dispatcher) dispatch(ctx context.Context, kind Kind, to Email, send func(context.Context, Email) error) {
	sendCtx := context.WithoutCancel(ctx)

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(sendCtx, d.timeout)
		defer cancel()

		start := time.Now()
		err := send(ctx, to)
		if d.obs != nil {
			d.obs.ObserveEmail(string(kind), time.Since(start), err)
		}
		if err != nil {
			reqID, _ := actorctx.RequestIDFrom(ctx)
			d.log.WarnContext(ctx, "email.failed",
				"kind", string(kind),
				"to", to.To,
				"request_id", reqID,
				"err", err,
			)
		}
	}()
}

// Wait blocks until in-flight sends finish or ctx is done. Used on shutdown.
func (d *Dispatcher) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
