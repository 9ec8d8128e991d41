package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/geocoder89/taskhub/internal/jobs"
	"github.com/geocoder89/taskhub/internal/notifications"
	"github.com/geocoder89/taskhub/internal/queue/redisclient"
)

// ProcessOne pops at most one job and delivers it. It reports whether a
// job was taken off the queue. Only queue failures are returned: a job
// that cannot be decoded or delivered is logged and dropped.
func (w *Worker) ProcessOne(ctx context.Context) (bool, error) {
	raw, err := w.queue.Pop(ctx, w.cfg.QueueKey, w.cfg.PopTimeout)
	if err != nil {
		if errors.Is(err, redisclient.ErrEmpty) {
			return false, nil
		}
		return false, err
	}
	w.metrics.IncPopped()

	j, payload, err := jobs.Unmarshal(raw)
	if err != nil {
		w.metrics.IncInvalid()
		w.log.Warn("dropping invalid job", "err", err, "job_id", j.ID, "type", string(j.Type))
		return true, nil
	}

	log := w.log.With("job_id", j.ID, "type", string(j.Type), "request_id", j.RequestID)

	start := time.Now()
	err = w.execute(ctx, j.Type, payload.(jobs.EmailPayload))
	w.metrics.ObserveDuration(time.Since(start))

	if err != nil {
		w.metrics.IncFailed()
		log.Error("email delivery failed", "err", err)
		return true, nil
	}

	w.metrics.IncSent()
	log.Info("email delivered")
	return true, nil
}

func (w *Worker) execute(ctx context.Context, t jobs.JobType, p jobs.EmailPayload) error {
	to := notifications.Email{To: p.To, Name: p.Name}

	switch t {
	case jobs.JobSendWelcomeEmail:
		return w.notifier.SendWelcome(ctx, to)
	case jobs.JobSendCancellationEmail:
		return w.notifier.SendCancellation(ctx, to)
	default:
		return fmt.Errorf("%w: %s", jobs.ErrInvalidJobType, t)
	}
}
