package notifications

import (
	"context"
	"fmt"

	"github.com/geocoder89/taskhub/internal/actorctx"
	"github.com/geocoder89/taskhub/internal/jobs"
)

// Pusher is the queue write side (redisclient.Client).
type Pusher interface {
	Push(ctx context.Context, key string, payload []byte) error
}

// QueueNotifier hands emails to the mail worker through a Redis list
// instead of calling the provider from the API process.
type QueueNotifier struct {
	q   Pusher
	key string
}

func NewQueueNotifier(q Pusher, key string) *QueueNotifier {
	return &QueueNotifier{q: q, key: key}
}

func (n *QueueNotifier) SendWelcome(ctx context.Context, to Email) error {
	return n.enqueue(ctx, jobs.JobSendWelcomeEmail, to)
}

func (n *QueueNotifier) SendCancellation(ctx context.Context, to Email) error {
	return n.enqueue(ctx, jobs.JobSendCancellationEmail, to)
}

func (n *QueueNotifier) enqueue(ctx context.Context, t jobs.JobType, to Email) error {
	reqID, _ := actorctx.RequestIDFrom(ctx)
	raw, err := jobs.Marshal(t, jobs.EmailPayload{To: to.To, Name: to.Name}, reqID)
	if err != nil {
		return fmt.Errorf("encode %s job: %w", t, err)
	}
	if err := n.q.Push(ctx, n.key, raw); err != nil {
		return fmt.Errorf("enqueue %s job: %w", t, err)
	}
	return nil
}
