package notifications

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// LogNotifier writes emails to the log instead of sending them. It is the
// dev default when no SendGrid key is configured.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	if log == nil {
		log = slog.Default()
	}
	return &LogNotifier{log: log}
}

func (n *LogNotifier) SendWelcome(ctx context.Context, to Email) error {
	return n.send(ctx, KindWelcome, to)
}

func (n *LogNotifier) SendCancellation(ctx context.Context, to Email) error {
	return n.send(ctx, KindCancellation, to)
}

func (n *LogNotifier) send(ctx context.Context, kind Kind, to Email) error {
	// Optional: simulate slow provider
	if msStr := os.Getenv("NOTIFIER_SLEEP_MS"); msStr != "" {
		ms, _ := strconv.Atoi(msStr)
		if ms > 0 {
			select {
			case <-time.After(time.Duration(ms) * time.Millisecond):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	// Optional: simulate provider outage
	if os.Getenv("NOTIFIER_FAIL") == "1" {
		return fmt.Errorf("provider down (simulated)")
	}

	msg, err := Compose(kind, to.Name)
	if err != nil {
		return err
	}

	n.log.InfoContext(ctx, "email.sent",
		"kind", string(kind),
		"to", to.To,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}
