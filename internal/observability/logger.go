package observability

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger: JSON on stdout, debug level in dev,
// with trace, request and user ids taken from the record context.
func NewLogger(env, service string) *slog.Logger {
	return newLogger(os.Stdout, env, service)
}

func newLogger(w io.Writer, env, service string) *slog.Logger {
	level := slog.LevelInfo

	if env == "dev" {
		level = slog.LevelDebug
	}

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(NewContextHandler(handler)).With("service", service, "env", env)
}
