package serviceutil

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/morikuni/failure/v2"
)

// Returns a context that will live until Ctrl+C is pressed
func SignalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// Fatal logs the error, preferring the user facing failure message when one
// is attached, then exits.
func Fatal(message string, err error) {
	args := []any{"err", err.Error()}
	if msg := failure.MessageOf(err); msg != "" {
		args = append(args, "reason", msg.String())
	}
	slog.Error(message, args...)
	os.Exit(1)
}
