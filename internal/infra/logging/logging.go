package logging

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"
)

// SetupJSON sets slog's default logger to JSON output on stdout at the given
// level. Every record carries the service name.
func SetupJSON(level slog.Level, service string) *slog.Logger {
	return setup(os.Stdout, level, service)
}

func setup(w io.Writer, level slog.Level, service string) *slog.Logger {
	logger := slog.New(
		slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}),
	).With("service", service)

	slog.SetDefault(logger)

	return logger
}

// Account groups the identity of a credit account for log records.
func Account(tenantID uint64, accountID uuid.UUID) slog.Attr {
	return slog.Group("account",
		slog.Uint64("tenant_id", tenantID),
		slog.String("id", accountID.String()),
	)
}
