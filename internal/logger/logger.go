package logger

import (
	"log/slog"
	"os"
	"strings"
)

// New creates the application logger. JSON output on stdout, tagged with the
// service name so aggregated logs stay attributable. LOG_LEVEL overrides the
// default info level.
func New() *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: levelFromEnv()})
	return slog.New(handler).With(slog.String("service", "thumbdesk"))
}

func levelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
