package logger

import (
	"io"
	"log/slog"
	"os"

	"github.com/jwebster45206/odyssey-engine/internal/config"
)

// ContentChannel tags errors caused by malformed world, quest or seed data
// so they can be told apart from player mistakes.
const ContentChannel = "content"

// Setup configures the global slog logger based on environment
func Setup(cfg *config.Config) *slog.Logger {
	return SetupWriter(cfg, os.Stdout)
}

// SetupWriter is Setup with an explicit destination, e.g. a log file
// for the console UI which owns the terminal.
func SetupWriter(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	var handler slog.Handler
	if cfg.Environment == "production" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// WithSession adds the session ID to logger context
func WithSession(logger *slog.Logger, sessionID string) *slog.Logger {
	return logger.With("session_id", sessionID)
}

// WithError adds error to logger context
func WithError(logger *slog.Logger, err error) *slog.Logger {
	return logger.With("error", err.Error())
}

// Content returns a logger on the content channel.
func Content(logger *slog.Logger) *slog.Logger {
	return logger.With("channel", ContentChannel)
}
