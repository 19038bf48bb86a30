package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Save backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

type Config struct {
	Environment string
	LogLevel    slog.Level
	DataDir     string
	SaveBackend string
	RedisURL    string
	SQLitePath  string
	SaveTTL     time.Duration
	PlayerName  string

	// Tracing exports session spans over OTLP/HTTP when enabled.
	TracingEnabled bool
	OTLPEndpoint   string
}

// Load reads the environment, after pulling in a .env file if one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	ttl, err := time.ParseDuration(getEnv("SAVE_TTL", "720h"))
	if err != nil {
		return nil, fmt.Errorf("SAVE_TTL: %w", err)
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		DataDir:     getEnv("DATA_DIR", "data"),
		SaveBackend: strings.ToLower(getEnv("SAVE_BACKEND", BackendMemory)),
		RedisURL:    getEnv("REDIS_URL", ""),
		SQLitePath:  getEnv("SQLITE_PATH", "odyssey.db"),
		SaveTTL:     ttl,
		PlayerName:  getEnv("PLAYER_NAME", ""),

		TracingEnabled: strings.EqualFold(getEnv("OTEL_TRACES_ENABLED", "false"), "true"),
		OTLPEndpoint:   getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "http://localhost:4318"),
	}

	switch cfg.SaveBackend {
	case BackendMemory, BackendSQLite:
	case BackendRedis:
		if cfg.RedisURL == "" {
			return nil, errors.New("SAVE_BACKEND=redis requires REDIS_URL")
		}
	default:
		return nil, fmt.Errorf("unknown SAVE_BACKEND %q", cfg.SaveBackend)
	}
	return cfg, nil
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
