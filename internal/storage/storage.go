// Package storage reads world, quest and seed documents from the data
// directory and persists session snapshots.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/odyssey-engine/internal/config"
	"github.com/jwebster45206/odyssey-engine/pkg/session"
)

var ErrSaveNotFound = errors.New("save not found")

// SaveInfo summarizes a stored snapshot for listing.
type SaveInfo struct {
	ID         uuid.UUID `json:"id"`
	PlayerName string    `json:"player_name"`
	World      string    `json:"world"`
	SavedAt    time.Time `json:"saved_at"`
}

// SaveStore persists session snapshots keyed by session ID.
type SaveStore interface {
	Save(ctx context.Context, id uuid.UUID, snap session.Snapshot) error
	Load(ctx context.Context, id uuid.UUID) (*session.Snapshot, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]SaveInfo, error)
	Close() error
}

func infoOf(id uuid.UUID, snap session.Snapshot) SaveInfo {
	return SaveInfo{ID: id, PlayerName: snap.Player.Name, World: snap.WorldName, SavedAt: snap.SavedAt}
}

// NewSaveStore opens the backend named by cfg.SaveBackend.
func NewSaveStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (SaveStore, error) {
	switch cfg.SaveBackend {
	case config.BackendRedis:
		rs, err := NewRedisStore(cfg.RedisURL, cfg.SaveTTL, logger)
		if err != nil {
			return nil, err
		}
		if err := rs.WaitForConnection(ctx); err != nil {
			_ = rs.Close()
			return nil, err
		}
		return rs, nil
	case config.BackendSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath, logger)
	case config.BackendMemory, "":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown save backend %q", cfg.SaveBackend)
	}
}
