package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/odyssey-engine/pkg/session"
	_ "modernc.org/sqlite"
)

const saveSchema = `
CREATE TABLE IF NOT EXISTS saves (
	id          TEXT PRIMARY KEY,
	player_name TEXT NOT NULL,
	world       TEXT NOT NULL,
	saved_at    DATETIME NOT NULL,
	data        TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_saves_saved_at ON saves(saved_at);
`

// SQLiteStore keeps snapshots in a single local database file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ SaveStore = (*SQLiteStore)(nil)

// NewSQLiteStore opens (or creates) the database at path and its schema.
func NewSQLiteStore(ctx context.Context, path string, logger *slog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// sqlite allows one writer at a time
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, saveSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create saves table: %w", err)
	}
	logger.Debug("SQLite save store ready", "path", path)
	return &SQLiteStore{db: db, logger: logger}, nil
}

func (s *SQLiteStore) Save(ctx context.Context, id uuid.UUID, snap session.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		s.logger.Error("Failed to marshal snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO saves (id, player_name, world, saved_at, data)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			player_name = excluded.player_name,
			world = excluded.world,
			saved_at = excluded.saved_at,
			data = excluded.data`,
		id.String(), snap.Player.Name, snap.WorldName, snap.SavedAt.UTC(), string(data))
	if err != nil {
		s.logger.Error("Failed to save snapshot", "uuid", id, "error", err)
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context, id uuid.UUID) (*session.Snapshot, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM saves WHERE id = ?`, id.String()).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSaveNotFound, id)
	}
	if err != nil {
		s.logger.Error("Failed to load snapshot", "uuid", id, "error", err)
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap session.Snapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (s *SQLiteStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM saves WHERE id = ?`, id.String()); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]SaveInfo, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, player_name, world, saved_at FROM saves ORDER BY saved_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list saves: %w", err)
	}
	defer rows.Close()

	var out []SaveInfo
	for rows.Next() {
		var (
			rawID   string
			info    SaveInfo
			savedAt time.Time
		)
		if err := rows.Scan(&rawID, &info.PlayerName, &info.World, &savedAt); err != nil {
			return nil, fmt.Errorf("failed to scan save row: %w", err)
		}
		id, err := uuid.Parse(rawID)
		if err != nil {
			s.logger.Warn("Skipping malformed save id", "id", rawID)
			continue
		}
		info.ID = id
		info.SavedAt = savedAt
		out = append(out, info)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
