package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/odyssey-engine/pkg/session"
)

// MemoryStore keeps snapshots in process. Used by tests and the default
// console backend.
type MemoryStore struct {
	mu    sync.RWMutex
	saves map[uuid.UUID][]byte
}

var _ SaveStore = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{saves: make(map[uuid.UUID][]byte)}
}

// Save stores the snapshot encoded, so later mutation of the live session
// cannot leak into it.
func (m *MemoryStore) Save(ctx context.Context, id uuid.UUID, snap session.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves[id] = data
	return nil
}

func (m *MemoryStore) Load(ctx context.Context, id uuid.UUID) (*session.Snapshot, error) {
	m.mu.RLock()
	data, ok := m.saves[id]
	m.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSaveNotFound, id)
	}
	var snap session.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.saves, id)
	return nil
}

func (m *MemoryStore) List(ctx context.Context) ([]SaveInfo, error) {
	m.mu.RLock()
	ids := make([]uuid.UUID, 0, len(m.saves))
	for id := range m.saves {
		ids = append(ids, id)
	}
	m.mu.RUnlock()

	out := make([]SaveInfo, 0, len(ids))
	for _, id := range ids {
		snap, err := m.Load(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, infoOf(id, *snap))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SavedAt.After(out[j].SavedAt) })
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }
