package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jwebster45206/odyssey-engine/pkg/interact"
	"github.com/jwebster45206/odyssey-engine/pkg/names"
	"github.com/jwebster45206/odyssey-engine/pkg/quest"
	"github.com/jwebster45206/odyssey-engine/pkg/session"
	"github.com/jwebster45206/odyssey-engine/pkg/world"
)

// FileStore reads authoring data from a directory laid out as
//
//	<dir>/worlds/<world>.json
//	<dir>/quests.json
//	<dir>/seed.json
type FileStore struct {
	dataDir string
	logger  *slog.Logger
}

var _ interact.WorldLoader = (*FileStore)(nil)

func NewFileStore(dataDir string, logger *slog.Logger) *FileStore {
	return &FileStore{dataDir: dataDir, logger: logger}
}

// WorldFileName maps a world name to its file, e.g. "Odyssey VR" -> "odyssey_vr.json".
func WorldFileName(name string) string {
	return strings.ReplaceAll(names.Normalize(name), " ", "_") + ".json"
}

// ListWorlds maps world names to file names. Unreadable files are skipped.
func (f *FileStore) ListWorlds(ctx context.Context) (map[string]string, error) {
	dir := filepath.Join(f.dataDir, "worlds")
	worlds := make(map[string]string)

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(path) != ".json" {
			return nil
		}
		g, err := readWorld(path)
		if err != nil {
			f.logger.Warn("Failed to read world file", "path", path, "error", err)
			return nil
		}
		worlds[g.Name] = filepath.Base(path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list worlds: %w", err)
	}
	return worlds, nil
}

// LoadWorld reads the named world. The conventional file name is tried
// first, then every world file is scanned for a matching name.
func (f *FileStore) LoadWorld(ctx context.Context, name string) (*world.Graph, error) {
	path := filepath.Join(f.dataDir, "worlds", WorldFileName(name))
	f.logger.Debug("Loading world", "world", name, "path", path)

	g, err := readWorld(path)
	if err == nil && names.Equal(g.Name, name) {
		return g, nil
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	listed, lerr := f.ListWorlds(ctx)
	if lerr != nil {
		return nil, lerr
	}
	for worldName, file := range listed {
		if names.Equal(worldName, name) {
			return readWorld(filepath.Join(f.dataDir, "worlds", file))
		}
	}
	return nil, fmt.Errorf("%w: %s", interact.ErrUnknownWorld, name)
}

func readWorld(path string) (*world.Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var g world.Graph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, &world.ContentError{Err: fmt.Errorf("world file %s: %w", filepath.Base(path), err)}
	}
	if g.Name == "" {
		return nil, &world.ContentError{Err: fmt.Errorf("world file %s has no name", filepath.Base(path))}
	}
	return &g, nil
}

// LoadQuests reads the quest catalog. A missing file yields an empty catalog.
func (f *FileStore) LoadQuests(ctx context.Context) (*quest.Catalog, error) {
	path := filepath.Join(f.dataDir, "quests.json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		f.logger.Warn("No quest catalog found", "path", path)
		return quest.NewCatalog(nil)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read quest catalog: %w", err)
	}

	var defs []quest.Definition
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, &world.ContentError{Err: fmt.Errorf("quests.json: %w", err)}
	}
	catalog, err := quest.NewCatalog(defs)
	if err != nil {
		return nil, &world.ContentError{Err: err}
	}
	f.logger.Debug("Loaded quest catalog", "quests", len(defs))
	return catalog, nil
}

// LoadSeed reads the new-game document. A missing file yields the defaults.
func (f *FileStore) LoadSeed(ctx context.Context) (session.Seed, error) {
	path := filepath.Join(f.dataDir, "seed.json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return session.Seed{}, nil
	}
	if err != nil {
		return session.Seed{}, fmt.Errorf("failed to read seed: %w", err)
	}

	var seed session.Seed
	if err := json.Unmarshal(data, &seed); err != nil {
		return session.Seed{}, &world.ContentError{Err: fmt.Errorf("seed.json: %w", err)}
	}
	return seed, nil
}

// WorldNames returns the loadable world names, sorted.
func (f *FileStore) WorldNames(ctx context.Context) ([]string, error) {
	listed, err := f.ListWorlds(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(listed))
	for name := range listed {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}
