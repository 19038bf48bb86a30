package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/jwebster45206/odyssey-engine/internal/storage"
	"github.com/jwebster45206/odyssey-engine/pkg/names"
	"github.com/jwebster45206/odyssey-engine/pkg/quest"
	"github.com/jwebster45206/odyssey-engine/pkg/session"
	"github.com/jwebster45206/odyssey-engine/pkg/world"
)

// ContentValidator checks a data directory: every world file, the quest
// catalog and the seed, plus the references between them.
type ContentValidator struct {
	errors []string

	worlds  map[string]*world.Graph // by normalized name
	catalog *quest.Catalog
}

// ValidateDir returns an error listing every problem found.
func (v *ContentValidator) ValidateDir(dir string) error {
	v.errors = nil
	v.worlds = make(map[string]*world.Graph)

	files, err := filepath.Glob(filepath.Join(dir, "worlds", "*.json"))
	if err != nil {
		return err
	}
	if len(files) == 0 {
		v.addError(fmt.Sprintf("no world files in %s", filepath.Join(dir, "worlds")))
	}
	sort.Strings(files)
	for _, f := range files {
		v.validateWorldFile(f)
	}

	v.validateQuests(filepath.Join(dir, "quests.json"))
	v.validateQuestOffers()
	v.validateSeed(filepath.Join(dir, "seed.json"))

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", dir, strings.Join(v.errors, "\n"))
	}
	return nil
}

// decodeStrict rejects unknown fields so typos in content are caught.
func decodeStrict(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filepath.Base(path))
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(out); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filepath.Base(path), err)
	}
	return nil
}

func (v *ContentValidator) validateWorldFile(path string) {
	base := strings.TrimSuffix(filepath.Base(path), ".json")
	if !isValidFilename(base) {
		v.addError(fmt.Sprintf("world filename '%s.json' must be lowercase snake_case", base))
	}

	var g world.Graph
	if err := decodeStrict(path, &g); err != nil {
		v.addError(err.Error())
		return
	}
	if g.Name == "" {
		v.addError(fmt.Sprintf("%s: world has no name", filepath.Base(path)))
		return
	}
	if storage.WorldFileName(g.Name) != filepath.Base(path) {
		v.addError(fmt.Sprintf("%s: world %q should live in %s", filepath.Base(path), g.Name, storage.WorldFileName(g.Name)))
	}
	key := names.Normalize(g.Name)
	if _, dup := v.worlds[key]; dup {
		v.addError(fmt.Sprintf("%s: duplicate world %q", filepath.Base(path), g.Name))
	}
	v.worlds[key] = &g

	for _, p := range g.Validate() {
		v.addError(p)
	}
	g.Walk(func(p world.LocationPath, loc *world.Location) {
		for _, it := range loc.Items {
			v.validateItem(p.String(), it)
		}
		for _, c := range loc.Containers {
			for _, it := range c.Contains {
				v.validateItem(p.String()+" "+c.Name, it)
			}
		}
		for _, n := range loc.NPCs {
			for _, in := range n.Interactions {
				v.validateInteraction(p.String()+" "+n.Name, in)
			}
		}
	})
}

func (v *ContentValidator) validateItem(where string, it world.Item) {
	if strings.TrimSpace(it.Name) == "" {
		v.addError(fmt.Sprintf("%s: item without a name", where))
	}
	if it.Quantity == 0 {
		v.addError(fmt.Sprintf("%s: item %q has zero quantity", where, it.Name))
	}
}

func (v *ContentValidator) validateInteraction(where string, in world.Interaction) {
	switch in.Type {
	case world.InteractTalk, world.InteractGive, world.InteractTake, world.InteractTrade:
	case world.InteractQuest:
		if in.Quest == "" {
			v.addError(fmt.Sprintf("%s: quest interaction names no quest", where))
		}
	default:
		v.addError(fmt.Sprintf("%s: unknown interaction type %q", where, in.Type))
	}
}

func (v *ContentValidator) validateQuests(path string) {
	var defs []quest.Definition
	if err := decodeStrict(path, &defs); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		v.addError(err.Error())
		return
	}
	catalog, err := quest.NewCatalog(defs)
	if err != nil {
		v.addError("quests.json: " + err.Error())
		return
	}
	v.catalog = catalog

	engine := quest.NewEngine(catalog, slog.New(slog.NewTextHandler(io.Discard, nil)))
	for _, p := range engine.Problems() {
		v.addError("quests.json: " + p)
	}
	for _, d := range defs {
		if d.Slug != "" && !isValidSlug(d.Slug) {
			v.addError(fmt.Sprintf("quests.json: quest %q slug %q must be camelCase", d.Name, d.Slug))
		}
	}
}

// validateQuestOffers checks that NPCs only hand out quests that exist.
func (v *ContentValidator) validateQuestOffers() {
	keys := make([]string, 0, len(v.worlds))
	for k := range v.worlds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		g := v.worlds[k]
		g.Walk(func(p world.LocationPath, loc *world.Location) {
			for _, n := range loc.NPCs {
				for _, q := range n.QuestOffers() {
					if _, ok := v.catalog.Get(q); !ok {
						v.addError(fmt.Sprintf("%s %s: offers unknown quest %q", p, n.Name, q))
					}
				}
			}
		})
	}
}

func (v *ContentValidator) validateSeed(path string) {
	var seed session.Seed
	if err := decodeStrict(path, &seed); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		v.addError(err.Error())
		return
	}

	worldName := seed.World
	if worldName == "" {
		worldName = session.DefaultWorld
	}
	g, ok := v.worlds[names.Normalize(worldName)]
	if !ok {
		v.addError(fmt.Sprintf("seed.json: unknown world %q", worldName))
	} else if seed.Location != "" && g.Resolve(world.ParsePath(g.Name, seed.Location)) == nil {
		v.addError(fmt.Sprintf("seed.json: location %q not found in %s", seed.Location, g.Name))
	}

	for _, ft := range seed.FastTravel {
		if _, ok := v.worlds[names.Normalize(ft.WorldName)]; !ok {
			v.addError(fmt.Sprintf("seed.json: fast travel to unknown world %q", ft.WorldName))
		}
	}
	for _, q := range seed.Quests {
		if _, ok := v.catalog.Get(q); !ok {
			v.addError(fmt.Sprintf("seed.json: unknown quest %q", q))
		}
	}
}

func (v *ContentValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var (
	validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)
	validSlugRegex     = regexp.MustCompile(`^[a-z][A-Za-z0-9]*$`)
)

func isValidFilename(name string) bool {
	return validFilenameRegex.MatchString(name)
}

func isValidSlug(slug string) bool {
	return validSlugRegex.MatchString(slug)
}
