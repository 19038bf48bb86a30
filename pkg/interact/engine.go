// Package interact resolves and executes player actions against the live
// world graph and player state. It is the only code that moves items
// between inventories in response to a command.
package interact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/jwebster45206/odyssey-engine/internal/logger"
	"github.com/jwebster45206/odyssey-engine/pkg/names"
	"github.com/jwebster45206/odyssey-engine/pkg/player"
	"github.com/jwebster45206/odyssey-engine/pkg/world"
)

// Player-facing failures. Callers turn these into result text.
var (
	ErrNoSuchPath      = errors.New("no such path")
	ErrNotFound        = errors.New("not found")
	ErrNotOpen         = errors.New("container is not open")
	ErrInsufficient    = errors.New("not enough")
	ErrNotCollectable  = errors.New("item cannot be collected")
	ErrNoOpenContainer = errors.New("no open container")
	ErrUnknownLocation = errors.New("unknown location")
	ErrUnknownWorld    = errors.New("unknown world")
	ErrRefused         = errors.New("refused")
	ErrNoMainEntry     = errors.New("world has no main entry")
	ErrAlreadyThere    = errors.New("already in that world")
)

const (
	exitKey             = "exit"
	unknownLocationText = "You are in an unknown location."
)

// WorldLoader fetches a world document by name.
type WorldLoader interface {
	LoadWorld(ctx context.Context, name string) (*world.Graph, error)
}

// Engine runs actions for one player in one live world.
type Engine struct {
	graph  *world.Graph
	player *player.State
	loader WorldLoader
	logger *slog.Logger
}

// NewEngine binds the engine to the session's graph and player.
func NewEngine(g *world.Graph, p *player.State, loader WorldLoader, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{graph: g, player: p, loader: loader, logger: logger}
}

// Graph returns the live world. It changes after a fast travel.
func (e *Engine) Graph() *world.Graph {
	return e.graph
}

// Player returns the bound player state.
func (e *Engine) Player() *player.State {
	return e.player
}

// Replace rebinds the engine after a restore.
func (e *Engine) Replace(g *world.Graph, p *player.State) {
	e.graph = g
	e.player = p
}

// Current resolves the player's location in the live world.
func (e *Engine) Current() (*world.Location, error) {
	loc := e.graph.Resolve(e.player.Location)
	if loc == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLocation, e.player.Location)
	}
	return loc, nil
}

// Move goes one hop: along a path (matched by destination name, not
// direction), into a direct sublocation or room, or into a room of a
// direct sublocation. "exit" follows an exit path or steps back out.
func (e *Engine) Move(dest string) (string, error) {
	loc, err := e.Current()
	if err != nil {
		return "You are in an unknown location and cannot move.", err
	}
	here := e.player.Location
	key := names.Normalize(dest)
	if key == "" {
		return "Move where?", fmt.Errorf("%w: empty destination", ErrNoSuchPath)
	}

	if key == exitKey {
		if to, ok := pathByDirection(loc, exitKey); ok && !names.Equal(to, loc.Name) {
			return e.follow(to)
		}
		if parent, ok := here.Parent(); ok {
			return e.relocate(parent)
		}
	}

	for _, dir := range sortedDirections(loc) {
		to := loc.Paths[dir]
		if !names.Equal(to, dest) {
			continue
		}
		if names.Equal(to, loc.Name) {
			logger.Content(e.logger).Warn("Ignoring self-referential path", "location", loc.Name, "direction", dir)
			continue
		}
		return e.follow(to)
	}

	if child := loc.Child(dest); child != nil {
		return e.relocate(here.Child(child.Name))
	}
	for _, sub := range loc.Sublocations {
		for _, room := range sub.Rooms {
			if names.Equal(room.Name, dest) {
				return e.relocate(here.Child(sub.Name).Child(room.Name))
			}
		}
	}

	return fmt.Sprintf("You cannot move to '%s' from your current location.", dest),
		fmt.Errorf("%w: %s from %s", ErrNoSuchPath, dest, loc.Name)
}

func (e *Engine) follow(to string) (string, error) {
	p, _, ok := e.graph.PathTo(to)
	if !ok {
		err := &world.ContentError{Err: fmt.Errorf("%w: path leads to %q", ErrUnknownLocation, to)}
		logger.Content(e.logger).Error("Dangling path", "destination", to)
		return fmt.Sprintf("The way to %s is blocked.", to), err
	}
	return e.relocate(p)
}

func (e *Engine) relocate(p world.LocationPath) (string, error) {
	target := e.graph.Resolve(p)
	if target == nil {
		return unknownLocationText, fmt.Errorf("%w: %s", ErrUnknownLocation, p)
	}
	if err := e.player.SetLocation(p); err != nil {
		return unknownLocationText, err
	}
	e.logger.Debug("Player moved", "location", p.String())
	return fmt.Sprintf("You moved to %s.\n%s", target.Name, describe(target)), nil
}

// FastTravel swaps the live world for a known one and drops the player at
// its main entry. Nothing changes unless every step succeeds.
func (e *Engine) FastTravel(ctx context.Context, worldName string) (string, error) {
	known, ok := e.player.FastTravelWorld(worldName)
	if !ok {
		return fmt.Sprintf("You don't know how to reach %s.", worldName),
			fmt.Errorf("%w: %s", ErrUnknownWorld, worldName)
	}
	worldName = known
	if names.Equal(worldName, e.graph.Name) {
		return fmt.Sprintf("You are already in %s.", e.graph.Name),
			fmt.Errorf("%w: %s", ErrAlreadyThere, worldName)
	}
	if e.loader == nil {
		return "Fast travel is unavailable.", fmt.Errorf("%w: no world loader", ErrUnknownWorld)
	}

	next, err := e.loader.LoadWorld(ctx, worldName)
	if err != nil {
		e.logger.Error("Failed to load world", "world", worldName, "error", err)
		return fmt.Sprintf("You can't travel to %s right now.", worldName), fmt.Errorf("fast travel: %w", err)
	}
	if next.Name == "" {
		next.Name = worldName
	}
	entry, at, ok := next.MainEntry()
	if !ok {
		err := &world.ContentError{Err: fmt.Errorf("%w: %s", ErrNoMainEntry, next.Name)}
		logger.WithError(logger.Content(e.logger), err).Error("Fast travel refused", "world", next.Name)
		return fmt.Sprintf("%s has nowhere to arrive.", next.Name), err
	}

	e.graph.CloseAllContainers()
	*e.graph = *next
	e.graph.LastSpoken = ""
	e.player.Location = at

	e.logger.Info("Fast travelled", "world", next.Name, "location", at.String())
	return fmt.Sprintf("You travel to %s and arrive at %s.\n%s", next.Name, entry.Name, describe(entry)), nil
}

func sortedDirections(loc *world.Location) []string {
	dirs := make([]string, 0, len(loc.Paths))
	for dir := range loc.Paths {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs
}

func pathByDirection(loc *world.Location, dir string) (string, bool) {
	for d, to := range loc.Paths {
		if names.Equal(d, dir) {
			return to, true
		}
	}
	return "", false
}
