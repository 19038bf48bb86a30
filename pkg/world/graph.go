// Package world holds the in-memory location tree of the currently loaded
// world and the item/container/NPC entities placed in it.
package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/jwebster45206/odyssey-engine/pkg/names"
)

var ErrLocationNotFound = errors.New("location not found")

// Graph is the location tree of one world. Only one Graph is live per session.
type Graph struct {
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Locations   []*Location `json:"locations"`
	LastSpoken  string      `json:"last_spoken,omitempty"` // last NPC the player talked to
}

// FindLocation searches top-level locations first, then their sublocations
// and rooms, level by level. The first match wins; nil means unknown.
func (g *Graph) FindLocation(name string) *Location {
	if g == nil {
		return nil
	}
	key := names.Normalize(name)
	level := g.Locations
	for len(level) > 0 {
		var next []*Location
		for _, loc := range level {
			if names.Normalize(loc.Name) == key {
				return loc
			}
			next = append(next, loc.children()...)
		}
		level = next
	}
	return nil
}

// Resolve walks a structured path. The first segment is found anywhere in
// the tree; each later segment must be a direct child of the previous one.
func (g *Graph) Resolve(p LocationPath) *Location {
	if p.IsZero() {
		return nil
	}
	node := g.FindLocation(p.Segments[0])
	for _, seg := range p.Segments[1:] {
		if node == nil {
			return nil
		}
		node = node.Child(seg)
	}
	return node
}

// Walk visits every location depth-first with its path.
func (g *Graph) Walk(fn func(p LocationPath, loc *Location)) {
	var visit func(p LocationPath, loc *Location)
	visit = func(p LocationPath, loc *Location) {
		fn(p, loc)
		for _, child := range loc.children() {
			visit(p.Child(child.Name), child)
		}
	}
	for _, loc := range g.Locations {
		visit(NewPath(g.Name, loc.Name), loc)
	}
}

// PathTo finds a location like FindLocation and returns its full path
// from the top of the tree.
func (g *Graph) PathTo(name string) (LocationPath, *Location, bool) {
	target := g.FindLocation(name)
	if target == nil {
		return LocationPath{}, nil, false
	}
	var found LocationPath
	g.Walk(func(p LocationPath, loc *Location) {
		if loc == target && found.IsZero() {
			found = p
		}
	})
	return found, target, !found.IsZero()
}

// CloseAllContainers closes every container in the tree. Contents are kept.
func (g *Graph) CloseAllContainers() {
	for _, loc := range g.Locations {
		loc.closeContainers()
	}
}

// MainEntry returns the location flagged as the world's arrival point.
func (g *Graph) MainEntry() (*Location, LocationPath, bool) {
	var (
		found *Location
		at    LocationPath
	)
	g.Walk(func(p LocationPath, loc *Location) {
		if found == nil && loc.MainEntry {
			found, at = loc, p
		}
	})
	return found, at, found != nil
}

// LocationPatch lists fields to overwrite on a location. Nil fields are left alone.
type LocationPatch struct {
	Description *string
	Keywords    *[]string
	Paths       map[string]string
	Items       *Inventory
	Containers  *[]*Container
	NPCs        *[]*NPC
	MainEntry   *bool
}

// ApplyUpdates patches the location at p in place.
func (g *Graph) ApplyUpdates(p LocationPath, patch LocationPatch) error {
	loc := g.Resolve(p)
	if loc == nil {
		return fmt.Errorf("%w: %s", ErrLocationNotFound, p)
	}
	if patch.Description != nil {
		loc.Description = *patch.Description
	}
	if patch.Keywords != nil {
		loc.Keywords = *patch.Keywords
	}
	if patch.Paths != nil {
		loc.Paths = patch.Paths
	}
	if patch.Items != nil {
		loc.Items = *patch.Items
	}
	if patch.Containers != nil {
		loc.Containers = *patch.Containers
	}
	if patch.NPCs != nil {
		loc.NPCs = *patch.NPCs
	}
	if patch.MainEntry != nil {
		loc.MainEntry = *patch.MainEntry
	}
	return nil
}

// Clone returns a deep copy of the whole world.
func (g *Graph) Clone() *Graph {
	if g == nil {
		return nil
	}
	c := *g
	c.Locations = cloneLocations(g.Locations)
	return &c
}

// Validate reports authoring problems: missing main entry, duplicate names
// within a scope, self-referential or dangling paths.
func (g *Graph) Validate() []string {
	var problems []string
	if _, _, ok := g.MainEntry(); !ok {
		problems = append(problems, fmt.Sprintf("world %q has no main_entry location", g.Name))
	}
	problems = append(problems, duplicates("top-level location", g.Name, g.Locations)...)

	g.Walk(func(p LocationPath, loc *Location) {
		problems = append(problems, duplicates("child", p.String(), loc.children())...)

		directions := make([]string, 0, len(loc.Paths))
		for dir := range loc.Paths {
			directions = append(directions, dir)
		}
		sort.Strings(directions)
		for _, dir := range directions {
			dest := loc.Paths[dir]
			switch {
			case names.Equal(dest, loc.Name):
				problems = append(problems, fmt.Sprintf("%s: path %q points back to itself", p, dir))
			case g.FindLocation(dest) == nil:
				problems = append(problems, fmt.Sprintf("%s: path %q leads to unknown location %q", p, dir, dest))
			}
		}

		seen := make(map[string]bool)
		for _, c := range loc.Containers {
			key := names.Normalize(c.Name)
			if seen[key] {
				problems = append(problems, fmt.Sprintf("%s: duplicate container %q", p, c.Name))
			}
			seen[key] = true
		}
	})
	return problems
}

func duplicates(kind, scope string, locs []*Location) []string {
	var out []string
	seen := make(map[string]bool, len(locs))
	for _, l := range locs {
		key := names.Normalize(l.Name)
		if seen[key] {
			out = append(out, fmt.Sprintf("%s: duplicate %s name %q", scope, kind, l.Name))
		}
		seen[key] = true
	}
	return out
}

// ContentError marks malformed authoring data (worlds, quests, seeds), as
// opposed to a player mistake.
type ContentError struct {
	Err error
}

func (e *ContentError) Error() string { return "content error: " + e.Err.Error() }

func (e *ContentError) Unwrap() error { return e.Err }

// IsContentError reports whether err stems from bad authoring data.
func IsContentError(err error) bool {
	var ce *ContentError
	return errors.As(err, &ce)
}
