package session

import (
	"fmt"

	"github.com/jwebster45206/odyssey-engine/pkg/interact"
	"github.com/jwebster45206/odyssey-engine/pkg/player"
	"github.com/jwebster45206/odyssey-engine/pkg/world"
)

const (
	DefaultWorld      = "OdysseyVR"
	DefaultPlayerName = "Player"
)

// Seed is the new-game document: where the player starts and what they
// start with.
type Seed struct {
	PlayerName string                      `json:"player_name,omitempty"`
	World      string                      `json:"world"`
	Location   string                      `json:"location,omitempty"` // "location/sublocation"; empty means the main entry
	Inventory  world.Inventory             `json:"inventory,omitempty"`
	FastTravel []player.FastTravelLocation `json:"fast_travel_locations,omitempty"`
	Notes      []player.Note               `json:"notes,omitempty"`
	Emails     []player.Email              `json:"emails,omitempty"`
	Tokens     *uint                       `json:"tokens,omitempty"` // nil means player.DefaultTokens
	Quests     []string                    `json:"quests,omitempty"` // activated at start
}

func (s Seed) withDefaults() Seed {
	if s.World == "" {
		s.World = DefaultWorld
	}
	if s.PlayerName == "" {
		s.PlayerName = DefaultPlayerName
	}
	return s
}

func (s Seed) start(g *world.Graph) (world.LocationPath, error) {
	if s.Location == "" {
		_, at, ok := g.MainEntry()
		if !ok {
			return world.LocationPath{}, &world.ContentError{Err: fmt.Errorf("%w: %s", interact.ErrNoMainEntry, g.Name)}
		}
		return at, nil
	}
	p := world.ParsePath(g.Name, s.Location)
	if g.Resolve(p) == nil {
		return world.LocationPath{}, &world.ContentError{Err: fmt.Errorf("%w: seed location %q in %s", interact.ErrUnknownLocation, s.Location, g.Name)}
	}
	return p, nil
}
