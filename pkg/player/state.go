// Package player holds the single source of truth for one player's
// inventory, quests, notes, emails, fast-travel list and location.
package player

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jwebster45206/odyssey-engine/pkg/names"
	"github.com/jwebster45206/odyssey-engine/pkg/quest"
	"github.com/jwebster45206/odyssey-engine/pkg/world"
)

// DefaultTokens is the starting balance when the seed does not set one.
const DefaultTokens uint = 25

var (
	ErrNoLocation    = errors.New("location must name at least one segment")
	ErrEmailNotFound = errors.New("email not found")
)

// Note is a reminder the player carries around.
type Note struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Email is an inbox message.
type Email struct {
	Name        string `json:"name"`
	Sender      string `json:"sender,omitempty"`
	Description string `json:"description,omitempty"`
	Read        bool   `json:"read"`
}

// Destination is the display half of a fast-travel entry.
type Destination struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// FastTravelLocation is a world the player may jump to.
type FastTravelLocation struct {
	Location  Destination `json:"location"`
	WorldName string      `json:"world_name"`
}

// Tally is state fed in from outside the core: combat results and
// gathered resources.
type Tally struct {
	Defeated  []string       `json:"defeated,omitempty"`
	Resources map[string]int `json:"resources,omitempty"`
}

// State is one player's game state.
type State struct {
	ID         uuid.UUID            `json:"id"`
	Name       string               `json:"name"`
	Inventory  world.Inventory      `json:"inventory"`
	Location   world.LocationPath   `json:"location"`
	FastTravel []FastTravelLocation `json:"fast_travel_locations,omitempty"`
	Quests     quest.Log            `json:"quests"`
	Notes      []Note               `json:"notes,omitempty"`
	Emails     []Email              `json:"emails,omitempty"`
	Tokens     uint                 `json:"tokens"`
	Experience uint                 `json:"experience"`
	Tally      Tally                `json:"tally"`
}

// New creates a player with a fresh ID and the default token balance.
func New(name string) *State {
	return &State{
		ID:     uuid.New(),
		Name:   name,
		Tokens: DefaultTokens,
		Tally:  Tally{Resources: make(map[string]int)},
	}
}

// AddItem stacks an item into the player's inventory.
func (s *State) AddItem(item world.Item) {
	s.Inventory.Add(item)
}

// RemoveItem takes qty of the named item out of the inventory.
func (s *State) RemoveItem(name string, qty uint) (world.Item, error) {
	return s.Inventory.Remove(name, qty)
}

func (s *State) AddTokens(n uint) {
	s.Tokens += n
}

func (s *State) AddExperience(n uint) {
	s.Experience += n
}

// SetLocation moves the player pointer. A path without a world stays in the
// current one; an empty path is refused so the location is never blank.
func (s *State) SetLocation(p world.LocationPath) error {
	if p.IsZero() {
		return ErrNoLocation
	}
	if p.World == "" {
		p.World = s.Location.World
	}
	s.Location = world.NewPath(p.World, p.Segments...)
	return nil
}

// AddFastTravel registers a destination. Duplicates are ignored.
func (s *State) AddFastTravel(ft FastTravelLocation) bool {
	for _, have := range s.FastTravel {
		if names.Equal(have.WorldName, ft.WorldName) && names.Equal(have.Location.Name, ft.Location.Name) {
			return false
		}
	}
	s.FastTravel = append(s.FastTravel, ft)
	return true
}

// FastTravelWorlds lists the distinct worlds in the fast-travel list.
func (s *State) FastTravelWorlds() []string {
	var out []string
	seen := make(map[string]bool)
	for _, ft := range s.FastTravel {
		key := names.Normalize(ft.WorldName)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, ft.WorldName)
	}
	return out
}

// FastTravelWorld returns the world name as written in the fast-travel list.
func (s *State) FastTravelWorld(worldName string) (string, bool) {
	for _, ft := range s.FastTravel {
		if names.Equal(ft.WorldName, worldName) {
			return ft.WorldName, true
		}
	}
	return "", false
}

// AddNote keeps one note per name.
func (s *State) AddNote(n Note) bool {
	for _, have := range s.Notes {
		if names.Equal(have.Name, n.Name) {
			return false
		}
	}
	s.Notes = append(s.Notes, n)
	return true
}

// AddEmail delivers a message. A second email with the same name is dropped.
func (s *State) AddEmail(e Email) bool {
	if _, ok := s.emailIndex(e.Name); ok {
		return false
	}
	s.Emails = append(s.Emails, e)
	return true
}

func (s *State) emailIndex(name string) (int, bool) {
	for i := range s.Emails {
		if names.Equal(s.Emails[i].Name, name) {
			return i, true
		}
	}
	return -1, false
}

// Email returns the named message.
func (s *State) Email(name string) (Email, bool) {
	if i, ok := s.emailIndex(name); ok {
		return s.Emails[i], true
	}
	return Email{}, false
}

// MarkEmailRead flags the message as read and returns it.
func (s *State) MarkEmailRead(name string) (Email, error) {
	i, ok := s.emailIndex(name)
	if !ok {
		return Email{}, fmt.Errorf("%w: %s", ErrEmailNotFound, name)
	}
	s.Emails[i].Read = true
	return s.Emails[i], nil
}

// UnreadEmails counts messages not yet read.
func (s *State) UnreadEmails() int {
	n := 0
	for _, e := range s.Emails {
		if !e.Read {
			n++
		}
	}
	return n
}

// RecordDefeat marks an enemy as beaten.
func (s *State) RecordDefeat(name string) {
	if s.EnemyDefeated(name) {
		return
	}
	s.Tally.Defeated = append(s.Tally.Defeated, name)
}

// AddResource bumps a gathered-resource counter.
func (s *State) AddResource(name string, n int) {
	if s.Tally.Resources == nil {
		s.Tally.Resources = make(map[string]int)
	}
	s.Tally.Resources[names.Normalize(name)] += n
}

// EmailRead reports whether the named email exists and has been read.
func (s *State) EmailRead(name string) bool {
	e, ok := s.Email(name)
	return ok && e.Read
}

// AllEmailsRead is true when the inbox has nothing unread.
func (s *State) AllEmailsRead() bool {
	return s.UnreadEmails() == 0
}

func (s *State) ItemCount(name string) uint {
	return s.Inventory.Count(name)
}

func (s *State) EnemyDefeated(name string) bool {
	for _, d := range s.Tally.Defeated {
		if names.Equal(d, name) {
			return true
		}
	}
	return false
}

func (s *State) ResourceCount(name string) int {
	return s.Tally.Resources[names.Normalize(name)]
}

// GetState returns a deep copy for saving.
func (s *State) GetState() State {
	c := *s
	c.Inventory = s.Inventory.Clone()
	c.Location = world.NewPath(s.Location.World, s.Location.Segments...)
	c.FastTravel = append([]FastTravelLocation(nil), s.FastTravel...)
	c.Quests = s.Quests.Clone()
	c.Notes = append([]Note(nil), s.Notes...)
	c.Emails = append([]Email(nil), s.Emails...)
	c.Tally.Defeated = append([]string(nil), s.Tally.Defeated...)
	c.Tally.Resources = make(map[string]int, len(s.Tally.Resources))
	for k, v := range s.Tally.Resources {
		c.Tally.Resources[k] = v
	}
	return c
}

// SetState replaces the whole player state with a copy of loaded. A
// location without a world is placed in fallbackWorld; an empty location
// is rejected and nothing changes.
func (s *State) SetState(loaded State, fallbackWorld string) error {
	if loaded.Location.IsZero() {
		return fmt.Errorf("set state: %w", ErrNoLocation)
	}
	c := loaded.GetState()
	if c.Location.World == "" {
		c.Location.World = fallbackWorld
	}
	if c.ID == uuid.Nil {
		c.ID = s.ID
	}
	*s = c
	return nil
}
