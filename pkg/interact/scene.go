package interact

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/odyssey-engine/pkg/names"
	"github.com/jwebster45206/odyssey-engine/pkg/world"
)

const helpText = `Available commands:

look around - See the items, containers, people and paths around you.

whereami - Find out your current location.

move to <location> - Move along a path or into a sublocation or room. "move to exit" steps back out.

open <container> / close [<container>] - Open or close a container. While a container is open you can only give, take, open, close, examine, or ask for help.

take [<qty>] <item> [from <target>] - Take an item from an open container, a person, or the ground.

give [<qty>] <item> [to <target>] - Give an item to an open container or a person.

examine <item> - Examine an item here or in your inventory.

talk to <person> - Talk to someone nearby.

fast travel to <world> - Travel to a world you know.

fast travel - List the places you can fast travel to.

notes - Read your notes.

inventory - List what you carry.

quests - Show your quest log.

read <email> - Read an email.

help - Display this list of commands.`

// Help lists the commands.
func (e *Engine) Help() string {
	return helpText
}

// Look describes everything in the current location.
func (e *Engine) Look() (string, error) {
	loc, err := e.Current()
	if err != nil {
		return unknownLocationText, err
	}
	return scene(loc), nil
}

// WhereAmI names the current location and world.
func (e *Engine) WhereAmI() (string, error) {
	loc, err := e.Current()
	if err != nil {
		return unknownLocationText, err
	}
	return fmt.Sprintf("You are at %s in %s. %s", e.player.Location, e.graph.Name, loc.Description), nil
}

// Inventory lists what the player carries.
func (e *Engine) Inventory() string {
	if len(e.player.Inventory) == 0 {
		return fmt.Sprintf("Your inventory is empty.\nTokens: %d", e.player.Tokens)
	}
	var b strings.Builder
	b.WriteString("Your inventory:")
	for _, it := range e.player.Inventory {
		fmt.Fprintf(&b, "\n- %s (x%d)", it.Name, it.Quantity)
	}
	fmt.Fprintf(&b, "\nTokens: %d", e.player.Tokens)
	return b.String()
}

// Notes lists the player's notes.
func (e *Engine) Notes() string {
	if len(e.player.Notes) == 0 {
		return "You have no notes."
	}
	var b strings.Builder
	b.WriteString("Your notes:")
	for _, n := range e.player.Notes {
		fmt.Fprintf(&b, "\n- %s", n.Name)
		if n.Description != "" {
			fmt.Fprintf(&b, ": %s", n.Description)
		}
	}
	return b.String()
}

// FastTravelList lists the known destinations grouped by world. Travel is
// by world name; each world lands at its main entry.
func (e *Engine) FastTravelList() string {
	worlds := e.player.FastTravelWorlds()
	if len(worlds) == 0 {
		return "You don't know any fast travel destinations."
	}
	var b strings.Builder
	b.WriteString("Fast travel destinations:")
	for _, w := range worlds {
		fmt.Fprintf(&b, "\n%s", w)
		if names.Equal(w, e.graph.Name) {
			b.WriteString(" (you are here)")
		}
		for _, ft := range e.player.FastTravel {
			if !names.Equal(ft.WorldName, w) {
				continue
			}
			fmt.Fprintf(&b, "\n- %s", ft.Location.Name)
			if ft.Location.Description != "" {
				fmt.Fprintf(&b, ": %s", ft.Location.Description)
			}
		}
	}
	return b.String()
}

// OpenContainerHere reports whether any container in the current location
// is open.
func (e *Engine) OpenContainerHere() bool {
	loc, err := e.Current()
	if err != nil {
		return false
	}
	return len(loc.OpenContainers()) > 0
}

func describe(loc *world.Location) string {
	return fmt.Sprintf("You are at %s. %s", loc.Name, loc.Description)
}

func scene(loc *world.Location) string {
	sections := []string{describe(loc)}

	if len(loc.Items) > 0 {
		var b strings.Builder
		b.WriteString("Items here:")
		for _, it := range loc.Items {
			fmt.Fprintf(&b, "\n- %s (%d)", it.Name, it.Quantity)
			if it.Description != "" {
				fmt.Fprintf(&b, " - %s", it.Description)
			}
		}
		sections = append(sections, b.String())
	}

	if len(loc.Containers) > 0 {
		var b strings.Builder
		b.WriteString("Containers:")
		for _, c := range loc.Containers {
			state := "closed"
			if c.IsOpen {
				state = "open"
			}
			fmt.Fprintf(&b, "\n- %s (%s)", c.Name, state)
			if c.Description != "" {
				fmt.Fprintf(&b, " - %s", c.Description)
			}
			for _, it := range c.Contains {
				fmt.Fprintf(&b, "\n  - Contains: %s (%d)", it.Name, it.Quantity)
			}
		}
		sections = append(sections, b.String())
	}

	if len(loc.NPCs) > 0 {
		var b strings.Builder
		b.WriteString("People here:")
		for _, n := range loc.NPCs {
			fmt.Fprintf(&b, "\n- %s", n.Name)
			if n.Description != "" {
				fmt.Fprintf(&b, " - %s", n.Description)
			}
		}
		sections = append(sections, b.String())
	}

	if len(loc.Paths) > 0 {
		var b strings.Builder
		b.WriteString("Paths available:")
		for _, dir := range sortedDirections(loc) {
			fmt.Fprintf(&b, "\n- %s: %s", names.Display(dir), loc.Paths[dir])
		}
		sections = append(sections, b.String())
	}

	sections = appendChildren(sections, "Sublocations here:", loc.Sublocations)
	sections = appendChildren(sections, "Rooms here:", loc.Rooms)
	return strings.Join(sections, "\n\n")
}

func appendChildren(sections []string, heading string, children []*world.Location) []string {
	if len(children) == 0 {
		return sections
	}
	var b strings.Builder
	b.WriteString(heading)
	for _, c := range children {
		fmt.Fprintf(&b, "\n- %s", c.Name)
	}
	return append(sections, b.String())
}
