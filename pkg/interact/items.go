package interact

import (
	"fmt"
	"strings"

	"github.com/jwebster45206/odyssey-engine/pkg/names"
	"github.com/jwebster45206/odyssey-engine/pkg/world"
)

// OpenContainer opens the named container here and reports its contents.
// Opening an open container just reports again.
func (e *Engine) OpenContainer(name string) (string, error) {
	loc, err := e.Current()
	if err != nil {
		return unknownLocationText, err
	}
	c := loc.Container(name)
	if c == nil {
		return fmt.Sprintf("There is no %s here.", name), fmt.Errorf("%w: container %s", ErrNotFound, name)
	}
	c.IsOpen = true
	return fmt.Sprintf("You open the %s. %s", c.Name, contentsText(c.Contains)), nil
}

// CloseContainer closes the named container, or the first open one when no
// name is given. Contents stay put.
func (e *Engine) CloseContainer(name string) (string, error) {
	loc, err := e.Current()
	if err != nil {
		return unknownLocationText, err
	}

	var c *world.Container
	if name == "" {
		open := loc.OpenContainers()
		if len(open) == 0 {
			return "There is nothing open to close.", ErrNoOpenContainer
		}
		c = open[0]
	} else if c = loc.Container(name); c == nil {
		return fmt.Sprintf("There is no %s here.", name), fmt.Errorf("%w: container %s", ErrNotFound, name)
	}

	if !c.IsOpen {
		return fmt.Sprintf("The %s is already closed.", c.Name), nil
	}
	c.IsOpen = false
	return fmt.Sprintf("You close the %s.", c.Name), nil
}

// Take moves qty of an item into the player's inventory. With a target the
// source is that container or NPC; without one the item is looked for in
// open containers, then NPCs, then lying around.
func (e *Engine) Take(target, item string, qty uint) (string, error) {
	loc, err := e.Current()
	if err != nil {
		return unknownLocationText, err
	}
	if qty == 0 {
		qty = 1
	}

	if target != "" {
		if c := loc.Container(target); c != nil {
			if !c.IsOpen {
				return fmt.Sprintf("The %s is closed.", c.Name), fmt.Errorf("%w: %s", ErrNotOpen, c.Name)
			}
			return e.takeFrom(&c.Contains, item, qty, "the "+c.Name)
		}
		if npc := loc.NPC(target); npc != nil {
			if !npc.Offers(world.InteractTake, world.InteractTrade) {
				return fmt.Sprintf("%s won't part with anything.", npc.Name), fmt.Errorf("%w: %s does not trade", ErrRefused, npc.Name)
			}
			return e.takeFrom(&npc.Inventory, item, qty, npc.Name)
		}
		if !names.Equal(target, loc.Name) {
			return fmt.Sprintf("There is no %s here.", target), fmt.Errorf("%w: %s", ErrNotFound, target)
		}
	} else {
		for _, c := range loc.OpenContainers() {
			if _, ok := c.Contains.Find(item); ok {
				return e.takeFrom(&c.Contains, item, qty, "the "+c.Name)
			}
		}
		for _, npc := range loc.NPCs {
			if _, ok := npc.Inventory.Find(item); ok && npc.Offers(world.InteractTake, world.InteractTrade) {
				return e.takeFrom(&npc.Inventory, item, qty, npc.Name)
			}
		}
	}

	// Loose items are written back through the graph so the tree stays the
	// single live copy.
	items := loc.Items.Clone()
	text, err := e.takeFrom(&items, item, qty, loc.Name)
	if err != nil {
		return text, err
	}
	if err := e.graph.ApplyUpdates(e.player.Location, world.LocationPatch{Items: &items}); err != nil {
		return unknownLocationText, err
	}
	return text, nil
}

func (e *Engine) takeFrom(src *world.Inventory, name string, qty uint, from string) (string, error) {
	held, ok := src.Find(name)
	if !ok {
		return fmt.Sprintf("There is no %s in %s.", name, from), fmt.Errorf("%w: %s in %s", ErrNotFound, name, from)
	}
	if !held.IsCollectable() {
		return fmt.Sprintf("You can't take the %s.", held.Name), fmt.Errorf("%w: %s", ErrNotCollectable, held.Name)
	}
	if held.Quantity < qty {
		return fmt.Sprintf("There are only %d %s in %s.", held.Quantity, held.Name, from),
			fmt.Errorf("%w: %s (have %d, want %d)", ErrInsufficient, held.Name, held.Quantity, qty)
	}

	moved, err := src.Remove(name, qty)
	if err != nil {
		return fmt.Sprintf("You can't take the %s.", held.Name), err
	}
	e.player.AddItem(moved)
	e.logger.Debug("Item taken", "item", moved.Name, "quantity", qty, "from", from)
	return fmt.Sprintf("You took %d %s from %s.", qty, moved.Name, from), nil
}

// Give moves qty of an item from the player to an open container or an NPC
// that accepts gifts. Without a target the first open container receives it.
func (e *Engine) Give(target, item string, qty uint) (string, error) {
	loc, err := e.Current()
	if err != nil {
		return unknownLocationText, err
	}
	if qty == 0 {
		qty = 1
	}

	held, ok := e.player.Inventory.Find(item)
	if !ok {
		return fmt.Sprintf("You don't have any %s.", item), fmt.Errorf("%w: %s in inventory", ErrNotFound, item)
	}
	if held.Quantity < qty {
		return fmt.Sprintf("You only have %d %s.", held.Quantity, held.Name),
			fmt.Errorf("%w: %s (have %d, want %d)", ErrInsufficient, held.Name, held.Quantity, qty)
	}

	var (
		dest *world.Inventory
		to   string
	)
	switch {
	case target == "":
		open := loc.OpenContainers()
		if len(open) == 0 {
			return "There is nothing open to put it in.", ErrNoOpenContainer
		}
		dest, to = &open[0].Contains, "the "+open[0].Name
	case loc.Container(target) != nil:
		c := loc.Container(target)
		if !c.IsOpen {
			return fmt.Sprintf("The %s is closed.", c.Name), fmt.Errorf("%w: %s", ErrNotOpen, c.Name)
		}
		dest, to = &c.Contains, "the "+c.Name
	case loc.NPC(target) != nil:
		npc := loc.NPC(target)
		if !npc.Offers(world.InteractGive, world.InteractTrade) {
			return fmt.Sprintf("%s doesn't want that.", npc.Name), fmt.Errorf("%w: %s does not accept gifts", ErrRefused, npc.Name)
		}
		dest, to = &npc.Inventory, npc.Name
	default:
		return fmt.Sprintf("There is no %s here.", target), fmt.Errorf("%w: %s", ErrNotFound, target)
	}

	moved, err := e.player.RemoveItem(item, qty)
	if err != nil {
		return fmt.Sprintf("You can't give the %s.", held.Name), err
	}
	dest.Add(moved)
	e.logger.Debug("Item given", "item", moved.Name, "quantity", qty, "to", to)
	return fmt.Sprintf("You gave %d %s to %s.", qty, moved.Name, to), nil
}

// Examine describes an item in an open container, lying here, or carried.
func (e *Engine) Examine(item string) (string, error) {
	loc, err := e.Current()
	if err != nil {
		return unknownLocationText, err
	}
	for _, c := range loc.OpenContainers() {
		if it, ok := c.Contains.Find(item); ok {
			return examineText(it), nil
		}
	}
	if it, ok := loc.Items.Find(item); ok {
		return examineText(it), nil
	}
	if it, ok := e.player.Inventory.Find(item); ok {
		return examineText(it), nil
	}
	return fmt.Sprintf("%s not found.", item), fmt.Errorf("%w: %s", ErrNotFound, item)
}

func examineText(it world.Item) string {
	if it.Description == "" {
		return fmt.Sprintf("%s: nothing remarkable.", it.Name)
	}
	return fmt.Sprintf("%s: %s", it.Name, it.Description)
}

// TalkTo records the NPC as last spoken to and returns what they say along
// with the quests they hand out.
func (e *Engine) TalkTo(name string) (string, []string, error) {
	loc, err := e.Current()
	if err != nil {
		return unknownLocationText, nil, err
	}
	npc := loc.NPC(name)
	if npc == nil {
		return fmt.Sprintf("There is no %s here.", name), nil, fmt.Errorf("%w: npc %s", ErrNotFound, name)
	}
	e.graph.LastSpoken = npc.Name

	var b strings.Builder
	if len(npc.Dialog) == 0 {
		fmt.Fprintf(&b, "%s has nothing to say.", npc.Name)
	} else {
		fmt.Fprintf(&b, "%s: %s", npc.Name, strings.Join(npc.Dialog, " "))
	}
	for _, in := range npc.Interactions {
		if in.Description == "" && len(in.Dialog) == 0 {
			continue
		}
		b.WriteString("\n- ")
		b.WriteString(strings.TrimSpace(in.Description + " " + strings.Join(in.Dialog, " ")))
	}
	return b.String(), npc.QuestOffers(), nil
}

func contentsText(inv world.Inventory) string {
	if len(inv) == 0 {
		return "It is empty."
	}
	parts := make([]string, len(inv))
	for i, it := range inv {
		parts[i] = fmt.Sprintf("%s (%d)", it.Name, it.Quantity)
	}
	return "It contains: " + strings.Join(parts, ", ") + "."
}
