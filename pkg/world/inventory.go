package world

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/odyssey-engine/pkg/names"
)

var (
	ErrItemNotFound         = errors.New("item not found")
	ErrInsufficientQuantity = errors.New("insufficient quantity")
)

// Item is a stackable thing that can sit in a location, a container,
// an NPC's inventory, or the player's inventory.
type Item struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Quantity    uint   `json:"quantity"`
	Collectable *bool  `json:"collectable,omitempty"` // nil means collectable
}

// IsCollectable reports whether the player may pick the item up.
func (i Item) IsCollectable() bool {
	return i.Collectable == nil || *i.Collectable
}

func (i Item) clone() Item {
	if i.Collectable != nil {
		c := *i.Collectable
		i.Collectable = &c
	}
	return i
}

// Inventory is a list of item stacks keyed by normalized name.
type Inventory []Item

func (inv Inventory) index(name string) int {
	key := names.Normalize(name)
	for i := range inv {
		if names.Normalize(inv[i].Name) == key {
			return i
		}
	}
	return -1
}

// Find returns the stack with the given name.
func (inv Inventory) Find(name string) (Item, bool) {
	if i := inv.index(name); i >= 0 {
		return inv[i], true
	}
	return Item{}, false
}

// Count returns how many of the named item the inventory holds.
func (inv Inventory) Count(name string) uint {
	if i := inv.index(name); i >= 0 {
		return inv[i].Quantity
	}
	return 0
}

// Add stacks item onto an existing entry with the same name, or appends it.
// A zero quantity counts as one.
func (inv *Inventory) Add(item Item) {
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if i := inv.index(item.Name); i >= 0 {
		(*inv)[i].Quantity += item.Quantity
		return
	}
	*inv = append(*inv, item.clone())
}

// Remove takes qty of the named item out of the inventory and returns the
// removed stack. The entry is dropped once its quantity reaches zero.
func (inv *Inventory) Remove(name string, qty uint) (Item, error) {
	if qty == 0 {
		qty = 1
	}
	i := inv.index(name)
	if i < 0 {
		return Item{}, fmt.Errorf("%w: %s", ErrItemNotFound, name)
	}
	held := (*inv)[i]
	if held.Quantity < qty {
		return Item{}, fmt.Errorf("%w: %s (have %d, want %d)", ErrInsufficientQuantity, held.Name, held.Quantity, qty)
	}

	removed := held.clone()
	removed.Quantity = qty
	if held.Quantity == qty {
		*inv = append((*inv)[:i], (*inv)[i+1:]...)
	} else {
		(*inv)[i].Quantity -= qty
	}
	return removed, nil
}

// Clone returns a deep copy.
func (inv Inventory) Clone() Inventory {
	if inv == nil {
		return nil
	}
	out := make(Inventory, len(inv))
	for i := range inv {
		out[i] = inv[i].clone()
	}
	return out
}
