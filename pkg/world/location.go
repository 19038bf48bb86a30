package world

import "github.com/jwebster45206/odyssey-engine/pkg/names"

// InteractionType is what the player can do with an NPC.
type InteractionType string

const (
	InteractTalk  InteractionType = "talk"
	InteractGive  InteractionType = "give"
	InteractTake  InteractionType = "take"
	InteractTrade InteractionType = "trade"
	InteractQuest InteractionType = "quest"
)

// Interaction is one way of engaging an NPC.
type Interaction struct {
	Type        InteractionType `json:"type"`
	Description string          `json:"description,omitempty"`
	Dialog      []string        `json:"dialog,omitempty"`
	Quest       string          `json:"quest,omitempty"` // quest offered by a "quest" interaction
}

// NPC is a non-player character placed in a location.
type NPC struct {
	Name         string        `json:"name"`
	Description  string        `json:"description,omitempty"`
	Dialog       []string      `json:"dialog,omitempty"`
	Interactions []Interaction `json:"interactions,omitempty"`
	Inventory    Inventory     `json:"inventory,omitempty"`
}

// Offers reports whether the NPC supports any of the interaction types.
func (n *NPC) Offers(types ...InteractionType) bool {
	for _, in := range n.Interactions {
		for _, t := range types {
			if in.Type == t {
				return true
			}
		}
	}
	return false
}

// QuestOffers lists the quests handed out by the NPC's quest interactions.
func (n *NPC) QuestOffers() []string {
	var out []string
	for _, in := range n.Interactions {
		if in.Type == InteractQuest && in.Quest != "" {
			out = append(out, in.Quest)
		}
	}
	return out
}

func (n *NPC) clone() *NPC {
	c := *n
	c.Dialog = append([]string(nil), n.Dialog...)
	if n.Interactions != nil {
		c.Interactions = make([]Interaction, len(n.Interactions))
		for i, in := range n.Interactions {
			in.Dialog = append([]string(nil), in.Dialog...)
			c.Interactions[i] = in
		}
	}
	c.Inventory = n.Inventory.Clone()
	return &c
}

// Container holds items and must be open before anything moves in or out.
type Container struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	IsOpen      bool      `json:"is_open,omitempty"`
	Contains    Inventory `json:"contains,omitempty"`
}

func (c *Container) clone() *Container {
	out := *c
	out.Contains = c.Contains.Clone()
	return &out
}

// Location is a node of the world tree. Sublocations and rooms share its shape.
type Location struct {
	Name         string            `json:"name"`
	Description  string            `json:"description,omitempty"`
	Keywords     []string          `json:"keywords,omitempty"`
	Paths        map[string]string `json:"paths,omitempty"` // direction -> destination name
	Sublocations []*Location       `json:"sublocations,omitempty"`
	Rooms        []*Location       `json:"rooms,omitempty"`
	Items        Inventory         `json:"items,omitempty"`
	Containers   []*Container      `json:"containers,omitempty"`
	NPCs         []*NPC            `json:"npcs,omitempty"`
	MainEntry    bool              `json:"main_entry,omitempty"`
}

// Container finds a container in this location by name.
func (l *Location) Container(name string) *Container {
	key := names.Normalize(name)
	for _, c := range l.Containers {
		if names.Normalize(c.Name) == key {
			return c
		}
	}
	return nil
}

// NPC finds an NPC in this location by name.
func (l *Location) NPC(name string) *NPC {
	key := names.Normalize(name)
	for _, n := range l.NPCs {
		if names.Normalize(n.Name) == key {
			return n
		}
	}
	return nil
}

// OpenContainers returns the open containers in declaration order.
func (l *Location) OpenContainers() []*Container {
	var out []*Container
	for _, c := range l.Containers {
		if c.IsOpen {
			out = append(out, c)
		}
	}
	return out
}

// Child finds a direct sublocation or room by name. Sublocations win.
func (l *Location) Child(name string) *Location {
	key := names.Normalize(name)
	for _, sub := range l.Sublocations {
		if names.Normalize(sub.Name) == key {
			return sub
		}
	}
	for _, room := range l.Rooms {
		if names.Normalize(room.Name) == key {
			return room
		}
	}
	return nil
}

func (l *Location) children() []*Location {
	out := make([]*Location, 0, len(l.Sublocations)+len(l.Rooms))
	out = append(out, l.Sublocations...)
	return append(out, l.Rooms...)
}

func (l *Location) closeContainers() {
	for _, c := range l.Containers {
		c.IsOpen = false
	}
	for _, child := range l.children() {
		child.closeContainers()
	}
}

// Clone returns a deep copy of the location and everything beneath it.
func (l *Location) Clone() *Location {
	c := *l
	c.Keywords = append([]string(nil), l.Keywords...)
	if l.Paths != nil {
		c.Paths = make(map[string]string, len(l.Paths))
		for k, v := range l.Paths {
			c.Paths[k] = v
		}
	}
	c.Sublocations = cloneLocations(l.Sublocations)
	c.Rooms = cloneLocations(l.Rooms)
	c.Items = l.Items.Clone()
	if l.Containers != nil {
		c.Containers = make([]*Container, len(l.Containers))
		for i, ct := range l.Containers {
			c.Containers[i] = ct.clone()
		}
	}
	if l.NPCs != nil {
		c.NPCs = make([]*NPC, len(l.NPCs))
		for i, n := range l.NPCs {
			c.NPCs[i] = n.clone()
		}
	}
	return &c
}

func cloneLocations(in []*Location) []*Location {
	if in == nil {
		return nil
	}
	out := make([]*Location, len(in))
	for i, l := range in {
		out[i] = l.Clone()
	}
	return out
}
