// Package quest holds the quest catalog and the per-player quest state
// machine: inactive -> active -> completed.
package quest

import (
	"encoding/json"
	"fmt"

	"github.com/jwebster45206/odyssey-engine/pkg/names"
	"github.com/jwebster45206/odyssey-engine/pkg/world"
)

// ObjectiveKind tags the variant of an objective.
type ObjectiveKind string

const (
	KindReadEmail        ObjectiveKind = "readEmail"
	KindSpeakToCharacter ObjectiveKind = "speakToCharacter"
	KindDefeatEnemy      ObjectiveKind = "defeatEnemy"
	KindCollect          ObjectiveKind = "collect"
	KindFetch            ObjectiveKind = "fetchQuest" // older alias of collect with target_type "item"
)

// AllUnread as a readEmail target means every email in the inbox.
const AllUnread = "all-unread"

const (
	TargetItem     = "item"
	TargetResource = "resource"
)

// Targets is one or more entity names. In JSON it is either a string or a list.
type Targets []string

// UnmarshalJSON accepts either a single string or an array of strings.
func (t *Targets) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*t = Targets{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	return fmt.Errorf("target: not a string or array: %s", string(data))
}

// MarshalJSON writes a single target as a plain string.
func (t Targets) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

// Objective is a single predicate condition inside a quest.
type Objective struct {
	Kind       ObjectiveKind `json:"type"`
	Target     Targets       `json:"target"`
	TargetType string        `json:"target_type,omitempty"` // collect only: "item" or "resource"
	Amount     int           `json:"amount,omitempty"`      // collect only
	Completed  bool          `json:"completed,omitempty"`   // progress display only
}

// Rewards are granted once when a quest completes.
type Rewards struct {
	Items      world.Inventory `json:"items,omitempty"`
	Tokens     uint            `json:"tokens,omitempty"`
	Experience uint            `json:"experience,omitempty"`
}

// Definition is a static catalog entry.
type Definition struct {
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description string      `json:"description,omitempty"`
	Objectives  []Objective `json:"objectives"`
	Rewards     Rewards     `json:"rewards"`
}

// Instance is a player's copy of a quest.
type Instance struct {
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description string      `json:"description,omitempty"`
	Objectives  []Objective `json:"objectives"`
	Rewards     Rewards     `json:"rewards"`
	Active      bool        `json:"is_active"`
	Completed   bool        `json:"completed"`
}

func newInstance(def Definition) *Instance {
	objs := make([]Objective, len(def.Objectives))
	for i, o := range def.Objectives {
		o.Target = append(Targets(nil), o.Target...)
		o.Completed = false
		objs[i] = o
	}
	return &Instance{
		Name:        def.Name,
		Slug:        def.Slug,
		Description: def.Description,
		Objectives:  objs,
		Rewards: Rewards{
			Items:      def.Rewards.Items.Clone(),
			Tokens:     def.Rewards.Tokens,
			Experience: def.Rewards.Experience,
		},
	}
}

// Status is the display label used by quest logs.
func (i *Instance) Status() string {
	switch {
	case i.Completed:
		return "Completed"
	case i.Active:
		return "In Progress"
	default:
		return "Inactive"
	}
}

// Progress counts satisfied objectives as of the last check.
func (i *Instance) Progress() (done, total int) {
	for _, o := range i.Objectives {
		if o.Completed {
			done++
		}
	}
	return done, len(i.Objectives)
}

// Log is the player's list of quest instances.
type Log struct {
	Instances []*Instance `json:"instances,omitempty"`
}

// Find returns the instance with the given name or slug.
func (l *Log) Find(name string) *Instance {
	key := names.Normalize(name)
	for _, inst := range l.Instances {
		if names.Normalize(inst.Name) == key || names.Normalize(inst.Slug) == key {
			return inst
		}
	}
	return nil
}

// Clone returns a deep copy.
func (l Log) Clone() Log {
	out := Log{Instances: make([]*Instance, len(l.Instances))}
	for i, inst := range l.Instances {
		c := *inst
		c.Objectives = make([]Objective, len(inst.Objectives))
		for j, o := range inst.Objectives {
			o.Target = append(Targets(nil), o.Target...)
			c.Objectives[j] = o
		}
		c.Rewards.Items = inst.Rewards.Items.Clone()
		out.Instances[i] = &c
	}
	return out
}
