// Package command turns player text into interaction calls.
package command

import (
	"strconv"
	"strings"
)

// Action is a recognized verb.
type Action string

const (
	ActFastTravel Action = "fast_travel"
	ActTalk       Action = "talk"
	ActMove       Action = "move"
	ActTake       Action = "take"
	ActGive       Action = "give"
	ActExamine    Action = "examine"
	ActOpen       Action = "open"
	ActClose      Action = "close"
	ActLook       Action = "look"
	ActWhereAmI   Action = "whereami"
	ActHelp       Action = "help"
	ActInventory  Action = "inventory"
	ActQuests     Action = "quests"
	ActRead       Action = "read"
	ActNotes      Action = "notes"
	ActTravelList Action = "travel_list"
	ActNone       Action = "" // unrecognized input
)

// Command is parsed input. Target names a location, container, NPC, world
// or email depending on the action; Item and Quantity are for take/give/examine.
type Command struct {
	Action   Action `json:"action"`
	Target   string `json:"target,omitempty"`
	Item     string `json:"item,omitempty"`
	Quantity uint   `json:"quantity,omitempty"`
}

type pattern struct {
	prefixes []string // each ends in a space; the remainder is the argument
	exact    []string // whole-line matches, no argument
	action   Action
	build    func(arg string) Command
}

// patterns is checked in order; more specific prefixes come first.
var patterns = []pattern{
	{prefixes: []string{"fast travel to "}, action: ActFastTravel, build: targetOnly(ActFastTravel)},
	{exact: []string{"fast travel", "travel"}, action: ActTravelList},
	{prefixes: []string{"talk to ", "speak to "}, action: ActTalk, build: targetOnly(ActTalk)},
	{prefixes: []string{"move to ", "go to ", "move ", "go "}, action: ActMove, build: targetOnly(ActMove)},
	{prefixes: []string{"take "}, action: ActTake, build: transfer(ActTake, " from ")},
	{prefixes: []string{"give "}, action: ActGive, build: transfer(ActGive, " to ")},
	{prefixes: []string{"examine "}, action: ActExamine, build: itemOnly(ActExamine)},
	{prefixes: []string{"open "}, action: ActOpen, build: targetOnly(ActOpen)},
	{prefixes: []string{"close "}, exact: []string{"close"}, action: ActClose, build: targetOnly(ActClose)},
	{exact: []string{"look around", "look"}, action: ActLook},
	{exact: []string{"where am i", "whereami"}, action: ActWhereAmI},
	{exact: []string{"help"}, action: ActHelp},
	{exact: []string{"inventory", "i"}, action: ActInventory},
	{exact: []string{"quests"}, action: ActQuests},
	{exact: []string{"notes"}, action: ActNotes},
	{prefixes: []string{"read "}, action: ActRead, build: targetOnly(ActRead)},
}

// Parse normalizes whitespace and case and matches the pattern table.
// Unmatched input yields ActNone.
func Parse(raw string) Command {
	text := strings.Join(strings.Fields(strings.ToLower(raw)), " ")
	if text == "" {
		return Command{}
	}

	for _, p := range patterns {
		for _, e := range p.exact {
			if text == e {
				if p.build != nil {
					return p.build("")
				}
				return Command{Action: p.action}
			}
		}
		for _, prefix := range p.prefixes {
			arg, ok := strings.CutPrefix(text, prefix)
			if !ok || arg == "" {
				continue
			}
			return p.build(arg)
		}
	}
	return Command{}
}

func targetOnly(a Action) func(string) Command {
	return func(arg string) Command {
		return Command{Action: a, Target: arg}
	}
}

func itemOnly(a Action) func(string) Command {
	return func(arg string) Command {
		return Command{Action: a, Item: arg}
	}
}

// transfer parses "<qty>? <item> [<sep> <target>]".
func transfer(a Action, sep string) func(string) Command {
	return func(arg string) Command {
		qty, rest := quantity(arg)
		item, target, _ := strings.Cut(rest, sep)
		return Command{Action: a, Item: strings.TrimSpace(item), Target: strings.TrimSpace(target), Quantity: qty}
	}
}

// quantity consumes a leading integer. The default is one.
func quantity(arg string) (uint, string) {
	first, rest, ok := strings.Cut(arg, " ")
	if !ok {
		return 1, arg
	}
	n, err := strconv.ParseUint(first, 10, 32)
	if err != nil || n == 0 {
		return 1, arg
	}
	return uint(n), rest
}
