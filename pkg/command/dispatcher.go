package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jwebster45206/odyssey-engine/internal/logger"
	"github.com/jwebster45206/odyssey-engine/pkg/interact"
	"github.com/jwebster45206/odyssey-engine/pkg/player"
	"github.com/jwebster45206/odyssey-engine/pkg/quest"
	"github.com/jwebster45206/odyssey-engine/pkg/world"
)

const (
	unrecognizedText = "Unrecognized command."
	restrictedText   = "You can't do that while a container is open. Close it first."
)

// allowedWhileOpen are the verbs left when a container in the current
// location is open.
var allowedWhileOpen = map[Action]bool{
	ActGive:    true,
	ActTake:    true,
	ActOpen:    true,
	ActClose:   true,
	ActExamine: true,
	ActHelp:    true,
}

// mutating verbs trigger quest re-evaluation when they succeed.
var mutating = map[Action]bool{
	ActFastTravel: true,
	ActTalk:       true,
	ActMove:       true,
	ActTake:       true,
	ActGive:       true,
	ActOpen:       true,
	ActClose:      true,
	ActRead:       true,
}

// Result is what the presentation layer renders.
type Result struct {
	Text    string `json:"text"`
	Action  Action `json:"action,omitempty"`
	Mutated bool   `json:"mutated"`
	Handled bool   `json:"handled"`
	Err     error  `json:"-"`
}

// Dispatcher routes commands to the interaction engine and keeps quests
// up to date.
type Dispatcher struct {
	engine *interact.Engine
	quests *quest.Engine
	logger *slog.Logger
}

// NewDispatcher wires a dispatcher. quests may be nil.
func NewDispatcher(engine *interact.Engine, quests *quest.Engine, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{engine: engine, quests: quests, logger: logger}
}

// Dispatch parses raw text and executes it.
func (d *Dispatcher) Dispatch(ctx context.Context, raw string) Result {
	return d.Execute(ctx, Parse(raw))
}

// Execute runs an already parsed command. An external interpreter can
// build the Command itself and call this directly.
func (d *Dispatcher) Execute(ctx context.Context, cmd Command) Result {
	if cmd.Action == ActNone {
		return Result{Text: unrecognizedText}
	}
	if d.engine.OpenContainerHere() && !allowedWhileOpen[cmd.Action] {
		return Result{Text: restrictedText, Action: cmd.Action, Handled: true}
	}

	var (
		text   string
		err    error
		offers []string
	)
	switch cmd.Action {
	case ActFastTravel:
		text, err = d.engine.FastTravel(ctx, cmd.Target)
	case ActTalk:
		text, offers, err = d.engine.TalkTo(cmd.Target)
	case ActMove:
		text, err = d.engine.Move(cmd.Target)
	case ActTake:
		text, err = d.engine.Take(cmd.Target, cmd.Item, cmd.Quantity)
	case ActGive:
		text, err = d.engine.Give(cmd.Target, cmd.Item, cmd.Quantity)
	case ActExamine:
		text, err = d.engine.Examine(cmd.Item)
	case ActOpen:
		text, err = d.engine.OpenContainer(cmd.Target)
	case ActClose:
		text, err = d.engine.CloseContainer(cmd.Target)
	case ActLook:
		text, err = d.engine.Look()
	case ActWhereAmI:
		text, err = d.engine.WhereAmI()
	case ActHelp:
		text = d.engine.Help()
	case ActInventory:
		text = d.engine.Inventory()
	case ActQuests:
		text = questLog(d.engine.Player().Quests)
	case ActRead:
		text, err = readEmail(d.engine.Player(), cmd.Target)
	case ActNotes:
		text = d.engine.Notes()
	case ActTravelList:
		text = d.engine.FastTravelList()
	default:
		return Result{Text: unrecognizedText}
	}

	res := Result{Text: text, Action: cmd.Action, Handled: true, Err: err}
	if err != nil {
		d.logFailure(cmd, err)
		return res
	}
	if !mutating[cmd.Action] {
		return res
	}

	res.Mutated = true
	var extra []string
	for _, name := range offers {
		if msg := d.activate(name); msg != "" {
			extra = append(extra, msg)
		}
	}
	extra = append(extra, d.CheckQuests()...)
	if len(extra) > 0 {
		res.Text = res.Text + "\n\n" + strings.Join(extra, "\n")
	}
	return res
}

// CheckQuests re-evaluates active quests and returns a line per quest that
// just completed.
func (d *Dispatcher) CheckQuests() []string {
	if d.quests == nil {
		return nil
	}
	p := d.engine.Player()
	done, err := d.quests.CheckAll(&p.Quests, progress{State: p, graph: d.engine.Graph()}, p)
	if err != nil {
		logger.WithError(logger.Content(d.logger), err).Warn("Quest evaluation reported problems")
	}
	var out []string
	for _, inst := range done {
		out = append(out, completionText(inst))
	}
	return out
}

func (d *Dispatcher) activate(name string) string {
	if d.quests == nil {
		return ""
	}
	p := d.engine.Player()
	if existing := p.Quests.Find(name); existing != nil {
		return ""
	}
	inst, err := d.quests.Activate(&p.Quests, name)
	if err != nil {
		// unknown quests are already logged on the content channel
		return ""
	}
	return fmt.Sprintf("New quest: %s", inst.Name)
}

func (d *Dispatcher) logFailure(cmd Command, err error) {
	if world.IsContentError(err) {
		logger.WithError(logger.Content(d.logger), err).Error("Command hit bad content", "action", cmd.Action)
		return
	}
	d.logger.Debug("Command failed", "action", cmd.Action, "target", cmd.Target, "item", cmd.Item, "error", err)
}

// progress is the quest engine's view of the player plus the world's
// last-spoken NPC.
type progress struct {
	*player.State
	graph *world.Graph
}

func (p progress) LastSpokenNPC() string {
	if p.graph == nil {
		return ""
	}
	return p.graph.LastSpoken
}

func questLog(log quest.Log) string {
	if len(log.Instances) == 0 {
		return "You have no quests."
	}
	lines := make([]string, len(log.Instances))
	for i, inst := range log.Instances {
		lines[i] = fmt.Sprintf("%s: %s", inst.Name, inst.Status())
	}
	return strings.Join(lines, "\n")
}

func completionText(inst *quest.Instance) string {
	var rewards []string
	for _, it := range inst.Rewards.Items {
		rewards = append(rewards, fmt.Sprintf("%s (x%d)", it.Name, it.Quantity))
	}
	if inst.Rewards.Tokens > 0 {
		rewards = append(rewards, fmt.Sprintf("%d tokens", inst.Rewards.Tokens))
	}
	if inst.Rewards.Experience > 0 {
		rewards = append(rewards, fmt.Sprintf("%d experience", inst.Rewards.Experience))
	}
	if len(rewards) == 0 {
		return fmt.Sprintf("Quest completed: %s!", inst.Name)
	}
	return fmt.Sprintf("Quest completed: %s! Rewards: %s.", inst.Name, strings.Join(rewards, ", "))
}

func readEmail(p *player.State, name string) (string, error) {
	e, err := p.MarkEmailRead(name)
	if errors.Is(err, player.ErrEmailNotFound) {
		return fmt.Sprintf("You have no email called %s.", name), err
	}
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("From: %s\nSubject: %s\n\n%s", e.Sender, e.Name, e.Description), nil
}
