package quest

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/odyssey-engine/internal/logger"
	"github.com/jwebster45206/odyssey-engine/pkg/names"
	"github.com/jwebster45206/odyssey-engine/pkg/world"
)

var (
	ErrUnknownQuest     = errors.New("unknown quest")
	ErrAlreadyCompleted = errors.New("quest already completed")
	ErrNoPredicate      = errors.New("no predicate for objective type")
	ErrBadObjective     = errors.New("malformed objective")
)

// StateView is the read-only slice of player and world state that
// objective predicates look at. It keeps this package free of the player
// package, which owns the quest log.
type StateView interface {
	EmailRead(name string) bool
	AllEmailsRead() bool
	ItemCount(name string) uint
	LastSpokenNPC() string
	EnemyDefeated(name string) bool
	ResourceCount(name string) int
}

// RewardSink receives quest rewards.
type RewardSink interface {
	AddItem(item world.Item)
	AddTokens(n uint)
	AddExperience(n uint)
}

// Predicate decides whether one objective holds. An error means the
// objective itself is malformed.
type Predicate func(obj Objective, view StateView) (bool, error)

// Engine activates quests and evaluates them against player state.
type Engine struct {
	catalog    *Catalog
	predicates map[ObjectiveKind]Predicate
	logger     *slog.Logger
}

// NewEngine creates an engine with the built-in objective predicates.
func NewEngine(catalog *Catalog, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		catalog: catalog,
		predicates: map[ObjectiveKind]Predicate{
			KindReadEmail:        readEmail,
			KindSpeakToCharacter: speakToCharacter,
			KindDefeatEnemy:      defeatEnemy,
			KindCollect:          collect,
			KindFetch:            fetch,
		},
		logger: logger,
	}
}

// Register adds or replaces the predicate for an objective kind.
func (e *Engine) Register(kind ObjectiveKind, p Predicate) {
	e.predicates[kind] = p
}

// Catalog returns the engine's quest catalog.
func (e *Engine) Catalog() *Catalog {
	return e.catalog
}

// Activate attaches an active instance of the named quest to the log.
// Activating an already active quest returns the existing instance.
func (e *Engine) Activate(log *Log, name string) (*Instance, error) {
	def, ok := e.catalog.Get(name)
	if !ok {
		err := &world.ContentError{Err: fmt.Errorf("%w: %s", ErrUnknownQuest, name)}
		logger.WithError(logger.Content(e.logger), err).Error("Quest activation failed", "quest", name)
		return nil, err
	}

	if existing := log.Find(def.Name); existing != nil {
		if existing.Completed {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyCompleted, def.Name)
		}
		existing.Active = true
		return existing, nil
	}

	inst := newInstance(def)
	inst.Active = true
	log.Instances = append(log.Instances, inst)
	e.logger.Info("Quest activated", "quest", inst.Name, "slug", inst.Slug)
	return inst, nil
}

// CheckAll evaluates every active, incomplete instance. A quest completes
// when all of its objectives hold; rewards are granted on that transition
// only. It returns the quests completed by this call along with any
// content errors met on the way.
func (e *Engine) CheckAll(log *Log, view StateView, sink RewardSink) ([]*Instance, error) {
	var (
		completed []*Instance
		errs      []error
	)
	for _, inst := range log.Instances {
		if !inst.Active || inst.Completed {
			continue
		}

		ok, err := e.evaluate(inst, view)
		if err != nil {
			errs = append(errs, err)
		}
		if !ok {
			continue
		}

		inst.Completed = true
		inst.Active = false
		e.distributeRewards(inst, sink)
		completed = append(completed, inst)
		e.logger.Info("Quest completed", "quest", inst.Name)
	}
	return completed, errors.Join(errs...)
}

func (e *Engine) evaluate(inst *Instance, view StateView) (bool, error) {
	if len(inst.Objectives) == 0 {
		err := &world.ContentError{Err: fmt.Errorf("%w: quest %q has no objectives", ErrBadObjective, inst.Name)}
		logger.WithError(logger.Content(e.logger), err).Error("Quest cannot complete", "quest", inst.Name)
		return false, err
	}

	all := true
	var errs []error
	for i := range inst.Objectives {
		obj := &inst.Objectives[i]
		pred, ok := e.predicates[obj.Kind]
		if !ok {
			err := &world.ContentError{Err: fmt.Errorf("%w: %q in quest %q", ErrNoPredicate, obj.Kind, inst.Name)}
			logger.Content(e.logger).Error("Objective not evaluated", "quest", inst.Name, "type", obj.Kind)
			errs = append(errs, err)
			all = false
			continue
		}

		held, err := pred(*obj, view)
		if err != nil {
			err = &world.ContentError{Err: fmt.Errorf("quest %q: %w", inst.Name, err)}
			logger.WithError(logger.Content(e.logger), err).Error("Objective not evaluated", "quest", inst.Name)
			errs = append(errs, err)
		}
		obj.Completed = held
		if !held {
			all = false
		}
	}
	return all, errors.Join(errs...)
}

func (e *Engine) distributeRewards(inst *Instance, sink RewardSink) {
	for _, item := range inst.Rewards.Items {
		sink.AddItem(item)
	}
	if inst.Rewards.Tokens > 0 {
		sink.AddTokens(inst.Rewards.Tokens)
	}
	if inst.Rewards.Experience > 0 {
		sink.AddExperience(inst.Rewards.Experience)
	}
}

// Problems lists objectives in the catalog that no predicate can evaluate.
func (e *Engine) Problems() []string {
	var out []string
	for _, name := range e.catalog.Names() {
		def, _ := e.catalog.Get(name)
		if len(def.Objectives) == 0 {
			out = append(out, fmt.Sprintf("quest %q has no objectives", def.Name))
		}
		for i, obj := range def.Objectives {
			if _, ok := e.predicates[obj.Kind]; !ok {
				out = append(out, fmt.Sprintf("quest %q objective %d: unknown type %q", def.Name, i, obj.Kind))
			}
			if len(obj.Target) == 0 {
				out = append(out, fmt.Sprintf("quest %q objective %d: missing target", def.Name, i))
			}
		}
	}
	return out
}

func readEmail(obj Objective, view StateView) (bool, error) {
	if len(obj.Target) == 0 {
		return false, fmt.Errorf("%w: readEmail without target", ErrBadObjective)
	}
	if len(obj.Target) == 1 && obj.Target[0] == AllUnread {
		return view.AllEmailsRead(), nil
	}
	for _, name := range obj.Target {
		if !view.EmailRead(name) {
			return false, nil
		}
	}
	return true, nil
}

func speakToCharacter(obj Objective, view StateView) (bool, error) {
	if len(obj.Target) == 0 {
		return false, fmt.Errorf("%w: speakToCharacter without target", ErrBadObjective)
	}
	last := names.Normalize(view.LastSpokenNPC())
	if last == "" {
		return false, nil
	}
	for _, name := range obj.Target {
		if names.Normalize(name) == last {
			return true, nil
		}
	}
	return false, nil
}

func defeatEnemy(obj Objective, view StateView) (bool, error) {
	if len(obj.Target) == 0 {
		return false, fmt.Errorf("%w: defeatEnemy without target", ErrBadObjective)
	}
	for _, name := range obj.Target {
		if !view.EnemyDefeated(name) {
			return false, nil
		}
	}
	return true, nil
}

func collect(obj Objective, view StateView) (bool, error) {
	if len(obj.Target) == 0 {
		return false, fmt.Errorf("%w: collect without target", ErrBadObjective)
	}
	switch obj.TargetType {
	case TargetItem, "":
		want := uint(1)
		if obj.Amount > 1 {
			want = uint(obj.Amount)
		}
		for _, name := range obj.Target {
			if view.ItemCount(name) < want {
				return false, nil
			}
		}
		return true, nil
	case TargetResource:
		for _, name := range obj.Target {
			if view.ResourceCount(name) < obj.Amount {
				return false, nil
			}
		}
		return true, nil
	default:
		return false, fmt.Errorf("%w: collect target_type %q", ErrBadObjective, obj.TargetType)
	}
}

func fetch(obj Objective, view StateView) (bool, error) {
	obj.TargetType = TargetItem
	return collect(obj, view)
}
