// Package session owns one game: the live world, the player and the
// engines that act on them. Callers go through a Session so that only one
// command runs at a time.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/odyssey-engine/internal/logger"
	"github.com/jwebster45206/odyssey-engine/pkg/command"
	"github.com/jwebster45206/odyssey-engine/pkg/interact"
	"github.com/jwebster45206/odyssey-engine/pkg/names"
	"github.com/jwebster45206/odyssey-engine/pkg/player"
	"github.com/jwebster45206/odyssey-engine/pkg/quest"
	"github.com/jwebster45206/odyssey-engine/pkg/world"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jwebster45206/odyssey-engine/pkg/session"

var ErrBadSnapshot = errors.New("snapshot cannot be restored")

// Change describes a dispatch that altered game state.
type Change struct {
	SessionID uuid.UUID      `json:"session_id"`
	Action    command.Action `json:"action"`
	World     string         `json:"world"`
	Location  string         `json:"location"`
	At        time.Time      `json:"at"`
}

// Notifier is told about every state change, e.g. to refresh UI panels.
type Notifier interface {
	StateChanged(ctx context.Context, c Change) error
}

// Deps are the collaborators a session is built from.
type Deps struct {
	Worlds   interact.WorldLoader
	Catalog  *quest.Catalog
	Notifier Notifier // optional
	Logger   *slog.Logger
}

// Session is a single player's game.
type Session struct {
	mu         sync.Mutex
	engine     *interact.Engine
	quests     *quest.Engine
	dispatcher *command.Dispatcher
	notifier   Notifier
	logger     *slog.Logger
	tracer     trace.Tracer
}

// Snapshot is the complete saved form of a session. Containers are always
// closed in a snapshot.
type Snapshot struct {
	Player    player.State `json:"player"`
	WorldName string       `json:"world_name"`
	World     *world.Graph `json:"world"`
	SavedAt   time.Time    `json:"saved_at"`
}

// New starts a fresh game from a seed.
func New(ctx context.Context, seed Seed, deps Deps) (*Session, error) {
	log := deps.Logger
	if log == nil {
		log = slog.Default()
	}
	if deps.Worlds == nil {
		return nil, errors.New("session: no world loader")
	}
	seed = seed.withDefaults()

	g, err := deps.Worlds.LoadWorld(ctx, seed.World)
	if err != nil {
		return nil, fmt.Errorf("session: load world %s: %w", seed.World, err)
	}
	if g.Name == "" {
		g.Name = seed.World
	}

	start, err := seed.start(g)
	if err != nil {
		logger.WithError(logger.Content(log), err).Error("Seed has no usable start location", "world", g.Name)
		return nil, err
	}

	p := player.New(seed.PlayerName)
	p.Location = start
	for _, it := range seed.Inventory {
		p.AddItem(it)
	}
	for _, ft := range seed.FastTravel {
		p.AddFastTravel(ft)
	}
	for _, n := range seed.Notes {
		p.AddNote(n)
	}
	for _, e := range seed.Emails {
		p.AddEmail(e)
	}
	if seed.Tokens != nil {
		p.Tokens = *seed.Tokens
	}

	log = logger.WithSession(log, p.ID.String())
	s := newSession(g, p, deps, log)
	for _, name := range seed.Quests {
		if _, err := s.quests.Activate(&p.Quests, name); err != nil {
			return nil, fmt.Errorf("session: seed quest: %w", err)
		}
	}

	log.Info("Session started", "world", g.Name, "location", start.String(), "player", p.Name)
	return s, nil
}

func newSession(g *world.Graph, p *player.State, deps Deps, logger *slog.Logger) *Session {
	engine := interact.NewEngine(g, p, deps.Worlds, logger)
	quests := quest.NewEngine(deps.Catalog, logger)
	return &Session{
		engine:     engine,
		quests:     quests,
		dispatcher: command.NewDispatcher(engine, quests, logger),
		notifier:   deps.Notifier,
		logger:     logger,
		tracer:     otel.Tracer(tracerName),
	}
}

// ID is the player's ID, which doubles as the session ID.
func (s *Session) ID() uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Player().ID
}

// Dispatch runs one line of player input to completion.
func (s *Session) Dispatch(ctx context.Context, raw string) command.Result {
	return s.run(ctx, "session.dispatch", func(ctx context.Context) command.Result {
		return s.dispatcher.Dispatch(ctx, raw)
	})
}

// Execute runs a structured command, for callers that parse input themselves.
func (s *Session) Execute(ctx context.Context, cmd command.Command) command.Result {
	return s.run(ctx, "session.execute", func(ctx context.Context) command.Result {
		return s.dispatcher.Execute(ctx, cmd)
	})
}

func (s *Session) run(ctx context.Context, spanName string, fn func(context.Context) command.Result) command.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx, span := s.tracer.Start(ctx, spanName, trace.WithAttributes(
		attribute.String("session.id", s.engine.Player().ID.String()),
		attribute.String("world", s.engine.Graph().Name),
	))
	defer span.End()

	res := fn(ctx)
	span.SetAttributes(
		attribute.String("command.action", string(res.Action)),
		attribute.Bool("command.mutated", res.Mutated),
	)
	if res.Err != nil {
		span.RecordError(res.Err)
		if world.IsContentError(res.Err) {
			span.SetStatus(codes.Error, "content error")
		}
	}
	if res.Mutated {
		s.notify(ctx, res.Action)
	}
	return res
}

// RecordDefeat feeds a combat result in from outside and re-checks quests.
func (s *Session) RecordDefeat(ctx context.Context, enemy string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Player().RecordDefeat(enemy)
	return s.afterExternalChange(ctx)
}

// AddResource feeds a gathered-resource count in from outside and
// re-checks quests.
func (s *Session) AddResource(ctx context.Context, name string, n int) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Player().AddResource(name, n)
	return s.afterExternalChange(ctx)
}

func (s *Session) afterExternalChange(ctx context.Context) []string {
	done := s.dispatcher.CheckQuests()
	s.notify(ctx, command.ActNone)
	return done
}

func (s *Session) notify(ctx context.Context, action command.Action) {
	if s.notifier == nil {
		return
	}
	p := s.engine.Player()
	c := Change{
		SessionID: p.ID,
		Action:    action,
		World:     s.engine.Graph().Name,
		Location:  p.Location.String(),
		At:        time.Now().UTC(),
	}
	if err := s.notifier.StateChanged(ctx, c); err != nil {
		logger.WithError(s.logger, err).Warn("Failed to publish state change")
	}
}

// Player returns a copy of the player state for display.
func (s *Session) Player() player.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Player().GetState()
}

// Snapshot closes every container and returns a deep copy of the session.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := s.engine.Graph()
	g.CloseAllContainers()
	return Snapshot{
		Player:    s.engine.Player().GetState(),
		WorldName: g.Name,
		World:     g.Clone(),
		SavedAt:   time.Now().UTC(),
	}
}

// Restore replaces the world and player with the snapshot's. The snapshot
// is checked first; a bad one leaves the session untouched.
func (s *Session) Restore(ctx context.Context, snap Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.World == nil {
		return fmt.Errorf("%w: no world", ErrBadSnapshot)
	}
	g := snap.World.Clone()
	if g.Name == "" {
		g.Name = snap.WorldName
	}
	g.CloseAllContainers()

	loc := snap.Player.Location
	if loc.World == "" {
		loc.World = g.Name
	}
	if !names.Equal(loc.World, g.Name) {
		return fmt.Errorf("%w: player is in %q but world is %q", ErrBadSnapshot, loc.World, g.Name)
	}
	if g.Resolve(loc) == nil {
		return fmt.Errorf("%w: location %s not in %s", ErrBadSnapshot, loc, g.Name)
	}

	p := s.engine.Player()
	if err := p.SetState(snap.Player, g.Name); err != nil {
		return fmt.Errorf("%w: %w", ErrBadSnapshot, err)
	}
	s.engine.Replace(g, p)
	s.logger.Info("Session restored", "world", g.Name, "location", p.Location.String())
	s.notify(ctx, command.ActNone)
	return nil
}
