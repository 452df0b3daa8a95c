// Package statewire is a finite-state-machine engine whose value is the
// ergonomic runtime around plain transition tables: a dynamic dispatch
// surface, layered guard/enter/exit/subscriber handlers run in a precise
// order, a mutable shared context with dependency injection, nested
// child machines, a bounded history log, and a reactive subscription
// bus. See internal/core for the dispatch pipeline and internal/surface
// for the dynamic member synthesis.
package statewire

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/statewire/statewire/internal/core"
	"github.com/statewire/statewire/internal/history"
	"github.com/statewire/statewire/internal/primitives"
	"github.com/statewire/statewire/internal/surface"
	"github.com/statewire/statewire/internal/telemetry"
)

// Re-exported primitive types, so callers never need to import the
// internal packages directly.
type (
	StateID            = primitives.StateID
	EventID            = primitives.EventID
	Guard[C any]       = primitives.Guard[C]
	Handler[C any]     = primitives.Handler[C]
	Transition[C any]  = primitives.Transition[C]
	Declaration[C any] = primitives.Declaration[C]
	ContextCell[C any] = primitives.ContextCell[C]
	HistoryEntry       = history.Entry
)

// Re-exported error types, matching spec §7's taxonomy exactly.
type (
	UnknownEventError      = primitives.UnknownEventError
	InvalidTransitionError = primitives.InvalidTransitionError
	GuardRejectedError     = primitives.GuardRejectedError
	NameCollisionError     = primitives.NameCollisionError
	CycleError             = primitives.CycleError
	HandlerError           = primitives.HandlerError
	ErrQueued              = primitives.ErrQueued
)

// Config is the construction record accepted by New (spec §6's
// createMachine). Transitions accepts the full field set; Declarations
// is the set-valued-from shorthand that Expand()s into Transitions.
type Config[C any] struct {
	Initial      StateID
	Context      *C
	Transitions  []Transition[C]
	Declarations []Declaration[C]
	// Subscriptions pre-registers event callbacks at construction time,
	// equivalent to calling On for each entry afterward.
	Subscriptions map[EventID][]Handler[C]
	// HistorySize caps the retained history log; 0 means unbounded.
	HistorySize int
	// Logger, when set via WithLogger, wraps every guard, onEnter,
	// onExit and subscriber with structured debug logging
	// (internal/telemetry). Left nil, none of that wrapping happens.
	Logger *zerolog.Logger
}

// Machine is the public facade over the dispatch core: Engine[C] (C1-C5,
// C7) plus the dynamic surface (C6). Embedding promotes Send, Can, Is,
// Current, Ctx, History, On, Once, Off, AddTransition, RemoveTransition,
// Children, Attach, ID and Cascade directly.
type Machine[C any] struct {
	*core.Engine[C]
	surf *surface.Surface

	// initial and declaredTransitions back DOT/Mermaid rendering
	// (visualize.go), and declaredTransitions also backs Transitions and
	// ReplaceTransitions; Engine itself only exposes per-(from, event)
	// candidate lookups, not a full edge enumeration.
	initial             StateID
	declaredTransitions []Transition[C]
}

// New constructs a Machine from cfg, applying opts in order (spec §6's
// createMachine). Declarations are expanded and merged with Transitions
// before the transition table is built; every declared event/state name
// is validated against the reserved-word list, returning
// NameCollisionError on conflict (spec §4.6).
func New[C any](cfg Config[C], opts ...Option[C]) (*Machine[C], error) {
	for _, opt := range opts {
		opt(&cfg)
	}

	all := make([]Transition[C], 0, len(cfg.Transitions))
	all = append(all, cfg.Transitions...)
	for _, d := range cfg.Declarations {
		all = append(all, d.Expand()...)
	}

	if cfg.Logger != nil {
		for i, tr := range all {
			all[i] = telemetry.WrapTransition(*cfg.Logger, tr)
		}
		for event, cbs := range cfg.Subscriptions {
			for i, cb := range cbs {
				cbs[i] = telemetry.WrapHandler(*cfg.Logger, event, "subscriber", cb)
			}
		}
	}

	engine := core.New(cfg.Initial, cfg.Context, all, cfg.HistorySize)
	for event, cbs := range cfg.Subscriptions {
		for _, cb := range cbs {
			engine.On(event, cb)
		}
	}

	m := &Machine[C]{Engine: engine, initial: cfg.Initial, declaredTransitions: all}
	if err := m.rebuildSurface(); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Machine[C]) rebuildSurface() error {
	events, states := m.declaredNames()
	s, err := surface.New(dispatcherAdapter[C]{m.Engine}, events, states)
	if err != nil {
		return err
	}
	m.surf = s
	return nil
}

// dispatcherAdapter narrows Engine[C] to surface.Dispatcher's untyped
// signature (surface has no type parameter of its own).
type dispatcherAdapter[C any] struct{ e *core.Engine[C] }

func (d dispatcherAdapter[C]) Send(ctx context.Context, event EventID, args ...any) error {
	return d.e.Send(ctx, event, args...)
}
func (d dispatcherAdapter[C]) Can(ctx context.Context, event EventID, args ...any) bool {
	return d.e.Can(ctx, event, args...)
}
func (d dispatcherAdapter[C]) Is(state StateID) bool { return d.e.Is(state) }

// Surface exposes the runtime dynamic dispatch surface (spec C6):
// Surface().Do("clickMode"), Surface().CanDo("clickMode"),
// Surface().Is("bell") are the dynamic equivalents of the generated
// typed methods cmd/fsmgen emits at build time.
func (m *Machine[C]) Surface() *surface.Surface { return m.surf }

// declaredNames returns the event and state sets the surface and
// generator both need, from Engine's own bookkeeping.
func (m *Machine[C]) declaredNames() ([]EventID, []StateID) {
	return m.Engine.DeclaredEvents(), m.Engine.DeclaredStates()
}

// AddTransitionSynced late-binds a transition and keeps the dynamic surface in
// sync (spec §4.6: synthesized members follow AddTransition/RemoveTransition).
func (m *Machine[C]) AddTransitionSynced(tr Transition[C]) error {
	m.Engine.AddTransition(tr)
	m.declaredTransitions = append(m.declaredTransitions, tr)
	return m.rebuildSurface()
}

// RemoveTransitionSynced removes a transition and keeps the dynamic
// surface in sync.
func (m *Machine[C]) RemoveTransitionSynced(from StateID, event EventID) error {
	m.Engine.RemoveTransition(from, event)
	kept := make([]Transition[C], 0, len(m.declaredTransitions))
	for _, tr := range m.declaredTransitions {
		if tr.From != from || tr.Event != event {
			kept = append(kept, tr)
		}
	}
	m.declaredTransitions = kept
	return m.rebuildSurface()
}

// Transitions returns a copy of every transition declared at
// construction time or via AddTransitionSynced, for collaborators like
// internal/production.Bind that need to rewrap onEnter handlers.
func (m *Machine[C]) Transitions() []Transition[C] {
	return append([]Transition[C](nil), m.declaredTransitions...)
}

// ReplaceTransitions swaps the entire declared transition set, used by
// internal/production.Bind to install its onEnter wrapper around every
// transition at once. It does not change the declared event/state
// names, so the dynamic surface is left untouched.
func (m *Machine[C]) ReplaceTransitions(trs []Transition[C]) {
	for _, tr := range m.declaredTransitions {
		m.Engine.RemoveTransition(tr.From, tr.Event)
	}
	for _, tr := range trs {
		m.Engine.AddTransition(tr)
	}
	m.declaredTransitions = trs
}

// Attach adds a nested child machine under name (spec C7). child must
// implement core.Dispatcher, which every *Machine[X] does via its
// embedded *core.Engine[X].
func (m *Machine[C]) Attach(name string, child core.Dispatcher) error {
	return m.Engine.Attach(name, child)
}
