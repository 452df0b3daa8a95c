// Package core implements the statewire engine proper: the transition
// table (C1), subscription registry (C2), the dispatch pipeline and
// reentrancy queue (C5), and the nested-machine cascade (C7). The
// public facade in the root statewire package wraps Engine[C] with the
// dynamic surface (C6) and persistence wiring (C8).
package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/statewire/statewire/internal/history"
	"github.com/statewire/statewire/internal/primitives"
)

// Dispatcher is the type-erased view of an Engine used for nested-child
// cascade (spec C7). It lets a parent whose context type differs from
// its children's hold and drive them uniformly.
type Dispatcher interface {
	ID() string
	Cascade(ctx context.Context, event primitives.EventID, args ...any) error
	Children() map[string]Dispatcher
}

// Engine is the runtime core of one machine instance (spec §3's "M",
// minus C6/C8 which the public facade layers on top).
type Engine[C any] struct {
	id      string
	mu      sync.Mutex
	current primitives.StateID
	ctx     *primitives.ContextCell[C]
	table   *table[C]
	subs    *subscriptionRegistry[C]
	log     *history.Log
	clock   func() time.Time

	dispatching bool
	queue       []pendingSend

	children map[string]Dispatcher
}

type pendingSend struct {
	ctx   context.Context
	event primitives.EventID
	args  []any
}

// New constructs an Engine with the given initial state, context value,
// and declared transitions (spec §6's createMachine, minus subscriptions
// and children which are attached afterward via On/Attach).
func New[C any](initial primitives.StateID, ctxValue *C, transitions []primitives.Transition[C], historySize int) *Engine[C] {
	t := newTable[C]()
	for _, tr := range transitions {
		t.add(tr)
	}
	return &Engine[C]{
		id:       uuid.NewString(),
		current:  initial,
		ctx:      primitives.NewContextCell(ctxValue),
		table:    t,
		subs:     newSubscriptionRegistry[C](),
		log:      history.NewLog(historySize),
		clock:    time.Now,
		children: make(map[string]Dispatcher),
	}
}

// ID returns the engine's unique instance identifier.
func (e *Engine[C]) ID() string { return e.id }

// Current returns the active state (spec §6's "current").
func (e *Engine[C]) Current() primitives.StateID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.current
}

// Ctx returns the live context cell (spec §6's "context").
func (e *Engine[C]) Ctx() *primitives.ContextCell[C] { return e.ctx }

// SetCurrent force-sets the active state without running any guard,
// onExit, or onEnter. It exists for snapshot restoration only — normal
// state progression always goes through Send.
func (e *Engine[C]) SetCurrent(state primitives.StateID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.current = state
}

// History returns the most recent n committed transitions, oldest
// first. n <= 0 returns the full retained log (spec §6's "history").
func (e *Engine[C]) History(n int) []history.Entry {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.log.Recent(n)
}

// AddTransition late-binds a new transition (spec §4.1).
func (e *Engine[C]) AddTransition(tr primitives.Transition[C]) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.table.add(tr)
}

// RemoveTransition removes every transition declared for (from, event).
func (e *Engine[C]) RemoveTransition(from primitives.StateID, event primitives.EventID) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.table.remove(from, event)
}

// DeclaredEvents returns every event name that has ever appeared in a
// transition, used to (re)build the dynamic surface (C6).
func (e *Engine[C]) DeclaredEvents() []primitives.EventID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table.declaredEvents()
}

// DeclaredStates returns every state name that has ever appeared in a
// transition, used to (re)build the dynamic surface (C6).
func (e *Engine[C]) DeclaredStates() []primitives.StateID {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.table.declaredStates()
}

// SetClock overrides the clock used to timestamp history entries, for
// tests and deterministic snapshots.
func (e *Engine[C]) SetClock(clock func() time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.clock = clock
}

// On subscribes cb to event, returning a token usable with Off.
func (e *Engine[C]) On(event primitives.EventID, cb primitives.Handler[C]) int {
	return e.subs.on(event, cb)
}

// Once subscribes cb to event for a single invocation.
func (e *Engine[C]) Once(event primitives.EventID, cb primitives.Handler[C]) int {
	return e.subs.once(event, cb)
}

// Off removes the subscriber identified by token (as returned from On
// or Once) for event.
func (e *Engine[C]) Off(event primitives.EventID, token int) {
	e.subs.offToken(event, token)
}

// Is reports whether the machine is currently in state (spec §6's
// "is").
func (e *Engine[C]) Is(state primitives.StateID) bool {
	return e.Current() == state
}

// Children returns the attached nested machines by name (spec C7).
func (e *Engine[C]) Children() map[string]Dispatcher {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make(map[string]Dispatcher, len(e.children))
	for k, v := range e.children {
		out[k] = v
	}
	return out
}

// Attach adds a nested child machine under name, cascading future Send
// calls to it (spec C7). It is rejected with CycleError if child already
// has this engine somewhere in its own descendant tree.
func (e *Engine[C]) Attach(name string, child Dispatcher) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if child.ID() == e.id || hasDescendant(child, e.id) {
		return &primitives.CycleError{Name: name}
	}
	e.children[name] = child
	return nil
}

func hasDescendant(d Dispatcher, id string) bool {
	for _, c := range d.Children() {
		if c.ID() == id || hasDescendant(c, id) {
			return true
		}
	}
	return false
}

// Can reports whether Send(event, args...) would currently succeed
// through step 2 (lookup + guard selection), without mutating anything
// (spec §6's "can").
func (e *Engine[C]) Can(ctx context.Context, event primitives.EventID, args ...any) bool {
	_, _, err := e.selectTransition(ctx, event, args)
	return err == nil
}

// Send drives one event dispatch through the full pipeline described in
// §4.5: lookup, guard selection, pre-broadcast, exit, state change,
// enter, history append, and cascade to children. §5 covers how
// reentrant Send calls from inside a handler on this same machine are
// queued rather than processed inline.
func (e *Engine[C]) Send(ctx context.Context, event primitives.EventID, args ...any) error {
	e.mu.Lock()
	if e.dispatching {
		e.queue = append(e.queue, pendingSend{ctx: ctx, event: event, args: args})
		e.mu.Unlock()
		return &primitives.ErrQueued{Event: event}
	}
	e.dispatching = true
	e.mu.Unlock()

	err := e.dispatchOnce(ctx, event, args, false)

	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.dispatching = false
			e.mu.Unlock()
			break
		}
		next := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()
		_ = e.dispatchOnce(next.ctx, next.event, next.args, false)
	}
	return err
}

// Cascade is Send's variant for the parent->child fan-out of spec §4.5
// step 9: an event the child never declared, or one whose guards all
// reject, is skipped silently instead of erroring — only a handler
// failure surfaces as a real error, becoming the parent's own failure.
func (e *Engine[C]) Cascade(ctx context.Context, event primitives.EventID, args ...any) error {
	e.mu.Lock()
	if e.dispatching {
		e.queue = append(e.queue, pendingSend{ctx: ctx, event: event, args: args})
		e.mu.Unlock()
		return nil
	}
	e.dispatching = true
	e.mu.Unlock()

	err := e.dispatchOnce(ctx, event, args, true)

	for {
		e.mu.Lock()
		if len(e.queue) == 0 {
			e.dispatching = false
			e.mu.Unlock()
			break
		}
		next := e.queue[0]
		e.queue = e.queue[1:]
		e.mu.Unlock()
		_ = e.dispatchOnce(next.ctx, next.event, next.args, true)
	}
	return err
}

// selectTransition performs spec §4.5 steps 1-2 without mutating
// anything. It only holds e.mu long enough to snapshot current state and
// the candidate list — guard callbacks run unlocked, so a guard that
// reentrantly calls Send on this same engine cannot deadlock on e.mu.
func (e *Engine[C]) selectTransition(ctx context.Context, event primitives.EventID, args []any) (primitives.Transition[C], primitives.StateID, error) {
	e.mu.Lock()
	from := e.current
	candidates := append([]primitives.Transition[C](nil), e.table.candidates(from, event)...)
	hasEvent := e.table.hasEvent(event)
	e.mu.Unlock()

	if len(candidates) == 0 {
		if !hasEvent {
			return primitives.Transition[C]{}, from, &primitives.UnknownEventError{Event: event}
		}
		return primitives.Transition[C]{}, from, &primitives.InvalidTransitionError{From: from, Event: event}
	}
	for _, tr := range candidates {
		if tr.Guard == nil {
			return tr, from, nil
		}
		ok, err := tr.Guard(ctx, e.ctx, args...)
		if err != nil {
			return primitives.Transition[C]{}, from, &primitives.HandlerError{Phase: "guard", From: from, To: tr.To, Event: event, Err: err}
		}
		if ok {
			return tr, from, nil
		}
	}
	return primitives.Transition[C]{}, from, &primitives.GuardRejectedError{From: from, Event: event}
}

// dispatchOnce runs spec §4.5 steps 1-9 for a single event. tolerant
// turns a failed lookup/guard-selection into a silent no-op instead of
// an error, used for the C7 cascade.
func (e *Engine[C]) dispatchOnce(ctx context.Context, event primitives.EventID, args []any, tolerant bool) error {
	tr, from, err := e.selectTransition(ctx, event, args)
	if err != nil {
		if tolerant {
			if _, isHandlerErr := err.(*primitives.HandlerError); !isHandlerErr {
				return nil
			}
		}
		return err
	}

	// Step 3: pre-broadcast subscribers, in registration order.
	if err := e.subs.fire(func(cb primitives.Handler[C]) error {
		return cb(ctx, e.ctx, args...)
	}, event); err != nil {
		return &primitives.HandlerError{Phase: "subscriber", From: from, To: tr.To, Event: event, Err: err}
	}

	// Step 4: exit, seeing current == from.
	if tr.OnExit != nil {
		if err := tr.OnExit(ctx, e.ctx, args...); err != nil {
			return &primitives.HandlerError{Phase: "exit", From: from, To: tr.To, Event: event, Err: err}
		}
	}

	// Step 5: state change.
	e.mu.Lock()
	e.current = tr.To
	e.mu.Unlock()

	// Step 6: enter, seeing current == to.
	if tr.OnEnter != nil {
		if err := tr.OnEnter(ctx, e.ctx, args...); err != nil {
			return &primitives.HandlerError{Phase: "enter", From: from, To: tr.To, Event: event, Err: err}
		}
	}

	// Step 7: history append, committed transitions only.
	e.mu.Lock()
	e.log.Append(event, from, tr.To, args, e.clock())
	children := make(map[string]Dispatcher, len(e.children))
	for k, v := range e.children {
		children[k] = v
	}
	e.mu.Unlock()

	// Step 9: cascade to children. A child failure becomes the
	// parent's own failure; the parent's already-committed state change
	// is not rolled back (spec §4.5 step 9's documented atomicity
	// boundary).
	for name, child := range children {
		if err := child.Cascade(ctx, event, args...); err != nil {
			return fmt.Errorf("statewire: cascade to child %q: %w", name, err)
		}
	}
	return nil
}
