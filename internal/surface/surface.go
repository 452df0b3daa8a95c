// Package surface synthesizes the dynamic dispatch members of spec C6:
// a callable per declared event and an is<State> predicate per declared
// state, built as name-keyed maps of declared events and states rather
// than through reflection, since Go cannot attach methods to a live
// value at runtime.
package surface

import (
	"context"
	"strings"

	"github.com/statewire/statewire/internal/primitives"
)

// Dispatcher is the subset of Engine/Machine behavior the surface wraps.
type Dispatcher interface {
	Send(ctx context.Context, event primitives.EventID, args ...any) error
	Can(ctx context.Context, event primitives.EventID, args ...any) bool
	Is(state primitives.StateID) bool
}

// Surface is the runtime realization of spec §4.6: Do and CanDo per
// declared event name, Is per declared state name, reachable by name
// instead of by a generated method.
type Surface struct {
	d      Dispatcher
	events map[string]primitives.EventID
	states map[string]primitives.StateID
}

// New builds a Surface over the given event and state sets, validating
// every synthesized name against reserved engine members (spec §4.6).
// MethodName applies the spec's deterministic name transform so callers
// building generated wrappers (cmd/fsmgen) can reproduce the same names.
func New(d Dispatcher, events []primitives.EventID, states []primitives.StateID) (*Surface, error) {
	s := &Surface{
		d:      d,
		events: make(map[string]primitives.EventID, len(events)),
		states: make(map[string]primitives.StateID, len(states)),
	}
	for _, e := range events {
		name := string(e)
		if err := checkReserved(name); err != nil {
			return nil, err
		}
		if err := checkReserved("can" + MethodName(name)); err != nil {
			return nil, err
		}
		s.events[name] = e
	}
	for _, st := range states {
		name := "is" + MethodName(string(st))
		if err := checkReserved(name); err != nil {
			return nil, err
		}
		s.states[string(st)] = st
	}
	return s, nil
}

func checkReserved(name string) error {
	if _, ok := primitives.ReservedNames[strings.ToLower(name)]; ok {
		return &primitives.NameCollisionError{Name: name}
	}
	return nil
}

// MethodName applies spec §4.6's name transform: first character
// upper-cased, rest preserved. "clickMode" -> "ClickMode".
func MethodName(name string) string {
	if name == "" {
		return name
	}
	r := []rune(name)
	if r[0] >= 'a' && r[0] <= 'z' {
		r[0] = r[0] - 'a' + 'A'
	}
	return string(r)
}

// Do invokes the synthesized member for the named event — the dynamic
// equivalent of a generated `<event>(args...)` method.
func (s *Surface) Do(ctx context.Context, name string, args ...any) error {
	event, ok := s.events[name]
	if !ok {
		return &primitives.UnknownEventError{Event: primitives.EventID(name)}
	}
	return s.d.Send(ctx, event, args...)
}

// CanDo is the dynamic equivalent of a generated `can<Event>()` method.
func (s *Surface) CanDo(ctx context.Context, name string, args ...any) bool {
	event, ok := s.events[name]
	if !ok {
		return false
	}
	return s.d.Can(ctx, event, args...)
}

// Is is the dynamic equivalent of a generated `is<State>()` method.
func (s *Surface) Is(name string) bool {
	state, ok := s.states[name]
	if !ok {
		return false
	}
	return s.d.Is(state)
}

// Events lists every event name the surface was built with.
func (s *Surface) Events() []string {
	out := make([]string, 0, len(s.events))
	for name := range s.events {
		out = append(out, name)
	}
	return out
}

// States lists every state name the surface was built with.
func (s *Surface) States() []string {
	out := make([]string, 0, len(s.states))
	for name := range s.states {
		out = append(out, name)
	}
	return out
}
