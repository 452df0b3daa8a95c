package core

import "github.com/statewire/statewire/internal/primitives"

type tableKey struct {
	from  primitives.StateID
	event primitives.EventID
}

// table is the transition table of spec C1: an indexed store of
// declared transitions keyed by (from, event), preserving declaration
// order so candidate resolution is deterministic (spec §4.1, testable
// property 4).
type table[C any] struct {
	byKey map[tableKey][]primitives.Transition[C]
	// events/states track every name that has ever appeared in a
	// transition, for UnknownEventError resolution and for building the
	// dynamic surface (C6).
	events map[primitives.EventID]struct{}
	states map[primitives.StateID]struct{}
}

func newTable[C any]() *table[C] {
	return &table[C]{
		byKey:  make(map[tableKey][]primitives.Transition[C]),
		events: make(map[primitives.EventID]struct{}),
		states: make(map[primitives.StateID]struct{}),
	}
}

// candidates returns the declared transitions for (from, event) in
// declaration order. A nil or empty slice is a legal "no transition"
// result (spec §4.1).
func (t *table[C]) candidates(from primitives.StateID, event primitives.EventID) []primitives.Transition[C] {
	return t.byKey[tableKey{from, event}]
}

// add appends a transition under its key (spec §4.1 "addTransition":
// late binding, redeclaration permitted).
func (t *table[C]) add(tr primitives.Transition[C]) {
	key := tableKey{tr.From, tr.Event}
	t.byKey[key] = append(t.byKey[key], tr)
	t.events[tr.Event] = struct{}{}
	t.states[tr.From] = struct{}{}
	t.states[tr.To] = struct{}{}
}

// remove deletes every transition declared for (from, event).
func (t *table[C]) remove(from primitives.StateID, event primitives.EventID) {
	delete(t.byKey, tableKey{from, event})
}

func (t *table[C]) hasEvent(event primitives.EventID) bool {
	_, ok := t.events[event]
	return ok
}

func (t *table[C]) declaredEvents() []primitives.EventID {
	out := make([]primitives.EventID, 0, len(t.events))
	for e := range t.events {
		out = append(out, e)
	}
	return out
}

func (t *table[C]) declaredStates() []primitives.StateID {
	out := make([]primitives.StateID, 0, len(t.states))
	for s := range t.states {
		out = append(out, s)
	}
	return out
}
