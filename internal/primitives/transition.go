package primitives

import "context"

// Guard is evaluated before a candidate transition commits (spec §3,
// "T"). An absent guard admits unconditionally (spec §4.5 step 2).
type Guard[C any] func(ctx context.Context, cell *ContextCell[C], args ...any) (bool, error)

// Handler is an effectful callback tied to a specific transition
// (onEnter/onExit) or registered independently as a subscriber.
type Handler[C any] func(ctx context.Context, cell *ContextCell[C], args ...any) error

// Transition is one declared edge of the transition table (spec §3's
// "T"). From is always a single StateID here — a set-valued `from` in
// a Declaration is expanded into one Transition per source state by
// Declaration.Expand (spec §4.1's expansion rule), so Guard/OnEnter/OnExit
// are shared by reference across the expansion, never cloned.
type Transition[C any] struct {
	From    StateID
	Event   EventID
	To      StateID
	Guard   Guard[C]
	OnEnter Handler[C]
	OnExit  Handler[C]
}

// Declaration is the user-facing shorthand accepted by the construction
// API (spec §6): From may name one state or several, producing one
// Transition per source state when expanded.
type Declaration[C any] struct {
	From    []StateID
	Event   EventID
	To      StateID
	Guard   Guard[C]
	OnEnter Handler[C]
	OnExit  Handler[C]
}

// Expand realizes spec §4.1's set-valued `from` expansion rule.
func (d Declaration[C]) Expand() []Transition[C] {
	out := make([]Transition[C], 0, len(d.From))
	for _, from := range d.From {
		out = append(out, Transition[C]{
			From:    from,
			Event:   d.Event,
			To:      d.To,
			Guard:   d.Guard,
			OnEnter: d.OnEnter,
			OnExit:  d.OnExit,
		})
	}
	return out
}
