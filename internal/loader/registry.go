package loader

import (
	"fmt"

	"github.com/statewire/statewire/internal/primitives"
)

// Registry maps the string refs a MachineSpec's TransitionSpec carries
// to real Go guard/handler closures, grounded on the teacher's
// string-keyed GuardRef/ActionRef idiom
// (internal/extensibility.DefaultGuardEvaluator), but resolved eagerly
// at Build time instead of failing closed on every evaluation.
type Registry[C any] struct {
	guards   map[string]primitives.Guard[C]
	onEnters map[string]primitives.Handler[C]
	onExits  map[string]primitives.Handler[C]
}

// NewRegistry returns an empty Registry.
func NewRegistry[C any]() *Registry[C] {
	return &Registry[C]{
		guards:   make(map[string]primitives.Guard[C]),
		onEnters: make(map[string]primitives.Handler[C]),
		onExits:  make(map[string]primitives.Handler[C]),
	}
}

// RegisterGuard names g so TransitionSpec.Guard can refer to it.
func (r *Registry[C]) RegisterGuard(name string, g primitives.Guard[C]) *Registry[C] {
	r.guards[name] = g
	return r
}

// RegisterOnEnter names h so TransitionSpec.OnEnter can refer to it.
func (r *Registry[C]) RegisterOnEnter(name string, h primitives.Handler[C]) *Registry[C] {
	r.onEnters[name] = h
	return r
}

// RegisterOnExit names h so TransitionSpec.OnExit can refer to it.
func (r *Registry[C]) RegisterOnExit(name string, h primitives.Handler[C]) *Registry[C] {
	r.onExits[name] = h
	return r
}

// Build resolves every ref in spec against r, expanding set-valued from
// lists into one primitives.Transition[C] per source state (spec
// §4.1's expansion rule). An unregistered ref is a construction-time
// error, not a silently-failing guard — this is the fail-fast Go
// realization of the teacher's "unregistered guards fail closed".
func (r *Registry[C]) Build(spec *MachineSpec) ([]primitives.Transition[C], error) {
	var out []primitives.Transition[C]
	for _, ts := range spec.Transitions {
		guard, err := r.resolveGuard(ts.Guard)
		if err != nil {
			return nil, err
		}
		onEnter, err := r.resolveOnEnter(ts.OnEnter)
		if err != nil {
			return nil, err
		}
		onExit, err := r.resolveOnExit(ts.OnExit)
		if err != nil {
			return nil, err
		}
		if len(ts.From) == 0 {
			return nil, fmt.Errorf("statewire/loader: transition for event %q declares no from state", ts.Event)
		}
		for _, from := range ts.From {
			out = append(out, primitives.Transition[C]{
				From:    primitives.StateID(from),
				Event:   primitives.EventID(ts.Event),
				To:      primitives.StateID(ts.To),
				Guard:   guard,
				OnEnter: onEnter,
				OnExit:  onExit,
			})
		}
	}
	return out, nil
}

func (r *Registry[C]) resolveGuard(name string) (primitives.Guard[C], error) {
	if name == "" {
		return nil, nil
	}
	g, ok := r.guards[name]
	if !ok {
		return nil, fmt.Errorf("statewire/loader: guard %q is not registered", name)
	}
	return g, nil
}

func (r *Registry[C]) resolveOnEnter(name string) (primitives.Handler[C], error) {
	if name == "" {
		return nil, nil
	}
	h, ok := r.onEnters[name]
	if !ok {
		return nil, fmt.Errorf("statewire/loader: onEnter %q is not registered", name)
	}
	return h, nil
}

func (r *Registry[C]) resolveOnExit(name string) (primitives.Handler[C], error) {
	if name == "" {
		return nil, nil
	}
	h, ok := r.onExits[name]
	if !ok {
		return nil, fmt.Errorf("statewire/loader: onExit %q is not registered", name)
	}
	return h, nil
}
