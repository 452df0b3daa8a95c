// Package loader parses and emits a declarative machine description in
// YAML, grounded on the teacher's one real third-party dependency
// (gopkg.in/yaml.v3, already used for YAMLPersister) and on the guard
// string-ref idiom of internal/extensibility.DefaultGuardEvaluator
// (comalice-statechartx), generalized here into an eager, fail-fast
// registry lookup instead of runtime fail-closed evaluation.
package loader

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// MachineSpec is the YAML-facing description of a machine's transition
// table (spec §6's createMachine, minus ctx/subscriptions/children which
// are Go values a YAML document cannot carry).
type MachineSpec struct {
	Initial     string           `yaml:"initial"`
	States      []string         `yaml:"states,omitempty"`
	Events      []string         `yaml:"events,omitempty"`
	HistorySize int              `yaml:"historySize,omitempty"`
	Transitions []TransitionSpec `yaml:"transitions"`
}

// TransitionSpec is one declared edge. Guard/OnEnter/OnExit are string
// references resolved against a Registry[C] supplied by the caller —
// YAML cannot encode a Go closure.
type TransitionSpec struct {
	From    []string `yaml:"from"`
	Event   string   `yaml:"event"`
	To      string   `yaml:"to"`
	Guard   string   `yaml:"guard,omitempty"`
	OnEnter string   `yaml:"onEnter,omitempty"`
	OnExit  string   `yaml:"onExit,omitempty"`
}

// Load parses a YAML machine declaration from r.
func Load(r io.Reader) (*MachineSpec, error) {
	var spec MachineSpec
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("statewire/loader: decode: %w", err)
	}
	return &spec, nil
}

// Save emits spec as YAML to w.
func Save(w io.Writer, spec *MachineSpec) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	if err := enc.Encode(spec); err != nil {
		return fmt.Errorf("statewire/loader: encode: %w", err)
	}
	return nil
}
