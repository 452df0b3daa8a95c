package statewire

import (
	"fmt"
	"strings"

	"github.com/statewire/statewire/internal/core"
)

// edge is a flattened view of one declared transition, used only for
// diagram rendering below.
type edge struct {
	from  StateID
	event EventID
	to    StateID
}

// DOT renders the transition table as Graphviz DOT source, adapted from
// the teacher's production.Visualizer.ExportDOT — simplified from its
// nested-cluster rendering (this spec has no compound/parallel states)
// down to a flat digraph with the current state highlighted.
func (m *Machine[C]) DOT() string {
	var b strings.Builder
	b.WriteString("digraph Statechart {\n  rankdir=LR;\n  node [shape=box, fontsize=10, style=rounded];\n")
	current := m.Current()
	for _, s := range m.Engine.DeclaredStates() {
		style := ""
		if s == current {
			style = " style=filled fillcolor=lightgreen"
		}
		fmt.Fprintf(&b, "  %q [label=%q%s];\n", s, s, style)
	}
	for _, e := range m.edges() {
		fmt.Fprintf(&b, "  %q -> %q [label=%q];\n", e.from, e.to, e.event)
	}
	b.WriteString("}\n")
	return b.String()
}

// MermaidDiagram renders the transition table as a Mermaid stateDiagram,
// adapted from tobbstr-fsm's Spec.MermaidJSDiagram.
func (m *Machine[C]) MermaidDiagram() string {
	var b strings.Builder
	b.WriteString("stateDiagram-v2\n")
	fmt.Fprintf(&b, "    [*] --> %s\n", m.initial)
	for _, e := range m.edges() {
		fmt.Fprintf(&b, "    %s --> %s: %s\n", e.from, e.to, e.event)
	}
	return b.String()
}

func (m *Machine[C]) edges() []edge {
	out := make([]edge, 0, len(m.declaredTransitions))
	for _, tr := range m.declaredTransitions {
		out = append(out, edge{from: tr.From, event: tr.Event, to: tr.To})
	}
	return out
}

var _ core.Dispatcher = (*Machine[int])(nil)
