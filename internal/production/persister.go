// Package production holds the optional, external-collaborator pieces
// that sit outside the core engine: the persistence adapter (C8) and
// event-bus forwarding. Grounded on the teacher's internal/core.Persister
// and internal/production/persister.go (JSONPersister/YAMLPersister),
// adapted from "persist a MachineSnapshot" to "call save(record) after a
// successful onEnter" per §4.8.
package production

import (
	"context"
	"fmt"
	"time"

	"github.com/statewire/statewire/internal/primitives"
)

// Record is what gets handed to the caller-supplied save function after
// each committed transition: the machine's ID plus enough of the
// transition to let save decide what changed. It carries no reference
// to a domain record, and Bind takes none.
type Record struct {
	MachineID string
	Event     primitives.EventID
	From      primitives.StateID
	To        primitives.StateID
	Args      []any
	Timestamp time.Time
}

// SaveFunc persists a Record. It is the portable rewrite of §9's
// suggested `{save(record): deferred}` interface — a plain function
// instead of a single-method interface, since Go favors that shape.
type SaveFunc func(context.Context, Record) error

// BindOption configures Bind.
type BindOption func(*bindConfig)

type bindConfig struct {
	saveAfterTransition bool
}

// WithSaveAfterTransition toggles the onEnter wrapping Bind installs
// (spec §4.8's "saveAfterTransition" flag, default true).
func WithSaveAfterTransition(enabled bool) BindOption {
	return func(c *bindConfig) { c.saveAfterTransition = enabled }
}

// Binder is the subset of statewire.Machine[C] that Bind needs: enough
// to read the declared transitions and late-bind wrapped ones back.
// Declared here as an interface so this package does not need to
// import the root statewire package.
type Binder[C any] interface {
	Transitions() []primitives.Transition[C]
	ReplaceTransitions([]primitives.Transition[C])
	ID() string
}

// Bind wraps every declared transition's onEnter so that, after the
// user's own onEnter completes successfully, save is awaited with a
// Record describing the just-committed transition (spec §4.8). The
// adapter never participates in guard evaluation and never mutates
// current — it only observes a transition that has already committed.
func Bind[C any](m Binder[C], save SaveFunc, opts ...BindOption) {
	cfg := bindConfig{saveAfterTransition: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if !cfg.saveAfterTransition {
		return
	}

	wrapped := make([]primitives.Transition[C], len(m.Transitions()))
	for i, tr := range m.Transitions() {
		tr := tr
		inner := tr.OnEnter
		tr.OnEnter = func(ctx context.Context, cell *primitives.ContextCell[C], args ...any) error {
			if inner != nil {
				if err := inner(ctx, cell, args...); err != nil {
					return err
				}
			}
			rec := Record{
				MachineID: m.ID(),
				Event:     tr.Event,
				From:      tr.From,
				To:        tr.To,
				Args:      args,
				Timestamp: time.Now(),
			}
			if err := save(ctx, rec); err != nil {
				return fmt.Errorf("statewire/production: persist after %s -> %s: %w", tr.From, tr.To, err)
			}
			return nil
		}
		wrapped[i] = tr
	}
	m.ReplaceTransitions(wrapped)
}
