// Package telemetry provides structured, leveled tracing of guard,
// enter, exit, and subscriber steps, opt-in via explicit wrapping at
// declaration time. Grounded on the teacher's
// internal/extensibility.LoggingActionRunner decorator-around-an-interface
// shape, upgraded from stdlib log.Printf to github.com/rs/zerolog.
package telemetry

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/statewire/statewire/internal/primitives"
)

// WrapGuard returns g decorated with one debug-level log event, written
// after g returns, naming the event the guard belongs to.
func WrapGuard[C any](log zerolog.Logger, event primitives.EventID, g primitives.Guard[C]) primitives.Guard[C] {
	if g == nil {
		return nil
	}
	return func(ctx context.Context, cell *primitives.ContextCell[C], args ...any) (bool, error) {
		start := time.Now()
		ok, err := g(ctx, cell, args...)
		log.Debug().
			Str("event", string(event)).
			Str("phase", "guard").
			Bool("admitted", ok).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("statewire: guard evaluated")
		return ok, err
	}
}

// WrapHandler returns h decorated with one debug-level log event, written
// after h returns, tagging phase ("enter", "exit", "subscriber") for the caller.
func WrapHandler[C any](log zerolog.Logger, event primitives.EventID, phase string, h primitives.Handler[C]) primitives.Handler[C] {
	if h == nil {
		return nil
	}
	return func(ctx context.Context, cell *primitives.ContextCell[C], args ...any) error {
		start := time.Now()
		err := h(ctx, cell, args...)
		log.Debug().
			Str("event", string(event)).
			Str("phase", phase).
			Dur("elapsed", time.Since(start)).
			Err(err).
			Msg("statewire: handler ran")
		return err
	}
}

// WrapTransition decorates every callback on tr with WrapGuard/WrapHandler
// under the given logger, leaving From/Event/To untouched.
func WrapTransition[C any](log zerolog.Logger, tr primitives.Transition[C]) primitives.Transition[C] {
	tr.Guard = WrapGuard(log, tr.Event, tr.Guard)
	tr.OnEnter = WrapHandler(log, tr.Event, "enter", tr.OnEnter)
	tr.OnExit = WrapHandler(log, tr.Event, "exit", tr.OnExit)
	return tr
}
