package statewire

import "github.com/rs/zerolog"

// Option configures a Config[C] before New builds the machine, the Go
// realization of §9's construction-time configuration surface.
// Grounded on the teacher's internal/core/options.go functional-options
// pattern (WithActionRunner, WithPersister, ...), generalized over C.
type Option[C any] func(*Config[C])

// WithLogger turns on structured debug logging (internal/telemetry) for
// every guard, onEnter, onExit and subscriber declared at construction
// time. §2.2's ambient logging stack is opt-in: a Machine built without
// this option never touches zerolog.
func WithLogger[C any](log zerolog.Logger) Option[C] {
	return func(cfg *Config[C]) {
		cfg.Logger = &log
	}
}

// WithHistorySize caps the retained history log (spec §3's "H", ring
// buffer of configurable capacity). 0 means unbounded.
func WithHistorySize[C any](size int) Option[C] {
	return func(cfg *Config[C]) {
		cfg.HistorySize = size
	}
}

// WithSubscription pre-registers a callback for event at construction
// time, equivalent to calling Machine.On immediately after New returns.
func WithSubscription[C any](event EventID, cb Handler[C]) Option[C] {
	return func(cfg *Config[C]) {
		if cfg.Subscriptions == nil {
			cfg.Subscriptions = make(map[EventID][]Handler[C])
		}
		cfg.Subscriptions[event] = append(cfg.Subscriptions[event], cb)
	}
}

// WithDeclarations appends set-valued-from shorthand declarations (spec
// §6's "accepted shorthands") to the config.
func WithDeclarations[C any](decls ...Declaration[C]) Option[C] {
	return func(cfg *Config[C]) {
		cfg.Declarations = append(cfg.Declarations, decls...)
	}
}
