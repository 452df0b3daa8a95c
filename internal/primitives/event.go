// Package primitives provides the foundational data structures for the
// statewire engine: state/event identifiers, the generic context cell,
// and transition declarations. All implementations here use only the
// Go standard library; adapters and loaders in sibling packages may
// pull in third-party dependencies.
package primitives

// StateID names one member of a machine's finite state set.
type StateID string

// EventID names one member of a machine's finite event set.
type EventID string

// ReservedNames lists engine members that a declared StateID/EventID's
// synthesized accessor name must not collide with (spec C6).
var ReservedNames = map[string]struct{}{
	"send":             {},
	"can":              {},
	"is":               {},
	"on":               {},
	"off":              {},
	"once":             {},
	"current":          {},
	"context":          {},
	"history":          {},
	"addtransition":    {},
	"removetransition": {},
	"inject":           {},
}
