// Package history implements the bounded FIFO event-history log (spec
// C3): a record of every committed transition a machine has made.
// Writes are append-only and happen only on committed transitions
// (spec invariant 5); reads expose the most recent n entries.
package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/statewire/statewire/internal/primitives"
)

// Entry is one committed transition (spec §3's "H"). ID is a stable
// identifier suitable as a persistence-adapter natural key, grounded on
// the teacher's MachineSnapshot/MachineMetadata pattern of tagging every
// recorded fact with a machine/transition identity.
type Entry struct {
	ID        string
	Event     primitives.EventID
	From      primitives.StateID
	To        primitives.StateID
	Args      []any
	Timestamp time.Time
}

// Log is a ring buffer of Entry. A Size of 0 means unbounded (spec §3:
// "default unlimited but truncatable via config").
type Log struct {
	entries []Entry
	size    int
}

// NewLog creates a Log capped at size entries (0 = unbounded).
func NewLog(size int) *Log {
	return &Log{size: size}
}

// Append records a committed transition, evicting the oldest entry first
// if the log is at capacity (spec §4.3: "truncation is FIFO").
func (l *Log) Append(event primitives.EventID, from, to primitives.StateID, args []any, at time.Time) Entry {
	e := Entry{
		ID:        uuid.NewString(),
		Event:     event,
		From:      from,
		To:        to,
		Args:      args,
		Timestamp: at,
	}
	l.entries = append(l.entries, e)
	if l.size > 0 && len(l.entries) > l.size {
		l.entries = l.entries[len(l.entries)-l.size:]
	}
	return e
}

// Recent returns the most recent n entries, oldest first. n <= 0
// returns the full log.
func (l *Log) Recent(n int) []Entry {
	if n <= 0 || n > len(l.entries) {
		n = len(l.entries)
	}
	out := make([]Entry, n)
	copy(out, l.entries[len(l.entries)-n:])
	return out
}

// Len returns the number of entries currently retained.
func (l *Log) Len() int {
	return len(l.entries)
}

// All is shorthand for Recent(0).
func (l *Log) All() []Entry {
	return l.Recent(0)
}
