package core

import (
	"sync"

	"github.com/statewire/statewire/internal/primitives"
)

type subscription[C any] struct {
	id   int
	cb   primitives.Handler[C]
	once bool
}

// subscriptionRegistry is the ordered, per-event callback list of spec
// C2: on/once/off with stable per-event ordering (spec invariant 6).
//
// It owns a mutex independent of Engine.mu: the map is only ever locked
// around the bookkeeping steps (register, remove, once-trim), never
// while a callback is executing, so a subscriber that reentrantly calls
// Send (which itself fires subscribers) can never deadlock here.
type subscriptionRegistry[C any] struct {
	mu     sync.Mutex
	subs   map[primitives.EventID][]*subscription[C]
	nextID int
}

func newSubscriptionRegistry[C any]() *subscriptionRegistry[C] {
	return &subscriptionRegistry[C]{subs: make(map[primitives.EventID][]*subscription[C])}
}

func (r *subscriptionRegistry[C]) on(event primitives.EventID, cb primitives.Handler[C]) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.subs[event] = append(r.subs[event], &subscription[C]{id: id, cb: cb})
	return id
}

func (r *subscriptionRegistry[C]) once(event primitives.EventID, cb primitives.Handler[C]) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.subs[event] = append(r.subs[event], &subscription[C]{id: id, cb: cb, once: true})
	return id
}

// offToken removes the subscriber whose stable ID matches token (as
// returned by on/once) for event. The token is the subscription's own
// ID, not its current slice position — fire's once-trimming and prior
// offToken calls both shift positions, so a position-based token would
// drift onto the wrong entry after any removal. Go also cannot compare
// func values for equality, so a token is the only way to identify a
// specific registration at all.
func (r *subscriptionRegistry[C]) offToken(event primitives.EventID, token int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.subs[event]
	for i, s := range list {
		if s.id == token {
			r.subs[event] = append(list[:i:i], list[i+1:]...)
			return
		}
	}
}

// fire invokes every subscriber registered for event, in registration
// order, awaiting each in turn (spec §4.5 step 3). Any error aborts
// immediately without invoking later subscribers. once subscribers are
// removed once fired, regardless of outcome.
func (r *subscriptionRegistry[C]) fire(invoke func(primitives.Handler[C]) error, event primitives.EventID) error {
	r.mu.Lock()
	list := append([]*subscription[C](nil), r.subs[event]...)
	r.mu.Unlock()
	if len(list) == 0 {
		return nil
	}

	keep := list[:0:0]
	var firstErr error
	for i, s := range list {
		if firstErr != nil {
			keep = append(keep, list[i:]...)
			break
		}
		if err := invoke(s.cb); err != nil {
			firstErr = err
		}
		if !s.once {
			keep = append(keep, s)
		}
	}

	r.mu.Lock()
	r.subs[event] = keep
	r.mu.Unlock()
	return firstErr
}
