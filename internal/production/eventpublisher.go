package production

import (
	"context"

	"github.com/statewire/statewire/internal/primitives"
)

// PublishedTransition bundles a committed transition with its owning
// machine ID for an out-of-process observer (spec §10's supplemented
// event-bus forwarding), independent of the in-process subscription bus
// (C2).
type PublishedTransition struct {
	MachineID string
	Event     primitives.EventID
	From      primitives.StateID
	To        primitives.StateID
}

// ChannelPublisher forwards committed transitions to a Go channel,
// adapted from the teacher's production.ChannelPublisher: a non-blocking
// publish that drops on backpressure rather than stalling the machine
// that produced the event.
type ChannelPublisher struct {
	ch chan<- PublishedTransition
}

// NewChannelPublisher creates a ChannelPublisher writing to ch.
func NewChannelPublisher(ch chan<- PublishedTransition) *ChannelPublisher {
	return &ChannelPublisher{ch: ch}
}

// Publish sends t without blocking: it returns nil and drops t when the
// channel has no room, and returns ctx's error when ctx is done. It is
// not a Handler[C], so it is not registered with Machine.On directly;
// the caller builds the PublishedTransition and calls Publish.
func (p *ChannelPublisher) Publish(ctx context.Context, t PublishedTransition) error {
	select {
	case p.ch <- t:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Close closes the underlying channel. Callers must not Publish after
// calling Close.
func (p *ChannelPublisher) Close() error {
	close(p.ch)
	return nil
}
