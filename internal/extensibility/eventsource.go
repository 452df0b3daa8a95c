// Package extensibility holds optional drivers that feed external
// events into a machine's Send loop, adapted from the teacher's
// EventSource implementations (internal/extensibility/eventsource.go),
// generalized from the teacher's string-typed primitives.Event to this
// spec's EventID + variadic args shape.
package extensibility

import (
	"context"
	"time"

	"github.com/statewire/statewire/internal/primitives"
)

// Envelope is one external event waiting to be driven through Send.
type Envelope struct {
	Event primitives.EventID
	Args  []any
}

// EventSource produces a stream of external events, e.g. a timer tick
// or an upstream message bus. It mirrors the teacher's EventSource
// interface exactly (a single Events() accessor).
type EventSource interface {
	Events() <-chan Envelope
}

// ChannelEventSource adapts an existing channel of Envelope into an
// EventSource, for feeding hand-constructed events into Drive.
type ChannelEventSource struct {
	ch chan Envelope
}

// NewChannelEventSource wraps ch. The channel should be buffered if
// backpressure handling is needed.
func NewChannelEventSource(ch chan Envelope) *ChannelEventSource {
	return &ChannelEventSource{ch: ch}
}

// Events returns the receive-only view of the wrapped channel.
func (s *ChannelEventSource) Events() <-chan Envelope { return s.ch }

// TimerEventSource emits the same event on every tick of a time.Ticker,
// grounded on the teacher's TimerEventSource — the generator behind the
// alarm clock example's repeated `tick` events.
type TimerEventSource struct {
	ch     chan Envelope
	event  primitives.EventID
	ticker *time.Ticker
	stop   chan struct{}
}

// NewTimerEventSource starts emitting event every d until Stop is
// called.
func NewTimerEventSource(event primitives.EventID, d time.Duration) *TimerEventSource {
	t := &TimerEventSource{
		ch:     make(chan Envelope, 16),
		event:  event,
		ticker: time.NewTicker(d),
		stop:   make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *TimerEventSource) run() {
	for {
		select {
		case <-t.ticker.C:
			select {
			case t.ch <- Envelope{Event: t.event}:
			default:
			}
		case <-t.stop:
			t.ticker.Stop()
			close(t.ch)
			return
		}
	}
}

// Events returns the event channel.
func (t *TimerEventSource) Events() <-chan Envelope { return t.ch }

// Stop halts the ticker and closes the event channel.
func (t *TimerEventSource) Stop() { close(t.stop) }

// Sender is the subset of statewire.Machine[C] Drive needs.
type Sender interface {
	Send(ctx context.Context, event primitives.EventID, args ...any) error
}

// Drive reads from src until ctx is done or the source's channel
// closes, calling Send for each envelope. Send errors are swallowed
// (the caller can still observe outcomes via the machine's own
// subscribers/History) since a single bad tick should not stop the
// driver loop — mirroring how the teacher's realtime dispatch loop
// logged and continued rather than aborting on one handler failure.
func Drive(ctx context.Context, dst Sender, src EventSource) {
	for {
		select {
		case <-ctx.Done():
			return
		case env, ok := <-src.Events():
			if !ok {
				return
			}
			_ = dst.Send(ctx, env.Event, env.Args...)
		}
	}
}
