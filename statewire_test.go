package statewire_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/statewire/statewire"
	"github.com/statewire/statewire/internal/core"
)

type widgetCtx struct {
	Order []string
}

const (
	stateA statewire.StateID = "a"
	stateB statewire.StateID = "b"

	eventGo statewire.EventID = "go"
)

// A freshly built machine starts at Initial with empty history and
// hands back the caller's own context by reference.
func TestInitialState(t *testing.T) {
	ctxVal := &widgetCtx{}
	m, err := statewire.New(statewire.Config[widgetCtx]{
		Initial: stateA,
		Context: ctxVal,
		Declarations: []statewire.Declaration[widgetCtx]{
			{From: []statewire.StateID{stateA}, Event: eventGo, To: stateB},
		},
	})
	require.NoError(t, err)

	require.Equal(t, stateA, m.Current())
	require.Empty(t, m.History(0))
	require.Same(t, ctxVal, m.Ctx().Value())
}

// Sending a declared event drives the machine to the declared target state.
func TestTransitionClosure(t *testing.T) {
	m := newAtoB(t, nil)
	require.NoError(t, m.Send(context.Background(), eventGo))
	require.Equal(t, stateB, m.Current())
}

// A guard returning false rejects the transition outright: state and
// history are left untouched.
func TestGuardVeto(t *testing.T) {
	m, err := statewire.New(statewire.Config[widgetCtx]{
		Initial: stateA,
		Context: &widgetCtx{},
		Declarations: []statewire.Declaration[widgetCtx]{
			{
				From:  []statewire.StateID{stateA},
				Event: eventGo,
				To:    stateB,
				Guard: func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) (bool, error) {
					return false, nil
				},
			},
		},
	})
	require.NoError(t, err)

	err = m.Send(context.Background(), eventGo)
	require.Error(t, err)
	var rejected *statewire.GuardRejectedError
	require.ErrorAs(t, err, &rejected)
	require.Equal(t, stateA, m.Current())
	require.Empty(t, m.History(0))
}

// When more than one declaration matches an event, the first one whose
// guard returns true wins; declaration order is the tiebreaker.
func TestDeclarationOrderFirstTruthyWins(t *testing.T) {
	const stateC statewire.StateID = "c"
	m, err := statewire.New(statewire.Config[widgetCtx]{
		Initial: stateA,
		Context: &widgetCtx{},
		Declarations: []statewire.Declaration[widgetCtx]{
			{
				From:  []statewire.StateID{stateA},
				Event: eventGo,
				To:    stateB,
				Guard: func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) (bool, error) {
					return true, nil
				},
			},
			{
				From:  []statewire.StateID{stateA},
				Event: eventGo,
				To:    stateC,
				Guard: func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) (bool, error) {
					return true, nil
				},
			},
		},
	})
	require.NoError(t, err)

	require.NoError(t, m.Send(context.Background(), eventGo))
	require.Equal(t, stateB, m.Current())
}

// onExit of the source state runs, then current state updates, then
// onEnter of the target state runs.
func TestHandlerOrder(t *testing.T) {
	order := &widgetCtx{}
	m, err := statewire.New(statewire.Config[widgetCtx]{
		Initial: stateA,
		Context: order,
		Declarations: []statewire.Declaration[widgetCtx]{
			{
				From:  []statewire.StateID{stateA},
				Event: eventGo,
				To:    stateB,
				OnExit: func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) error {
					cell.Value().Order = append(cell.Value().Order, "exit:"+string(m.Current()))
					return nil
				},
				OnEnter: func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) error {
					cell.Value().Order = append(cell.Value().Order, "enter:"+string(m.Current()))
					return nil
				},
			},
		},
	})
	require.NoError(t, err)

	require.NoError(t, m.Send(context.Background(), eventGo))
	require.Equal(t, []string{"exit:a", "enter:b"}, order.Order)
}

// Subscribers registered with On fire in registration order, before the
// matched transition's own onExit.
func TestSubscriberOrdering(t *testing.T) {
	order := &widgetCtx{}
	m, err := statewire.New(statewire.Config[widgetCtx]{
		Initial: stateA,
		Context: order,
		Declarations: []statewire.Declaration[widgetCtx]{
			{
				From:  []statewire.StateID{stateA},
				Event: eventGo,
				To:    stateB,
				OnExit: func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) error {
					cell.Value().Order = append(cell.Value().Order, "exit")
					return nil
				},
			},
		},
	})
	require.NoError(t, err)

	m.On(eventGo, func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) error {
		cell.Value().Order = append(cell.Value().Order, "sub1")
		return nil
	})
	m.On(eventGo, func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) error {
		cell.Value().Order = append(cell.Value().Order, "sub2")
		return nil
	})

	require.NoError(t, m.Send(context.Background(), eventGo))
	require.Equal(t, []string{"sub1", "sub2", "exit"}, order.Order)
}

// Every participant of one dispatch — subscribers, onExit, onEnter — is
// handed the same *ContextCell.
func TestContextIdentity(t *testing.T) {
	var seen []*statewire.ContextCell[widgetCtx]
	m, err := statewire.New(statewire.Config[widgetCtx]{
		Initial: stateA,
		Context: &widgetCtx{},
		Declarations: []statewire.Declaration[widgetCtx]{
			{
				From:  []statewire.StateID{stateA},
				Event: eventGo,
				To:    stateB,
				OnExit: func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) error {
					seen = append(seen, cell)
					return nil
				},
				OnEnter: func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) error {
					seen = append(seen, cell)
					return nil
				},
			},
		},
	})
	require.NoError(t, err)
	m.On(eventGo, func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) error {
		seen = append(seen, cell)
		return nil
	})

	require.NoError(t, m.Send(context.Background(), eventGo))
	require.Len(t, seen, 3)
	for _, cell := range seen {
		require.Same(t, seen[0], cell)
	}
}

// The dynamic surface synthesizes Do/CanDo/Is from declared event and
// state names.
func TestSynthesizedNames(t *testing.T) {
	m := newAtoB(t, nil)
	s := m.Surface()

	require.True(t, s.Is("a"))
	require.True(t, s.CanDo(context.Background(), "go"))
	require.NoError(t, s.Do(context.Background(), "go"))
	require.True(t, s.Is("b"))
}

// addTransition/removeTransition take effect on the very next send.
func TestLateBinding(t *testing.T) {
	m := newAtoB(t, nil)
	ctx := context.Background()

	const eventBack statewire.EventID = "back"
	require.Error(t, m.Send(ctx, eventBack))

	require.NoError(t, m.AddTransitionSynced(statewire.Transition[widgetCtx]{From: stateB, Event: eventBack, To: stateA}))
	require.NoError(t, m.Send(ctx, eventGo)) // noop path not needed; move forward first
	require.Equal(t, stateB, m.Current())
	require.NoError(t, m.Send(ctx, eventBack))
	require.Equal(t, stateA, m.Current())

	require.NoError(t, m.RemoveTransitionSynced(stateB, eventBack))
	require.NoError(t, m.Send(ctx, eventGo))
	require.Error(t, m.Send(ctx, eventBack))
}

// Name collision at construction (spec §4.6, §7).
func TestNameCollisionAtConstruction(t *testing.T) {
	const collidingEvent statewire.EventID = "send"
	_, err := statewire.New(statewire.Config[widgetCtx]{
		Initial: stateA,
		Context: &widgetCtx{},
		Declarations: []statewire.Declaration[widgetCtx]{
			{From: []statewire.StateID{stateA}, Event: collidingEvent, To: stateB},
		},
	})
	require.Error(t, err)
	var collision *statewire.NameCollisionError
	require.ErrorAs(t, err, &collision)
}

// E5 — unknown event.
func TestUnknownEventDoesNotMutateSubscribers(t *testing.T) {
	m := newAtoB(t, nil)
	fired := false
	m.On(eventGo, func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) error {
		fired = true
		return nil
	})

	err := m.Send(context.Background(), statewire.EventID("nope"))
	require.Error(t, err)
	var unknown *statewire.UnknownEventError
	require.ErrorAs(t, err, &unknown)
	require.False(t, fired)

	// the subscriber is still registered and fires on a real dispatch
	require.NoError(t, m.Send(context.Background(), eventGo))
	require.True(t, fired)
}

// E6 — nested cascade: parent and child both declare event e; sending it
// on the parent drives both, and both histories gain one entry.
func TestNestedCascade(t *testing.T) {
	child, err := statewire.New(statewire.Config[widgetCtx]{
		Initial: stateA,
		Context: &widgetCtx{},
		Declarations: []statewire.Declaration[widgetCtx]{
			{From: []statewire.StateID{stateA}, Event: eventGo, To: stateB},
		},
	})
	require.NoError(t, err)

	parent, err := statewire.New(statewire.Config[widgetCtx]{
		Initial: stateA,
		Context: &widgetCtx{},
		Declarations: []statewire.Declaration[widgetCtx]{
			{From: []statewire.StateID{stateA}, Event: eventGo, To: stateB},
		},
	})
	require.NoError(t, err)

	require.NoError(t, parent.Attach("child", core.Dispatcher(child)))

	require.NoError(t, parent.Send(context.Background(), eventGo))
	require.Equal(t, stateB, parent.Current())
	require.Equal(t, stateB, child.Current())
	require.Len(t, parent.History(0), 1)
	require.Len(t, child.History(0), 1)
}

// Attaching a child to itself is rejected as a cycle (spec §4.7, §7).
func TestAttachSelfCycleRejected(t *testing.T) {
	m := newAtoB(t, nil)
	err := m.Attach("self", core.Dispatcher(m))
	require.Error(t, err)
	var cycle *statewire.CycleError
	require.ErrorAs(t, err, &cycle)
}

// Once fires its callback exactly once, then the subscriber is gone.
func TestOnceFiresExactlyOnce(t *testing.T) {
	m := newAtoB(t, nil)
	calls := 0
	m.Once(eventGo, func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) error {
		calls++
		return nil
	})

	require.NoError(t, m.Send(context.Background(), eventGo))
	require.Equal(t, 1, calls)

	// Cycle back to a and send eventGo again; the once subscriber must
	// not fire a second time.
	require.NoError(t, m.AddTransitionSynced(statewire.Transition[widgetCtx]{From: stateB, Event: eventGo, To: stateA}))
	require.NoError(t, m.Send(context.Background(), eventGo))
	require.Equal(t, 1, calls)
}

// Off removes the subscriber identified by the token On/Once returned,
// even after other subscriptions have churned — a regression test for
// the stable subscription-ID fix (a slice-position token would drift
// once any prior subscriber was removed).
func TestOffRemovesByStableToken(t *testing.T) {
	m := newAtoB(t, nil)
	var fired []string

	token1 := m.On(eventGo, func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) error {
		fired = append(fired, "first")
		return nil
	})
	m.On(eventGo, func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) error {
		fired = append(fired, "second")
		return nil
	})
	token3 := m.Once(eventGo, func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) error {
		fired = append(fired, "third")
		return nil
	})

	require.NoError(t, m.AddTransitionSynced(statewire.Transition[widgetCtx]{From: stateB, Event: eventGo, To: stateA}))

	// First dispatch: all three fire, and the once subscriber (third)
	// is trimmed from the list afterward, shifting what would have been
	// stale slice-position tokens.
	require.NoError(t, m.Send(context.Background(), eventGo))
	require.Equal(t, []string{"first", "second", "third"}, fired)

	// Removing token1 now, after the once-trim already reshuffled the
	// slice, must still remove "first" specifically.
	m.Off(eventGo, token1)
	fired = nil
	require.NoError(t, m.Send(context.Background(), eventGo))
	require.Equal(t, []string{"second"}, fired)

	// token3 belonged to the already-consumed once subscriber; removing
	// it again is a no-op, not a panic or an accidental removal of
	// "second".
	m.Off(eventGo, token3)
	fired = nil
	require.NoError(t, m.Send(context.Background(), eventGo))
	require.Equal(t, []string{"second"}, fired)
}

// WithLogger wraps every guard/onEnter/onExit with structured debug
// logging, so running the declared onEnter leaves a log line.
func TestWithLoggerWrapsTransitions(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.DebugLevel)

	m, err := statewire.New(statewire.Config[widgetCtx]{
		Initial: stateA,
		Context: &widgetCtx{},
		Declarations: []statewire.Declaration[widgetCtx]{
			{
				From:  []statewire.StateID{stateA},
				Event: eventGo,
				To:    stateB,
				OnEnter: func(ctx context.Context, cell *statewire.ContextCell[widgetCtx], args ...any) error {
					return nil
				},
			},
		},
	}, statewire.WithLogger[widgetCtx](log))
	require.NoError(t, err)

	require.NoError(t, m.Send(context.Background(), eventGo))
	require.Equal(t, stateB, m.Current())
	require.Contains(t, buf.String(), "statewire: handler ran")
}

func newAtoB(t *testing.T, ctxVal *widgetCtx) *statewire.Machine[widgetCtx] {
	t.Helper()
	if ctxVal == nil {
		ctxVal = &widgetCtx{}
	}
	m, err := statewire.New(statewire.Config[widgetCtx]{
		Initial: stateA,
		Context: ctxVal,
		Declarations: []statewire.Declaration[widgetCtx]{
			{From: []statewire.StateID{stateA}, Event: eventGo, To: stateB},
		},
	})
	require.NoError(t, err)
	return m
}
