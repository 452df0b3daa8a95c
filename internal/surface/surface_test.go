package surface

import (
	"context"
	"testing"

	"github.com/statewire/statewire/internal/primitives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDispatcher struct {
	current primitives.StateID
	sent    []primitives.EventID
}

func (f *fakeDispatcher) Send(ctx context.Context, event primitives.EventID, args ...any) error {
	f.sent = append(f.sent, event)
	return nil
}

func (f *fakeDispatcher) Can(ctx context.Context, event primitives.EventID, args ...any) bool {
	return event == "clickMode"
}

func (f *fakeDispatcher) Is(state primitives.StateID) bool {
	return f.current == state
}

func TestMethodName(t *testing.T) {
	assert.Equal(t, "ClickMode", MethodName("clickMode"))
	assert.Equal(t, "Uploading", MethodName("uploading"))
	assert.Equal(t, "", MethodName(""))
}

func TestSurface_DoAndCanDo(t *testing.T) {
	d := &fakeDispatcher{current: "clock"}
	s, err := New(d, []primitives.EventID{"clickMode", "tick"}, []primitives.StateID{"clock", "bell"})
	require.NoError(t, err)

	assert.True(t, s.CanDo(context.Background(), "clickMode"))
	assert.False(t, s.CanDo(context.Background(), "tick"))

	require.NoError(t, s.Do(context.Background(), "clickMode"))
	assert.Equal(t, []primitives.EventID{"clickMode"}, d.sent)

	assert.True(t, s.Is("clock"))
	assert.False(t, s.Is("bell"))
}

func TestSurface_UnknownName(t *testing.T) {
	d := &fakeDispatcher{}
	s, err := New(d, nil, nil)
	require.NoError(t, err)
	assert.Error(t, s.Do(context.Background(), "nope"))
	assert.False(t, s.CanDo(context.Background(), "nope"))
	assert.False(t, s.Is("nope"))
}

func TestSurface_ReservedNameRejected(t *testing.T) {
	d := &fakeDispatcher{}
	_, err := New(d, []primitives.EventID{"send"}, nil)
	require.Error(t, err)
	var collision *primitives.NameCollisionError
	assert.ErrorAs(t, err, &collision)
}
