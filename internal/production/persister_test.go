package production

import (
	"context"
	"testing"

	"github.com/statewire/statewire/internal/primitives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskCtx struct {
	Tags []string
}

type fakeBinder struct {
	id          string
	transitions []primitives.Transition[taskCtx]
}

func (f *fakeBinder) Transitions() []primitives.Transition[taskCtx] { return f.transitions }
func (f *fakeBinder) ReplaceTransitions(trs []primitives.Transition[taskCtx]) {
	f.transitions = trs
}
func (f *fakeBinder) ID() string { return f.id }

func TestBind_SavesAfterOnEnter(t *testing.T) {
	var entered bool
	b := &fakeBinder{
		id: "task-1",
		transitions: []primitives.Transition[taskCtx]{
			{
				From:  "inactive",
				Event: "activate",
				To:    "active",
				OnEnter: func(ctx context.Context, cell *primitives.ContextCell[taskCtx], args ...any) error {
					entered = true
					return nil
				},
			},
		},
	}

	var saved []Record
	Bind[taskCtx](b, func(ctx context.Context, r Record) error {
		saved = append(saved, r)
		return nil
	})

	require.Len(t, b.transitions, 1)
	err := b.transitions[0].OnEnter(context.Background(), primitives.NewContextCell(&taskCtx{}))
	require.NoError(t, err)

	assert.True(t, entered)
	require.Len(t, saved, 1)
	assert.Equal(t, "task-1", saved[0].MachineID)
	assert.Equal(t, primitives.StateID("active"), saved[0].To)
}

func TestBind_DisabledBySaveAfterTransitionFalse(t *testing.T) {
	b := &fakeBinder{
		id: "task-1",
		transitions: []primitives.Transition[taskCtx]{
			{From: "inactive", Event: "activate", To: "active"},
		},
	}
	original := b.transitions[0]

	Bind[taskCtx](b, func(ctx context.Context, r Record) error { return nil }, WithSaveAfterTransition(false))

	assert.Nil(t, b.transitions[0].OnEnter)
	assert.Equal(t, original, b.transitions[0])
}
