package loader

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/statewire/statewire/internal/primitives"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uploadCtx struct {
	URL string
}

const sampleYAML = `
initial: pending
historySize: 50
transitions:
  - from: [pending]
    event: start
    to: uploading
  - from: [uploading]
    event: finish
    to: completed
    guard: urlChanged
    onEnter: assignURL
`

func TestLoad_ParsesSpec(t *testing.T) {
	spec, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	assert.Equal(t, "pending", spec.Initial)
	assert.Equal(t, 50, spec.HistorySize)
	require.Len(t, spec.Transitions, 2)
	assert.Equal(t, "finish", spec.Transitions[1].Event)
	assert.Equal(t, "urlChanged", spec.Transitions[1].Guard)
}

func TestSave_RoundTrips(t *testing.T) {
	spec, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Save(&buf, spec))

	reloaded, err := Load(&buf)
	require.NoError(t, err)
	assert.Equal(t, spec, reloaded)
}

func TestRegistry_BuildResolvesRefs(t *testing.T) {
	spec, err := Load(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	reg := NewRegistry[uploadCtx]()
	reg.RegisterGuard("urlChanged", func(ctx context.Context, cell *primitives.ContextCell[uploadCtx], args ...any) (bool, error) {
		newURL := args[0].(string)
		return cell.Value().URL != newURL, nil
	})
	reg.RegisterOnEnter("assignURL", func(ctx context.Context, cell *primitives.ContextCell[uploadCtx], args ...any) error {
		cell.Value().URL = args[0].(string)
		return nil
	})

	trs, err := reg.Build(spec)
	require.NoError(t, err)
	require.Len(t, trs, 2)
	assert.Equal(t, primitives.StateID("pending"), trs[0].From)
	assert.NotNil(t, trs[1].Guard)
	assert.NotNil(t, trs[1].OnEnter)
}

func TestRegistry_BuildFailsOnUnregisteredRef(t *testing.T) {
	spec := &MachineSpec{
		Initial: "pending",
		Transitions: []TransitionSpec{
			{From: []string{"pending"}, Event: "start", To: "uploading", Guard: "missing"},
		},
	}
	reg := NewRegistry[uploadCtx]()
	_, err := reg.Build(spec)
	assert.Error(t, err)
}

func TestExpressionGuard(t *testing.T) {
	cell := primitives.NewContextCell(&uploadCtx{})
	cell.Inject("attempts", 2)

	g := ExpressionGuard[uploadCtx]("attempts < 3")
	ok, err := g(context.Background(), cell)
	require.NoError(t, err)
	assert.True(t, ok)

	g2 := ExpressionGuard[uploadCtx]("attempts < 3")
	cell.Inject("attempts", 5)
	ok2, _ := g2(context.Background(), cell)
	assert.False(t, ok2)
}
