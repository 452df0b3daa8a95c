package primitives

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type alarmCtx struct {
	Hour int
}

func TestContextCell_ValueIsShared(t *testing.T) {
	cell := NewContextCell(&alarmCtx{Hour: 12})

	cell.Value().Hour = 13
	require.Equal(t, 13, cell.Value().Hour)
}

func TestContextCell_InjectAndGet(t *testing.T) {
	cell := NewContextCell(&alarmCtx{})

	_, ok := cell.Get("db")
	assert.False(t, ok)

	cell.Inject("db", "conn")
	v, ok := cell.Get("db")
	require.True(t, ok)
	assert.Equal(t, "conn", v)

	cell.Inject("db", "conn2")
	v, _ = cell.Get("db")
	assert.Equal(t, "conn2", v)
}

func TestContextCell_SnapshotRestore(t *testing.T) {
	cell := NewContextCell(&alarmCtx{})
	cell.Inject("k1", 1)
	cell.Inject("k2", "two")

	snap := cell.Snapshot()
	assert.Len(t, snap, 2)

	other := NewContextCell(&alarmCtx{})
	other.Restore(snap)
	v, ok := other.Get("k2")
	require.True(t, ok)
	assert.Equal(t, "two", v)
}
