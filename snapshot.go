package statewire

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/statewire/statewire/internal/history"
)

// Snapshot is a serializable capture of one machine instance, adapted
// from the teacher's MachineSnapshot/Persister machinery (spec §10's
// supplemented feature): re-scoped from SCXML active-leaf-paths down to
// this spec's single current state, ContextCell, and History.
type Snapshot struct {
	MachineID   string          `json:"machineId" yaml:"machineId"`
	State       StateID         `json:"state" yaml:"state"`
	ContextData json.RawMessage `json:"context" yaml:"context"`
	Injected    map[string]any  `json:"injected" yaml:"injected"`
	History     []history.Entry `json:"history" yaml:"history"`
	Timestamp   time.Time       `json:"timestamp" yaml:"timestamp"`
}

// Snapshot captures the machine's current state, user context (encoded
// via encoding/json into ContextData), injected keys, and full history.
func (m *Machine[C]) Snapshot() (Snapshot, error) {
	data, err := json.Marshal(m.Ctx().Value())
	if err != nil {
		return Snapshot{}, fmt.Errorf("statewire: marshal context: %w", err)
	}
	return Snapshot{
		MachineID:   m.ID(),
		State:       m.Current(),
		ContextData: data,
		Injected:    m.Ctx().Snapshot(),
		History:     m.History(0),
		Timestamp:   time.Now(),
	}, nil
}

// SnapshotBytes implements internal/registry.Snapshotter: it JSON-encodes
// a full Snapshot (not just the user context) so a Registry can store and
// return it opaquely without needing to know C.
func (m *Machine[C]) SnapshotBytes() (machineID string, data []byte, err error) {
	snap, err := m.Snapshot()
	if err != nil {
		return "", nil, err
	}
	data, err = json.Marshal(snap)
	if err != nil {
		return "", nil, fmt.Errorf("statewire: marshal snapshot: %w", err)
	}
	return snap.MachineID, data, nil
}

// Restore rehydrates a machine's current state, user context, and
// injected keys from a Snapshot taken earlier. History is not replayed
// (it is descriptive, not authoritative over current/context): the
// machine keeps its own history log unchanged. Restore does not run any
// guard, onEnter, or onExit — it is a direct assignment, not a dispatch.
func (m *Machine[C]) Restore(snap Snapshot) error {
	if err := json.Unmarshal(snap.ContextData, m.Ctx().Value()); err != nil {
		return fmt.Errorf("statewire: unmarshal context: %w", err)
	}
	m.Ctx().Restore(snap.Injected)
	m.SetCurrent(snap.State)
	return nil
}
