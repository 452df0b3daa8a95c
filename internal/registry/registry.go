// Package registry adapts the teacher's core.Registry
// (Register/Latest/Version/ListVersions) into a versioned store of
// statewire.Snapshot values keyed by machine ID — a production add-on
// for a long-lived machine, covering §10.
package registry

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/google/uuid"
)

var (
	// ErrNotFound matches the teacher's registry.go sentinel of the same
	// name: no machine or version exists under the given key.
	ErrNotFound = errors.New("statewire/registry: version or machine not found")
	// ErrExists matches the teacher's sentinel of the same name. No
	// Registry method returns it: Register always generates a fresh
	// version label.
	ErrExists = errors.New("statewire/registry: version already exists")
)

// Snapshotter is the subset of statewire.Machine[C] the registry needs;
// kept non-generic (mirroring Dispatcher in internal/core) so one
// Registry can hold machines of differing context types.
type Snapshotter interface {
	SnapshotBytes() (machineID string, data []byte, err error)
}

// entry pairs a version label with its serialized snapshot.
type entry struct {
	version string
	data    []byte
}

// Registry stores versioned snapshots in memory, newest last per
// machine ID. It is an in-process analogue of the teacher's Registry
// interface — a durable implementation would swap this slice for a
// database table keyed by (machineID, version).
type Registry struct {
	mu       sync.Mutex
	versions map[string][]entry
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{versions: make(map[string][]entry)}
}

// Register snapshots s and stores it under a newly generated version
// label, matching the teacher's Register(ctx, machineID, snapshot).
func (r *Registry) Register(ctx context.Context, s Snapshotter) (version string, err error) {
	machineID, data, err := s.SnapshotBytes()
	if err != nil {
		return "", err
	}
	version = uuid.NewString()
	r.mu.Lock()
	defer r.mu.Unlock()
	r.versions[machineID] = append(r.versions[machineID], entry{version: version, data: data})
	return version, nil
}

// Latest returns the most recently registered snapshot for machineID.
func (r *Registry) Latest(ctx context.Context, machineID string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.versions[machineID]
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	return list[len(list)-1].data, nil
}

// Version returns the snapshot registered under the given version
// label for machineID.
func (r *Registry) Version(ctx context.Context, machineID, version string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, e := range r.versions[machineID] {
		if e.version == version {
			return e.data, nil
		}
	}
	return nil, ErrNotFound
}

// ListVersions returns every version label registered for machineID,
// newest first.
func (r *Registry) ListVersions(ctx context.Context, machineID string) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.versions[machineID]
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	out := make([]string, len(list))
	for i, e := range list {
		out[len(list)-1-i] = e.version
	}
	return out, nil
}

// ListMachines returns every machine ID with at least one registered
// snapshot, sorted for deterministic output.
func (r *Registry) ListMachines(ctx context.Context) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.versions))
	for id := range r.versions {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
