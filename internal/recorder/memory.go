package recorder

import (
	"context"
	"sync"
)

// Memory is an in-memory Recorder and Sink used by tests and one-shot runs
// that do not need durability.
type Memory struct {
	mu    sync.Mutex
	snaps []Snapshot
}

// NewMemory creates an empty in-memory recorder.
func NewMemory() *Memory {
	return &Memory{}
}

// Record appends the snapshot.
func (m *Memory) Record(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snaps = append(m.snaps, snap)
	return nil
}

// Append implements Sink.
func (m *Memory) Append(ctx context.Context, snap Snapshot) error {
	return m.Record(ctx, snap)
}

// Snapshots returns the recorded snapshots in record order.
func (m *Memory) Snapshots() []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Snapshot, len(m.snaps))
	copy(out, m.snaps)
	return out
}

// ByNamespace returns the snapshots recorded for one namespace.
func (m *Memory) ByNamespace(ns Namespace) []Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Snapshot
	for _, s := range m.snaps {
		if s.Namespace == ns {
			out = append(out, s)
		}
	}
	return out
}

var _ Recorder = (*Memory)(nil)
var _ Sink = (*Memory)(nil)
