// Package recorder implements the active state recorder: an append-only log
// of pre-mutation configuration values, one snapshot per setup stage
// invocation. Snapshots are consumed later by the undo path, which replays
// them in reverse to restore the pre-import configuration.
package recorder

import (
	"context"

	"github.com/siteforge/demoimport/internal/logger"
)

// Namespace scopes one snapshot to the configuration area it covers.
type Namespace string

const (
	NamespaceFrontPage      Namespace = "front_page"
	NamespaceShopPage       Namespace = "shop_page"
	NamespacePaymentForm    Namespace = "payment_form"
	NamespaceCourseSettings Namespace = "course_settings"
)

// Snapshot holds the previous values of every setting a stage is about to
// overwrite. A nil entry value means the setting did not previously exist.
// Snapshots are never mutated after being recorded.
type Snapshot struct {
	Namespace Namespace      `json:"namespace"`
	Entries   map[string]any `json:"entries"`
}

// NewSnapshot creates an empty snapshot for the given namespace.
func NewSnapshot(ns Namespace) *Snapshot {
	return &Snapshot{Namespace: ns, Entries: make(map[string]any)}
}

// Put stores the previous value observed for key.
func (s *Snapshot) Put(key string, prev any) {
	s.Entries[key] = prev
}

// Empty reports whether the snapshot captured nothing.
func (s *Snapshot) Empty() bool {
	return s == nil || len(s.Entries) == 0
}

// Recorder persists snapshots. Record must be durable before it returns:
// a stage applies a mutation only after the prior value is recorded, never
// the reverse.
type Recorder interface {
	Record(ctx context.Context, snap Snapshot) error
}

// Sink is the durable write path behind a Service.
type Sink interface {
	Append(ctx context.Context, snap Snapshot) error
}

// Observer is notified after each durable write. The events publisher
// satisfies this; notification failures never fail the record.
type Observer interface {
	SnapshotRecorded(ctx context.Context, snap Snapshot)
}

// Service is the production Recorder: synchronous durable append, then
// observer notification.
type Service struct {
	sink     Sink
	observer Observer
	log      *logger.Logger
}

// NewService wires a Recorder around the durable sink. observer may be nil.
func NewService(sink Sink, observer Observer, log *logger.Logger) *Service {
	return &Service{sink: sink, observer: observer, log: log.WithComponent("recorder")}
}

// Record appends the snapshot to the durable sink and then notifies the
// observer. The sink write is required for correctness; the notification is
// best effort.
func (s *Service) Record(ctx context.Context, snap Snapshot) error {
	if err := s.sink.Append(ctx, snap); err != nil {
		return err
	}
	s.log.WithFields(map[string]any{"namespace": snap.Namespace, "entries": len(snap.Entries)}).Debug("recorded active state snapshot")
	if s.observer != nil {
		s.observer.SnapshotRecorded(ctx, snap)
	}
	return nil
}
