// Package events provides the pipeline's lifecycle hooks: an explicit
// ordered list of observers invoked synchronously at named checkpoints.
// Dispatch blocks until every handler runs, so external integrations observe
// a checkpoint before the pipeline moves past it.
package events

import (
	"context"
	"sync"

	"github.com/siteforge/demoimport/internal/logger"
	"github.com/siteforge/demoimport/internal/recorder"
)

// Pipeline checkpoints, in firing order. The post-stage checkpoints fire
// whether or not the stage had a payload to act on.
const (
	EventBeforeImport       = "import.before"
	EventAfterImport        = "import.after"
	EventFrontPageDone      = "frontpage.done"
	EventShopPagesDone      = "shoppages.done"
	EventPaymentFormsDone   = "paymentforms.done"
	EventCourseSettingsDone = "coursesettings.done"
	EventStateRecorded      = "state.recorded"
)

// Event is an immutable checkpoint notification.
type Event struct {
	Type    string
	Payload any
}

// Handler processes one event. Handlers should not panic; failures are
// surfaced via the returned error so the publisher can log and continue
// delivering to remaining subscribers.
type Handler func(ctx context.Context, event Event) error

// Publisher distributes checkpoint events to registered handlers in
// subscription order. Safe for concurrent use.
type Publisher struct {
	log  *logger.Logger
	mu   sync.RWMutex
	subs map[string][]Handler
}

// NewPublisher creates a publisher that logs each checkpoint as it fires.
func NewPublisher(log *logger.Logger) *Publisher {
	return &Publisher{
		log:  log.WithComponent("events"),
		subs: make(map[string][]Handler),
	}
}

// Subscribe registers a handler for the provided event type.
func (p *Publisher) Subscribe(eventType string, handler Handler) {
	if p == nil || handler == nil {
		return
	}
	p.mu.Lock()
	p.subs[eventType] = append(p.subs[eventType], handler)
	p.mu.Unlock()
}

// Publish delivers the event to every subscriber. Handler errors are logged
// and never propagate: hooks cannot fail a run.
func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil {
		return
	}

	p.mu.RLock()
	handlers := append([]Handler(nil), p.subs[event.Type]...)
	p.mu.RUnlock()

	p.log.WithFields(map[string]any{"event": event.Type}).Debug("checkpoint")

	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			p.log.WithFields(map[string]any{"event": event.Type}).Error(err, "event handler failed")
		}
	}
}

// SnapshotRecorded implements recorder.Observer, republishing every durable
// snapshot write as a state.recorded checkpoint.
func (p *Publisher) SnapshotRecorded(ctx context.Context, snap recorder.Snapshot) {
	p.Publish(ctx, Event{Type: EventStateRecorded, Payload: snap})
}

var _ recorder.Observer = (*Publisher)(nil)
