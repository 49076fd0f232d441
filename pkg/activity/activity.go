// Package activity defines the audit trail contract used by go-press
// services. Events describe content operations (post created, site built)
// and flow to pluggable notifiers such as the go-users sink adapter.
package activity

import (
	"context"
	"sync"
	"time"
)

// Event describes a notable operation performed by the engine.
type Event struct {
	// Verb names the action, e.g. "create", "publish", "build".
	Verb string
	// ActorID/UserID/TenantID carry optional UUID strings identifying who
	// triggered the action; adapters parse them when the backing store is
	// typed.
	ActorID  string
	UserID   string
	TenantID string
	// ObjectType and ObjectID point at the affected entity.
	ObjectType string
	ObjectID   string
	// ObjectSlug carries the human readable identifier when one exists.
	ObjectSlug string
	// Channel groups events by emitting surface; go-press uses "press".
	Channel string
	// DefinitionCode is a stable machine name like "post:publish".
	DefinitionCode string
	Recipients     []string
	Metadata       map[string]any
	OccurredAt     time.Time
}

// Notifier receives events emitted by services. Implementations must be safe
// for concurrent use.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NoOpNotifier drops all events.
type NoOpNotifier struct{}

// Notify implements Notifier.
func (NoOpNotifier) Notify(context.Context, Event) error { return nil }

// NewNoOp returns a notifier that drops all events.
func NewNoOp() Notifier { return NoOpNotifier{} }

// Recorder collects events in memory. It backs tests and the preview server's
// recent-activity endpoint.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder returns an empty in-memory recorder.
func NewRecorder() *Recorder { return &Recorder{} }

// Notify implements Notifier.
func (r *Recorder) Notify(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of the recorded events in emission order.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// FanOut forwards each event to every notifier, returning the first error.
type FanOut []Notifier

// Notify implements Notifier.
func (f FanOut) Notify(ctx context.Context, event Event) error {
	for _, n := range f {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, event); err != nil {
			return err
		}
	}
	return nil
}
