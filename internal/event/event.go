// Package event defines the host's event unit as seen at the plugin
// boundary. The plugin core passes events through opaquely; only the
// host's own pipeline interprets them.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a queued host event.
// Events are immutable once created.
type Event struct {
	// ID uniquely identifies this event instance.
	ID uuid.UUID

	// Name is the event handler name (e.g. "connection_established").
	Name string

	// Args are the handler arguments; opaque to the plugin core.
	Args []any

	// Time is when the event was raised.
	Time time.Time
}

// New creates an event with a fresh ID and the current time.
func New(name string, args ...any) *Event {
	return &Event{
		ID:   uuid.New(),
		Name: name,
		Args: args,
		Time: time.Now(),
	}
}
