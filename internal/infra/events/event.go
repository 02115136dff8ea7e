package events

import (
	"time"

	"github.com/google/uuid"
)

// Event is implemented by every event published on the Bus.
type Event interface {
	// EventID returns the unique identifier for this event instance.
	EventID() uuid.UUID

	// EventType returns the dispatch key, e.g. "payment.completed".
	EventType() string

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() uuid.UUID

	// AggregateType returns the type of aggregate (e.g., "order").
	AggregateType() string
}
