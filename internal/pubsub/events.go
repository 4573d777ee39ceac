// Package pubsub provides a generic publish/subscribe event system. The
// sheet publishes row lifecycle events on it and the logger fans out entries.
package pubsub

import (
	"context"
	"time"
)

// EventType represents the type of event being published.
type EventType string

const (
	RowInsertedEvent EventType = "row.inserted"
	RowUpdatedEvent  EventType = "row.updated"
	RowRemovedEvent  EventType = "row.removed"
	LoggedEvent      EventType = "logged"
)

// Event represents a published event with a typed payload. Seq increases by
// one per event published on the same broker.
type Event[T any] struct {
	Type      EventType
	Payload   T
	Seq       uint64
	Timestamp time.Time
}

// Subscriber provides a subscription channel for events.
type Subscriber[T any] interface {
	Subscribe(ctx context.Context, types ...EventType) <-chan Event[T]
}

// Publisher allows publishing events with a typed payload.
type Publisher[T any] interface {
	Publish(eventType EventType, payload T)
}
