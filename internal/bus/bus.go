// Package bus provides event bus implementations for benchmark run
// lifecycle events.
package bus

import (
	"context"
	"time"
)

// Handler is a function that handles events.
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for event bus implementations.
type Bus interface {
	// Publish publishes an event to a topic.
	Publish(ctx context.Context, topic string, event Event) error

	// Subscribe subscribes to events on a topic.
	Subscribe(ctx context.Context, topic string, handler Handler) error

	// Close closes the bus and releases resources.
	Close() error
}

// Event represents a bus event.
type Event struct {
	// ID is the unique event identifier.
	ID string `json:"id"`

	// Type is the event type (e.g., "pair.graded").
	Type string `json:"type"`

	// RunID identifies the benchmark run that produced the event.
	RunID string `json:"run_id"`

	// Timestamp is when the event was created.
	Timestamp int64 `json:"timestamp"`

	// Payload contains the event data.
	Payload any `json:"payload"`
}

// NewEvent creates an event stamped with the current time.
func NewEvent(id, eventType, runID string, payload any) Event {
	return Event{
		ID:        id,
		Type:      eventType,
		RunID:     runID,
		Timestamp: time.Now().UnixNano(),
		Payload:   payload,
	}
}

// Topics for benchmark run events.
const (
	TopicRunStarted   = "bench.run.started"
	TopicRunFinished  = "bench.run.finished"
	TopicPairGraded   = "bench.pair.graded"
	TopicSearchFailed = "bench.search.failed"
)
