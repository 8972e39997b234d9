package events

import (
	"image"
	"time"
)

// EventType represents different types of events in the system
type EventType string

const (
	// Diagnostics
	EventTypeLogLine EventType = "log.line"

	// Capture target selection
	EventTypeTargetPicked EventType = "target.picked"

	// Recognition cycle events
	EventTypeCycleStarted EventType = "cycle.started"
	EventTypeCycleUpdated EventType = "cycle.updated"
	EventTypeCycleSettled EventType = "cycle.settled"
	EventTypeCycleFailed  EventType = "cycle.failed"
)

// Event represents a system event with metadata
type Event struct {
	Type      EventType              // Type of event
	Source    string                 // Component that emitted event (e.g., "coordinator", "picker")
	Timestamp time.Time              // When the event occurred
	Data      map[string]interface{} // Event-specific data
}

// EventHandler is a function that processes an event
type EventHandler func(Event)

// SubscriptionID uniquely identifies a subscription
type SubscriptionID int64

// Publisher is the producer side of the bus; workers only ever see this
type Publisher interface {
	Publish(event Event)
}

// EventBus defines the interface for event pub/sub
type EventBus interface {
	Publisher

	// Subscribe registers a handler for a specific event type
	Subscribe(eventType EventType, handler EventHandler) SubscriptionID

	// Unsubscribe removes a subscription by ID
	Unsubscribe(id SubscriptionID)

	// Stop stops the event bus and drains remaining events
	Stop()
}

// DisplayUpdate is the combined view of one cycle after a merge.
// Nil fields are slots that are still pending or resolved to not found.
type DisplayUpdate struct {
	Epoch       uint64
	CycleID     string
	Slot        string            // slot whose completion produced this update
	Summary     string            // that slot's result string
	Summaries   map[string]string // every filled slot, keyed by slot name
	Point       *image.Point
	FastBox     *image.Rectangle
	AccurateBox *image.Rectangle
	Preview     image.Image
	Settled     bool
}

// Helper functions to create common events

// NewLogLineEvent creates a log line event for the presentation log pane
func NewLogLineEvent(line string) Event {
	return Event{
		Type:      EventTypeLogLine,
		Source:    "logging",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"line": line,
		},
	}
}

// NewTargetPickedEvent creates a target picked event
func NewTargetPickedEvent(description string) Event {
	return Event{
		Type:      EventTypeTargetPicked,
		Source:    "picker",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"target": description,
		},
	}
}

// NewCycleStartedEvent creates a cycle started event
func NewCycleStartedEvent(epoch uint64, cycleID string, width, height int, fingerprint string) Event {
	return Event{
		Type:      EventTypeCycleStarted,
		Source:    "coordinator",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"epoch":       epoch,
			"cycle_id":    cycleID,
			"width":       width,
			"height":      height,
			"fingerprint": fingerprint,
		},
	}
}

// NewCycleFailedEvent creates a cycle failed event
func NewCycleFailedEvent(epoch uint64, err error) Event {
	return Event{
		Type:      EventTypeCycleFailed,
		Source:    "coordinator",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"epoch": epoch,
			"error": err.Error(),
		},
	}
}

// NewCycleUpdatedEvent creates a progressive display update event
func NewCycleUpdatedEvent(update DisplayUpdate) Event {
	eventType := EventTypeCycleUpdated
	if update.Settled {
		eventType = EventTypeCycleSettled
	}
	return Event{
		Type:      eventType,
		Source:    "coordinator",
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"epoch":  update.Epoch,
			"slot":   update.Slot,
			"update": update,
		},
	}
}

// UpdateFrom extracts the DisplayUpdate carried by a cycle event
func UpdateFrom(event Event) (DisplayUpdate, bool) {
	update, ok := event.Data["update"].(DisplayUpdate)
	return update, ok
}

// LineFrom extracts the text of a log line event
func LineFrom(event Event) string {
	line, _ := event.Data["line"].(string)
	return line
}
