package events

import "time"

// EventType represents different types of events in the system
type EventType string

const (
	// Engine lifecycle
	EventTypeStatusChanged EventType = "engine.status_changed"
	EventTypeRunFinished   EventType = "engine.run_finished"
	EventTypeRunError      EventType = "engine.run_error"

	// Detection outcomes
	EventTypeActionPerformed EventType = "item.action_performed"
	EventTypeItemRejected    EventType = "item.rejected"
)

// Event represents a system event with metadata
type Event struct {
	Type      EventType
	Source    string // component that emitted the event (e.g. "worker")
	Timestamp time.Time
	Data      map[string]interface{}
}

// EventHandler is a function that processes an event
type EventHandler func(Event)

// SubscriptionID uniquely identifies a subscription
type SubscriptionID int64

// Bus defines the interface for event pub/sub
type Bus interface {
	Subscribe(eventType EventType, handler EventHandler) SubscriptionID
	Unsubscribe(id SubscriptionID)
	Publish(event Event)
	Stop()
}

// NewStatusChangedEvent reports a human-readable engine status line.
func NewStatusChangedEvent(source, text string) Event {
	return Event{
		Type:      EventTypeStatusChanged,
		Source:    source,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"text": text,
		},
	}
}

// NewActionPerformedEvent reports one completed purchase gesture.
func NewActionPerformedEvent(source, item string, price, boughtCount int) Event {
	return Event{
		Type:      EventTypeActionPerformed,
		Source:    source,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"item":         item,
			"price":        price,
			"bought_count": boughtCount,
		},
	}
}

// NewItemRejectedEvent reports an item dropped during template loading.
func NewItemRejectedEvent(source, item, reason string) Event {
	return Event{
		Type:      EventTypeItemRejected,
		Source:    source,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"item":   item,
			"reason": reason,
		},
	}
}

// NewRunFinishedEvent reports the end of a run and whether it stopped
// because every target quantity was reached.
func NewRunFinishedEvent(source string, allTargetsReached bool) Event {
	return Event{
		Type:      EventTypeRunFinished,
		Source:    source,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"all_targets_reached": allTargetsReached,
		},
	}
}

// NewRunErrorEvent reports a fatal run error.
func NewRunErrorEvent(source, message string) Event {
	return Event{
		Type:      EventTypeRunError,
		Source:    source,
		Timestamp: time.Now(),
		Data: map[string]interface{}{
			"message": message,
		},
	}
}
