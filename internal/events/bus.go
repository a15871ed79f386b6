package events

import (
	"log/slog"
	"sync"
	"time"
)

// subscription represents a single event subscription
type subscription struct {
	id      SubscriptionID
	handler EventHandler
}

// DefaultBus is the default implementation of Bus. Events are queued on
// a buffered channel and dispatched by a single goroutine, so handlers
// for one subscriber observe events in publish order.
type DefaultBus struct {
	subscribers map[EventType][]subscription
	mu          sync.RWMutex

	queue    chan Event
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	nextSubID SubscriptionID
	logger    *slog.Logger
}

// NewBus creates a bus with the specified queue buffer size and starts
// its dispatcher.
func NewBus(bufferSize int, logger *slog.Logger) *DefaultBus {
	bus := &DefaultBus{
		subscribers: make(map[EventType][]subscription),
		queue:       make(chan Event, bufferSize),
		stopCh:      make(chan struct{}),
		nextSubID:   1,
		logger:      logger,
	}

	bus.wg.Add(1)
	go bus.process()

	return bus
}

// Subscribe registers a handler for a specific event type
func (b *DefaultBus) Subscribe(eventType EventType, handler EventHandler) SubscriptionID {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSubID
	b.nextSubID++

	b.subscribers[eventType] = append(b.subscribers[eventType], subscription{
		id:      id,
		handler: handler,
	})
	return id
}

// Unsubscribe removes a subscription by ID
func (b *DefaultBus) Unsubscribe(id SubscriptionID) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for eventType, subs := range b.subscribers {
		for i, sub := range subs {
			if sub.id == id {
				b.subscribers[eventType] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

// Publish queues an event for dispatch. It blocks only while the queue
// buffer is full; after Stop the event is dropped.
func (b *DefaultBus) Publish(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	select {
	case b.queue <- event:
	case <-b.stopCh:
		if b.logger != nil {
			b.logger.Warn("event dropped, bus stopped", "type", event.Type)
		}
	}
}

// Stop stops the bus and drains remaining events. Safe to call more
// than once.
func (b *DefaultBus) Stop() {
	b.stopOnce.Do(func() { close(b.stopCh) })
	b.wg.Wait()
}

func (b *DefaultBus) process() {
	defer b.wg.Done()

	for {
		select {
		case event := <-b.queue:
			b.dispatch(event)
		case <-b.stopCh:
			for {
				select {
				case event := <-b.queue:
					b.dispatch(event)
				default:
					return
				}
			}
		}
	}
}

func (b *DefaultBus) dispatch(event Event) {
	b.mu.RLock()
	subs := b.subscribers[event.Type]
	handlers := make([]EventHandler, len(subs))
	for i, sub := range subs {
		handlers[i] = sub.handler
	}
	b.mu.RUnlock()

	for _, handler := range handlers {
		b.safeCall(handler, event)
	}
}

func (b *DefaultBus) safeCall(handler EventHandler, event Event) {
	defer func() {
		if r := recover(); r != nil {
			if b.logger != nil {
				b.logger.Error("event handler panicked", "type", event.Type, "panic", r)
			}
		}
	}()
	handler(event)
}
