package gui

import (
	"sync"
	"time"

	"fyne.io/fyne/v2"

	"jordanella.com/hshj-locator/internal/events"
)

// UIQueue carries pipeline events to the Fyne thread. Bus handlers only
// enqueue; a ticker drains the queue and dispatches inside fyne.Do, so
// widgets are never touched from worker goroutines.
type UIQueue struct {
	events   chan events.Event
	handlers map[events.EventType][]events.EventHandler
	mu       sync.RWMutex
	stopCh   chan struct{}
	stopOnce sync.Once
	dropped  int
	subs     []events.SubscriptionID
	bus      events.EventBus
}

// NewUIQueue creates a queue with room for size pending events
func NewUIQueue(size int) *UIQueue {
	return &UIQueue{
		events:   make(chan events.Event, size),
		handlers: make(map[events.EventType][]events.EventHandler),
		stopCh:   make(chan struct{}),
	}
}

// Handle registers a UI-thread handler for an event type
func (q *UIQueue) Handle(eventType events.EventType, handler events.EventHandler) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[eventType] = append(q.handlers[eventType], handler)
}

// Attach forwards every handled event type from bus into the queue
func (q *UIQueue) Attach(bus events.EventBus) {
	q.mu.Lock()
	types := make([]events.EventType, 0, len(q.handlers))
	for t := range q.handlers {
		types = append(types, t)
	}
	q.bus = bus
	q.mu.Unlock()

	for _, t := range types {
		id := bus.Subscribe(t, q.enqueue)
		q.mu.Lock()
		q.subs = append(q.subs, id)
		q.mu.Unlock()
	}
}

// enqueue runs on the bus goroutine. Log lines are dropped when the UI
// falls behind; cycle events wait for room.
func (q *UIQueue) enqueue(event events.Event) {
	if event.Type == events.EventTypeLogLine {
		select {
		case q.events <- event:
		case <-q.stopCh:
		default:
			q.mu.Lock()
			q.dropped++
			q.mu.Unlock()
		}
		return
	}

	select {
	case q.events <- event:
	case <-q.stopCh:
	}
}

// Start begins draining on a ticker. Call after the window is shown.
func (q *UIQueue) Start() {
	go func() {
		ticker := time.NewTicker(16 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if batch := q.drain(); len(batch) > 0 {
					fyne.Do(func() { q.dispatch(batch) })
				}
			case <-q.stopCh:
				return
			}
		}
	}()
}

// Stop detaches from the bus and ends the ticker
func (q *UIQueue) Stop() {
	q.stopOnce.Do(func() {
		close(q.stopCh)
		q.mu.Lock()
		bus, subs := q.bus, q.subs
		q.subs = nil
		q.mu.Unlock()
		if bus != nil {
			for _, id := range subs {
				bus.Unsubscribe(id)
			}
		}
	})
}

// Dropped returns how many log lines were discarded
func (q *UIQueue) Dropped() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.dropped
}

func (q *UIQueue) drain() []events.Event {
	var batch []events.Event
	for {
		select {
		case e := <-q.events:
			batch = append(batch, e)
		default:
			return batch
		}
	}
}

func (q *UIQueue) dispatch(batch []events.Event) {
	for _, event := range batch {
		q.mu.RLock()
		handlers := q.handlers[event.Type]
		q.mu.RUnlock()

		for _, handler := range handlers {
			handler(event)
		}
	}
}
