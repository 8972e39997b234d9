package events

import (
	"image"
	"testing"
)

func TestBusDeliversInPublishOrder(t *testing.T) {
	bus := NewEventBus(8)

	var got []uint64
	bus.Subscribe(EventTypeCycleUpdated, func(e Event) {
		got = append(got, e.Data["epoch"].(uint64))
	})

	for epoch := uint64(1); epoch <= 5; epoch++ {
		bus.Publish(NewCycleUpdatedEvent(DisplayUpdate{Epoch: epoch}))
	}
	bus.Stop()

	if len(got) != 5 {
		t.Fatalf("expected 5 events, got %d", len(got))
	}
	for i, epoch := range got {
		if epoch != uint64(i+1) {
			t.Errorf("event %d has epoch %d", i, epoch)
		}
	}
}

func TestUnsubscribeAndPanickingHandler(t *testing.T) {
	bus := NewEventBus(8)

	removed := 0
	id := bus.Subscribe(EventTypeLogLine, func(Event) { removed++ })
	bus.Subscribe(EventTypeLogLine, func(Event) { panic("handler bug") })
	kept := 0
	bus.Subscribe(EventTypeLogLine, func(Event) { kept++ })
	bus.Unsubscribe(id)

	bus.Publish(NewLogLineEvent("one"))
	bus.Publish(NewLogLineEvent("two"))
	bus.Stop()

	if removed != 0 {
		t.Errorf("unsubscribed handler ran %d times", removed)
	}
	if kept != 2 {
		t.Errorf("expected the healthy handler to see 2 events, got %d", kept)
	}

	// publishing after Stop is a no-op
	bus.Publish(NewLogLineEvent("late"))
}

func TestSettledUpdateChangesType(t *testing.T) {
	point := image.Pt(4, 5)
	e := NewCycleUpdatedEvent(DisplayUpdate{Epoch: 2, Slot: "fast", Point: &point, Settled: true})

	if e.Type != EventTypeCycleSettled {
		t.Errorf("type = %s, want %s", e.Type, EventTypeCycleSettled)
	}
	update, ok := UpdateFrom(e)
	if !ok || update.Point == nil || *update.Point != point {
		t.Errorf("UpdateFrom() = %+v, %v", update, ok)
	}
	if _, ok := UpdateFrom(NewLogLineEvent("x")); ok {
		t.Error("log line carried an update")
	}
}
