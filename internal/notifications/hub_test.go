package notifications

import (
	"testing"
	"time"
)

// TestHubPublishSubscribe проверяет доставку событий подписчику.
func TestHubPublishSubscribe(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe()
	defer unsubscribe()

	hub.Publish(Event{Type: "collection_changed", Collection: "sales", WriteID: "w1"})

	select {
	case event := <-ch:
		if event.Collection != "sales" {
			t.Fatalf("expected collection sales, got %s", event.Collection)
		}
		if event.WriteID != "w1" {
			t.Fatalf("expected write id w1, got %s", event.WriteID)
		}
		if event.Timestamp.IsZero() {
			t.Fatal("expected timestamp to be set")
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected event to be delivered")
	}
}

// TestHubUnsubscribe проверяет закрытие канала после отписки.
func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()

	ch, unsubscribe := hub.Subscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed")
	}
}

// TestHubBroadcast проверяет рассылку события всем подписчикам.
func TestHubBroadcast(t *testing.T) {
	hub := NewHub()

	first, unsubFirst := hub.Subscribe()
	defer unsubFirst()
	second, unsubSecond := hub.Subscribe()
	defer unsubSecond()

	hub.Publish(Event{Type: "collection_changed", Collection: "tasks"})

	for _, ch := range []<-chan Event{first, second} {
		select {
		case event := <-ch:
			if event.Collection != "tasks" {
				t.Fatalf("expected collection tasks, got %s", event.Collection)
			}
		case <-time.After(500 * time.Millisecond):
			t.Fatal("expected event on every subscriber")
		}
	}
}
