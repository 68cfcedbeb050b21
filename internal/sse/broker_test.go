package sse

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestSubscribeUnsubscribe(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	if b.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers")
	}
	ch := b.Subscribe()
	if b.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber")
	}
	b.Unsubscribe(ch)
	if b.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "client.created", Data: map[string]string{"id": "abc"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: client.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"id":"abc"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishRecordEvent_RosterThrottle(t *testing.T) {
	b := NewBroker(500 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// First event should trigger roster.updated.
	b.PublishRecordEvent("client.created", "a")
	// Second event immediately should NOT trigger another roster.updated.
	b.PublishRecordEvent("interaction.logged", "a")

	// Drain and count events.
	time.Sleep(50 * time.Millisecond)
	rosterCount := 0
	recordCount := 0
loop:
	for {
		select {
		case msg := <-ch:
			s := string(msg)
			if strings.Contains(s, "roster.updated") {
				rosterCount++
			} else {
				recordCount++
			}
		default:
			break loop
		}
	}

	if recordCount != 2 {
		t.Errorf("record events = %d, want 2", recordCount)
	}
	if rosterCount != 1 {
		t.Errorf("roster events = %d, want 1 (throttled)", rosterCount)
	}
}

func TestPublishRecordEvent_UnknownKindOnlyRefreshesRoster(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishRecordEvent("bogus.kind", "a")
	time.Sleep(50 * time.Millisecond)

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), "roster.updated") {
			t.Errorf("expected roster.updated only, got %q", string(msg))
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for roster refresh")
	}
}

func TestSSEHandler(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	defer b.Close()

	// Start handler in background.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req := httptest.NewRequest(http.MethodGet, "/api/events", nil)
	req = req.WithContext(ctx)
	w := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(w, req)
		close(done)
	}()

	// Give handler time to subscribe.
	time.Sleep(50 * time.Millisecond)
	if b.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber from handler")
	}

	b.Publish(Event{Type: "interaction.logged", Data: map[string]string{"id": "x"}})
	time.Sleep(50 * time.Millisecond)

	// Cancel context to disconnect.
	cancel()
	<-done

	body := w.Body.String()
	if !strings.Contains(body, "event: interaction.logged") {
		t.Errorf("handler output missing event: %q", body)
	}

	// Subscriber should be cleaned up.
	time.Sleep(50 * time.Millisecond)
	if b.SubscriberCount() != 0 {
		t.Errorf("subscriber not cleaned up after disconnect")
	}
}

func TestPublishDropsOnFullBuffer(t *testing.T) {
	b := NewBroker(time.Second)
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill buffer (capacity 64) and then one more should not block.
	for i := 0; i < 70; i++ {
		b.Publish(Event{Type: "test", Data: map[string]string{"i": "x"}})
	}
	// If we reach here without deadlock, the test passes.
}

func TestCloseClosesSubscribersAndStopsOperations(t *testing.T) {
	b := NewBroker(100 * time.Millisecond)
	ch := b.Subscribe()
	if b.SubscriberCount() != 1 {
		t.Fatalf("expected 1 subscriber")
	}

	b.Close()

	select {
	case _, ok := <-ch:
		if ok {
			t.Fatal("expected subscriber channel to be closed")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for channel close")
	}

	if b.SubscriberCount() != 0 {
		t.Fatalf("expected 0 subscribers after close")
	}

	// Should be safe no-op after close.
	b.Publish(Event{Type: "client.updated", Data: map[string]string{"id": "x"}})
	b.PublishRecordEvent("client.updated", "x")
}
