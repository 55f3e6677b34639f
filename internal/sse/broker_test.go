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
	b := NewBroker()
	defer b.Close()
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients")
	}
	ch := b.Subscribe()
	if b.ClientCount() != 1 {
		t.Fatalf("expected 1 client")
	}
	b.Unsubscribe(ch)
	if b.ClientCount() != 0 {
		t.Fatalf("expected 0 clients after unsub")
	}
}

func TestPublishDelivery(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{Type: "database.created", Data: map[string]string{"name": "notes.db"}})

	select {
	case msg := <-ch:
		s := string(msg)
		if !strings.Contains(s, "event: database.created") {
			t.Errorf("missing event type in %q", s)
		}
		if !strings.Contains(s, `"name":"notes.db"`) {
			t.Errorf("missing data in %q", s)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for message")
	}
}

func TestPublishDatabaseEvent_Kinds(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	kinds := map[string]string{
		"created": "database.created",
		"updated": "database.updated",
		"deleted": "database.deleted",
	}
	for kind, want := range kinds {
		b.PublishDatabaseEvent(kind, "a.db")
		select {
		case msg := <-ch:
			if !strings.Contains(string(msg), "event: "+want) {
				t.Errorf("kind %q: got %q, want event %q", kind, msg, want)
			}
		case <-time.After(time.Second):
			t.Fatalf("kind %q: timeout", kind)
		}
	}
}

func TestPublishDatabaseEvent_UnknownKindDropped(t *testing.T) {
	b := NewBroker()
	defer b.Close()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.PublishDatabaseEvent("renamed", "a.db")
	b.PublishDatabaseEvent("created", "b.db")

	select {
	case msg := <-ch:
		if !strings.Contains(string(msg), "b.db") {
			t.Errorf("unexpected event %q, unknown kind should be dropped", msg)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout")
	}
}

func TestCloseIdempotent(t *testing.T) {
	b := NewBroker()
	ch := b.Subscribe()
	b.Close()
	b.Close()

	if _, ok := <-ch; ok {
		t.Error("client channel should be closed")
	}
	if b.ClientCount() != 0 {
		t.Error("count after close should be 0")
	}
	// Publishing after close must not panic or block.
	b.Publish(Event{Type: "x"})
	b.PublishDatabaseEvent("created", "a.db")
}

func TestServeHTTP_StreamsEvents(t *testing.T) {
	b := NewBroker()
	defer b.Close()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/events", nil).WithContext(ctx)
	rec := httptest.NewRecorder()

	done := make(chan struct{})
	go func() {
		b.ServeHTTP(rec, req)
		close(done)
	}()

	// Wait until the handler registered its subscription.
	deadline := time.After(time.Second)
	for b.ClientCount() == 0 {
		select {
		case <-deadline:
			t.Fatal("handler never subscribed")
		case <-time.After(5 * time.Millisecond):
		}
	}

	b.PublishDatabaseEvent("deleted", "old.db")
	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	if ct := rec.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "event: database.deleted") {
		t.Errorf("body = %q, want database.deleted event", body)
	}
}
