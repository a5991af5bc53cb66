package api

import (
	"fmt"
	"testing"

	"github.com/shelter-training/maps-trainer/internal/models"
)

func TestEventHubBroadcastDelivers(t *testing.T) {
	h := NewEventHub()
	ch := h.subscribe("10.0.0.1:50000")
	defer h.unsubscribe(ch)

	h.Broadcast(models.CompletionEvent{
		Type:      "lesson_completed",
		Volunteer: "Priya",
		LessonID:  "basics-1",
		Points:    100,
	})

	select {
	case ev := <-ch:
		if ev.LessonID != "basics-1" || ev.Points != 100 || ev.Volunteer != "Priya" {
			t.Errorf("unexpected event: %+v", ev)
		}
	default:
		t.Fatal("event not delivered to subscriber")
	}
}

func TestEventHubDropsForSlowSubscriber(t *testing.T) {
	h := NewEventHub()
	slow := h.subscribe("10.0.0.2:50000")
	live := h.subscribe("10.0.0.3:50000")
	defer h.unsubscribe(slow)
	defer h.unsubscribe(live)

	// the slow subscriber never reads; overflowing its buffer must not
	// block the broadcast or starve the healthy subscriber
	for i := 0; i < eventBuffer+5; i++ {
		h.Broadcast(models.CompletionEvent{Type: "lesson_completed", LessonID: fmt.Sprintf("lesson-%d", i)})
		if ev := <-live; ev.LessonID != fmt.Sprintf("lesson-%d", i) {
			t.Fatalf("healthy subscriber got %q at broadcast %d", ev.LessonID, i)
		}
	}

	if len(slow) != eventBuffer {
		t.Errorf("slow subscriber buffered %d events, want %d", len(slow), eventBuffer)
	}
	// the oldest events survive; the overflow was dropped
	if first := <-slow; first.LessonID != "lesson-0" {
		t.Errorf("first buffered event = %q, want lesson-0", first.LessonID)
	}
}

func TestEventHubUnsubscribe(t *testing.T) {
	h := NewEventHub()
	ch := h.subscribe("10.0.0.4:50000")

	h.unsubscribe(ch)
	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}

	// broadcasting to an empty hub and unsubscribing twice are no-ops
	h.Broadcast(models.CompletionEvent{Type: "lesson_completed"})
	h.unsubscribe(ch)
}
