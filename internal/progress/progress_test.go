package progress

import (
	"testing"
)

func TestPercent(t *testing.T) {
	tests := []struct {
		completed, total, want int
	}{
		{0, 10, 10},
		{5, 10, 50},
		{10, 10, 90},
		{1, 3, 36},
		{2, 3, 63},
		{99, 100, 89},
	}

	for _, tt := range tests {
		if got := Percent(tt.completed, tt.total); got != tt.want {
			t.Errorf("Percent(%d, %d) = %d, want %d", tt.completed, tt.total, got, tt.want)
		}
	}
}

func TestPercentZeroTotal(t *testing.T) {
	// Validation rejects empty runs upstream, but the reporter must not
	// divide by zero if one slips through.
	if got := Percent(0, 0); got != 10 {
		t.Errorf("Percent(0, 0) = %d, want 10", got)
	}
}

func TestPercentMonotone(t *testing.T) {
	total := 7
	last := 0
	for completed := 0; completed <= total; completed++ {
		got := Percent(completed, total)
		if got < last {
			t.Errorf("Percent(%d, %d) = %d decreased from %d", completed, total, got, last)
		}
		last = got
	}
}

func TestStatus(t *testing.T) {
	if got := Status(50, 5, 10); got != "Downloaded 5 of 10 files" {
		t.Errorf("Status(50, 5, 10) = %q", got)
	}
	if got := Status(100, 10, 10); got != "Complete! Downloaded 10 files" {
		t.Errorf("Status(100, 10, 10) = %q", got)
	}
}

func TestBroadcasterDelivery(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	b.Publish(Event{RunID: "r1", State: "running", Percent: 42})

	select {
	case event := <-ch:
		if event.RunID != "r1" || event.Percent != 42 {
			t.Errorf("unexpected event: %+v", event)
		}
	default:
		t.Fatal("expected a buffered event")
	}
}

func TestBroadcasterFullListenerSkipped(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	defer b.Unsubscribe(ch)

	// Fill the buffer; further publishes must not block.
	for i := 0; i < 200; i++ {
		b.Publish(Event{Percent: i})
	}
}

func TestBroadcasterUnsubscribeCloses(t *testing.T) {
	b := NewBroadcaster()
	ch := b.Subscribe()
	b.Unsubscribe(ch)

	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed after Unsubscribe")
	}

	// Publishing after unsubscribe must not panic.
	b.Publish(Event{Percent: 1})
}
