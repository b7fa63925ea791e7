package broadcast

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/station-coverage-map/internal/mapview"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBroadcaster_SubscribeUnsubscribe(t *testing.T) {
	b := NewBroadcaster(8)

	ch := b.Subscribe("s1")
	if b.SubscriberCount() != 1 {
		t.Errorf("expected 1 subscriber, got %d", b.SubscriberCount())
	}

	b.Unsubscribe("s1")
	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.SubscriberCount())
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("expected channel to be closed")
		}
	default:
		t.Error("channel should be closed and readable")
	}

	// Unknown IDs are ignored
	b.Unsubscribe("nope")
}

func TestBroadcaster_Broadcast(t *testing.T) {
	b := NewBroadcaster(8)
	defer b.Close()

	ch := b.Subscribe("s1")
	b.Broadcast(mapview.Command{Type: mapview.CommandFlyTo})

	select {
	case got := <-ch:
		if got.Type != mapview.CommandFlyTo {
			t.Errorf("expected fly_to, got %s", got.Type)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for broadcast")
	}
}

func TestBroadcaster_ResubscribeReplacesChannel(t *testing.T) {
	b := NewBroadcaster(8)
	defer b.Close()

	first := b.Subscribe("s1")
	second := b.Subscribe("s1")

	if _, ok := <-first; ok {
		t.Error("expected first channel to be closed")
	}
	if b.SubscriberCount() != 1 {
		t.Errorf("expected 1 subscriber, got %d", b.SubscriberCount())
	}

	b.Broadcast(mapview.Command{Type: mapview.CommandButton})
	if got := <-second; got.Type != mapview.CommandButton {
		t.Errorf("expected button command, got %s", got.Type)
	}
}

func TestBroadcaster_SlowSubscriberSkipped(t *testing.T) {
	b := NewBroadcaster(2)
	defer b.Close()

	ch := b.Subscribe("slow")

	for i := 0; i < 10; i++ {
		b.Broadcast(mapview.Command{Type: mapview.CommandLayerReplace})
	}

	if len(ch) != 2 {
		t.Errorf("expected buffer to hold 2 commands, got %d", len(ch))
	}
}

func TestBroadcaster_ConcurrentSubscribeUnsubscribe(t *testing.T) {
	b := NewBroadcaster(8)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("s%d", n)
			b.Subscribe(id)
			b.Broadcast(mapview.Command{Type: mapview.CommandSetView})
			b.Unsubscribe(id)
		}(i)
	}

	wg.Wait()

	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.SubscriberCount())
	}
}

func TestBroadcaster_CloseClosesAll(t *testing.T) {
	b := NewBroadcaster(8)

	a := b.Subscribe("a")
	c := b.Subscribe("c")
	b.Close()

	for _, ch := range []<-chan mapview.Command{a, c} {
		if _, ok := <-ch; ok {
			t.Error("expected channel to be closed")
		}
	}
	if b.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after Close, got %d", b.SubscriberCount())
	}
}
