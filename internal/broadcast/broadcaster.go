package broadcast

import (
	"sync"

	"github.com/mr1hm/station-coverage-map/internal/mapview"
	"github.com/mr1hm/station-coverage-map/internal/metrics"
)

// Broadcaster fans map commands out to browser sessions. Each session gets a buffered
// channel; a session that falls behind misses commands rather than stalling the map.
type Broadcaster struct {
	subscribers map[string]chan mapview.Command
	bufferSize  int
	mu          sync.RWMutex
}

func NewBroadcaster(bufferSize int) *Broadcaster {
	if bufferSize < 1 {
		bufferSize = 256
	}
	return &Broadcaster{
		subscribers: make(map[string]chan mapview.Command),
		bufferSize:  bufferSize,
	}
}

// Subscribe registers a session. Re-subscribing an existing ID replaces its channel.
func (b *Broadcaster) Subscribe(id string) <-chan mapview.Command {
	ch := make(chan mapview.Command, b.bufferSize)

	b.mu.Lock()
	if old, ok := b.subscribers[id]; ok {
		close(old)
	}
	b.subscribers[id] = ch
	metrics.SessionsConnected.Set(float64(len(b.subscribers)))
	b.mu.Unlock()

	return ch
}

func (b *Broadcaster) Unsubscribe(id string) {
	b.mu.Lock()
	if ch, ok := b.subscribers[id]; ok {
		close(ch)
		delete(b.subscribers, id)
	}
	metrics.SessionsConnected.Set(float64(len(b.subscribers)))
	b.mu.Unlock()
}

func (b *Broadcaster) Broadcast(cmd mapview.Command) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, ch := range b.subscribers {
		select {
		case ch <- cmd:
		default:
			metrics.CommandsDropped.Inc()
		}
	}
}

func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes all session channels so their writers exit.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
	metrics.SessionsConnected.Set(0)
}
