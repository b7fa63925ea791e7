package mapview

import (
	"sync"
	"time"

	"github.com/mr1hm/station-coverage-map/internal/models"
)

// Remote drives the browsers attached to a Publisher. Camera motion is reported back
// through HandleMotionEnded; flights are numbered so a late report for an older flight
// cannot end the current one.
//
// When no browser reports the end of a flight within its duration plus grace, Remote
// ends it itself so the tour keeps moving with nobody watching.
type Remote struct {
	pub   Publisher
	grace time.Duration

	mu         sync.Mutex
	view       ViewPayload
	flight     uint64
	flightOpen bool
	fallback   *time.Timer
	waiters    map[uint64]chan struct{}
	nextWaiter uint64
}

func NewRemote(pub Publisher, grace time.Duration) *Remote {
	return &Remote{
		pub:     orNop(pub),
		grace:   grace,
		waiters: make(map[uint64]chan struct{}),
	}
}

func (r *Remote) SetView(center models.Coordinates, zoom int) {
	r.mu.Lock()
	r.view = ViewPayload{Center: center, Zoom: zoom}
	r.mu.Unlock()

	r.pub.Broadcast(Command{Type: CommandSetView, Data: ViewPayload{Center: center, Zoom: zoom}})
}

func (r *Remote) FlyTo(center models.Coordinates, zoom int, opts FlyOptions) {
	r.mu.Lock()
	r.flight++
	id := r.flight
	r.flightOpen = true
	r.view = ViewPayload{Center: center, Zoom: zoom}
	if r.fallback != nil {
		r.fallback.Stop()
	}
	r.fallback = time.AfterFunc(opts.Duration+r.grace, func() {
		r.endFlight(id)
	})
	r.mu.Unlock()

	r.pub.Broadcast(Command{
		Type: CommandFlyTo,
		Data: ViewPayload{
			Center:   center,
			Zoom:     zoom,
			Duration: opts.Duration.Seconds(),
			Flight:   id,
		},
	})
}

func (r *Remote) MotionEnded() (<-chan struct{}, func()) {
	ch := make(chan struct{})

	r.mu.Lock()
	r.nextWaiter++
	id := r.nextWaiter
	r.waiters[id] = ch
	r.mu.Unlock()

	cancel := func() {
		r.mu.Lock()
		delete(r.waiters, id)
		r.mu.Unlock()
	}
	return ch, cancel
}

// HandleMotionEnded is called when a browser reports the end of a flight.
func (r *Remote) HandleMotionEnded(flight uint64) {
	r.endFlight(flight)
}

func (r *Remote) endFlight(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != r.flight || !r.flightOpen {
		return
	}
	r.flightOpen = false
	if r.fallback != nil {
		r.fallback.Stop()
		r.fallback = nil
	}

	for wid, ch := range r.waiters {
		close(ch)
		delete(r.waiters, wid)
	}
}

// Snapshot returns the command that puts a new browser at the current view.
func (r *Remote) Snapshot() Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Command{Type: CommandSetView, Data: ViewPayload{Center: r.view.Center, Zoom: r.view.Zoom}}
}

func (r *Remote) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fallback != nil {
		r.fallback.Stop()
		r.fallback = nil
	}
}
