package coverage

import (
	"context"
	"sync"
	"time"

	"github.com/mr1hm/station-coverage-map/internal/mapview"
	"github.com/mr1hm/station-coverage-map/internal/metrics"
	"github.com/mr1hm/station-coverage-map/internal/models"
)

// CoordinateSource yields the centre of every known station.
type CoordinateSource interface {
	Coordinates() []models.Coordinates
}

var RingStyle = mapview.Style{
	Color:       "#1d4ed8",
	FillColor:   "#3b82f6",
	FillOpacity: 0.08,
	Weight:      1,
}

// RingEngine is the only writer of the coverage layer.
type RingEngine struct {
	stations CoordinateSource
	layer    *mapview.LayerGroup

	mu          sync.Mutex
	cycleCancel context.CancelFunc
	cycleDone   chan struct{}
}

func NewRingEngine(stations CoordinateSource, layer *mapview.LayerGroup) *RingEngine {
	return &RingEngine{
		stations: stations,
		layer:    layer,
	}
}

// DrawSingleRing replaces any drawn rings with one ring of radiusKm around every
// station. With no stations the layer is simply left empty.
func (e *RingEngine) DrawSingleRing(radiusKm float64) {
	coords := e.stations.Coordinates()
	shapes := make([]mapview.Shape, 0, len(coords))
	for _, c := range coords {
		shapes = append(shapes, mapview.Circle(c, radiusKm*1000, RingStyle))
	}
	e.layer.Replace(shapes)
	metrics.RingRedraws.Inc()
}

func (e *RingEngine) ClearCoverage() {
	e.layer.Clear()
}

// StartRingCycle draws the first radius immediately and then advances through
// models.RingRadiiKm every period, wrapping from the last radius to the first. A cycle
// already running is stopped first.
func (e *RingEngine) StartRingCycle(period time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.stopCycleLocked()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	e.cycleCancel = cancel
	e.cycleDone = done

	e.DrawSingleRing(models.RingRadiiKm[0])
	go e.runCycle(ctx, period, done)
}

// StopRingCycle stops the timer. No redraw happens after it returns. The rings drawn
// last are left on the map.
func (e *RingEngine) StopRingCycle() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopCycleLocked()
}

func (e *RingEngine) CycleRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cycleCancel != nil
}

func (e *RingEngine) stopCycleLocked() {
	if e.cycleCancel == nil {
		return
	}
	e.cycleCancel()
	<-e.cycleDone
	e.cycleCancel = nil
	e.cycleDone = nil
}

func (e *RingEngine) runCycle(ctx context.Context, period time.Duration, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(period)
	defer ticker.Stop()

	idx := 0
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			idx = (idx + 1) % len(models.RingRadiiKm)
			e.DrawSingleRing(models.RingRadiiKm[idx])
		}
	}
}
