package coverage

import (
	"testing"
	"time"

	"github.com/mr1hm/station-coverage-map/internal/mapview"
	"github.com/mr1hm/station-coverage-map/internal/models"
)

func TestRingEngine_DrawSingleRing(t *testing.T) {
	layer := mapview.NewLayerGroup("coverage", nil)
	coords := staticCoords{{Latitude: 1, Longitude: 1}, {Latitude: 2, Longitude: 2}}
	e := NewRingEngine(coords, layer)

	e.DrawSingleRing(15)

	shapes := layer.Shapes()
	if len(shapes) != 2 {
		t.Fatalf("expected one ring per station, got %d", len(shapes))
	}
	for i, s := range shapes {
		if s.Kind != mapview.ShapeCircle {
			t.Errorf("shape %d: expected circle, got %s", i, s.Kind)
		}
		if s.RadiusMeters != 15000 {
			t.Errorf("shape %d: expected 15000 m, got %v", i, s.RadiusMeters)
		}
		if s.Center != coords[i] {
			t.Errorf("shape %d: expected centre %+v, got %+v", i, coords[i], s.Center)
		}
	}

	// Drawing again replaces rather than accumulates
	e.DrawSingleRing(40)
	if layer.Len() != 2 {
		t.Errorf("expected 2 rings after redraw, got %d", layer.Len())
	}
}

func TestRingEngine_DrawThenClearLeavesLayerEmpty(t *testing.T) {
	layer := mapview.NewLayerGroup("coverage", nil)
	e := NewRingEngine(staticCoords{{Latitude: 1}, {Latitude: 2}, {Latitude: 3}}, layer)

	for _, r := range []float64{0, 5, 12.5, 40, 1000} {
		e.DrawSingleRing(r)
		e.ClearCoverage()
		if layer.Len() != 0 {
			t.Errorf("radius %v: expected empty layer after clear, got %d", r, layer.Len())
		}
	}
}

func TestRingEngine_EmptyStore(t *testing.T) {
	layer := mapview.NewLayerGroup("coverage", nil)
	e := NewRingEngine(staticCoords{}, layer)

	e.DrawSingleRing(10)
	if layer.Len() != 0 {
		t.Errorf("expected no shapes, got %d", layer.Len())
	}
	e.ClearCoverage()
	e.StopRingCycle()
}

func TestRingEngine_CycleSequence(t *testing.T) {
	rec := &recorder{}
	layer := mapview.NewLayerGroup("coverage", rec)
	e := NewRingEngine(staticCoords{{Latitude: 1}}, layer)

	e.StartRingCycle(5 * time.Millisecond)
	waitFor(t, 2*time.Second, func() bool { return len(rec.Commands()) >= 16 })
	e.StopRingCycle()

	var radii []float64
	for _, cmd := range rec.Commands() {
		if cmd.Type != mapview.CommandLayerReplace {
			t.Fatalf("cycle should only replace the layer, got %s", cmd.Type)
		}
		payload := cmd.Data.(mapview.LayerPayload)
		if len(payload.Shapes) != 1 {
			t.Fatalf("expected one ring per redraw, got %d", len(payload.Shapes))
		}
		radii = append(radii, payload.Shapes[0].RadiusMeters/1000)
	}

	for i, r := range radii {
		want := models.RingRadiiKm[i%len(models.RingRadiiKm)]
		if r != want {
			t.Fatalf("redraw %d: expected %v km, got %v (sequence %v)", i, want, r, radii)
		}
		if r == 0 {
			t.Fatal("cycle landed on a zero radius")
		}
	}
}

func TestRingEngine_StopKeepsRingsAndHaltsRedraws(t *testing.T) {
	rec := &recorder{}
	layer := mapview.NewLayerGroup("coverage", rec)
	e := NewRingEngine(staticCoords{{Latitude: 1}, {Latitude: 2}}, layer)

	e.StartRingCycle(2 * time.Millisecond)
	waitFor(t, time.Second, func() bool { return len(rec.Commands()) >= 3 })
	e.StopRingCycle()

	if e.CycleRunning() {
		t.Error("expected cycle to be stopped")
	}
	if layer.Len() != 2 {
		t.Errorf("expected rings to stay after stop, got %d", layer.Len())
	}

	n := len(rec.Commands())
	time.Sleep(20 * time.Millisecond)
	if got := len(rec.Commands()); got != n {
		t.Errorf("expected no redraws after stop, got %d more", got-n)
	}

	// Stopping twice is fine
	e.StopRingCycle()
}

func TestRingEngine_RestartCancelsPriorCycle(t *testing.T) {
	layer := mapview.NewLayerGroup("coverage", nil)
	e := NewRingEngine(staticCoords{{Latitude: 1}}, layer)

	e.StartRingCycle(time.Millisecond)
	e.StartRingCycle(time.Millisecond)
	e.StartRingCycle(time.Millisecond)

	if !e.CycleRunning() {
		t.Error("expected a cycle to be running")
	}
	e.StopRingCycle()
	// goleak in TestMain catches any cycle goroutine left behind.
}
