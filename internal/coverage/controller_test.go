package coverage

import (
	"testing"
	"time"

	"github.com/mr1hm/station-coverage-map/internal/mapview"
	"github.com/mr1hm/station-coverage-map/internal/models"
	"github.com/mr1hm/station-coverage-map/internal/stations"
)

type controllerHarness struct {
	ctrl   *Controller
	layer  *mapview.LayerGroup
	rings  *RingEngine
	engine *fakeEngine
	pub    *recorder
}

func newHarness(store *stations.Store) *controllerHarness {
	pub := &recorder{}
	layer := mapview.NewLayerGroup("coverage", nil)
	engine := newFakeEngine(false)
	rings := NewRingEngine(store, layer)
	tour := NewTourAnimator(engine, store, testTourConfig())

	return &controllerHarness{
		ctrl:   NewController(rings, tour, pub, 5*time.Millisecond),
		layer:  layer,
		rings:  rings,
		engine: engine,
		pub:    pub,
	}
}

func TestController_StartsOff(t *testing.T) {
	h := newHarness(newTestStore(1))
	defer h.ctrl.Close()

	if h.ctrl.State() != models.CoverageNone {
		t.Errorf("expected initial state 0, got %d", h.ctrl.State())
	}
	if h.ctrl.SimulationRunning() {
		t.Error("expected no simulation before any activation")
	}
}

func TestController_FixedRings(t *testing.T) {
	h := newHarness(newTestStore(1, 2))
	defer h.ctrl.Close()

	for want := models.CoverageState(1); want <= 7; want++ {
		got := h.ctrl.Activate()
		if got != want {
			t.Fatalf("expected state %d, got %d", want, got)
		}
		radius, _ := want.RadiusKm()
		shapes := h.layer.Shapes()
		if len(shapes) != 2 {
			t.Fatalf("state %d: expected 2 rings, got %d", want, len(shapes))
		}
		if shapes[0].RadiusMeters != radius*1000 {
			t.Errorf("state %d: expected %v m, got %v", want, radius*1000, shapes[0].RadiusMeters)
		}
		if h.ctrl.SimulationRunning() {
			t.Errorf("state %d: simulation should not run", want)
		}
	}
}

func TestController_NineActivationsReturnToStart(t *testing.T) {
	h := newHarness(newTestStore(1))
	defer h.ctrl.Close()

	for s0 := models.CoverageState(0); s0 <= 8; s0++ {
		if err := h.ctrl.SetState(s0); err != nil {
			t.Fatalf("SetState(%d): %v", s0, err)
		}
		for i := 0; i < 9; i++ {
			prev := h.ctrl.State()
			if got := h.ctrl.Activate(); got != (prev+1)%9 {
				t.Fatalf("expected %d -> %d, got %d", prev, (prev+1)%9, got)
			}
		}
		if got := h.ctrl.State(); got != s0 {
			t.Errorf("expected to return to %d, got %d", s0, got)
		}
	}
}

func TestController_SimulationLifecycle(t *testing.T) {
	h := newHarness(newTestStore(-10, 20, 5))
	defer h.ctrl.Close()

	if err := h.ctrl.SetState(models.CoverageDefault); err != nil {
		t.Fatalf("SetState failed: %v", err)
	}
	if r := h.layer.Shapes()[0].RadiusMeters; r != 40000 {
		t.Errorf("expected 40 km default ring, got %v m", r)
	}

	if got := h.ctrl.Activate(); got != models.CoverageSimulation {
		t.Fatalf("expected state 8, got %d", got)
	}
	if !h.ctrl.SimulationRunning() || !h.rings.CycleRunning() {
		t.Fatal("expected simulation and ring cycle to be running")
	}
	waitFor(t, 2*time.Second, func() bool { return len(h.engine.Flights()) >= 3 })

	if got := h.ctrl.Activate(); got != models.CoverageNone {
		t.Fatalf("expected state 0, got %d", got)
	}
	if h.ctrl.SimulationRunning() || h.rings.CycleRunning() {
		t.Error("expected simulation and ring cycle to be stopped")
	}
	if h.layer.Len() != 0 {
		t.Errorf("expected rings cleared, got %d", h.layer.Len())
	}

	// Nothing redraws or flies once stopped
	flights := len(h.engine.Flights())
	time.Sleep(30 * time.Millisecond)
	if h.layer.Len() != 0 {
		t.Error("ring cycle redrew after stop")
	}
	if got := len(h.engine.Flights()); got != flights {
		t.Errorf("tour flew after stop: %d -> %d", flights, got)
	}
}

func TestController_LeavingSimulationForFixedRing(t *testing.T) {
	h := newHarness(newTestStore(1, 2))
	defer h.ctrl.Close()

	_ = h.ctrl.SetState(models.CoverageSimulation)
	_ = h.ctrl.SetState(3)

	if h.ctrl.SimulationRunning() {
		t.Error("expected simulation stopped")
	}
	time.Sleep(20 * time.Millisecond)
	for _, s := range h.layer.Shapes() {
		if s.RadiusMeters != 15000 {
			t.Errorf("expected 15 km rings, got %v m", s.RadiusMeters)
		}
	}
}

func TestController_EmptyStoreDegradesToNoOps(t *testing.T) {
	h := newHarness(stations.NewStore())
	defer h.ctrl.Close()

	for i := 0; i < 9; i++ {
		h.ctrl.Activate()
		if h.layer.Len() != 0 {
			t.Fatalf("state %d: expected no rings with an empty store", h.ctrl.State())
		}
	}
	if n := len(h.engine.Flights()); n != 0 {
		t.Errorf("expected no flights with an empty store, got %d", n)
	}
}

func TestController_PublishesButton(t *testing.T) {
	h := newHarness(newTestStore(1))
	defer h.ctrl.Close()

	h.ctrl.Activate()

	cmds := h.pub.Commands()
	if len(cmds) != 1 || cmds[0].Type != mapview.CommandButton {
		t.Fatalf("expected one button command, got %+v", cmds)
	}
	btn := cmds[0].Data.(mapview.ButtonPayload)
	if btn.State != 1 || btn.Label != "Coverage: 5 km" || btn.Class != "coverage-on" {
		t.Errorf("unexpected button payload %+v", btn)
	}

	if snap := h.ctrl.ButtonCommand().Data.(mapview.ButtonPayload); snap.State != 1 {
		t.Errorf("expected button snapshot state 1, got %d", snap.State)
	}
}

func TestController_SetStateRejectsInvalid(t *testing.T) {
	h := newHarness(newTestStore(1))
	defer h.ctrl.Close()

	if err := h.ctrl.SetState(9); err == nil {
		t.Error("expected error for state 9")
	}
	if err := h.ctrl.SetState(-1); err == nil {
		t.Error("expected error for state -1")
	}
}
