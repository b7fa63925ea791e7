package coverage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mr1hm/station-coverage-map/internal/logging"
	"github.com/mr1hm/station-coverage-map/internal/mapview"
	"github.com/mr1hm/station-coverage-map/internal/metrics"
	"github.com/mr1hm/station-coverage-map/internal/models"
)

// simulationRun is one live tour plus its ring cycle. Both stop together.
type simulationRun struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Controller is the coverage button. Every activation moves the state one step
// (8 wraps to 0) and switches the map to exactly one visual mode.
type Controller struct {
	rings       *RingEngine
	tour        *TourAnimator
	pub         mapview.Publisher
	cyclePeriod time.Duration
	logger      *slog.Logger

	mu    sync.Mutex
	state models.CoverageState
	sim   *simulationRun
}

func NewController(rings *RingEngine, tour *TourAnimator, pub mapview.Publisher, cyclePeriod time.Duration) *Controller {
	if pub == nil {
		pub = nopPublisher{}
	}
	return &Controller{
		rings:       rings,
		tour:        tour,
		pub:         pub,
		cyclePeriod: cyclePeriod,
		logger:      logging.Component("coverage"),
		state:       models.CoverageNone,
	}
}

// Activate handles one button press and returns the new state.
func (c *Controller) Activate() models.CoverageState {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.applyLocked(c.state.Next())
	return c.state
}

// SetState jumps straight to s, running the same steps as an activation.
func (c *Controller) SetState(s models.CoverageState) error {
	if !s.Valid() {
		return fmt.Errorf("invalid coverage state: %d", s)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.applyLocked(s)
	return nil
}

func (c *Controller) State() models.CoverageState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) SimulationRunning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sim != nil
}

// ButtonCommand describes the button for a freshly attached browser.
func (c *Controller) ButtonCommand() mapview.Command {
	return buttonCommand(c.State())
}

// Close stops any running simulation. Drawn rings stay.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopSimulationLocked()
}

func (c *Controller) applyLocked(next models.CoverageState) {
	c.stopSimulationLocked()

	prev := c.state
	c.state = next
	c.pub.Broadcast(buttonCommand(next))

	metrics.CoverageState.Set(float64(next))
	metrics.CoverageTransitions.Inc()
	c.logger.Info("coverage state changed", "from", prev.String(), "to", next.String())

	switch {
	case next == models.CoverageNone:
		c.rings.ClearCoverage()
	case next == models.CoverageSimulation:
		c.startSimulationLocked()
	default:
		radius, _ := next.RadiusKm()
		c.rings.DrawSingleRing(radius)
	}
}

func (c *Controller) startSimulationLocked() {
	ctx, cancel := context.WithCancel(context.Background())
	run := &simulationRun{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	c.rings.StartRingCycle(c.cyclePeriod)

	go func() {
		defer close(run.done)
		if err := c.tour.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Error("tour stopped unexpectedly", "error", err)
		}
	}()

	c.sim = run
	metrics.SimulationsActive.Set(1)
}

// stopSimulationLocked is a no-op when nothing runs. When it returns the ring cycle
// has stopped and the tour goroutine has exited.
func (c *Controller) stopSimulationLocked() {
	if c.sim == nil {
		return
	}

	c.sim.cancel()
	c.rings.StopRingCycle()
	<-c.sim.done

	c.sim = nil
	metrics.SimulationsActive.Set(0)
}

func buttonCommand(s models.CoverageState) mapview.Command {
	return mapview.Command{
		Type: mapview.CommandButton,
		Data: mapview.ButtonPayload{
			State: int(s),
			Label: s.Label(),
			Class: s.Class(),
		},
	}
}

type nopPublisher struct{}

func (nopPublisher) Broadcast(mapview.Command) {}
