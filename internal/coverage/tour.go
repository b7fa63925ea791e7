package coverage

import (
	"context"
	"log/slog"
	"time"

	"github.com/mr1hm/station-coverage-map/internal/logging"
	"github.com/mr1hm/station-coverage-map/internal/mapview"
	"github.com/mr1hm/station-coverage-map/internal/metrics"
	"github.com/mr1hm/station-coverage-map/internal/models"
)

// StationSource is the read side of the station store the tour needs.
type StationSource interface {
	Len() int
	Get(i int) (models.Station, bool)
	Order() []int
	// Version changes whenever the station set is replaced.
	Version() uint64
}

type TourConfig struct {
	BaseZoom     int
	CloseZoom    int
	BaseFly      time.Duration
	CloseFly     time.Duration
	Dwell        time.Duration
	Pause        time.Duration
	PollInterval time.Duration
}

// TourAnimator flies the camera from station to station, north to south, until its
// context is cancelled.
type TourAnimator struct {
	engine   mapview.Engine
	stations StationSource
	cfg      TourConfig
	logger   *slog.Logger
}

func NewTourAnimator(engine mapview.Engine, stations StationSource, cfg TourConfig) *TourAnimator {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = time.Second
	}
	return &TourAnimator{
		engine:   engine,
		stations: stations,
		cfg:      cfg,
		logger:   logging.Component("tour"),
	}
}

// Run loops over the stations until ctx is cancelled and then returns ctx.Err().
// Cancellation is observed between steps; a flight already issued is not recalled.
func (t *TourAnimator) Run(ctx context.Context) error {
	var (
		order   []int
		version uint64
		counter uint64
	)

	t.logger.Debug("tour started")
	defer t.logger.Debug("tour stopped")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if t.stations.Len() == 0 {
			order = nil
			if err := sleep(ctx, t.cfg.PollInterval); err != nil {
				return err
			}
			continue
		}

		// A reloaded station set restarts the tour from the northernmost station.
		if v := t.stations.Version(); len(order) == 0 || v != version {
			order = t.stations.Order()
			version = v
			counter = 0
			if len(order) == 0 {
				continue
			}
		}

		idx := order[counter%uint64(len(order))]
		counter++

		station, ok := t.stations.Get(idx)
		if !ok {
			// The store shrank under a cached order.
			order = nil
			continue
		}

		if err := t.visit(ctx, station); err != nil {
			return err
		}
		metrics.TourStationsVisited.Inc()
	}
}

func (t *TourAnimator) visit(ctx context.Context, st models.Station) error {
	at := st.Coordinates()
	t.logger.Debug("visiting station", "id", st.ID, "name", st.Name, "lat", at.Latitude, "lon", at.Longitude)

	if err := t.fly(ctx, at, t.cfg.BaseZoom, t.cfg.BaseFly); err != nil {
		return err
	}
	if err := t.fly(ctx, at, t.cfg.CloseZoom, t.cfg.CloseFly); err != nil {
		return err
	}
	if err := sleep(ctx, t.cfg.Dwell); err != nil {
		return err
	}
	if err := t.fly(ctx, at, t.cfg.BaseZoom, t.cfg.BaseFly); err != nil {
		return err
	}
	return sleep(ctx, t.cfg.Pause)
}

// fly issues one camera flight and waits for the engine to report its end.
func (t *TourAnimator) fly(ctx context.Context, at models.Coordinates, zoom int, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	done, cancel := t.engine.MotionEnded()
	defer cancel()

	t.engine.FlyTo(at, zoom, mapview.FlyOptions{Duration: d})

	select {
	case <-done:
		return ctx.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
