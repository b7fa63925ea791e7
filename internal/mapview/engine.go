package mapview

import (
	"time"

	"github.com/mr1hm/station-coverage-map/internal/models"
)

type FlyOptions struct {
	Duration time.Duration
}

// Engine is the camera side of the map.
//
// MotionEnded registers a one-shot wait for the end of the next camera motion. The
// channel is closed exactly once; cancel drops the registration and is safe to call
// after the channel fired. Register before calling FlyTo so the end of that flight
// cannot be missed.
type Engine interface {
	SetView(center models.Coordinates, zoom int)
	FlyTo(center models.Coordinates, zoom int, opts FlyOptions)
	MotionEnded() (done <-chan struct{}, cancel func())
}
