package mapview

import "github.com/mr1hm/station-coverage-map/internal/models"

// Command types sent to the browser.
const (
	CommandSetView      = "set_view"
	CommandFlyTo        = "fly_to"
	CommandLayerAdd     = "layer_add"
	CommandLayerReplace = "layer_replace"
	CommandLayerClear   = "layer_clear"
	CommandButton       = "button"
	CommandMeasure      = "measure"
)

// Event types received from the browser.
const (
	EventMoveEnd          = "moveend"
	EventClick            = "click"
	EventCoverageActivate = "coverage_activate"
	EventMeasureToggle    = "measure_toggle"
)

type Command struct {
	Type string `json:"type"`
	Data any    `json:"data,omitempty"`
}

// Event is a message from a browser session.
type Event struct {
	Type   string              `json:"type"`
	Flight uint64              `json:"flight,omitempty"`
	Point  *models.Coordinates `json:"point,omitempty"`
}

type ViewPayload struct {
	Center   models.Coordinates `json:"center"`
	Zoom     int                `json:"zoom"`
	Duration float64            `json:"duration,omitempty"` // seconds
	Flight   uint64             `json:"flight,omitempty"`
}

type LayerPayload struct {
	Layer  string  `json:"layer"`
	Shapes []Shape `json:"shapes,omitempty"`
}

type ButtonPayload struct {
	State int    `json:"state"`
	Label string `json:"label"`
	Class string `json:"class"`
}

// Publisher fans commands out to every attached browser.
type Publisher interface {
	Broadcast(cmd Command)
}

type nopPublisher struct{}

func (nopPublisher) Broadcast(Command) {}

func orNop(p Publisher) Publisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
