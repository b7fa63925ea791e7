package measure

import (
	"sync"

	"github.com/mr1hm/station-coverage-map/internal/mapview"
	"github.com/mr1hm/station-coverage-map/internal/models"
)

var (
	pointStyle = mapview.Style{Color: "#dc2626", FillColor: "#ef4444", FillOpacity: 0.9, Radius: 5, Weight: 2}
	lineStyle  = mapview.Style{Color: "#dc2626", Weight: 3, DashArray: "6 4"}
)

// Result is the measure tool's state after a click.
type Result struct {
	Enabled  bool                 `json:"enabled"`
	Points   []models.Coordinates `json:"points"`
	Meters   float64              `json:"meters,omitempty"`
	Label    string               `json:"label,omitempty"`
	Complete bool                 `json:"complete"`
}

// Tool measures the distance between two clicked points. A click after a completed
// measurement starts a new one.
type Tool struct {
	layer *mapview.LayerGroup
	pub   mapview.Publisher

	mu      sync.Mutex
	enabled bool
	points  []models.Coordinates
}

func NewTool(layer *mapview.LayerGroup, pub mapview.Publisher) *Tool {
	return &Tool{
		layer: layer,
		pub:   pub,
	}
}

// Toggle flips measuring on or off. Turning it off clears the measurement.
func (t *Tool) Toggle() Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.enabled = !t.enabled
	if !t.enabled {
		t.resetLocked()
	}
	return t.publishLocked()
}

func (t *Tool) Enabled() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.enabled
}

// Click records a map click. Clicks are ignored while the tool is off.
func (t *Tool) Click(at models.Coordinates) Result {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.enabled {
		return t.resultLocked()
	}

	if len(t.points) >= 2 {
		t.resetLocked()
	}
	t.points = append(t.points, at)

	t.layer.Add(mapview.CircleMarker(at, pointStyle))
	if len(t.points) == 2 {
		line := mapview.Polyline([]models.Coordinates{t.points[0], t.points[1]}, lineStyle)
		line.Tooltip = FormatDistance(Distance(t.points[0], t.points[1]))
		t.layer.Add(line)
	}

	return t.publishLocked()
}

func (t *Tool) Reset() Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.resetLocked()
	return t.publishLocked()
}

func (t *Tool) Current() Result {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.resultLocked()
}

func (t *Tool) resetLocked() {
	t.points = nil
	t.layer.Clear()
}

func (t *Tool) resultLocked() Result {
	res := Result{
		Enabled: t.enabled,
		Points:  append([]models.Coordinates(nil), t.points...),
	}
	if len(t.points) == 2 {
		res.Meters = Distance(t.points[0], t.points[1])
		res.Label = FormatDistance(res.Meters)
		res.Complete = true
	}
	return res
}

func (t *Tool) publishLocked() Result {
	res := t.resultLocked()
	if t.pub != nil {
		t.pub.Broadcast(mapview.Command{Type: mapview.CommandMeasure, Data: res})
	}
	return res
}
