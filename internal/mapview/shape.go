package mapview

import "github.com/mr1hm/station-coverage-map/internal/models"

type ShapeKind string

const (
	ShapeMarker       ShapeKind = "marker"
	ShapeCircle       ShapeKind = "circle"
	ShapeCircleMarker ShapeKind = "circle_marker"
	ShapePolyline     ShapeKind = "polyline"
)

type Style struct {
	Color       string  `json:"color,omitempty"`
	FillColor   string  `json:"fillColor,omitempty"`
	FillOpacity float64 `json:"fillOpacity,omitempty"`
	Weight      int     `json:"weight,omitempty"`
	Radius      int     `json:"radius,omitempty"` // pixels, circle markers only
	DashArray   string  `json:"dashArray,omitempty"`
}

type Shape struct {
	Kind         ShapeKind            `json:"kind"`
	Center       models.Coordinates   `json:"center"`
	Points       []models.Coordinates `json:"points,omitempty"`
	RadiusMeters float64              `json:"radius_m,omitempty"`
	Style        Style                `json:"style"`
	Popup        string               `json:"popup,omitempty"`
	Tooltip      string               `json:"tooltip,omitempty"`
}

func Circle(center models.Coordinates, radiusMeters float64, style Style) Shape {
	return Shape{Kind: ShapeCircle, Center: center, RadiusMeters: radiusMeters, Style: style}
}

func Marker(at models.Coordinates, popup, tooltip string) Shape {
	return Shape{Kind: ShapeMarker, Center: at, Popup: popup, Tooltip: tooltip}
}

func CircleMarker(at models.Coordinates, style Style) Shape {
	return Shape{Kind: ShapeCircleMarker, Center: at, Style: style}
}

func Polyline(points []models.Coordinates, style Style) Shape {
	shape := Shape{Kind: ShapePolyline, Points: points, Style: style}
	if len(points) > 0 {
		shape.Center = points[0]
	}
	return shape
}
