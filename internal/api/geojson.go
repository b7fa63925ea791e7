package api

import (
	"github.com/mr1hm/station-coverage-map/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// toGeoJSON lists stations in tour order (north to south).
func toGeoJSON(stations []models.Station, order []int) FeatureCollection {
	features := make([]Feature, 0, len(order))

	for rank, idx := range order {
		if idx < 0 || idx >= len(stations) {
			continue
		}
		s := stations[idx]
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{s.Longitude, s.Latitude},
			},
			Properties: map[string]any{
				"id":           s.ID,
				"name":         s.Name,
				"organization": s.Organization,
				"status":       s.Status,
				"last_updated": s.LastUpdated,
				"state":        s.State,
				"country":      s.Country,
				"tour_rank":    rank,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
