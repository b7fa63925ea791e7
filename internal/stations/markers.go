package stations

import (
	"fmt"
	"html"
	"strings"

	"github.com/mr1hm/station-coverage-map/internal/mapview"
	"github.com/mr1hm/station-coverage-map/internal/models"
)

// Markers builds one marker per station with its metadata as popup content.
func Markers(stations []models.Station) []mapview.Shape {
	shapes := make([]mapview.Shape, 0, len(stations))
	for i := range stations {
		st := &stations[i]
		tooltip := st.Name
		if tooltip == "" {
			tooltip = st.ID
		}
		shapes = append(shapes, mapview.Marker(st.Coordinates(), popup(st), tooltip))
	}
	return shapes
}

func popup(st *models.Station) string {
	var b strings.Builder

	title := st.Name
	if title == "" {
		title = st.ID
	}
	fmt.Fprintf(&b, "<b>%s</b>", html.EscapeString(title))

	rows := []struct{ label, value string }{
		{"ID", st.ID},
		{"Organization", st.Organization},
		{"Status", st.Status},
		{"State", st.State},
		{"Country", st.Country},
		{"Last updated", st.LastUpdated},
	}
	for _, r := range rows {
		if r.value == "" {
			continue
		}
		fmt.Fprintf(&b, "<br>%s: %s", r.label, html.EscapeString(r.value))
	}
	fmt.Fprintf(&b, "<br>%.5f, %.5f", st.Latitude, st.Longitude)

	return b.String()
}
