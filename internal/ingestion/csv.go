package ingestion

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mr1hm/station-coverage-map/internal/models"
)

// Column aliases accepted in the header row, matched case-insensitively.
var columnAliases = map[string][]string{
	"latitude":     {"latitude", "lat"},
	"longitude":    {"longitude", "lon", "lng", "long"},
	"id":           {"id", "station_id", "identifier"},
	"name":         {"name", "station_name"},
	"organization": {"organization", "organisation", "operator", "org"},
	"status":       {"status"},
	"last_updated": {"last_updated", "lastupdated", "updated", "last updated"},
	"state":        {"state", "region"},
	"country":      {"country"},
}

type header map[string]int

func parseHeader(row []string) (header, error) {
	index := make(map[string]int, len(row))
	for i, col := range row {
		index[strings.ToLower(strings.TrimSpace(col))] = i
	}

	h := make(header)
	for field, aliases := range columnAliases {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				h[field] = i
				break
			}
		}
	}

	if _, ok := h["latitude"]; !ok {
		return nil, fmt.Errorf("missing latitude column")
	}
	if _, ok := h["longitude"]; !ok {
		return nil, fmt.Errorf("missing longitude column")
	}
	return h, nil
}

func (h header) get(row []string, field string) string {
	i, ok := h[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseStations reads a station table. Rows whose latitude or longitude is missing,
// non-numeric or out of range are skipped and counted in skipped. Every returned station
// has a unique ID: rows without one, or repeating an earlier one, get a row-based ID.
func ParseStations(r io.Reader) (stations []models.Station, skipped int, err error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, 0, fmt.Errorf("empty station table")
		}
		return nil, 0, fmt.Errorf("error reading header: %w", err)
	}
	if len(first) > 0 {
		first[0] = strings.TrimPrefix(first[0], "\ufeff")
	}

	h, err := parseHeader(first)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	seen := make(map[string]bool)
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				skipped++
				continue
			}
			return nil, 0, fmt.Errorf("error reading row %d: %w", line, err)
		}

		lat, latOK := parseCoord(h.get(row, "latitude"), 90)
		lon, lonOK := parseCoord(h.get(row, "longitude"), 180)
		if !latOK || !lonOK {
			skipped++
			continue
		}

		id := uniqueID(seen, h.get(row, "id"), line)
		seen[id] = true

		stations = append(stations, models.Station{
			ID:           id,
			Name:         h.get(row, "name"),
			Organization: h.get(row, "organization"),
			Status:       h.get(row, "status"),
			LastUpdated:  h.get(row, "last_updated"),
			State:        h.get(row, "state"),
			Country:      h.get(row, "country"),
			Latitude:     lat,
			Longitude:    lon,
			LoadedAt:     now,
		})
	}

	return stations, skipped, nil
}

func uniqueID(seen map[string]bool, id string, line int) string {
	base := id
	if base == "" {
		base = fmt.Sprintf("row_%d", line)
	} else if seen[base] {
		base = fmt.Sprintf("%s_row_%d", id, line)
	}

	candidate := base
	for n := 2; seen[candidate]; n++ {
		candidate = fmt.Sprintf("%s_%d", base, n)
	}
	return candidate
}

func parseCoord(s string, limit float64) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || v < -limit || v > limit {
		return 0, false
	}
	return v, true
}
