package models

import "time"

type Coordinates struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Station is a base station loaded from the station table. Only the coordinates drive
// coverage and tour behaviour; the rest is display metadata for popups.
type Station struct {
	ID           string
	Name         string
	Organization string
	Status       string
	LastUpdated  string
	State        string
	Country      string
	Latitude     float64
	Longitude    float64
	LoadedAt     time.Time // when we ingested it
}

func (s *Station) Coordinates() Coordinates {
	return Coordinates{
		Latitude:  s.Latitude,
		Longitude: s.Longitude,
	}
}
