// Package metrics holds the Prometheus collectors for the coverage map service.
// Collectors are registered on the default registry and served from /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CoverageState = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coverage_state",
		Help: "Current coverage button state (0=off, 1-7=ring index, 8=simulation)",
	})

	CoverageTransitions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coverage_transitions_total",
		Help: "Coverage button transitions",
	})

	RingRedraws = promauto.NewCounter(prometheus.CounterOpts{
		Name: "coverage_ring_redraws_total",
		Help: "Times the ring layer was redrawn",
	})

	TourStationsVisited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "tour_stations_visited_total",
		Help: "Stations whose full tour choreography completed",
	})

	SimulationsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "coverage_simulations_active",
		Help: "Running tour simulations (0 or 1)",
	})

	StationsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stations_loaded",
		Help: "Stations currently held in the store",
	})

	StationRowsSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "station_rows_skipped_total",
		Help: "Station rows dropped for missing or non-numeric coordinates",
	})

	SessionsConnected = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "map_sessions_connected",
		Help: "Browser sessions attached over websocket",
	})

	CommandsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "map_commands_dropped_total",
		Help: "Map commands dropped for slow sessions",
	})

	GeocodeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "geocode_requests_total",
		Help: "Geocoding lookups by result",
	}, []string{"result"})
)
