package stations

import (
	"sort"
	"sync"

	"github.com/mr1hm/station-coverage-map/internal/models"
)

// Store holds the loaded station set and its north-to-south visiting order.
type Store struct {
	mu       sync.RWMutex
	stations []models.Station
	order    []int
	version  uint64
}

func NewStore() *Store {
	return &Store{}
}

// Replace swaps the whole station set and rebuilds the order.
func (s *Store) Replace(stations []models.Station) {
	cp := make([]models.Station, len(stations))
	copy(cp, stations)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.stations = cp
	s.order = BuildOrder(cp)
	s.version++
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stations)
}

func (s *Store) Get(i int) (models.Station, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.stations) {
		return models.Station{}, false
	}
	return s.stations[i], true
}

// All returns a copy of the stations in load order.
func (s *Store) All() []models.Station {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]models.Station, len(s.stations))
	copy(result, s.stations)
	return result
}

func (s *Store) Coordinates() []models.Coordinates {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]models.Coordinates, len(s.stations))
	for i := range s.stations {
		result[i] = s.stations[i].Coordinates()
	}
	return result
}

// Order returns a copy of the cached station order.
func (s *Store) Order() []int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]int, len(s.order))
	copy(result, s.order)
	return result
}

// Snapshot returns copies of the stations and their order taken under one lock.
func (s *Store) Snapshot() ([]models.Station, []int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := make([]models.Station, len(s.stations))
	copy(st, s.stations)
	order := make([]int, len(s.order))
	copy(order, s.order)
	return st, order
}

// Version increases on every Replace.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// BuildOrder returns the station indices sorted by descending latitude. Stations on the
// same latitude keep their load order.
func BuildOrder(stations []models.Station) []int {
	order := make([]int, len(stations))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return stations[order[a]].Latitude > stations[order[b]].Latitude
	})
	return order
}
