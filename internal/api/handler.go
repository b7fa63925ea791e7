package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/station-coverage-map/internal/broadcast"
	"github.com/mr1hm/station-coverage-map/internal/coverage"
	"github.com/mr1hm/station-coverage-map/internal/geocode"
	"github.com/mr1hm/station-coverage-map/internal/mapview"
	"github.com/mr1hm/station-coverage-map/internal/measure"
	"github.com/mr1hm/station-coverage-map/internal/models"
	"github.com/mr1hm/station-coverage-map/internal/stations"
)

type Geocoder interface {
	Search(ctx context.Context, query string) ([]geocode.Place, error)
}

// Deps are the map components the API drives.
type Deps struct {
	Stations    *stations.Store
	Coverage    *coverage.Controller
	Measure     *measure.Tool
	Geocoder    Geocoder
	Remote      *mapview.Remote
	Broadcaster *broadcast.Broadcaster
	// Layers are replayed to every new browser session, bottom layer first.
	Layers      []*mapview.LayerGroup
	SearchLayer *mapview.LayerGroup
	SearchZoom  int
}

type Handler struct {
	deps Deps
}

func NewHandler(deps Deps) *Handler {
	if deps.SearchZoom == 0 {
		deps.SearchZoom = 14
	}
	return &Handler{
		deps: deps,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/", h.index)
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/ws", h.serveWS)

	api := r.Group("/api")
	api.GET("/stations", h.getStations)
	api.GET("/coverage", h.getCoverage)
	api.PUT("/coverage", h.setCoverage)
	api.POST("/coverage/activate", h.activateCoverage)
	api.GET("/geocode", h.geocode)
	api.GET("/measure", h.getMeasure)
	api.POST("/measure/toggle", h.toggleMeasure)
	api.POST("/measure/click", h.clickMeasure)
	api.DELETE("/measure", h.resetMeasure)
}

func (h *Handler) health(c *gin.Context) {
	layers := make(map[string]int, len(h.deps.Layers))
	for _, l := range h.deps.Layers {
		layers[l.Name()] = l.Len()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"stations":  h.deps.Stations.Len(),
		"sessions":  h.deps.Broadcaster.SubscriberCount(),
		"layers":    layers,
		"measuring": h.deps.Measure.Enabled(),
	})
}

func (h *Handler) getStations(c *gin.Context) {
	all, order := h.deps.Stations.Snapshot()
	fc := toGeoJSON(all, order)
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, fc)
}

type coverageResponse struct {
	State      int     `json:"state"`
	Label      string  `json:"label"`
	Class      string  `json:"class"`
	RadiusKm   float64 `json:"radius_km,omitempty"`
	Simulating bool    `json:"simulating"`
}

func (h *Handler) coverageStatus(s models.CoverageState) coverageResponse {
	radius, _ := s.RadiusKm()
	return coverageResponse{
		State:      int(s),
		Label:      s.Label(),
		Class:      s.Class(),
		RadiusKm:   radius,
		Simulating: h.deps.Coverage.SimulationRunning(),
	}
}

func (h *Handler) getCoverage(c *gin.Context) {
	c.JSON(http.StatusOK, h.coverageStatus(h.deps.Coverage.State()))
}

func (h *Handler) activateCoverage(c *gin.Context) {
	next := h.deps.Coverage.Activate()
	c.JSON(http.StatusOK, h.coverageStatus(next))
}

type setCoverageRequest struct {
	State *int `json:"state" binding:"required,min=0,max=8"`
}

func (h *Handler) setCoverage(c *gin.Context) {
	var req setCoverageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "state must be between 0 and 8"})
		return
	}

	s := models.CoverageState(*req.State)
	if err := h.deps.Coverage.SetState(s); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.coverageStatus(s))
}

func (h *Handler) geocode(c *gin.Context) {
	q := c.Query("q")

	places, err := h.deps.Geocoder.Search(c.Request.Context(), q)
	switch {
	case errors.Is(err, geocode.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": "q is required"})
		return
	case errors.Is(err, geocode.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "geocoder temporarily unavailable"})
		return
	case err != nil:
		c.JSON(http.StatusBadGateway, gin.H{"error": "geocoding failed"})
		return
	}

	if len(places) > 0 {
		best := places[0]
		if h.deps.SearchLayer != nil {
			h.deps.SearchLayer.Replace([]mapview.Shape{
				mapview.Marker(best.Coordinates(), best.DisplayName, best.DisplayName),
			})
		}
		if h.deps.Remote != nil {
			h.deps.Remote.SetView(best.Coordinates(), h.deps.SearchZoom)
		}
	}

	c.JSON(http.StatusOK, gin.H{"results": places})
}

func (h *Handler) getMeasure(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Measure.Current())
}

func (h *Handler) toggleMeasure(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Measure.Toggle())
}

type pointRequest struct {
	Lat *float64 `json:"lat" binding:"required,min=-90,max=90"`
	Lon *float64 `json:"lon" binding:"required,min=-180,max=180"`
}

func (h *Handler) clickMeasure(c *gin.Context) {
	var req pointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon are required"})
		return
	}

	res := h.deps.Measure.Click(models.Coordinates{Latitude: *req.Lat, Longitude: *req.Lon})
	c.JSON(http.StatusOK, res)
}

func (h *Handler) resetMeasure(c *gin.Context) {
	c.JSON(http.StatusOK, h.deps.Measure.Reset())
}
