package geocode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/mr1hm/station-coverage-map/internal/config"
	"github.com/mr1hm/station-coverage-map/internal/metrics"
	"github.com/mr1hm/station-coverage-map/internal/models"
)

var ErrEmptyQuery = errors.New("query is required")

// ErrUnavailable is returned while the circuit breaker is open.
var ErrUnavailable = errors.New("geocoder unavailable")

type Place struct {
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
	DisplayName string  `json:"display_name"`
}

func (p Place) Coordinates() models.Coordinates {
	return models.Coordinates{Latitude: p.Lat, Longitude: p.Lon}
}

// nominatimPlace mirrors the search response; coordinates arrive as strings.
type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Client looks addresses up against a Nominatim-compatible search endpoint.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
	limiter   *rate.Limiter
	breaker   *gobreaker.CircuitBreaker[[]Place]
}

func NewClient(cfg config.GeocodeConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	c := &Client{
		baseURL:   cfg.URL,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: timeout},
		limiter:   rate.NewLimiter(rate.Limit(cfg.RPS), 1),
	}

	c.breaker = gobreaker.NewCircuitBreaker[[]Place](gobreaker.Settings{
		Name:        "geocode",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})

	return c
}

// Search returns the places matching query, best match first. No match is an empty
// slice, not an error.
func (c *Client) Search(ctx context.Context, query string) ([]Place, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	if err := c.limiter.Wait(ctx); err != nil {
		metrics.GeocodeRequests.WithLabelValues("rate_limited").Inc()
		return nil, fmt.Errorf("error waiting for rate limiter: %w", err)
	}

	places, err := c.breaker.Execute(func() ([]Place, error) {
		return c.search(ctx, query)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.GeocodeRequests.WithLabelValues("unavailable").Inc()
			return nil, ErrUnavailable
		}
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
		return nil, err
	}

	if len(places) == 0 {
		metrics.GeocodeRequests.WithLabelValues("miss").Inc()
	} else {
		metrics.GeocodeRequests.WithLabelValues("hit").Inc()
	}
	return places, nil
}

func (c *Client) search(ctx context.Context, query string) ([]Place, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing geocoder url: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("limit", "5")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}

	var raw []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("error decoding resp.Body: %w", err)
	}

	places := make([]Place, 0, len(raw))
	for _, r := range raw {
		lat, errLat := strconv.ParseFloat(r.Lat, 64)
		lon, errLon := strconv.ParseFloat(r.Lon, 64)
		if errLat != nil || errLon != nil {
			continue
		}
		places = append(places, Place{Lat: lat, Lon: lon, DisplayName: r.DisplayName})
	}
	return places, nil
}
