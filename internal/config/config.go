package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	GRPC     GRPCConfig
	Worker   WorkerConfig
	Stations StationsConfig
	Coverage CoverageConfig
	Tour     TourConfig
	Map      MapConfig
	Geocode  GeocodeConfig
	DB       DatabaseConfig
	Logging  LoggingConfig
}

type GRPCConfig struct {
	Port int
}

type ServerConfig struct {
	Host         string
	Port         int
	RateLimitRPS int
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

// StationsConfig describes where the station table comes from. Source is either an
// http(s) URL or a local file path.
type StationsConfig struct {
	Source       string
	LoadAttempts int
	RetryDelay   time.Duration
}

type CoverageConfig struct {
	RingCyclePeriod time.Duration
}

type TourConfig struct {
	BaseZoom     int
	CloseZoom    int
	BaseFly      time.Duration
	CloseFly     time.Duration
	Dwell        time.Duration
	Pause        time.Duration
	PollInterval time.Duration
	MotionGrace  time.Duration
}

type MapConfig struct {
	CenterLat float64
	CenterLon float64
	Zoom      int
}

type GeocodeConfig struct {
	URL       string
	RPS       float64
	UserAgent string
	Timeout   time.Duration
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "localhost"),
			Port:         getEnvInt("SERVER_PORT", 8080),
			RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 20),
		},
		GRPC: GRPCConfig{
			Port: getEnvInt("GRPC_PORT", 50051),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 64),
		},
		Stations: StationsConfig{
			Source:       getEnv("STATIONS_SOURCE", "./data/stations.csv"),
			LoadAttempts: getEnvInt("STATIONS_LOAD_ATTEMPTS", 3),
			RetryDelay:   getEnvDuration("STATIONS_RETRY_DELAY", 2*time.Second),
		},
		Coverage: CoverageConfig{
			RingCyclePeriod: getEnvDuration("RING_CYCLE_PERIOD", 500*time.Millisecond),
		},
		Tour: TourConfig{
			BaseZoom:     getEnvInt("TOUR_BASE_ZOOM", 11),
			CloseZoom:    getEnvInt("TOUR_CLOSE_ZOOM", 16),
			BaseFly:      getEnvDuration("TOUR_BASE_FLY", 4*time.Second),
			CloseFly:     getEnvDuration("TOUR_CLOSE_FLY", 5*time.Second),
			Dwell:        getEnvDuration("TOUR_DWELL", 3*time.Second),
			Pause:        getEnvDuration("TOUR_PAUSE", time.Second),
			PollInterval: getEnvDuration("TOUR_POLL_INTERVAL", time.Second),
			MotionGrace:  getEnvDuration("MOTION_GRACE", 2*time.Second),
		},
		Map: MapConfig{
			CenterLat: getEnvFloat("MAP_CENTER_LAT", 20.0),
			CenterLon: getEnvFloat("MAP_CENTER_LON", 0.0),
			Zoom:      getEnvInt("MAP_ZOOM", 3),
		},
		Geocode: GeocodeConfig{
			URL:       getEnv("GEOCODE_URL", "https://nominatim.openstreetmap.org/search"),
			RPS:       getEnvFloat("GEOCODE_RPS", 1),
			UserAgent: getEnv("GEOCODE_USER_AGENT", "station-coverage-map/1.0"),
			Timeout:   getEnvDuration("GEOCODE_TIMEOUT", 10*time.Second),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/stations.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.GRPC.Port < 1 || c.GRPC.Port > 65535 {
		return fmt.Errorf("invalid grpc port: %d", c.GRPC.Port)
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit rps must be at least 1: %d", c.Server.RateLimitRPS)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Stations.Source == "" {
		return fmt.Errorf("stations source must be set")
	}
	if c.Stations.LoadAttempts < 1 {
		return fmt.Errorf("stations load attempts must be at least 1")
	}

	if c.Coverage.RingCyclePeriod < 10*time.Millisecond {
		return fmt.Errorf("ring cycle period must be at least 10ms")
	}

	if c.Tour.BaseZoom < 0 || c.Tour.CloseZoom > 22 || c.Tour.CloseZoom <= c.Tour.BaseZoom {
		return fmt.Errorf("invalid tour zoom levels: base=%d close=%d", c.Tour.BaseZoom, c.Tour.CloseZoom)
	}
	if c.Tour.PollInterval <= 0 {
		return fmt.Errorf("tour poll interval must be positive")
	}

	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 || c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		return fmt.Errorf("invalid map center: %f,%f", c.Map.CenterLat, c.Map.CenterLon)
	}

	if c.Geocode.RPS <= 0 {
		return fmt.Errorf("geocode rps must be positive")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
