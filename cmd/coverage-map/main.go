package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mr1hm/station-coverage-map/internal/api"
	"github.com/mr1hm/station-coverage-map/internal/broadcast"
	"github.com/mr1hm/station-coverage-map/internal/config"
	"github.com/mr1hm/station-coverage-map/internal/coverage"
	"github.com/mr1hm/station-coverage-map/internal/geocode"
	internalgrpc "github.com/mr1hm/station-coverage-map/internal/grpc"
	"github.com/mr1hm/station-coverage-map/internal/ingestion"
	"github.com/mr1hm/station-coverage-map/internal/logging"
	"github.com/mr1hm/station-coverage-map/internal/mapview"
	"github.com/mr1hm/station-coverage-map/internal/measure"
	"github.com/mr1hm/station-coverage-map/internal/models"
	"github.com/mr1hm/station-coverage-map/internal/repository"
	"github.com/mr1hm/station-coverage-map/internal/stations"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Map commands fan out to every connected browser.
	broadcaster := broadcast.NewBroadcaster(cfg.Worker.BufferSize * 4)
	remote := mapview.NewRemote(broadcaster, cfg.Tour.MotionGrace)
	remote.SetView(models.Coordinates{Latitude: cfg.Map.CenterLat, Longitude: cfg.Map.CenterLon}, cfg.Map.Zoom)

	stationLayer := mapview.NewLayerGroup("stations", broadcaster)
	coverageLayer := mapview.NewLayerGroup("coverage", broadcaster)
	searchLayer := mapview.NewLayerGroup("search", broadcaster)
	measureLayer := mapview.NewLayerGroup("measure", broadcaster)

	store := stations.NewStore()

	rings := coverage.NewRingEngine(store, coverageLayer)
	tour := coverage.NewTourAnimator(remote, store, coverage.TourConfig{
		BaseZoom:     cfg.Tour.BaseZoom,
		CloseZoom:    cfg.Tour.CloseZoom,
		BaseFly:      cfg.Tour.BaseFly,
		CloseFly:     cfg.Tour.CloseFly,
		Dwell:        cfg.Tour.Dwell,
		Pause:        cfg.Tour.Pause,
		PollInterval: cfg.Tour.PollInterval,
	})
	controller := coverage.NewController(rings, tour, broadcaster, cfg.Coverage.RingCyclePeriod)
	measureTool := measure.NewTool(measureLayer, broadcaster)

	// Start gRPC health server
	grpcServer := internalgrpc.NewServer()
	go func() {
		grpcAddr := fmt.Sprintf(":%d", cfg.GRPC.Port)
		if err := grpcServer.Start(grpcAddr); err != nil {
			logging.Fatalf("gRPC server error: %v", err)
		}
	}()

	// Start station load; coverage defaults on once stations are in.
	mgr := ingestion.NewManager(cfg, db, store)
	mgr.Start(ctx, func(res ingestion.LoadResult) {
		stationLayer.Replace(stations.Markers(store.All()))
		if err := controller.SetState(models.CoverageDefault); err != nil {
			slog.Error("failed to set default coverage", "error", err)
		}
		grpcServer.SetReady(true)
		if res.PersistErr != nil {
			slog.Warn("stations loaded but not saved to catalog", "error", res.PersistErr)
		}
		slog.Info("map ready", "stations", res.Count, "from_cache", res.FromCache)
	})

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false,
	}))
	router.Use(api.RateLimitMiddleware(cfg.Server.RateLimitRPS))

	handler := api.NewHandler(api.Deps{
		Stations:    store,
		Coverage:    controller,
		Measure:     measureTool,
		Geocoder:    geocode.NewClient(cfg.Geocode),
		Remote:      remote,
		Broadcaster: broadcaster,
		Layers:      []*mapview.LayerGroup{stationLayer, coverageLayer, searchLayer, measureLayer},
		SearchLayer: searchLayer,
	})
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	mgr.Stop()
	controller.Close()
	remote.Close()
	broadcaster.Close() // ends every websocket writer
	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
