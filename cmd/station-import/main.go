package main

import (
	"context"
	"flag"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/mr1hm/station-coverage-map/internal/config"
	"github.com/mr1hm/station-coverage-map/internal/ingestion"
	"github.com/mr1hm/station-coverage-map/internal/logging"
	"github.com/mr1hm/station-coverage-map/internal/repository"
	"github.com/mr1hm/station-coverage-map/internal/stations"
)

// station-import loads the station table once into the catalog so the map can start
// without reaching the source.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}

	source := flag.String("source", cfg.Stations.Source, "station CSV file path or URL")
	flag.Parse()
	cfg.Stations.Source = *source

	logging.Setup(cfg.Logging.Level)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	mgr := ingestion.NewManager(cfg, db, stations.NewStore())
	res, err := mgr.Load(ctx)
	if err != nil {
		logging.Fatalf("Import failed: %v", err)
	}
	if res.FromCache {
		logging.Fatalf("Import failed: source %s unreadable, catalog unchanged", cfg.Stations.Source)
	}
	if res.PersistErr != nil {
		logging.Fatalf("Import failed: could not save stations to catalog: %v", res.PersistErr)
	}

	total, err := db.Count(ctx)
	if err != nil {
		logging.Fatalf("Failed to count catalog: %v", err)
	}
	slog.Info("import complete", "source", cfg.Stations.Source, "imported", res.Count, "skipped", res.Skipped, "catalog", total)
}
