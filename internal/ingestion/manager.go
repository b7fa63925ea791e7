package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mr1hm/station-coverage-map/internal/config"
	"github.com/mr1hm/station-coverage-map/internal/metrics"
	"github.com/mr1hm/station-coverage-map/internal/models"
	"github.com/mr1hm/station-coverage-map/internal/repository"
	"github.com/mr1hm/station-coverage-map/internal/stations"
	"github.com/mr1hm/station-coverage-map/internal/worker"
)

// LoadResult describes one station load. PersistErr is set when the stations reached
// the store but could not be saved to the catalog.
type LoadResult struct {
	Count      int
	Skipped    int
	FromCache  bool
	PersistErr error
}

type Manager struct {
	cfg   *config.Config
	repo  repository.StationRepository
	store *stations.Store
	wg    sync.WaitGroup
}

func NewManager(cfg *config.Config, repo repository.StationRepository, store *stations.Store) *Manager {
	return &Manager{
		cfg:   cfg,
		repo:  repo,
		store: store,
	}
}

// Start loads stations in the background and calls onLoaded once the store has been
// filled. onLoaded is not called when nothing could be loaded.
func (m *Manager) Start(ctx context.Context, onLoaded func(LoadResult)) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		res, err := m.Load(ctx)
		if err != nil {
			slog.Error("station load failed", "source", m.cfg.Stations.Source, "error", err)
			return
		}
		if onLoaded != nil {
			onLoaded(res)
		}
	}()
}

func (m *Manager) Stop() {
	m.wg.Wait()
	slog.Info("ingestion manager stopped")
}

// Load fetches the station table, persists it to the catalog and replaces the store
// contents. When the source cannot be read the catalog's last snapshot is used.
func (m *Manager) Load(ctx context.Context) (LoadResult, error) {
	parsed, skipped, fetchErr := m.fetchWithRetry(ctx)
	if fetchErr == nil {
		metrics.StationRowsSkipped.Add(float64(skipped))
		persistErr := m.persist(ctx, parsed)
		if persistErr != nil {
			slog.Warn("could not persist stations to catalog", "error", persistErr)
		}

		m.store.Replace(parsed)
		metrics.StationsLoaded.Set(float64(len(parsed)))
		slog.Info("stations loaded", "source", m.cfg.Stations.Source, "count", len(parsed), "skipped", skipped)
		return LoadResult{Count: len(parsed), Skipped: skipped, PersistErr: persistErr}, nil
	}

	slog.Error("station source unavailable, falling back to catalog", "source", m.cfg.Stations.Source, "error", fetchErr)

	if m.repo == nil {
		return LoadResult{}, fetchErr
	}
	cached, err := m.repo.List(ctx)
	if err != nil {
		return LoadResult{}, fmt.Errorf("error reading catalog after %w: %v", fetchErr, err)
	}
	if len(cached) == 0 {
		return LoadResult{}, fetchErr
	}

	m.store.Replace(cached)
	metrics.StationsLoaded.Set(float64(len(cached)))
	slog.Info("stations loaded from catalog", "count", len(cached))
	return LoadResult{Count: len(cached), FromCache: true}, nil
}

func (m *Manager) fetchWithRetry(ctx context.Context) ([]models.Station, int, error) {
	var lastErr error
	for attempt := 1; attempt <= m.cfg.Stations.LoadAttempts; attempt++ {
		parsed, skipped, err := m.fetch(ctx)
		if err == nil {
			return parsed, skipped, nil
		}
		lastErr = err
		slog.Warn("station fetch failed", "attempt", attempt, "error", err)

		if attempt == m.cfg.Stations.LoadAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, 0, ctx.Err()
		case <-time.After(m.cfg.Stations.RetryDelay):
		}
	}
	return nil, 0, lastErr
}

func (m *Manager) fetch(ctx context.Context) ([]models.Station, int, error) {
	body, err := m.open(ctx, m.cfg.Stations.Source)
	if err != nil {
		return nil, 0, err
	}
	defer body.Close()

	return ParseStations(body)
}

func (m *Manager) open(ctx context.Context, source string) (io.ReadCloser, error) {
	if !strings.HasPrefix(source, "http://") && !strings.HasPrefix(source, "https://") {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("error opening station file: %w", err)
		}
		return f, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("error creating request: %w", err)
	}

	client := &http.Client{
		Timeout: 15 * time.Second,
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error while doing request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("unexpected status code: %d - status: %s", resp.StatusCode, resp.Status)
	}
	return resp.Body, nil
}

// persist writes the parsed stations to the catalog through the worker pool and drops
// catalog entries that are no longer in the table.
func (m *Manager) persist(ctx context.Context, parsed []models.Station) error {
	if m.repo == nil {
		return nil
	}

	pool := worker.NewPool("catalog", m.cfg.Worker.Count, m.cfg.Worker.BufferSize,
		func(ctx context.Context, st models.Station) error {
			if err := m.repo.Upsert(ctx, &st); err != nil {
				slog.Error("error saving station", "id", st.ID, "error", err)
				return err
			}
			return nil
		})
	pool.Start(ctx)

	ids := make([]string, 0, len(parsed))
	var submitErr error
	for _, st := range parsed {
		if err := pool.Submit(ctx, st); err != nil {
			submitErr = err
			break
		}
		ids = append(ids, st.ID)
	}
	stats := pool.Stop()

	if submitErr != nil {
		return fmt.Errorf("error queueing stations: %w", submitErr)
	}
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d stations failed to save", stats.Failed, len(parsed))
	}

	removed, err := m.repo.Prune(ctx, ids)
	if err != nil {
		return err
	}
	slog.Debug("catalog updated", "saved", stats.Processed, "removed", removed)
	return nil
}
