package repository

import (
	"context"

	"github.com/mr1hm/station-coverage-map/internal/models"
)

// StationRepository is the persisted catalog of the last loaded station table.
type StationRepository interface {
	Upsert(ctx context.Context, s *models.Station) error
	List(ctx context.Context) ([]models.Station, error)
	Count(ctx context.Context) (int, error)
	// Prune deletes every station whose id is not in keepIDs.
	Prune(ctx context.Context, keepIDs []string) (int64, error)
}
