package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mr1hm/station-coverage-map/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// Each :memory: connection is its own database.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS stations (
			id TEXT PRIMARY KEY,
			name TEXT,
			organization TEXT,
			status TEXT,
			last_updated TEXT,
			state TEXT,
			country TEXT,
			latitude REAL NOT NULL,
			longitude REAL NOT NULL,
			loaded_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_stations_latitude ON stations(latitude);
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteDB) Upsert(ctx context.Context, st *models.Station) error {
	if st.ID == "" {
		return fmt.Errorf("station id is required")
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO stations (id, name, organization, status, last_updated, state, country, latitude, longitude, loaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			organization = excluded.organization,
			status = excluded.status,
			last_updated = excluded.last_updated,
			state = excluded.state,
			country = excluded.country,
			latitude = excluded.latitude,
			longitude = excluded.longitude,
			loaded_at = excluded.loaded_at`,
		st.ID, st.Name, st.Organization, st.Status, st.LastUpdated, st.State, st.Country,
		st.Latitude, st.Longitude, st.LoadedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("error upserting station %s: %w", st.ID, err)
	}
	return nil
}

// List returns the catalog ordered by id so reloads produce the same load order.
func (s *SQLiteDB) List(ctx context.Context) ([]models.Station, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, organization, status, last_updated, state, country, latitude, longitude, loaded_at
		FROM stations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("error listing stations: %w", err)
	}
	defer rows.Close()

	var stations []models.Station
	for rows.Next() {
		st, err := scanStation(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning station: %w", err)
		}
		stations = append(stations, *st)
	}
	return stations, rows.Err()
}

func (s *SQLiteDB) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM stations`).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting stations: %w", err)
	}
	return n, nil
}

func (s *SQLiteDB) Prune(ctx context.Context, keepIDs []string) (int64, error) {
	if len(keepIDs) == 0 {
		res, err := s.db.ExecContext(ctx, `DELETE FROM stations`)
		if err != nil {
			return 0, fmt.Errorf("error pruning stations: %w", err)
		}
		return res.RowsAffected()
	}

	placeholders := strings.Repeat("?,", len(keepIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(keepIDs))
	for i, id := range keepIDs {
		args[i] = id
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM stations WHERE id NOT IN (`+placeholders+`)`, args...)
	if err != nil {
		return 0, fmt.Errorf("error pruning stations: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanStation(row scanner) (*models.Station, error) {
	var (
		st       models.Station
		loadedAt time.Time
	)
	err := row.Scan(&st.ID, &st.Name, &st.Organization, &st.Status, &st.LastUpdated,
		&st.State, &st.Country, &st.Latitude, &st.Longitude, &loadedAt)
	if err != nil {
		return nil, err
	}
	st.LoadedAt = loadedAt
	return &st, nil
}
