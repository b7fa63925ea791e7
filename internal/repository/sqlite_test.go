package repository

import (
	"context"
	"testing"
	"time"

	"github.com/mr1hm/station-coverage-map/internal/models"
)

func findStation(t *testing.T, db *SQLiteDB, id string) *models.Station {
	t.Helper()
	list, err := db.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i]
		}
	}
	return nil
}

func setupTestDB(t *testing.T) *SQLiteDB {
	db, err := NewSQLiteDB(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	return db
}

func TestSQLiteDB_UpsertAndList(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	station := &models.Station{
		ID:           "bs_001",
		Name:         "Hilltop",
		Organization: "Example Telecom",
		Status:       "active",
		LastUpdated:  "2024-05-01",
		State:        "NSW",
		Country:      "Australia",
		Latitude:     -33.86,
		Longitude:    151.21,
		LoadedAt:     time.Now(),
	}

	if err := db.Upsert(ctx, station); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got := findStation(t, db, "bs_001")
	if got == nil {
		t.Fatal("expected station, got nil")
	}
	if got.Name != "Hilltop" || got.Country != "Australia" || got.Latitude != -33.86 {
		t.Errorf("unexpected station %+v", got)
	}
}

func TestSQLiteDB_UpsertUpdates(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	st := &models.Station{ID: "bs_1", Name: "Old", Status: "planned", Latitude: 1, Longitude: 1, LoadedAt: time.Now()}
	if err := db.Upsert(ctx, st); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	st.Name = "New"
	st.Status = "active"
	if err := db.Upsert(ctx, st); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	n, err := db.Count(ctx)
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 station, got %d", n)
	}

	got := findStation(t, db, "bs_1")
	if got == nil || got.Name != "New" || got.Status != "active" {
		t.Errorf("expected updated station, got %+v", got)
	}
}

func TestSQLiteDB_UpsertRequiresID(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	if err := db.Upsert(context.Background(), &models.Station{Latitude: 1}); err == nil {
		t.Error("expected error for station without id")
	}
}

func TestSQLiteDB_ListAndPrune(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	ctx := context.Background()
	now := time.Now()
	for _, id := range []string{"c", "a", "b"} {
		if err := db.Upsert(ctx, &models.Station{ID: id, Latitude: 1, Longitude: 2, LoadedAt: now}); err != nil {
			t.Fatalf("Upsert failed: %v", err)
		}
	}

	list, err := db.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 3 || list[0].ID != "a" || list[2].ID != "c" {
		t.Errorf("expected stations ordered by id, got %+v", list)
	}

	removed, err := db.Prune(ctx, []string{"a", "c"})
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 1 {
		t.Errorf("expected 1 pruned station, got %d", removed)
	}

	removed, err = db.Prune(ctx, nil)
	if err != nil {
		t.Fatalf("Prune failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 pruned stations, got %d", removed)
	}
	if n, _ := db.Count(ctx); n != 0 {
		t.Errorf("expected empty catalog, got %d", n)
	}
}
