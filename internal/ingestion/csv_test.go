package ingestion

import (
	"strings"
	"testing"
)

const sampleTable = `ID,Name,Organization,Status,Last_Updated,State,Country,Latitude,Longitude
bs1,North Hill,Acme,active,2024-01-02,QLD,Australia,-10.5,142.2
bs2,Harbour,Acme,active,2024-01-03,NSW,Australia,-33.86,151.21
bs3,Broken,Acme,planned,2024-01-04,VIC,Australia,abc,144.9
bs4,Missing,Acme,planned,2024-01-05,VIC,Australia,,144.9
bs5,Far North,Acme,active,2024-01-06,NT,Australia,20,130
bs6,Out Of Range,Acme,active,2024-01-06,NT,Australia,95,130
`

func TestParseStations_SkipsMalformedRows(t *testing.T) {
	stations, skipped, err := ParseStations(strings.NewReader(sampleTable))
	if err != nil {
		t.Fatalf("ParseStations failed: %v", err)
	}

	if len(stations) != 3 {
		t.Fatalf("expected 3 stations, got %d", len(stations))
	}
	if skipped != 3 {
		t.Errorf("expected 3 skipped rows, got %d", skipped)
	}

	first := stations[0]
	if first.ID != "bs1" || first.Name != "North Hill" || first.Organization != "Acme" ||
		first.Status != "active" || first.LastUpdated != "2024-01-02" || first.State != "QLD" ||
		first.Country != "Australia" || first.Latitude != -10.5 || first.Longitude != 142.2 {
		t.Errorf("unexpected first station %+v", first)
	}
}

func TestParseStations_HeaderAliasesAndOrder(t *testing.T) {
	table := "lng,lat,station_name\n2.35,48.85,Paris\n"

	stations, _, err := ParseStations(strings.NewReader(table))
	if err != nil {
		t.Fatalf("ParseStations failed: %v", err)
	}
	if len(stations) != 1 {
		t.Fatalf("expected 1 station, got %d", len(stations))
	}
	st := stations[0]
	if st.Latitude != 48.85 || st.Longitude != 2.35 || st.Name != "Paris" {
		t.Errorf("unexpected station %+v", st)
	}
	if st.ID == "" {
		t.Error("expected a generated id for a table without an id column")
	}
}

func TestParseStations_MissingCoordinateColumns(t *testing.T) {
	if _, _, err := ParseStations(strings.NewReader("id,name\n1,a\n")); err == nil {
		t.Error("expected error for table without coordinate columns")
	}
	if _, _, err := ParseStations(strings.NewReader("")); err == nil {
		t.Error("expected error for empty table")
	}
}

func TestParseStations_ShortRows(t *testing.T) {
	table := "latitude,longitude,name\n1,2\n3\n"

	stations, skipped, err := ParseStations(strings.NewReader(table))
	if err != nil {
		t.Fatalf("ParseStations failed: %v", err)
	}
	if len(stations) != 1 || skipped != 1 {
		t.Errorf("expected 1 station and 1 skipped, got %d and %d", len(stations), skipped)
	}
}

func TestParseStations_DuplicateIDsMadeUnique(t *testing.T) {
	table := "id,lat,lon\nA,1,1\nA,2,2\nA,3,3\n,4,4\nrow_5,5,5\n"

	stations, _, err := ParseStations(strings.NewReader(table))
	if err != nil {
		t.Fatalf("ParseStations failed: %v", err)
	}

	want := []string{"A", "A_row_3", "A_row_4", "row_5", "row_5_row_6"}
	if len(stations) != len(want) {
		t.Fatalf("expected %d stations, got %d", len(want), len(stations))
	}
	for i, id := range want {
		if stations[i].ID != id {
			t.Errorf("station %d: expected id %s, got %s", i, id, stations[i].ID)
		}
	}
}
