package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"cafelog/internal/model"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	database, err := Open(filepath.Join(t.TempDir(), "cafelog.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { database.Close() })
	return database
}

func testCafe(name string, rating int, place *model.Place) model.Cafe {
	c := model.NewCafe(time.Date(2025, 10, 10, 8, 15, 0, 123000000, time.UTC))
	c.Name = name
	c.Rating = rating
	c.Place = place
	return c
}

func TestSaveAndListRoundTrip(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	withPlace := testCafe("Hvala", 5, &model.Place{
		Address:    "23 Duxton Rd, Singapore",
		Coordinate: model.Coordinate{Lat: 1.2793, Lon: 103.8436},
	})
	withPlace.Notes = "Excellent coffee"
	withPlace.Favourite = true
	noPlace := testCafe("Syip", 4, nil)
	noPlace.Specialty = model.SpecialtyMusic

	if err := SaveCafes(ctx, database, []model.Cafe{noPlace, withPlace}); err != nil {
		t.Fatalf("SaveCafes: %v", err)
	}

	got, err := ListCafes(ctx, database)
	if err != nil {
		t.Fatalf("ListCafes: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d cafes", len(got))
	}
	if got[0].ID != noPlace.ID || got[1].ID != withPlace.ID {
		t.Fatal("order not preserved")
	}
	if got[0].Place != nil || got[0].Specialty != model.SpecialtyMusic {
		t.Errorf("cafe 0 = %+v", got[0])
	}
	h := got[1]
	if h.Place == nil || *h.Place != *withPlace.Place || !h.Favourite || h.Notes != "Excellent coffee" {
		t.Errorf("cafe 1 = %+v", h)
	}
	if !h.DateVisited.Equal(withPlace.DateVisited) {
		t.Errorf("DateVisited = %v, want %v", h.DateVisited, withPlace.DateVisited)
	}
}

func TestSaveReplacesPreviousSnapshot(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	a, b := testCafe("A", 1, nil), testCafe("B", 2, nil)
	if err := SaveCafes(ctx, database, []model.Cafe{a, b}); err != nil {
		t.Fatal(err)
	}
	if err := SaveCafes(ctx, database, []model.Cafe{b}); err != nil {
		t.Fatal(err)
	}
	got, err := ListCafes(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != b.ID {
		t.Fatalf("got %+v", got)
	}
}

func TestSchemaRejectsInvalidRows(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()

	bad := testCafe("Bad", 9, nil)
	if err := SaveCafes(ctx, database, []model.Cafe{bad}); err == nil {
		t.Fatal("rating 9 accepted by schema")
	}

	_, err := database.Exec(`INSERT INTO cafes (id, position, name, date_visited, rating, specialty, address)
		VALUES ('x', 0, 'Half', '2025-01-01T00:00:00Z', 3, 'food', 'somewhere')`)
	if err == nil {
		t.Fatal("address without coordinate accepted by schema")
	}

	_, err = database.Exec(`INSERT INTO cafes (id, position, name, date_visited, rating, specialty, address, latitude, longitude)
		VALUES ('y', 0, 'Far', '2025-01-01T00:00:00Z', 3, 'food', 'nowhere', 91, 10)`)
	if err == nil {
		t.Fatal("latitude out of range accepted by schema")
	}

	got, err := ListCafes(ctx, database)
	if err != nil || len(got) != 0 {
		t.Fatalf("ListCafes after failed saves = %v, %v", got, err)
	}
}

func TestSnapshotterDropsStaleVersions(t *testing.T) {
	database := openTestDB(t)
	ctx := context.Background()
	s := NewSnapshotter(database)

	v1 := s.Next()
	v2 := s.Next()
	newer := []model.Cafe{testCafe("Newer", 3, nil)}
	older := []model.Cafe{testCafe("Older", 3, nil)}

	if ok, err := s.Write(ctx, v2, newer); err != nil || !ok {
		t.Fatalf("Write(v2) = %v, %v", ok, err)
	}
	if ok, err := s.Write(ctx, v1, older); err != nil || ok {
		t.Fatalf("Write(v1) = %v, %v; want dropped", ok, err)
	}

	got, err := ListCafes(ctx, database)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Name != "Newer" {
		t.Fatalf("got %+v", got)
	}
}
