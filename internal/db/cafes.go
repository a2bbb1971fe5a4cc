package db

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"cafelog/internal/model"

	"github.com/google/uuid"
)

// ListCafes reads the journal in its stored order.
func ListCafes(ctx context.Context, db *sql.DB) ([]model.Cafe, error) {
	query := `
		SELECT id, name, date_visited, rating, specialty, notes, favourite, address, latitude, longitude
		FROM cafes
		ORDER BY position ASC
	`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cafes: %w", err)
	}
	defer rows.Close()

	var results []model.Cafe
	for rows.Next() {
		var c model.Cafe
		var id, dateVisited, specialty string
		var favourite int64
		var address sql.NullString
		var lat, lon sql.NullFloat64

		if err := rows.Scan(&id, &c.Name, &dateVisited, &c.Rating, &specialty, &c.Notes, &favourite, &address, &lat, &lon); err != nil {
			return nil, fmt.Errorf("failed to scan cafe row: %w", err)
		}

		if c.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("bad cafe id %q: %w", id, err)
		}
		if c.DateVisited, err = time.Parse(time.RFC3339Nano, dateVisited); err != nil {
			return nil, fmt.Errorf("bad date for cafe %s: %w", id, err)
		}
		if c.Specialty, err = model.ParseSpecialty(specialty); err != nil {
			return nil, err
		}
		c.Favourite = favourite == 1
		if address.Valid && lat.Valid && lon.Valid {
			c.Place = &model.Place{
				Address:    address.String,
				Coordinate: model.Coordinate{Lat: lat.Float64, Lon: lon.Float64},
			}
		}

		results = append(results, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating cafe rows: %w", err)
	}

	return results, nil
}

// SaveCafes replaces the stored journal with cafes, keeping their order.
func SaveCafes(ctx context.Context, db *sql.DB, cafes []model.Cafe) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM cafes"); err != nil {
		return fmt.Errorf("failed to clear cafes: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO cafes (id, position, name, date_visited, rating, specialty, notes, favourite, address, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, c := range cafes {
		var address, lat, lon interface{}
		if c.Place != nil {
			address = c.Place.Address
			lat = c.Place.Coordinate.Lat
			lon = c.Place.Coordinate.Lon
		}
		favourite := 0
		if c.Favourite {
			favourite = 1
		}

		_, err := stmt.ExecContext(ctx,
			c.ID.String(), i, c.Name, c.DateVisited.UTC().Format(time.RFC3339Nano),
			c.Rating, string(c.Specialty), c.Notes, favourite, address, lat, lon,
		)
		if err != nil {
			return fmt.Errorf("failed to insert cafe %q: %w", c.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit cafes: %w", err)
	}
	return nil
}

// Snapshotter writes versioned snapshots of the journal. Snapshots are taken
// on the UI loop but written from commands, which may run out of order; a
// snapshot older than the last one written is dropped.
type Snapshotter struct {
	db *sql.DB

	mu      sync.Mutex
	version uint64
	written uint64
}

// NewSnapshotter wraps an open database.
func NewSnapshotter(db *sql.DB) *Snapshotter {
	return &Snapshotter{db: db}
}

// Next reserves the version number for a new snapshot.
func (s *Snapshotter) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	return s.version
}

// Write stores a snapshot unless a newer one has already been written. It
// reports whether the snapshot was written.
func (s *Snapshotter) Write(ctx context.Context, version uint64, cafes []model.Cafe) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if version <= s.written {
		return false, nil
	}
	if err := SaveCafes(ctx, s.db, cafes); err != nil {
		return false, err
	}
	s.written = version
	return true, nil
}
