package db

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS cafes (
    id            TEXT PRIMARY KEY,
    position      INTEGER NOT NULL,
    name          TEXT NOT NULL CHECK(length(trim(name)) > 0),
    date_visited  TEXT NOT NULL,
    rating        INTEGER NOT NULL CHECK(rating BETWEEN 1 AND 5),
    specialty     TEXT NOT NULL CHECK(specialty IN ('drinks','food','music','ambience')),
    notes         TEXT NOT NULL DEFAULT '',
    favourite     INTEGER NOT NULL DEFAULT 0 CHECK(favourite IN (0,1)),
    address       TEXT,
    latitude      REAL CHECK(latitude BETWEEN -90 AND 90),
    longitude     REAL CHECK(longitude BETWEEN -180 AND 180),
    updated_at    TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now')),
    CHECK ((address IS NULL AND latitude IS NULL AND longitude IS NULL)
        OR (address IS NOT NULL AND latitude IS NOT NULL AND longitude IS NOT NULL))
);

CREATE INDEX IF NOT EXISTS idx_cafes_position ON cafes(position);
`

// Open opens or creates the SQLite database and initializes the schema.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time; SQLite would otherwise return SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}
