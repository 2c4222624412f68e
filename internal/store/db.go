package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrNoAuth is returned when no authentication is stored
var ErrNoAuth = errors.New("no authentication stored")

// ErrWorkoutNotFound is returned when a workout doesn't exist
var ErrWorkoutNotFound = errors.New("workout not found")

// ErrNoCachedProfile is returned when no athlete profile has been cached yet
var ErrNoCachedProfile = errors.New("no cached athlete profile")

// Open opens the SQLite database at path, creating it if necessary.
// An empty path uses ~/.icu-workouts/data.db; ":memory:" opens a private in-memory database.
func Open(path string) (*Store, error) {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return nil, fmt.Errorf("getting db path: %w", err)
		}
	}

	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// sqlite allows one writer; an in-memory database also only exists per connection
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return newStore(db), nil
}

// DefaultPath returns the default location of the SQLite database file
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".icu-workouts", "data.db"), nil
}
