package store

import (
	"database/sql"
	"errors"
	"time"
)

// KeyLastActivityFetch records when activities were last pulled for the fitness trend
const KeyLastActivityFetch = "last_activity_fetch"

// GetSyncState retrieves a sync state value by key
// Returns empty string if key doesn't exist
func (s *Store) GetSyncState(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`
		SELECT value FROM sync_state WHERE key = ?
	`, key).Scan(&value)

	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return value, err
}

// SetSyncState sets a sync state value
func (s *Store) SetSyncState(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO sync_state (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

// GetSyncTime reads a timestamp stored with SetSyncTime; zero if unset
func (s *Store) GetSyncTime(key string) (time.Time, error) {
	v, err := s.GetSyncState(key)
	if err != nil || v == "" {
		return time.Time{}, err
	}
	return parseTime(v)
}

// SetSyncTime stores a timestamp under key
func (s *Store) SetSyncTime(key string, t time.Time) error {
	return s.SetSyncState(key, formatTime(t))
}
