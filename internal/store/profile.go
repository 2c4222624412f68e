package store

import (
	"database/sql"
	"errors"
	"fmt"
)

// SaveProfile stores or replaces the cached athlete record
func (s *Store) SaveProfile(p *CachedProfile) error {
	_, err := s.db.Exec(`
		INSERT INTO athlete_profile (athlete_id, data, fetched_at)
		VALUES (?, ?, ?)
		ON CONFLICT(athlete_id) DO UPDATE SET
			data = excluded.data,
			fetched_at = excluded.fetched_at
	`, p.AthleteID, string(p.Data), formatTime(p.FetchedAt))
	return err
}

// GetProfile returns the cached athlete record
func (s *Store) GetProfile(athleteID string) (*CachedProfile, error) {
	var p CachedProfile
	var data, fetchedAt string
	err := s.db.QueryRow(`
		SELECT athlete_id, data, fetched_at FROM athlete_profile WHERE athlete_id = ?
	`, athleteID).Scan(&p.AthleteID, &data, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoCachedProfile
	}
	if err != nil {
		return nil, err
	}

	p.Data = []byte(data)
	p.FetchedAt, err = parseTime(fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing fetched_at %q: %w", fetchedAt, err)
	}
	return &p, nil
}

// DeleteProfile drops the cached record so the next read refetches
func (s *Store) DeleteProfile(athleteID string) error {
	_, err := s.db.Exec(`DELETE FROM athlete_profile WHERE athlete_id = ?`, athleteID)
	return err
}
