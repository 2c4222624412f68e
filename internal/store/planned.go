package store

import (
	"database/sql"
	"fmt"
	"time"
)

// SavePlannedWorkout records a workout scheduled on a calendar day
func (s *Store) SavePlannedWorkout(p *PlannedWorkout) error {
	result, err := s.db.Exec(`
		INSERT INTO planned_workouts (workout_id, event_id, planned_date, name, notes)
		VALUES (?, ?, ?, ?, ?)
	`, p.WorkoutID, ptrIntToNullInt64(p.EventID), p.PlannedDate.Format(dateLayout), p.Name, p.Notes)
	if err != nil {
		return err
	}

	p.ID, err = result.LastInsertId()
	return err
}

// ListPlannedWorkouts returns planned workouts with a date in [from, to], earliest first
func (s *Store) ListPlannedWorkouts(from, to time.Time) ([]PlannedWorkout, error) {
	rows, err := s.db.Query(`
		SELECT id, workout_id, event_id, planned_date, name, notes
		FROM planned_workouts
		WHERE planned_date >= ? AND planned_date <= ?
		ORDER BY planned_date, id
	`, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var planned []PlannedWorkout
	for rows.Next() {
		var p PlannedWorkout
		var eventID sql.NullInt64
		var date string
		if err := rows.Scan(&p.ID, &p.WorkoutID, &eventID, &date, &p.Name, &p.Notes); err != nil {
			return nil, err
		}
		p.EventID = nullInt64ToIntPtr(eventID)
		if p.PlannedDate, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("parsing planned_date %q: %w", date, err)
		}
		planned = append(planned, p)
	}
	return planned, rows.Err()
}

// PlannedLoads returns the estimated TSS of planned workouts from a day onwards.
// Workouts without an estimate are skipped.
func (s *Store) PlannedLoads(from time.Time) ([]PlannedLoad, error) {
	rows, err := s.db.Query(`
		SELECT p.planned_date, w.estimated_tss
		FROM planned_workouts p
		JOIN workouts w ON w.id = p.workout_id
		WHERE p.planned_date >= ? AND w.estimated_tss IS NOT NULL
		ORDER BY p.planned_date
	`, from.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var loads []PlannedLoad
	for rows.Next() {
		var date string
		var l PlannedLoad
		if err := rows.Scan(&date, &l.TSS); err != nil {
			return nil, err
		}
		if l.Date, err = time.Parse(dateLayout, date); err != nil {
			return nil, fmt.Errorf("parsing planned_date %q: %w", date, err)
		}
		loads = append(loads, l)
	}
	return loads, rows.Err()
}
