package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"icu-workouts/internal/analysis"
)

const workoutColumns = `id, sport, title, description, intervals, total_seconds,
	estimated_tss, estimated_if, builder_text, created_at`

// SaveWorkout inserts or updates a workout. A workout without an ID gets a new
// UUID and a missing CreatedAt is set to now.
func (s *Store) SaveWorkout(w *Workout) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = time.Now()
	}

	intervals, err := json.Marshal(w.Intervals)
	if err != nil {
		return fmt.Errorf("encoding intervals: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO workouts (`+workoutColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			sport = excluded.sport,
			title = excluded.title,
			description = excluded.description,
			intervals = excluded.intervals,
			total_seconds = excluded.total_seconds,
			estimated_tss = excluded.estimated_tss,
			estimated_if = excluded.estimated_if,
			builder_text = excluded.builder_text
	`,
		w.ID, string(w.Sport), w.Title, w.Description, string(intervals), w.TotalSeconds,
		ptrIntToNullInt64(w.EstimatedTSS), ptrToNullFloat64(w.EstimatedIF), w.BuilderText,
		formatTime(w.CreatedAt),
	)
	return err
}

// GetWorkout retrieves a workout by ID
func (s *Store) GetWorkout(id string) (*Workout, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: invalid id %q", ErrWorkoutNotFound, id)
	}

	row := s.db.QueryRow(`SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id)
	w, err := scanWorkout(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkoutNotFound
	}
	return w, err
}

// ListWorkouts returns workouts newest first
func (s *Store) ListWorkouts(limit, offset int) ([]Workout, error) {
	rows, err := s.db.Query(`
		SELECT `+workoutColumns+`
		FROM workouts
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

// CountWorkouts returns the number of stored workouts
func (s *Store) CountWorkouts() (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM workouts`).Scan(&n)
	return n, err
}

// DeleteWorkout removes a workout and its calendar links
func (s *Store) DeleteWorkout(id string) error {
	result, err := s.db.Exec(`DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkout(row rowScanner) (*Workout, error) {
	var (
		w         Workout
		sport     string
		intervals string
		tss       sql.NullInt64
		ifactor   sql.NullFloat64
		createdAt string
	)
	err := row.Scan(&w.ID, &sport, &w.Title, &w.Description, &intervals, &w.TotalSeconds,
		&tss, &ifactor, &w.BuilderText, &createdAt)
	if err != nil {
		return nil, err
	}

	w.Sport = analysis.Sport(sport)
	w.EstimatedTSS = nullInt64ToIntPtr(tss)
	w.EstimatedIF = nullFloat64ToPtr(ifactor)
	if err := json.Unmarshal([]byte(intervals), &w.Intervals); err != nil {
		return nil, fmt.Errorf("decoding intervals of workout %s: %w", w.ID, err)
	}
	w.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at %q: %w", createdAt, err)
	}
	return &w, nil
}
