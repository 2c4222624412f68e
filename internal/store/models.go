package store

import (
	"time"

	"icu-workouts/internal/analysis"
)

// Auth represents OAuth tokens for intervals.icu API access
type Auth struct {
	AthleteID    string    `db:"athlete_id"`
	AccessToken  string    `db:"access_token"`
	RefreshToken string    `db:"refresh_token"`
	ExpiresAt    time.Time `db:"expires_at"` // zero when the token never expires
}

// CachedProfile is the raw athlete record as last fetched
type CachedProfile struct {
	AthleteID string    `db:"athlete_id"`
	Data      []byte    `db:"data"` // intervals.icu athlete JSON
	FetchedAt time.Time `db:"fetched_at"`
}

// Workout is a generated workout with its load estimate
type Workout struct {
	ID           string              `db:"id"` // uuid
	Sport        analysis.Sport      `db:"sport"`
	Title        string              `db:"title"`
	Description  string              `db:"description"`
	Intervals    []analysis.Interval `db:"intervals"` // stored as JSON
	TotalSeconds int                 `db:"total_seconds"`
	EstimatedTSS *int                `db:"estimated_tss"`
	EstimatedIF  *float64            `db:"estimated_if"`
	BuilderText  string              `db:"builder_text"`
	CreatedAt    time.Time           `db:"created_at"`
}

// PlannedWorkout links a workout to a calendar day
type PlannedWorkout struct {
	ID          int64     `db:"id"`
	WorkoutID   string    `db:"workout_id"`
	EventID     *int      `db:"event_id"` // intervals.icu event, nil if not pushed
	PlannedDate time.Time `db:"planned_date"`
	Name        string    `db:"name"`
	Notes       string    `db:"notes"`
}

// PlannedLoad is the estimated load of a planned workout on its day
type PlannedLoad struct {
	Date time.Time
	TSS  int
}
