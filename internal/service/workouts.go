package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"icu-workouts/internal/analysis"
	"icu-workouts/internal/fitfile"
	"icu-workouts/internal/intervals"
	"icu-workouts/internal/store"
)

// ErrInvalidWorkout is returned for requests the engine can't work with
var ErrInvalidWorkout = errors.New("invalid workout")

const defaultTitle = "Workout"

// ProfileSource yields the athlete's zone tables, or nil when unavailable
type ProfileSource interface {
	Profile(ctx context.Context) (*analysis.AthleteProfile, error)
}

// Calendar schedules workouts on the intervals.icu calendar
type Calendar interface {
	AddWorkoutEvent(ctx context.Context, pw intervals.PlannedWorkout, text string) (*intervals.Event, error)
}

// WorkoutRequest describes a workout to generate
type WorkoutRequest struct {
	Sport       analysis.Sport      `json:"sport"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Intervals   []analysis.Interval `json:"intervals"`
}

// Validate checks the sport and fills in a default title
func (r *WorkoutRequest) Validate() error {
	sport, err := analysis.ParseSport(string(r.Sport))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidWorkout, err)
	}
	r.Sport = sport
	if strings.TrimSpace(r.Title) == "" {
		r.Title = defaultTitle
	}
	return nil
}

// Workout is a generated workout as returned to callers
type Workout struct {
	ID           string              `json:"id"`
	Sport        analysis.Sport      `json:"sport"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Intervals    []analysis.Interval `json:"intervals"`
	TotalSeconds int                 `json:"total_seconds"`
	EstimatedTSS *int                `json:"estimated_tss"`
	EstimatedIF  *float64            `json:"estimated_intensity_factor"`
	Text         string              `json:"text,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
}

func workoutFromStore(w *store.Workout) *Workout {
	return &Workout{
		ID:           w.ID,
		Sport:        w.Sport,
		Title:        w.Title,
		Description:  w.Description,
		Intervals:    w.Intervals,
		TotalSeconds: w.TotalSeconds,
		EstimatedTSS: w.EstimatedTSS,
		EstimatedIF:  w.EstimatedIF,
		Text:         w.BuilderText,
		CreatedAt:    w.CreatedAt,
	}
}

// WorkoutService generates, stores and schedules workouts
type WorkoutService struct {
	profiles ProfileSource
	calendar Calendar
	store    *store.Store
}

// NewWorkoutService creates a workout service. calendar may be nil when
// workouts are never pushed to intervals.icu.
func NewWorkoutService(profiles ProfileSource, calendar Calendar, st *store.Store) *WorkoutService {
	return &WorkoutService{
		profiles: profiles,
		calendar: calendar,
		store:    st,
	}
}

// Generate estimates TSS and IF for the request and saves the workout. The
// builder text is included when the athlete profile is available.
func (s *WorkoutService) Generate(ctx context.Context, req WorkoutRequest) (*Workout, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	profile, err := s.profiles.Profile(ctx)
	if err != nil {
		return nil, err
	}

	thresholds := analysis.ThresholdsFor(profile, req.Sport)
	load := analysis.EstimateLoad(req.Intervals, thresholds, req.Sport)

	w := &store.Workout{
		Sport:        req.Sport,
		Title:        req.Title,
		Description:  req.Description,
		Intervals:    req.Intervals,
		TotalSeconds: analysis.TotalDuration(req.Intervals),
		EstimatedTSS: load.EstimatedTSS,
		EstimatedIF:  load.EstimatedIF,
	}
	if profile != nil {
		// profile is non-nil so rendering can't fail
		w.BuilderText, _ = analysis.RenderWorkoutText(req.Intervals, req.Sport, profile)
	}

	if err := s.store.SaveWorkout(w); err != nil {
		return nil, fmt.Errorf("saving workout: %w", err)
	}

	log.Printf("workout %s: %s %q, %d intervals, tss=%s", w.ID, w.Sport, w.Title, len(w.Intervals), formatTSS(w.EstimatedTSS))
	return workoutFromStore(w), nil
}

// Text renders the request as intervals.icu workout builder text
func (s *WorkoutService) Text(ctx context.Context, req WorkoutRequest) (string, error) {
	if err := req.Validate(); err != nil {
		return "", err
	}

	profile, err := s.profiles.Profile(ctx)
	if err != nil {
		return "", err
	}
	return analysis.RenderWorkoutText(req.Intervals, req.Sport, profile)
}

// Get returns a saved workout
func (s *WorkoutService) Get(ctx context.Context, id string) (*Workout, error) {
	w, err := s.store.GetWorkout(id)
	if err != nil {
		return nil, err
	}
	return workoutFromStore(w), nil
}

// List returns saved workouts, newest first
func (s *WorkoutService) List(ctx context.Context, limit, offset int) ([]Workout, error) {
	stored, err := s.store.ListWorkouts(limit, offset)
	if err != nil {
		return nil, fmt.Errorf("listing workouts: %w", err)
	}

	workouts := make([]Workout, 0, len(stored))
	for i := range stored {
		workouts = append(workouts, *workoutFromStore(&stored[i]))
	}
	return workouts, nil
}

// Count returns the number of saved workouts
func (s *WorkoutService) Count(ctx context.Context) (int, error) {
	return s.store.CountWorkouts()
}

// Delete removes a saved workout together with its local plans. Events
// already pushed to intervals.icu are left alone.
func (s *WorkoutService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteWorkout(id); err != nil {
		return err
	}
	log.Printf("workouts: deleted %s", id)
	return nil
}

// Plan pushes a saved workout to the intervals.icu calendar on date and
// records the planned workout locally
func (s *WorkoutService) Plan(ctx context.Context, id string, date time.Time, notes string) (*store.PlannedWorkout, error) {
	if s.calendar == nil {
		return nil, errors.New("no intervals.icu calendar configured")
	}
	if date.IsZero() {
		return nil, fmt.Errorf("%w: missing plan date", ErrInvalidWorkout)
	}

	w, err := s.store.GetWorkout(id)
	if err != nil {
		return nil, err
	}

	text := w.BuilderText
	if text == "" {
		profile, err := s.profiles.Profile(ctx)
		if err != nil {
			return nil, err
		}
		if text, err = analysis.RenderWorkoutText(w.Intervals, w.Sport, profile); err != nil {
			return nil, err
		}
	}

	event, err := s.calendar.AddWorkoutEvent(ctx, intervals.PlannedWorkout{
		Date:  date,
		Name:  w.Title,
		Notes: notes,
		Sport: w.Sport,
	}, text)
	if err != nil {
		return nil, fmt.Errorf("adding calendar event: %w", err)
	}

	planned := &store.PlannedWorkout{
		WorkoutID:   w.ID,
		EventID:     &event.ID,
		PlannedDate: truncateDay(date),
		Name:        w.Title,
		Notes:       notes,
	}
	if err := s.store.SavePlannedWorkout(planned); err != nil {
		return nil, fmt.Errorf("recording planned workout: %w", err)
	}

	log.Printf("workout %s planned on %s as event %d", w.ID, planned.PlannedDate.Format(intervals.DateLayout), event.ID)
	return planned, nil
}

// ExportFIT writes a saved workout as a FIT workout file. Targets are resolved
// against the current profile and left open without one.
func (s *WorkoutService) ExportFIT(ctx context.Context, id string, out io.Writer) error {
	w, err := s.store.GetWorkout(id)
	if err != nil {
		return err
	}

	profile, err := s.profiles.Profile(ctx)
	if err != nil {
		return err
	}

	return fitfile.Encode(out, fitfile.Workout{
		Name:      w.Title,
		Sport:     w.Sport,
		Intervals: w.Intervals,
		CreatedAt: w.CreatedAt,
	}, analysis.ThresholdsFor(profile, w.Sport))
}

func formatTSS(tss *int) string {
	if tss == nil {
		return "n/a"
	}
	return fmt.Sprintf("%d", *tss)
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
