package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"icu-workouts/internal/analysis"
	"icu-workouts/internal/intervals"
	"icu-workouts/internal/store"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func intPtr(i int) *int { return &i }

func floatPtr(f float64) *float64 { return &f }

func openTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testAthlete() *intervals.Athlete {
	return &intervals.Athlete{
		ID:        "i42",
		Name:      "Test Athlete",
		RestingHR: floatPtr(50),
		SportSettings: []intervals.SportSetting{
			{
				Types:      []string{"Ride", "VirtualRide"},
				FTP:        intPtr(250),
				LTHR:       intPtr(170),
				PowerZones: []int{55, 75, 90, 105, 120, 150, 999},
				HRZones:    []int{146, 162, 178, 194, 210, 226, 242},
			},
			{
				Types:   []string{"Run"},
				LTHR:    intPtr(175),
				HRZones: []int{150, 166, 182, 198, 214, 230, 246},
			},
		},
	}
}

type fakeAthletes struct {
	athlete *intervals.Athlete
	err     error
	calls   int
}

func (f *fakeAthletes) AthleteID() string { return "i42" }

func (f *fakeAthletes) GetAthlete(ctx context.Context) (*intervals.Athlete, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.athlete, nil
}

// staticProfiles serves a fixed profile, nil meaning unavailable
type staticProfiles struct {
	profile *analysis.AthleteProfile
}

func (s staticProfiles) Profile(ctx context.Context) (*analysis.AthleteProfile, error) {
	return s.profile, nil
}

type fakeCalendar struct {
	nextID int
	err    error
	added  []intervals.PlannedWorkout
	texts  []string
}

func (f *fakeCalendar) AddWorkoutEvent(ctx context.Context, pw intervals.PlannedWorkout, text string) (*intervals.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.added = append(f.added, pw)
	f.texts = append(f.texts, text)
	f.nextID++
	return &intervals.Event{ID: f.nextID, Category: intervals.CategoryWorkout, Name: pw.Name}, nil
}

type fakeFeed struct {
	activities []intervals.Activity
	events     []intervals.Event
	eventsErr  error
	daysAhead  int
}

func (f *fakeFeed) GetRecentActivities(ctx context.Context, daysBehind int) ([]intervals.Activity, error) {
	return f.activities, nil
}

func (f *fakeFeed) GetFutureEvents(ctx context.Context, daysAhead int) ([]intervals.Event, error) {
	f.daysAhead = daysAhead
	if f.eventsErr != nil {
		return nil, f.eventsErr
	}
	return f.events, nil
}

var errUnavailable = errors.New("intervals.icu unavailable")
