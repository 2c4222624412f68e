package intervals

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"icu-workouts/internal/analysis"
)

const athleteJSON = `{
	"id": "i12345",
	"name": "Test Athlete",
	"timezone": "Europe/Amsterdam",
	"icu_resting_hr": 48,
	"icu_weight": 72.5,
	"sportSettings": [
		{
			"id": 1,
			"types": ["Ride", "VirtualRide", "GravelRide"],
			"ftp": 250,
			"lthr": 168,
			"max_hr": 188,
			"power_zones": [55, 75, 90, 105, 120, 150, 999],
			"hr_zones": [137, 153, 161, 168, 175, 181, 188]
		},
		{
			"id": 2,
			"types": ["Run", "TrailRun"],
			"ftp": null,
			"lthr": 172,
			"hr_zones": [145, 160, 170, 180, 190, 200, 210]
		}
	]
}`

func fixedClock() time.Time {
	return time.Date(2024, 3, 15, 18, 30, 0, 0, time.UTC)
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	opts = append([]Option{
		WithBaseURL(srv.URL),
		WithRateLimiter(NewRateLimiter(100, time.Minute, 0)),
		WithClock(fixedClock),
	}, opts...)
	return NewAPIKeyClient("i12345", "secret", opts...)
}

func TestAPIKeyAuth(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "API_KEY", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "/athlete/i12345", r.URL.Path)
		w.Write([]byte(athleteJSON))
	})

	_, err := client.GetAthlete(context.Background())
	require.NoError(t, err)
}

func TestAthleteProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(athleteJSON))
	})

	athlete, err := client.GetAthlete(context.Background())
	require.NoError(t, err)
	profile := athlete.Profile()

	assert.Equal(t, "i12345", profile.ID)
	require.NotNil(t, profile.RestingHR)
	assert.Equal(t, 48.0, *profile.RestingHR)
	require.Len(t, profile.SportSettings, 2)

	ride := profile.SportSettings[0]
	assert.Equal(t, []analysis.Sport{analysis.SportRide, analysis.SportVirtualRide, analysis.SportGravelRide}, ride.Types)
	assert.Equal(t, 250, *ride.FTP)
	assert.Equal(t, []int{55, 75, 90, 105, 120, 150, 999}, ride.PowerZones)

	run := profile.SportSettings[1]
	assert.Nil(t, run.FTP)
	assert.Equal(t, 172, *run.LTHR)

	// the profile plugs straight into text rendering
	text, err := analysis.RenderWorkoutText([]analysis.Interval{{Label: "Main", DurationSeconds: 1200, Zone: analysis.Z4}}, analysis.SportVirtualRide, profile)
	require.NoError(t, err)
	assert.Equal(t, "- 20m @ 90-105%\n", text)
}

func TestGetRecentActivities(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/athlete/i12345/activities", r.URL.Path)
		assert.Equal(t, "2024-02-02", r.URL.Query().Get("oldest"))
		assert.Equal(t, "2024-03-15", r.URL.Query().Get("newest"))
		w.Write([]byte(`[
			{"id": "a1", "start_date_local": "2024-03-14T07:00:00", "name": "Morning Ride", "type": "Ride", "icu_training_load": 85, "icu_intensity": 78.5},
			{"id": "a2", "start_date_local": "2024-03-15T18:00:00", "name": "Easy Run", "type": "Run"}
		]`))
	})

	activities, err := client.GetRecentActivities(context.Background(), 42)
	require.NoError(t, err)
	require.Len(t, activities, 2)

	assert.Equal(t, 85.0, activities[0].Load())
	assert.Equal(t, 0.0, activities[1].Load())

	start, err := activities[0].StartTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 14, 7, 0, 0, 0, time.UTC), start)
}

func TestGetWellness(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/athlete/i12345/wellness/2024-03-10", r.URL.Path)
		w.Write([]byte(`{"id": "2024-03-10", "ctl": 52.3, "atl": 61.1, "restingHR": 47, "sleepSecs": 27000}`))
	})

	wellness, err := client.GetWellness(context.Background(), time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2024-03-10", wellness.ID)
	assert.InDelta(t, 52.3, *wellness.CTL, 1e-9)
	assert.Equal(t, 47, *wellness.RestingHR)
}

func TestGetFutureEvents(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/athlete/i12345/events", r.URL.Path)
		assert.Equal(t, "2024-03-15", r.URL.Query().Get("oldest"))
		assert.Equal(t, "2024-03-22", r.URL.Query().Get("newest"))
		w.Write([]byte(`[{"id": 7, "start_date_local": "2024-03-17T00:00:00", "category": "WORKOUT", "name": "Threshold", "type": "Ride", "icu_training_load": 90}]`))
	})

	events, err := client.GetFutureEvents(context.Background(), 7)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, CategoryWorkout, events[0].Category)
	assert.Equal(t, 90, *events[0].TrainingLoad)
}

func TestAddWorkoutEvent(t *testing.T) {
	var got EventRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/athlete/i12345/events", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"id": 99, "start_date_local": "2024-03-20T00:00:00", "category": "WORKOUT", "name": "Sweet Spot"}`))
	})

	pw := PlannedWorkout{
		Date:  time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		Name:  "Sweet Spot",
		Notes: "Keep cadence high",
		Sport: analysis.SportRide,
	}
	event, err := client.AddWorkoutEvent(context.Background(), pw, "- 20m @ 88-94%\n")
	require.NoError(t, err)

	assert.Equal(t, 99, event.ID)
	assert.Equal(t, CategoryWorkout, got.Category)
	assert.Equal(t, "2024-03-20T00:00:00", got.StartDateLocal)
	assert.Equal(t, "Ride", got.Type)
	assert.Equal(t, "Keep cadence high\n\n- 20m @ 88-94%\n", got.Description)
}

func TestNewWorkoutEventRequestWithoutNotes(t *testing.T) {
	req := NewWorkoutEventRequest(PlannedWorkout{Name: "Easy", Notes: "   ", Sport: analysis.SportRun}, "- 30m @ 140-150bpm\n")
	assert.Equal(t, "- 30m @ 140-150bpm\n", req.Description)
}

func TestAPIErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such athlete", http.StatusNotFound)
	})

	_, err := client.GetAthlete(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "no such athlete")
}

func TestRetryAfterTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	var observed []int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.Header().Set("Retry-After", "0")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(athleteJSON))
	}, WithObserver(func(op string, status int, _ time.Duration) {
		assert.Equal(t, "athlete", op)
		observed = append(observed, status)
	}))

	_, err := client.GetAthlete(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, []int{http.StatusTooManyRequests, http.StatusOK}, observed)
	assert.Equal(t, 1, client.Throttled())
}

func TestRetryOnlyOnce(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Retry-After", "0")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.GetAthlete(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
}

func TestDefaultAthleteID(t *testing.T) {
	c := NewAPIKeyClient("", "key")
	assert.Equal(t, CurrentAthlete, c.AthleteID())
}
