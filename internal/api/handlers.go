// Package api exposes the workout engine and intervals.icu data over HTTP.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"icu-workouts/internal/analysis"
	"icu-workouts/internal/fitfile"
	"icu-workouts/internal/intervals"
	"icu-workouts/internal/service"
	"icu-workouts/internal/store"
)

// Query defaults
const (
	DefaultDaysBehind = 42
	DefaultDaysAhead  = 365
	DefaultListLimit  = 20
	maxBodyBytes      = 1 << 20
)

// Intervals is the subset of the intervals.icu client the API reads from
type Intervals interface {
	GetRecentActivities(ctx context.Context, daysBehind int) ([]intervals.Activity, error)
	GetWellness(ctx context.Context, date time.Time) (*intervals.Wellness, error)
	GetFutureEvents(ctx context.Context, daysAhead int) ([]intervals.Event, error)
}

// Profiles returns the cached athlete record
type Profiles interface {
	Athlete(ctx context.Context) (*intervals.Athlete, error)
}

// Handler serves the HTTP API
type Handler struct {
	icu      Intervals
	profiles Profiles
	workouts *service.WorkoutService
	fitness  *service.FitnessService
	now      func() time.Time
}

// NewHandler builds a Handler
func NewHandler(icu Intervals, profiles Profiles, workouts *service.WorkoutService, fitness *service.FitnessService) *Handler {
	return &Handler{
		icu:      icu,
		profiles: profiles,
		workouts: workouts,
		fitness:  fitness,
		now:      time.Now,
	}
}

// RegisterRoutes wires endpoints to the mux
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	routes := map[string]http.HandlerFunc{
		"GET /athlete-profile":     h.athleteProfile,
		"GET /recent-activities":   h.recentActivities,
		"GET /wellness":            h.wellness,
		"GET /upcoming-events":     h.upcomingEvents,
		"GET /fitness":             h.fitnessTrend,
		"POST /generate-workout":   h.generateWorkout,
		"POST /workout-text":       h.workoutText,
		"GET /workouts":            h.listWorkouts,
		"GET /workouts/{id}":       h.getWorkout,
		"DELETE /workouts/{id}":    h.deleteWorkout,
		"GET /workouts/{id}/fit":   h.exportWorkout,
		"POST /workouts/{id}/plan": h.planWorkout,
		"GET /healthz":             healthz,
	}
	for pattern, fn := range routes {
		mux.Handle(pattern, instrument(pattern, fn))
	}
	mux.Handle("GET /metrics", promhttp.Handler())
}

// Routes returns a mux with every endpoint registered and request logging
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return logRequests(mux)
}

// healthz reports a simple OK status for health checks
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("api: %s %s (%s)", r.Method, r.URL.Path, time.Since(start).Round(time.Millisecond))
	})
}

func (h *Handler) athleteProfile(w http.ResponseWriter, r *http.Request) {
	athlete, err := h.profiles.Athlete(r.Context())
	if err != nil {
		log.Printf("api: athlete profile: %v", err)
		writeError(w, http.StatusServiceUnavailable, "profile_unavailable", analysis.ErrNoProfile.Error())
		return
	}
	writeJSON(w, http.StatusOK, athlete)
}

func (h *Handler) recentActivities(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "daysBehind", DefaultDaysBehind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	activities, err := h.icu.GetRecentActivities(r.Context(), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(activities))
}

func (h *Handler) wellness(w http.ResponseWriter, r *http.Request) {
	date := h.now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse(intervals.DateLayout, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "validation_failed", "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	wellness, err := h.icu.GetWellness(r.Context(), date)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, wellness)
}

func (h *Handler) upcomingEvents(w http.ResponseWriter, r *http.Request) {
	days, err := intParam(r, "daysAhead", DefaultDaysAhead)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	events, err := h.icu.GetFutureEvents(r.Context(), days)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, nonNil(events))
}

func (h *Handler) fitnessTrend(w http.ResponseWriter, r *http.Request) {
	behind, err := intParam(r, "daysBehind", service.DefaultDaysBehind)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	ahead, err := intParam(r, "daysAhead", service.DefaultDaysAhead)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	summary, err := h.fitness.Trend(r.Context(), behind, ahead)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toFitnessView(summary))
}

func (h *Handler) generateWorkout(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeWorkoutRequest(w, r)
	if !ok {
		return
	}

	workout, err := h.workouts.Generate(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	recordGenerated(workout)
	writeJSON(w, http.StatusOK, workout)
}

func (h *Handler) workoutText(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeWorkoutRequest(w, r)
	if !ok {
		return
	}

	text, err := h.workouts.Text(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, WorkoutTextResponse{Text: text})
}

func (h *Handler) listWorkouts(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r, "limit", DefaultListLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}
	offset, err := intParam(r, "offset", 0)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	workouts, err := h.workouts.List(r.Context(), limit, offset)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ListWorkoutsResponse{Items: workouts})
}

func (h *Handler) getWorkout(w http.ResponseWriter, r *http.Request) {
	workout, err := h.workouts.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, workout)
}

func (h *Handler) deleteWorkout(w http.ResponseWriter, r *http.Request) {
	if err := h.workouts.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) exportWorkout(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	// render into memory so errors can still be reported as JSON
	var buf bytes.Buffer
	if err := h.workouts.ExportFIT(r.Context(), id, &buf); err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.ant.fit")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": id + ".fit"}))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func (h *Handler) planWorkout(w http.ResponseWriter, r *http.Request) {
	var req PlanWorkoutRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body")
		return
	}
	date, err := time.Parse(intervals.DateLayout, req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", "date must be YYYY-MM-DD")
		return
	}

	planned, err := h.workouts.Plan(r.Context(), r.PathValue("id"), date, req.Notes)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, PlanWorkoutResponse{
		WorkoutID: planned.WorkoutID,
		EventID:   planned.EventID,
		Date:      planned.PlannedDate.Format(intervals.DateLayout),
	})
}

func decodeWorkoutRequest(w http.ResponseWriter, r *http.Request) (service.WorkoutRequest, bool) {
	var req service.WorkoutRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse body: "+err.Error())
		return req, false
	}
	return req, true
}

func intParam(r *http.Request, name string, def int) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.New(name + " must be a non-negative integer")
	}
	return v, nil
}

// writeServiceError maps domain errors to status codes
func writeServiceError(w http.ResponseWriter, err error) {
	var apiErr *intervals.APIError
	switch {
	case errors.Is(err, analysis.ErrNoProfile):
		writeError(w, http.StatusServiceUnavailable, "profile_unavailable", err.Error())
	case errors.Is(err, service.ErrInvalidWorkout):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	case errors.Is(err, fitfile.ErrNoSteps), errors.Is(err, fitfile.ErrStepTooLong):
		writeError(w, http.StatusUnprocessableEntity, "unprocessable", err.Error())
	case errors.Is(err, store.ErrWorkoutNotFound), errors.Is(err, intervals.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.As(err, &apiErr):
		log.Printf("api: upstream error: %v", err)
		writeError(w, http.StatusBadGateway, "upstream_error", err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "timeout", err.Error())
	default:
		log.Printf("api: %v", err)
		writeError(w, http.StatusInternalServerError, "server_error", err.Error())
	}
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	writeJSON(w, status, ErrorResponse{Type: code, Detail: detail})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("api: encoding response: %v", err)
	}
}

// nonNil keeps empty lists as [] rather than null
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
