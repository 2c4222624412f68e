package api

import (
	"time"

	"icu-workouts/internal/intervals"
	"icu-workouts/internal/service"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Type   string `json:"type"`
	Detail string `json:"detail"`
}

// WorkoutTextResponse wraps the rendered workout builder text
type WorkoutTextResponse struct {
	Text string `json:"text"`
}

// ListWorkoutsResponse packages list results
type ListWorkoutsResponse struct {
	Items []service.Workout `json:"items"`
}

// PlanWorkoutRequest is the payload for POST /workouts/{id}/plan
type PlanWorkoutRequest struct {
	Date  string `json:"date"` // YYYY-MM-DD
	Notes string `json:"notes"`
}

// PlanWorkoutResponse describes the created calendar entry
type PlanWorkoutResponse struct {
	WorkoutID string `json:"workout_id"`
	EventID   *int   `json:"event_id"`
	Date      string `json:"date"`
}

// FitnessDay is one day of the fitness trend
type FitnessDay struct {
	Date    string  `json:"date"`
	CTL     float64 `json:"ctl"`
	ATL     float64 `json:"atl"`
	TSB     float64 `json:"tsb"`
	Planned bool    `json:"planned"`
}

// FitnessView is the fitness trend response
type FitnessView struct {
	Current       FitnessDay   `json:"current"`
	Form          string       `json:"form"`
	Activities    int          `json:"activities"`
	CompletedLoad float64      `json:"completed_load"`
	PlannedLoad   float64      `json:"planned_load"`
	UpdatedAt     time.Time    `json:"updated_at"`
	Trend         []FitnessDay `json:"trend"`
}

func toFitnessView(s *service.FitnessSummary) FitnessView {
	view := FitnessView{
		Current: FitnessDay{
			Date: s.Current.Date.Format(intervals.DateLayout),
			CTL:  s.Current.CTL,
			ATL:  s.Current.ATL,
			TSB:  s.Current.TSB,
		},
		Form:          s.Form,
		Activities:    s.Activities,
		CompletedLoad: s.CompletedLoad,
		PlannedLoad:   s.PlannedLoad,
		UpdatedAt:     s.UpdatedAt,
		Trend:         make([]FitnessDay, 0, len(s.Trend)),
	}
	for _, m := range s.Trend {
		view.Trend = append(view.Trend, FitnessDay{
			Date:    m.Date.Format(intervals.DateLayout),
			CTL:     m.CTL,
			ATL:     m.ATL,
			TSB:     m.TSB,
			Planned: m.Planned,
		})
	}
	return view
}
