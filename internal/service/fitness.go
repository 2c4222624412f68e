package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"icu-workouts/internal/analysis"
	"icu-workouts/internal/intervals"
	"icu-workouts/internal/store"
)

// Trend windows
const (
	DefaultDaysBehind = 90
	DefaultDaysAhead  = 14
)

// ActivityFeed lists completed activities and upcoming calendar events
type ActivityFeed interface {
	GetRecentActivities(ctx context.Context, daysBehind int) ([]intervals.Activity, error)
	GetFutureEvents(ctx context.Context, daysAhead int) ([]intervals.Event, error)
}

// FitnessSummary is the fitness trend with projected planned load
type FitnessSummary struct {
	Current       analysis.FitnessMetrics
	Form          string
	Trend         []analysis.FitnessMetrics
	Activities    int
	CompletedLoad float64
	PlannedLoad   float64
	UpdatedAt     time.Time
}

// FitnessService builds CTL/ATL/TSB from intervals.icu training load
type FitnessService struct {
	feed  ActivityFeed
	store *store.Store
	now   func() time.Time
}

// NewFitnessService creates a fitness service
func NewFitnessService(feed ActivityFeed, st *store.Store) *FitnessService {
	return &FitnessService{
		feed:  feed,
		store: st,
		now:   time.Now,
	}
}

// Trend computes fitness over the last daysBehind days and projects it daysAhead
// days forward using planned workouts. Planned workouts start tomorrow so a
// workout done today isn't counted twice.
func (s *FitnessService) Trend(ctx context.Context, daysBehind, daysAhead int) (*FitnessSummary, error) {
	if daysBehind <= 0 {
		daysBehind = DefaultDaysBehind
	}
	if daysAhead < 0 {
		daysAhead = 0
	}

	activities, err := s.feed.GetRecentActivities(ctx, daysBehind)
	if err != nil {
		return nil, fmt.Errorf("fetching activities: %w", err)
	}

	today := truncateDay(s.now())
	summary := &FitnessSummary{UpdatedAt: s.now()}
	loads := []analysis.DailyLoad{{Date: today}}

	for _, a := range activities {
		start, err := a.StartTime()
		if err != nil {
			log.Printf("fitness: skipping activity %s: %v", a.ID, err)
			continue
		}
		loads = append(loads, analysis.DailyLoad{Date: truncateDay(start), Load: a.Load()})
		summary.Activities++
		summary.CompletedLoad += a.Load()
	}

	if daysAhead > 0 {
		planned, err := s.plannedLoads(ctx, today.AddDate(0, 0, 1), today.AddDate(0, 0, daysAhead))
		if err != nil {
			return nil, err
		}
		for _, l := range planned {
			summary.PlannedLoad += l.Load
		}
		loads = append(loads, planned...)
	}

	if err := s.store.SetSyncTime(store.KeyLastActivityFetch, summary.UpdatedAt); err != nil {
		log.Printf("fitness: recording fetch time: %v", err)
	}

	summary.Trend = analysis.CalculateFitnessTrend(loads, today)
	summary.Current = analysis.GetCurrentFitness(loads, today)
	summary.Form = analysis.FormDescription(summary.Current.TSB)
	return summary, nil
}

// LastFetched returns when activities were last pulled for the trend, zero if never
func (s *FitnessService) LastFetched() (time.Time, error) {
	return s.store.GetSyncTime(store.KeyLastActivityFetch)
}

// plannedLoads merges locally planned workouts with calendar workouts that carry
// a load. Calendar events created from local plans are only counted once.
func (s *FitnessService) plannedLoads(ctx context.Context, from, to time.Time) ([]analysis.DailyLoad, error) {
	local, err := s.store.ListPlannedWorkouts(from, to)
	if err != nil {
		return nil, fmt.Errorf("listing planned workouts: %w", err)
	}
	known := make(map[int]bool)
	for _, p := range local {
		if p.EventID != nil {
			known[*p.EventID] = true
		}
	}

	storedLoads, err := s.store.PlannedLoads(from)
	if err != nil {
		return nil, fmt.Errorf("reading planned loads: %w", err)
	}

	var loads []analysis.DailyLoad
	for _, l := range storedLoads {
		if l.Date.After(to) {
			break
		}
		loads = append(loads, analysis.DailyLoad{Date: l.Date, Load: float64(l.TSS), Planned: true})
	}

	days := int(to.Sub(from).Hours()/24) + 1
	events, err := s.feed.GetFutureEvents(ctx, days)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Printf("fitness: calendar unavailable, using local plans only: %v", err)
		return loads, nil
	}

	for _, e := range events {
		if e.Category != intervals.CategoryWorkout || e.TrainingLoad == nil || known[e.ID] {
			continue
		}
		start, err := e.StartTime()
		if err != nil {
			log.Printf("fitness: skipping event %d: %v", e.ID, err)
			continue
		}
		day := truncateDay(start)
		if day.Before(from) || day.After(to) {
			continue
		}
		loads = append(loads, analysis.DailyLoad{Date: day, Load: float64(*e.TrainingLoad), Planned: true})
	}
	return loads, nil
}
