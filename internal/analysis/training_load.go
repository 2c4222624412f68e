package analysis

import (
	"sort"
	"time"
)

// DailyLoad represents training load (TSS) for a single day
type DailyLoad struct {
	Date    time.Time
	Load    float64
	Planned bool // load comes from a planned workout estimate, not a completed activity
}

// FitnessMetrics represents CTL/ATL/TSB for a day
type FitnessMetrics struct {
	Date    time.Time
	CTL     float64 // Chronic Training Load (42-day EMA) - "Fitness"
	ATL     float64 // Acute Training Load (7-day EMA) - "Fatigue"
	TSB     float64 // Training Stress Balance (CTL - ATL) - "Form"
	Planned bool    // day is in the future and driven by planned load
}

const (
	ctlDays = 42.0
	atlDays = 7.0
)

// CalculateFitnessTrend computes CTL/ATL/TSB from daily loads.
// Days without load are filled with zero; loads on the same day are summed.
// Days after today are projections. Planned load dated today or earlier is
// ignored since only completed activities count there. A zero today projects
// nothing.
func CalculateFitnessTrend(dailyLoads []DailyLoad, today time.Time) []FitnessMetrics {
	if len(dailyLoads) == 0 {
		return nil
	}

	loads := make([]DailyLoad, len(dailyLoads))
	copy(loads, dailyLoads)
	sort.Slice(loads, func(i, j int) bool {
		return loads[i].Date.Before(loads[j].Date)
	})

	// EMA decay constants
	ctlDecay := 2.0 / (ctlDays + 1.0)
	atlDecay := 2.0 / (atlDays + 1.0)

	startDate := loads[0].Date.Truncate(24 * time.Hour)
	endDate := loads[len(loads)-1].Date.Truncate(24 * time.Hour)

	projecting := !today.IsZero()
	cutoff := today.Truncate(24 * time.Hour)
	isFuture := func(d time.Time) bool {
		return projecting && d.After(cutoff)
	}

	loadMap := make(map[string]float64)
	for _, dl := range loads {
		if dl.Planned && projecting && !dl.Date.Truncate(24*time.Hour).After(cutoff) {
			continue
		}
		loadMap[dl.Date.Format("2006-01-02")] += dl.Load
	}

	var metrics []FitnessMetrics
	var ctl, atl float64

	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		load := loadMap[d.Format("2006-01-02")]

		ctl = ctl + ctlDecay*(load-ctl)
		atl = atl + atlDecay*(load-atl)

		metrics = append(metrics, FitnessMetrics{
			Date:    d,
			CTL:     ctl,
			ATL:     atl,
			TSB:     ctl - atl,
			Planned: isFuture(d),
		})
	}

	return metrics
}

// GetCurrentFitness returns the CTL/ATL/TSB values for today, or for the last
// day of the trend when today is zero
func GetCurrentFitness(dailyLoads []DailyLoad, today time.Time) FitnessMetrics {
	metrics := CalculateFitnessTrend(dailyLoads, today)
	for i := len(metrics) - 1; i >= 0; i-- {
		if !metrics[i].Planned {
			return metrics[i]
		}
	}
	return FitnessMetrics{}
}

// FormDescription returns a human-readable description of TSB
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (possibly detrained)"
	case tsb > 10:
		return "Fresh and ready to race"
	case tsb > 0:
		return "Neutral - good for training"
	case tsb > -10:
		return "Slightly fatigued"
	case tsb > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}
