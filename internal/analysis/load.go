package analysis

import "math"

// Interval is one step of a structured workout
type Interval struct {
	Label           string   `json:"description"`
	DurationSeconds int      `json:"duration_seconds"`
	Zone            ZoneType `json:"type"`
}

// LoadResult holds the workout-level load estimate. Both fields are nil for
// sports that don't support load estimation.
type LoadResult struct {
	EstimatedTSS *int     `json:"estimated_tss"`
	EstimatedIF  *float64 `json:"estimated_intensity_factor"`
}

// EstimateTSS sums durationHours * IF^2 * 100 over the intervals and rounds the
// total half away from zero. Non-positive durations contribute nothing.
func EstimateTSS(intervals []Interval, ts ThresholdSet, sport Sport) *int {
	if !SupportsLoadEstimation(sport) {
		return nil
	}

	discipline := Classify(sport)
	var total float64
	for _, iv := range intervals {
		ifValue := EstimateIntervalIF(iv.Zone, discipline, ts).IF
		hours := float64(max(0, iv.DurationSeconds)) / 3600
		total += hours * ifValue * ifValue * 100
	}

	tss := int(math.Round(total))
	return &tss
}

// EstimateIntensityFactor returns the duration-weighted mean IF rounded to three
// decimals, or 0 when no interval has a positive duration.
func EstimateIntensityFactor(intervals []Interval, ts ThresholdSet, sport Sport) *float64 {
	if !SupportsLoadEstimation(sport) {
		return nil
	}

	discipline := Classify(sport)
	var weighted, totalSeconds float64
	for _, iv := range intervals {
		seconds := float64(max(0, iv.DurationSeconds))
		weighted += EstimateIntervalIF(iv.Zone, discipline, ts).IF * seconds
		totalSeconds += seconds
	}

	result := 0.0
	if totalSeconds > 0 {
		result = roundTo(weighted/totalSeconds, 3)
	}
	return &result
}

// EstimateLoad computes TSS and IF for a workout
func EstimateLoad(intervals []Interval, ts ThresholdSet, sport Sport) LoadResult {
	return LoadResult{
		EstimatedTSS: EstimateTSS(intervals, ts, sport),
		EstimatedIF:  EstimateIntensityFactor(intervals, ts, sport),
	}
}

// TotalDuration returns the summed positive duration of the intervals in seconds
func TotalDuration(intervals []Interval) int {
	total := 0
	for _, iv := range intervals {
		total += max(0, iv.DurationSeconds)
	}
	return total
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
