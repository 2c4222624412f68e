package tui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"icu-workouts/internal/analysis"
)

func formatOptInt(v *int, unit string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%d %s", *v, unit)
}

func formatOptFloat(v *float64, format string) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf(format, *v)
}

// formatFTP renders FTP with W/kg when the weight is known
func formatFTP(ftp *int, weightKg *float64) string {
	if ftp == nil {
		return "-"
	}
	if weightKg == nil || *weightKg <= 0 {
		return fmt.Sprintf("%d W", *ftp)
	}
	return fmt.Sprintf("%d W (%.1f W/kg)", *ftp, float64(*ftp) / *weightKg)
}

func formatTSS(tss *int) string {
	if tss == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *tss)
}

func formatIF(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

// formatDelta renders a signed change, blank when it rounds to zero
func formatDelta(d float64) string {
	switch {
	case d >= 0.5:
		return fmt.Sprintf("+%.0f", d)
	case d <= -0.5:
		return fmt.Sprintf("%.0f", d)
	}
	return ""
}

func formatAge(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func truncateName(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// intensityProfile expands intervals into one IF sample per minute of work.
// Intervals shorter than a minute still get a single sample.
func intensityProfile(intervals []analysis.Interval, sport analysis.Sport, ts analysis.ThresholdSet) []float64 {
	discipline := analysis.Classify(sport)
	var out []float64
	for _, iv := range intervals {
		if iv.DurationSeconds <= 0 {
			continue
		}
		ifValue := analysis.EstimateIntervalIF(iv.Zone, discipline, ts).IF
		for range max(1, iv.DurationSeconds/60) {
			out = append(out, ifValue)
		}
	}
	return out
}

// downsample averages data into targetLen buckets, ignoring zero samples
func downsample(data []float64, targetLen int) []float64 {
	if targetLen <= 0 || len(data) <= targetLen {
		return data
	}

	result := make([]float64, targetLen)
	ratio := float64(len(data)) / float64(targetLen)

	for i := range targetLen {
		start := int(float64(i) * ratio)
		end := min(int(float64(i+1)*ratio), len(data))

		sum := 0.0
		count := 0
		for j := start; j < end; j++ {
			if data[j] > 0 {
				sum += data[j]
				count++
			}
		}
		if count > 0 {
			result[i] = sum / float64(count)
		}
	}

	return result
}
