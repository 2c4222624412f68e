package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"icu-workouts/internal/analysis"
)

func TestDownsample(t *testing.T) {
	assert.Equal(t, []float64{1.5, 3.5}, downsample([]float64{1, 2, 3, 4}, 2))
	assert.Equal(t, []float64{2, 0}, downsample([]float64{0, 2, 0, 0}, 2))

	short := []float64{1, 2}
	assert.Equal(t, short, downsample(short, 60))
}

func TestFormatDelta(t *testing.T) {
	assert.Equal(t, "+3", formatDelta(3.4))
	assert.Equal(t, "-3", formatDelta(-2.6))
	assert.Equal(t, "", formatDelta(0.2))
	assert.Equal(t, "", formatDelta(-0.4))
}

func TestFormatFTP(t *testing.T) {
	ftp := 250
	weight := 70.0
	zero := 0.0

	assert.Equal(t, "-", formatFTP(nil, &weight))
	assert.Equal(t, "250 W", formatFTP(&ftp, nil))
	assert.Equal(t, "250 W", formatFTP(&ftp, &zero))
	assert.Equal(t, "250 W (3.6 W/kg)", formatFTP(&ftp, &weight))
}

func TestFormatOptional(t *testing.T) {
	lthr := 170
	rest := 48.0

	assert.Equal(t, "170 bpm", formatOptInt(&lthr, "bpm"))
	assert.Equal(t, "-", formatOptInt(nil, "bpm"))
	assert.Equal(t, "48 bpm", formatOptFloat(&rest, "%.0f bpm"))
	assert.Equal(t, "-", formatOptFloat(nil, "%.0f bpm"))
	assert.Equal(t, "-", formatTSS(nil))
	assert.Equal(t, "-", formatIF(nil))
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "short", truncateName("short", 10))
	assert.Equal(t, "Over/un...", truncateName("Over/unders with surges", 10))
	assert.Equal(t, "Zügig ...", truncateName("Zügig Schwellen", 9))
}

func TestIntensityProfile(t *testing.T) {
	intervals := []analysis.Interval{
		{Label: "Warmup", DurationSeconds: 300, Zone: analysis.Z1},
		{Label: "Sprint", DurationSeconds: 20, Zone: analysis.Z7},
		{Label: "Skipped", DurationSeconds: 0, Zone: analysis.Z3},
		{Label: "Threshold", DurationSeconds: 600, Zone: analysis.Z4},
	}

	t.Run("without thresholds", func(t *testing.T) {
		data := intensityProfile(intervals, analysis.SportRide, analysis.ThresholdSet{})
		assert.Len(t, data, 5+1+10)
		for _, v := range data {
			assert.Equal(t, analysis.DefaultIF, v)
		}
	})

	t.Run("with power zones", func(t *testing.T) {
		ftp := 250.0
		ts := analysis.ThresholdSet{
			FTPWatts:   &ftp,
			PowerZones: analysis.PercentOfFTP(55, 75, 90, 105, 120, 150, 999),
		}
		data := intensityProfile(intervals, analysis.SportRide, ts)
		assert.Len(t, data, 16)
		assert.Less(t, data[0], data[len(data)-1])
		assert.Greater(t, data[5], data[len(data)-1])
	})
}
