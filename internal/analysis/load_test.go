package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func floatPtr(f float64) *float64 {
	return &f
}

func intPtr(i int) *int {
	return &i
}

// cyclingWatts is a 250W FTP power table expressed in absolute watts
func cyclingWatts() ThresholdSet {
	return ThresholdSet{
		FTPWatts:   floatPtr(250),
		PowerZones: AbsoluteWatts(138, 207, 276, 345, 414, 483, 552),
	}
}

func runningHR() ThresholdSet {
	return ThresholdSet{
		LTHRBpm: floatPtr(170),
		HRZones: []int{146, 162, 178, 194, 210, 226, 242},
	}
}

func TestEstimateTSS(t *testing.T) {
	tests := []struct {
		name       string
		intervals  []Interval
		thresholds ThresholdSet
		sport      Sport
		expected   int
	}{
		{
			name: "cycling with power zones",
			intervals: []Interval{
				{"Warmup", 300, Z2}, // 0.69 IF -> 3.97
				{"Main", 1800, Z4},  // 1.242 IF -> 77.13
			},
			thresholds: cyclingWatts(),
			sport:      SportRide,
			expected:   81,
		},
		{
			name: "cycling with percent-of-FTP zones",
			intervals: []Interval{
				{"Warmup", 300, Z2}, // 163W -> 0.652 IF
				{"Main", 1800, Z4},  // 244W -> 0.976 IF
			},
			thresholds: ThresholdSet{
				FTPWatts:   floatPtr(250),
				PowerZones: PercentOfFTP(55, 75, 90, 105, 120, 150, 999),
			},
			sport:    SportRide,
			expected: 51,
		},
		{
			name: "running with heart rate zones",
			intervals: []Interval{
				{"Easy", 600, Z2},
				{"Tempo", 900, Z4},
			},
			thresholds: runningHR(),
			sport:      SportRun,
			expected:   44,
		},
		{
			name:       "no athlete data uses default IF",
			intervals:  []Interval{{"Ride", 3600, Z3}},
			thresholds: ThresholdSet{},
			sport:      SportRide,
			expected:   25,
		},
		{
			name: "zero and negative durations contribute nothing",
			intervals: []Interval{
				{"Zero duration", 0, Z3},
				{"Negative", -300, Z3},
				{"Valid", 600, Z3},
			},
			thresholds: ThresholdSet{},
			sport:      SportRide,
			expected:   4,
		},
		{
			name: "endurance ride",
			intervals: []Interval{
				{"Warmup", 600, Z1},
				{"Steady", 3000, Z2},
				{"Cool down", 300, Z1},
			},
			thresholds: ThresholdSet{
				FTPWatts:   floatPtr(275),
				PowerZones: AbsoluteWatts(165, 248, 330, 413, 495, 578, 660),
			},
			sport:    SportRide,
			expected: 51,
		},
		{
			name: "high intensity intervals",
			intervals: []Interval{
				{"Warmup", 1200, Z2},
				{"Interval 1", 300, Z6},
				{"Recovery 1", 300, Z2},
				{"Interval 2", 300, Z6},
				{"Recovery 2", 300, Z2},
				{"Cool down", 600, Z1},
			},
			thresholds: cyclingWatts(),
			sport:      SportRide,
			expected:   80,
		},
		{
			name: "tempo run",
			intervals: []Interval{
				{"Warmup", 600, Z2},
				{"Tempo", 1200, Z4},
				{"Cool down", 600, Z2},
			},
			thresholds: ThresholdSet{
				LTHRBpm: floatPtr(175),
				HRZones: []int{150, 166, 182, 198, 214, 230, 246},
			},
			sport:    SportRun,
			expected: 66,
		},
		{
			name:       "empty workout",
			intervals:  nil,
			thresholds: cyclingWatts(),
			sport:      SportRide,
			expected:   0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tss := EstimateTSS(tt.intervals, tt.thresholds, tt.sport)
			require.NotNil(t, tss)
			assert.Equal(t, tt.expected, *tss)
		})
	}
}

func TestEstimateLoadEverySport(t *testing.T) {
	intervals := []Interval{{"Test", 600, Z3}}
	for _, sport := range AllSports() {
		t.Run(string(sport), func(t *testing.T) {
			result := EstimateLoad(intervals, cyclingWatts(), sport)
			if !SupportsLoadEstimation(sport) {
				assert.Nil(t, EstimateTSS(intervals, cyclingWatts(), sport))
				assert.Nil(t, EstimateIntensityFactor(intervals, cyclingWatts(), sport))
				assert.Equal(t, LoadResult{}, result)
				return
			}

			require.NotNil(t, result.EstimatedTSS)
			require.NotNil(t, result.EstimatedIF)
			assert.Positive(t, *result.EstimatedTSS)
			assert.Positive(t, *result.EstimatedIF)

			for _, empty := range [][]Interval{nil, {}, {{"Skipped", 0, Z5}, {"Negative", -60, Z4}}} {
				result := EstimateLoad(empty, cyclingWatts(), sport)
				require.NotNil(t, result.EstimatedTSS)
				require.NotNil(t, result.EstimatedIF)
				assert.Equal(t, 0, *result.EstimatedTSS)
				assert.Equal(t, 0.0, *result.EstimatedIF)
			}
		})
	}
}

func TestEstimateTSSAdditive(t *testing.T) {
	a := []Interval{{"Z2", 1800, Z2}}
	b := []Interval{{"Z4", 1800, Z4}}
	ts := cyclingWatts()

	tssA := EstimateTSS(a, ts, SportRide)
	tssB := EstimateTSS(b, ts, SportRide)
	tssAll := EstimateTSS(append(append([]Interval{}, a...), b...), ts, SportRide)

	assert.Equal(t, 24, *tssA)
	assert.Equal(t, 77, *tssB)
	assert.Equal(t, 101, *tssAll)
	assert.Equal(t, *tssA+*tssB, *tssAll)
}

func TestEstimateIntensityFactor(t *testing.T) {
	tests := []struct {
		name       string
		intervals  []Interval
		thresholds ThresholdSet
		sport      Sport
		expected   float64
	}{
		{
			name:       "cycling with power zones",
			intervals:  []Interval{{"Z2", 1800, Z2}, {"Z4", 1800, Z4}},
			thresholds: cyclingWatts(),
			sport:      SportRide,
			expected:   0.966,
		},
		{
			name:       "running with heart rate zones",
			intervals:  []Interval{{"Z2", 1800, Z2}, {"Z4", 1800, Z4}},
			thresholds: runningHR(),
			sport:      SportRun,
			expected:   1.0,
		},
		{
			name:       "balanced Z2/Z5",
			intervals:  []Interval{{"Z2", 1800, Z2}, {"Z5", 1800, Z5}},
			thresholds: cyclingWatts(),
			sport:      SportRide,
			expected:   1.104,
		},
		{
			name:       "mostly Z5",
			intervals:  []Interval{{"Z2", 300, Z2}, {"Z5", 5700, Z5}},
			thresholds: cyclingWatts(),
			sport:      SportRide,
			expected:   1.477,
		},
		{
			name: "high intensity intervals",
			intervals: []Interval{
				{"Warmup", 1200, Z2},
				{"Interval 1", 300, Z6},
				{"Recovery 1", 300, Z2},
				{"Interval 2", 300, Z6},
				{"Recovery 2", 300, Z2},
				{"Cool down", 600, Z1},
			},
			thresholds: cyclingWatts(),
			sport:      SportRide,
			expected:   0.853,
		},
		{
			name:       "empty workout",
			intervals:  []Interval{},
			thresholds: cyclingWatts(),
			sport:      SportRide,
			expected:   0,
		},
		{
			name:       "only non-positive durations",
			intervals:  []Interval{{"Zero", 0, Z5}, {"Negative", -60, Z5}},
			thresholds: cyclingWatts(),
			sport:      SportRide,
			expected:   0,
		},
		{
			name:       "negative duration carries no weight",
			intervals:  []Interval{{"Z2", 1800, Z2}, {"Negative", -1800, Z7}},
			thresholds: cyclingWatts(),
			sport:      SportRide,
			expected:   0.69,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateIntensityFactor(tt.intervals, tt.thresholds, tt.sport)
			require.NotNil(t, got)
			assert.InDelta(t, tt.expected, *got, 1e-9)
		})
	}
}

func TestIntensityFactorMonotonic(t *testing.T) {
	ts := cyclingWatts()
	total := 3600

	var prev float64
	for share := 0; share <= total; share += 600 {
		intervals := []Interval{
			{"Low", total - share, Z2},
			{"High", share, Z5},
		}
		got := *EstimateIntensityFactor(intervals, ts, SportRide)
		if share > 0 {
			assert.Greater(t, got, prev, "IF should increase with more time in the higher zone (share=%d)", share)
		}
		prev = got
	}
}

func TestNonPositiveDurationsNeverIncreaseTSS(t *testing.T) {
	ts := runningHR()
	base := []Interval{{"Easy", 1800, Z2}}
	withJunk := append(append([]Interval{}, base...), Interval{"Zero", 0, Z7}, Interval{"Negative", -900, Z7})

	assert.Equal(t, *EstimateTSS(base, ts, SportRun), *EstimateTSS(withJunk, ts, SportRun))
	assert.Equal(t, *EstimateIntensityFactor(base, ts, SportRun), *EstimateIntensityFactor(withJunk, ts, SportRun))
}

func TestEstimateLoad(t *testing.T) {
	intervals := []Interval{{"Warmup", 300, Z2}, {"Main", 1800, Z4}}
	result := EstimateLoad(intervals, cyclingWatts(), SportRide)

	require.NotNil(t, result.EstimatedTSS)
	require.NotNil(t, result.EstimatedIF)
	assert.Equal(t, 81, *result.EstimatedTSS)
	// (0.69*300 + 1.242*1800) / 2100
	assert.InDelta(t, 1.163, *result.EstimatedIF, 1e-9)
}

func TestTotalDuration(t *testing.T) {
	assert.Equal(t, 0, TotalDuration(nil))
	assert.Equal(t, 900, TotalDuration([]Interval{{"a", 600, Z1}, {"b", -100, Z2}, {"c", 300, Z3}}))
}
