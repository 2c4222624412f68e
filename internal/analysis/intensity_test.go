package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateIntervalIF(t *testing.T) {
	wattsZones := AbsoluteWatts(138, 207, 276, 345, 414, 483, 552) // 250W FTP
	pctZones := PercentOfFTP(55, 75, 90, 105, 120, 150, 999)
	hrZones := []int{146, 162, 178, 194, 210, 226, 242} // 170 LTHR

	tests := []struct {
		name          string
		zone          ZoneType
		discipline    Discipline
		thresholds    ThresholdSet
		expected      float64
		wantDefaulted bool
	}{
		{
			name:       "power Z2 from watts table",
			zone:       Z2,
			discipline: DisciplineCycling,
			thresholds: ThresholdSet{FTPWatts: floatPtr(250), PowerZones: wattsZones},
			// (138+207)/2 = 172.5W / 250
			expected: 0.69,
		},
		{
			name:       "power Z4 from percent table",
			zone:       Z4,
			discipline: DisciplineCycling,
			thresholds: ThresholdSet{FTPWatts: floatPtr(250), PowerZones: pctZones},
			// 90% -> 225W, 105% -> 263W, midpoint 244W
			expected: 0.976,
		},
		{
			name:       "power Z1 clamped to lower bound",
			zone:       Z1,
			discipline: DisciplineCycling,
			thresholds: ThresholdSet{FTPWatts: floatPtr(250), PowerZones: wattsZones},
			// (0+138)/2 = 69W / 250 = 0.276
			expected: MinPowerIF,
		},
		{
			name:       "power Z7 clamped to upper bound",
			zone:       Z7,
			discipline: DisciplineCycling,
			thresholds: ThresholdSet{FTPWatts: floatPtr(250), PowerZones: pctZones},
			expected:   MaxPowerIF,
		},
		{
			name:          "power without FTP defaults",
			zone:          Z3,
			discipline:    DisciplineCycling,
			thresholds:    ThresholdSet{PowerZones: wattsZones},
			expected:      DefaultIF,
			wantDefaulted: true,
		},
		{
			name:          "power with zero FTP defaults",
			zone:          Z3,
			discipline:    DisciplineCycling,
			thresholds:    ThresholdSet{FTPWatts: floatPtr(0), PowerZones: wattsZones},
			expected:      DefaultIF,
			wantDefaulted: true,
		},
		{
			name:          "power table too short defaults",
			zone:          Z7,
			discipline:    DisciplineCycling,
			thresholds:    ThresholdSet{FTPWatts: floatPtr(250), PowerZones: PercentOfFTP(55, 75, 90, 105, 120, 150)},
			expected:      DefaultIF,
			wantDefaulted: true,
		},
		{
			name:          "cycling ignores HR data",
			zone:          Z2,
			discipline:    DisciplineCycling,
			thresholds:    ThresholdSet{LTHRBpm: floatPtr(170), HRZones: hrZones},
			expected:      DefaultIF,
			wantDefaulted: true,
		},
		{
			name:       "HR Z2 running",
			zone:       Z2,
			discipline: DisciplineRunning,
			thresholds: ThresholdSet{LTHRBpm: floatPtr(170), HRZones: hrZones},
			// (146+162)/2 = 154 / 170
			expected: 154.0 / 170.0,
		},
		{
			name:       "HR Z4 swimming",
			zone:       Z4,
			discipline: DisciplineSwimming,
			thresholds: ThresholdSet{LTHRBpm: floatPtr(170), HRZones: hrZones},
			expected:   186.0 / 170.0,
		},
		{
			name:       "HR Z7 clamped to upper bound",
			zone:       Z7,
			discipline: DisciplineOtherEndurance,
			thresholds: ThresholdSet{LTHRBpm: floatPtr(100), HRZones: hrZones},
			expected:   MaxHRIF,
		},
		{
			name:       "HR Z1 clamped to lower bound",
			zone:       Z1,
			discipline: DisciplineRunning,
			thresholds: ThresholdSet{LTHRBpm: floatPtr(200), HRZones: hrZones},
			// (0+146)/2 = 73 / 200 = 0.365
			expected: MinHRIF,
		},
		{
			name:          "HR without LTHR defaults",
			zone:          Z2,
			discipline:    DisciplineRunning,
			thresholds:    ThresholdSet{HRZones: hrZones},
			expected:      DefaultIF,
			wantDefaulted: true,
		},
		{
			name:          "HR without zones defaults",
			zone:          Z2,
			discipline:    DisciplineRunning,
			thresholds:    ThresholdSet{LTHRBpm: floatPtr(170)},
			expected:      DefaultIF,
			wantDefaulted: true,
		},
		{
			name:          "running ignores power data",
			zone:          Z2,
			discipline:    DisciplineRunning,
			thresholds:    ThresholdSet{FTPWatts: floatPtr(250), PowerZones: wattsZones},
			expected:      DefaultIF,
			wantDefaulted: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateIntervalIF(tt.zone, tt.discipline, tt.thresholds)
			assert.InDelta(t, tt.expected, got.IF, 1e-9)
			assert.Equal(t, tt.wantDefaulted, got.Defaulted)
		})
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0.4, clamp(0.1, 0.4, 1.5))
	assert.Equal(t, 1.5, clamp(3, 0.4, 1.5))
	assert.Equal(t, 0.9, clamp(0.9, 0.4, 1.5))
}
