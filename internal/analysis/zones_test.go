package analysis

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseZone(t *testing.T) {
	for i, name := range []string{"Z1", "Z2", "Z3", "Z4", "Z5", "Z6", "Z7"} {
		z, err := ParseZone(name)
		require.NoError(t, err)
		assert.Equal(t, ZoneType(i), z)
		assert.Equal(t, name, z.String())
	}

	z, err := ParseZone(" z4 ")
	require.NoError(t, err)
	assert.Equal(t, Z4, z)

	for _, bad := range []string{"", "Z0", "Z8", "zone2", "4"} {
		_, err := ParseZone(bad)
		assert.ErrorIs(t, err, ErrUnknownZone, bad)
	}
}

func TestZoneTypeJSON(t *testing.T) {
	data, err := json.Marshal(Interval{Label: "Main", DurationSeconds: 600, Zone: Z4})
	require.NoError(t, err)
	assert.JSONEq(t, `{"description":"Main","duration_seconds":600,"type":"Z4"}`, string(data))

	var iv Interval
	require.NoError(t, json.Unmarshal([]byte(`{"description":"Easy","duration_seconds":300,"type":"Z2"}`), &iv))
	assert.Equal(t, Z2, iv.Zone)

	require.NoError(t, json.Unmarshal([]byte(`{"type":5}`), &iv))
	assert.Equal(t, Z6, iv.Zone)

	assert.Error(t, json.Unmarshal([]byte(`{"type":7}`), &iv))
	assert.Error(t, json.Unmarshal([]byte(`{"type":"Z9"}`), &iv))
}

func TestResolveRange(t *testing.T) {
	zones := []int{55, 75, 90, 105, 120, 150}

	tests := []struct {
		name       string
		zone       ZoneType
		boundaries []int
		floor      int
		wantMin    int
		wantMax    int
		wantOK     bool
	}{
		{"Z1 uses display floor", Z1, zones, DisplayPowerFloorPct, 40, 55, true},
		{"Z1 uses estimation floor", Z1, zones, EstimationFloor, 0, 55, true},
		{"Z2 lower bound is Z1 upper bound", Z2, zones, DisplayPowerFloorPct, 55, 75, true},
		{"Z6 last available zone", Z6, zones, DisplayPowerFloorPct, 120, 150, true},
		{"Z7 beyond table", Z7, zones, DisplayPowerFloorPct, 0, 0, false},
		{"empty table", Z1, nil, DisplayHRFloorBpm, 0, 0, false},
		{"bpm table", Z3, []int{146, 162, 178}, DisplayHRFloorBpm, 162, 178, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			min, max, ok := ResolveRange(tt.zone, tt.boundaries, tt.floor)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMin, min)
			assert.Equal(t, tt.wantMax, max)
		})
	}
}

func TestPowerBoundariesConversion(t *testing.T) {
	t.Run("percent to watts rounds half away from zero", func(t *testing.T) {
		pct := PercentOfFTP(55, 75, 90, 105)
		assert.Equal(t, []int{138, 188, 225, 263}, pct.InWatts(250))
	})

	t.Run("watts table is returned as is", func(t *testing.T) {
		w := AbsoluteWatts(138, 207, 276)
		got := w.InWatts(250)
		assert.Equal(t, []int{138, 207, 276}, got)

		got[0] = 0
		assert.Equal(t, 138, w.Values[0], "conversion must not alias the table")
	})

	t.Run("watts to percent", func(t *testing.T) {
		w := AbsoluteWatts(138, 207)
		assert.Equal(t, []int{55, 83}, w.InPercent(250))
		assert.Nil(t, w.InPercent(0))
	})

	t.Run("percent stays percent", func(t *testing.T) {
		assert.Equal(t, []int{55, 75}, PercentOfFTP(55, 75).InPercent(0))
	})

	t.Run("nil table", func(t *testing.T) {
		var p *PowerBoundaries
		assert.Nil(t, p.InWatts(250))
		assert.Nil(t, p.InPercent(250))
	})

	t.Run("constructors copy input", func(t *testing.T) {
		values := []int{55, 75}
		p := PercentOfFTP(values...)
		values[0] = 1
		assert.Equal(t, 55, p.Values[0])
	})
}

func TestRangeString(t *testing.T) {
	assert.Equal(t, "55-75%", Range{Min: 55, Max: 75, Unit: UnitPercentFTP}.String())
	assert.Equal(t, "150-166bpm", Range{Min: 150, Max: 166, Unit: UnitBpm}.String())
}
