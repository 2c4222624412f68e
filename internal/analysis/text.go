package analysis

import (
	"errors"
	"fmt"
	"strings"
)

// UndeterminedRange is rendered in place of a target when no zone table covers the zone
const UndeterminedRange = "Could not determine HR range"

// ErrNoProfile is returned when builder text is requested without any athlete profile
var ErrNoProfile = errors.New("could not retrieve athlete profile")

// FormatDuration renders seconds as "1h 30m", "1m 15s" or "45s". Seconds are
// dropped when an hour component is present; non-positive durations render as "1s".
func FormatDuration(seconds int) string {
	if seconds <= 0 {
		return "1s"
	}

	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60

	var parts []string
	if h > 0 {
		parts = append(parts, fmt.Sprintf("%dh", h))
	}
	if m > 0 {
		parts = append(parts, fmt.Sprintf("%dm", m))
	}
	if s > 0 && h == 0 {
		parts = append(parts, fmt.Sprintf("%ds", s))
	}
	if len(parts) == 0 {
		return "1s"
	}
	return strings.Join(parts, " ")
}

// RenderIntervalLine renders one workout builder line
func RenderIntervalLine(duration string, r Range) string {
	return fmt.Sprintf("- %s @ %s", duration, r)
}

// TargetRange resolves the display range for a zone. Cycling uses power in %FTP
// and falls back to heart rate; other sports use heart rate.
func TargetRange(zone ZoneType, sport Sport, setting SportSetting) (Range, bool) {
	if IsCycling(sport) {
		if min, max, ok := ResolveRange(zone, setting.PowerZones, DisplayPowerFloorPct); ok {
			return Range{Min: min, Max: max, Unit: UnitPercentFTP}, true
		}
	}
	if min, max, ok := ResolveRange(zone, setting.HRZones, DisplayHRFloorBpm); ok {
		return Range{Min: min, Max: max, Unit: UnitBpm}, true
	}
	return Range{}, false
}

// RenderWorkoutText renders intervals as intervals.icu workout builder text, one
// newline-terminated line per interval. A nil profile is an error; a profile with
// no usable zone table renders UndeterminedRange on every line.
func RenderWorkoutText(intervals []Interval, sport Sport, profile *AthleteProfile) (string, error) {
	if profile == nil {
		return "", ErrNoProfile
	}

	setting, err := SelectZoneTable(profile, sport)
	if err != nil && !errors.Is(err, ErrNoThresholdData) {
		return "", err
	}

	var sb strings.Builder
	for _, iv := range intervals {
		duration := FormatDuration(iv.DurationSeconds)
		if r, ok := TargetRange(iv.Zone, sport, setting); ok {
			sb.WriteString(RenderIntervalLine(duration, r))
		} else {
			fmt.Fprintf(&sb, "- %s @ %s", duration, UndeterminedRange)
		}
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}
