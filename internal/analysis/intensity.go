package analysis

// Intensity factor bounds and the fallback used when threshold data is missing
const (
	DefaultIF = 0.5

	MinPowerIF = 0.4
	MaxPowerIF = 2.5
	MinHRIF    = 0.4
	MaxHRIF    = 1.5
)

// IntervalIntensity is the estimated IF for one interval
type IntervalIntensity struct {
	IF float64
	// Defaulted is true when thresholds or zones were missing and DefaultIF was used
	Defaulted bool
}

// EstimateIntervalIF estimates the intensity factor for a zone.
// Cycling uses the midpoint of the power zone in watts over FTP; every other
// discipline uses the midpoint of the HR zone over LTHR.
func EstimateIntervalIF(zone ZoneType, discipline Discipline, ts ThresholdSet) IntervalIntensity {
	if discipline == DisciplineCycling {
		return estimateFromPower(zone, ts)
	}
	return estimateFromHR(zone, ts)
}

func estimateFromPower(zone ZoneType, ts ThresholdSet) IntervalIntensity {
	if ts.FTPWatts == nil || *ts.FTPWatts <= 0 || ts.PowerZones == nil {
		return IntervalIntensity{IF: clamp(DefaultIF, MinPowerIF, MaxPowerIF), Defaulted: true}
	}

	ftp := *ts.FTPWatts
	minW, maxW, ok := ResolveRange(zone, ts.PowerZones.InWatts(ftp), EstimationFloor)
	if !ok {
		return IntervalIntensity{IF: clamp(DefaultIF, MinPowerIF, MaxPowerIF), Defaulted: true}
	}

	avgWatts := float64(minW+maxW) / 2
	return IntervalIntensity{IF: clamp(avgWatts/ftp, MinPowerIF, MaxPowerIF)}
}

func estimateFromHR(zone ZoneType, ts ThresholdSet) IntervalIntensity {
	if ts.LTHRBpm == nil || *ts.LTHRBpm <= 0 {
		return IntervalIntensity{IF: clamp(DefaultIF, MinHRIF, MaxHRIF), Defaulted: true}
	}

	minBpm, maxBpm, ok := ResolveRange(zone, ts.HRZones, EstimationFloor)
	if !ok {
		return IntervalIntensity{IF: clamp(DefaultIF, MinHRIF, MaxHRIF), Defaulted: true}
	}

	avgBpm := float64(minBpm+maxBpm) / 2
	return IntervalIntensity{IF: clamp(avgBpm/(*ts.LTHRBpm), MinHRIF, MaxHRIF)}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
