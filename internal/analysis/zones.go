package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ZoneType is a relative intensity bucket, Z1 through Z7
type ZoneType int

const (
	Z1 ZoneType = iota
	Z2
	Z3
	Z4
	Z5
	Z6
	Z7
)

// NumZones is the number of intensity zones
const NumZones = 7

// Zone range floors. Display floors keep the Z1 lower bound readable in builder text;
// estimation uses zero so the Z1 midpoint is half its upper bound.
const (
	DisplayPowerFloorPct = 40
	DisplayHRFloorBpm    = 100
	EstimationFloor      = 0
)

// ErrUnknownZone is returned when a zone name can't be parsed
var ErrUnknownZone = errors.New("unknown zone")

// ErrNoThresholdData is returned when an athlete profile has no zone table for a sport
var ErrNoThresholdData = errors.New("no threshold data available for this sport")

func (z ZoneType) String() string {
	return fmt.Sprintf("Z%d", int(z)+1)
}

// Index returns the 0-based position of the zone in a boundary table
func (z ZoneType) Index() int {
	return int(z)
}

// ParseZone parses "Z1".."Z7" (case-insensitive)
func ParseZone(s string) (ZoneType, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) == 2 && s[0] == 'Z' && s[1] >= '1' && s[1] <= '7' {
		return ZoneType(s[1] - '1'), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownZone, s)
}

// MarshalJSON encodes the zone as "Z1".."Z7"
func (z ZoneType) MarshalJSON() ([]byte, error) {
	return json.Marshal(z.String())
}

// UnmarshalJSON accepts "Z1".."Z7" or a 0-based ordinal
func (z *ZoneType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		parsed, err := ParseZone(name)
		if err != nil {
			return err
		}
		*z = parsed
		return nil
	}

	var ordinal int
	if err := json.Unmarshal(data, &ordinal); err != nil {
		return fmt.Errorf("%w: %s", ErrUnknownZone, string(data))
	}
	if ordinal < 0 || ordinal >= NumZones {
		return fmt.Errorf("%w: %d", ErrUnknownZone, ordinal)
	}
	*z = ZoneType(ordinal)
	return nil
}

// RangeUnit is the unit a resolved range is rendered in
type RangeUnit string

const (
	UnitPercentFTP RangeUnit = "%"
	UnitBpm        RangeUnit = "bpm"
)

// Range is a concrete target range for a zone
type Range struct {
	Min  int
	Max  int
	Unit RangeUnit
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d%s", r.Min, r.Max, r.Unit)
}

// ResolveRange turns a zone into [min, max] using a table of zone upper bounds.
// Z1's lower bound is minFloor. Returns false when the table is too short.
func ResolveRange(zone ZoneType, boundaries []int, minFloor int) (min, max int, ok bool) {
	idx := zone.Index()
	if idx < 0 || len(boundaries) <= idx {
		return 0, 0, false
	}

	max = boundaries[idx]
	min = minFloor
	if idx > 0 {
		min = boundaries[idx-1]
	}
	return min, max, true
}

// PowerUnit says how a power boundary table is expressed
type PowerUnit int

const (
	PercentFTP PowerUnit = iota
	Watts
)

// PowerBoundaries is a power zone table with an explicit unit
type PowerBoundaries struct {
	Values []int
	Unit   PowerUnit
}

// PercentOfFTP builds a power table in percent of FTP (intervals.icu's format)
func PercentOfFTP(values ...int) *PowerBoundaries {
	return &PowerBoundaries{Values: slices.Clone(values), Unit: PercentFTP}
}

// AbsoluteWatts builds a power table already expressed in watts
func AbsoluteWatts(values ...int) *PowerBoundaries {
	return &PowerBoundaries{Values: slices.Clone(values), Unit: Watts}
}

// InWatts returns the table in watts. Percent values convert as
// round(percent/100 * ftp), halves rounded away from zero.
func (p *PowerBoundaries) InWatts(ftp float64) []int {
	if p == nil {
		return nil
	}
	if p.Unit == Watts {
		return slices.Clone(p.Values)
	}
	out := make([]int, len(p.Values))
	for i, pct := range p.Values {
		out[i] = int(math.Round(float64(pct) / 100 * ftp))
	}
	return out
}

// InPercent returns the table in percent of FTP. Returns nil for a watts table
// when ftp is not positive.
func (p *PowerBoundaries) InPercent(ftp float64) []int {
	if p == nil {
		return nil
	}
	if p.Unit == PercentFTP {
		return slices.Clone(p.Values)
	}
	if ftp <= 0 {
		return nil
	}
	out := make([]int, len(p.Values))
	for i, w := range p.Values {
		out[i] = int(math.Round(float64(w) / ftp * 100))
	}
	return out
}

// ThresholdSet is the per-sport threshold bundle used for load estimation
type ThresholdSet struct {
	FTPWatts   *float64
	LTHRBpm    *float64
	MaxHRBpm   *float64
	RestHRBpm  *float64
	PowerZones *PowerBoundaries
	HRZones    []int // upper bounds in bpm
}

// SportSetting is one zone table from an athlete profile
type SportSetting struct {
	Types      []Sport
	FTP        *int
	LTHR       *int
	MaxHR      *int
	PowerZones []int // percent of FTP
	HRZones    []int // bpm
}

// AthleteProfile is the subset of an athlete profile the engine needs
type AthleteProfile struct {
	ID            string
	RestingHR     *float64
	SportSettings []SportSetting
}

// SelectZoneTable picks the sport setting that applies to sport: exact type match,
// then any setting for the same discipline, then the "Other" setting.
func SelectZoneTable(profile *AthleteProfile, sport Sport) (SportSetting, error) {
	if profile == nil {
		return SportSetting{}, ErrNoThresholdData
	}

	for _, s := range profile.SportSettings {
		if slices.Contains(s.Types, sport) {
			return s, nil
		}
	}

	if bucket := disciplineSports(Classify(sport)); bucket != nil {
		for _, s := range profile.SportSettings {
			if slices.ContainsFunc(s.Types, func(t Sport) bool { return slices.Contains(bucket, t) }) {
				return s, nil
			}
		}
	}

	for _, s := range profile.SportSettings {
		if slices.Contains(s.Types, SportOther) {
			return s, nil
		}
	}

	return SportSetting{}, fmt.Errorf("%w: %s", ErrNoThresholdData, sport)
}

// ThresholdsFor builds the estimation thresholds for a sport. Missing data yields
// an empty set so estimation falls back to defaults.
func ThresholdsFor(profile *AthleteProfile, sport Sport) ThresholdSet {
	if profile == nil {
		return ThresholdSet{}
	}

	ts := ThresholdSet{RestHRBpm: profile.RestingHR}

	setting, err := SelectZoneTable(profile, sport)
	if err != nil {
		return ts
	}

	ts.FTPWatts = intToFloatPtr(setting.FTP)
	ts.LTHRBpm = intToFloatPtr(setting.LTHR)
	ts.MaxHRBpm = intToFloatPtr(setting.MaxHR)
	if len(setting.PowerZones) > 0 {
		ts.PowerZones = PercentOfFTP(setting.PowerZones...)
	}
	if len(setting.HRZones) > 0 {
		ts.HRZones = slices.Clone(setting.HRZones)
	}
	return ts
}

func intToFloatPtr(v *int) *float64 {
	if v == nil {
		return nil
	}
	f := float64(*v)
	return &f
}
