package analysis

import (
	"errors"
	"fmt"
	"slices"
)

// Sport is an intervals.icu activity type
type Sport string

const (
	SportRide              Sport = "Ride"
	SportVirtualRide       Sport = "VirtualRide"
	SportMountainBikeRide  Sport = "MountainBikeRide"
	SportGravelRide        Sport = "GravelRide"
	SportEBikeRide         Sport = "EBikeRide"
	SportEMountainBikeRide Sport = "EMountainBikeRide"
	SportTrackRide         Sport = "TrackRide"
	SportHandcycle         Sport = "Handcycle"
	SportVelomobile        Sport = "Velomobile"

	SportRun        Sport = "Run"
	SportVirtualRun Sport = "VirtualRun"
	SportTrailRun   Sport = "TrailRun"

	SportSwim          Sport = "Swim"
	SportOpenWaterSwim Sport = "OpenWaterSwim"

	SportRowing         Sport = "Rowing"
	SportVirtualRow     Sport = "VirtualRow"
	SportNordicSki      Sport = "NordicSki"
	SportVirtualSki     Sport = "VirtualSki"
	SportBackcountrySki Sport = "BackcountrySki"
	SportRollerSki      Sport = "RollerSki"
	SportHike           Sport = "Hike"
	SportWalk           Sport = "Walk"
	SportElliptical     Sport = "Elliptical"
	SportSnowshoe       Sport = "Snowshoe"

	SportAlpineSki       Sport = "AlpineSki"
	SportCanoeing        Sport = "Canoeing"
	SportCrossfit        Sport = "Crossfit"
	SportGolf            Sport = "Golf"
	SportHIIT            Sport = "HighIntensityIntervalTraining"
	SportIceSkate        Sport = "IceSkate"
	SportInlineSkate     Sport = "InlineSkate"
	SportKayaking        Sport = "Kayaking"
	SportPilates         Sport = "Pilates"
	SportRockClimbing    Sport = "RockClimbing"
	SportSnowboard       Sport = "Snowboard"
	SportStairStepper    Sport = "StairStepper"
	SportStandUpPaddling Sport = "StandUpPaddling"
	SportTennis          Sport = "Tennis"
	SportWeightTraining  Sport = "WeightTraining"
	SportWorkout         Sport = "Workout"
	SportYoga            Sport = "Yoga"
	SportOther           Sport = "Other"
)

// Discipline is the bucket a sport falls into for zone selection and load math
type Discipline int

const (
	DisciplineUnsupported Discipline = iota
	DisciplineCycling
	DisciplineRunning
	DisciplineSwimming
	DisciplineOtherEndurance
)

func (d Discipline) String() string {
	switch d {
	case DisciplineCycling:
		return "cycling"
	case DisciplineRunning:
		return "running"
	case DisciplineSwimming:
		return "swimming"
	case DisciplineOtherEndurance:
		return "other-endurance"
	default:
		return "unsupported"
	}
}

var cyclingSports = []Sport{
	SportRide, SportVirtualRide, SportMountainBikeRide, SportGravelRide, SportEBikeRide,
	SportEMountainBikeRide, SportTrackRide, SportHandcycle, SportVelomobile,
}

var runningSports = []Sport{SportRun, SportVirtualRun, SportTrailRun}

var swimmingSports = []Sport{SportSwim, SportOpenWaterSwim}

var otherEnduranceSports = []Sport{
	SportRowing, SportVirtualRow, SportNordicSki, SportVirtualSki, SportBackcountrySki,
	SportRollerSki, SportHike, SportWalk, SportElliptical, SportSnowshoe,
}

var otherSports = []Sport{
	SportAlpineSki, SportCanoeing, SportCrossfit, SportGolf, SportHIIT, SportIceSkate,
	SportInlineSkate, SportKayaking, SportPilates, SportRockClimbing, SportSnowboard,
	SportStairStepper, SportStandUpPaddling, SportTennis, SportWeightTraining, SportWorkout,
	SportYoga, SportOther,
}

// ErrUnknownSport is returned when a sport name is not an intervals.icu type
var ErrUnknownSport = errors.New("unknown sport")

// AllSports returns every known sport, load-estimating ones first
func AllSports() []Sport {
	all := make([]Sport, 0, len(cyclingSports)+len(runningSports)+len(swimmingSports)+len(otherEnduranceSports)+len(otherSports))
	all = append(all, cyclingSports...)
	all = append(all, runningSports...)
	all = append(all, swimmingSports...)
	all = append(all, otherEnduranceSports...)
	all = append(all, otherSports...)
	return all
}

// ParseSport validates a sport name
func ParseSport(s string) (Sport, error) {
	sport := Sport(s)
	if slices.Contains(AllSports(), sport) {
		return sport, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSport, s)
}

// Classify maps a sport to its discipline bucket
func Classify(sport Sport) Discipline {
	switch {
	case slices.Contains(cyclingSports, sport):
		return DisciplineCycling
	case slices.Contains(runningSports, sport):
		return DisciplineRunning
	case slices.Contains(swimmingSports, sport):
		return DisciplineSwimming
	case slices.Contains(otherEnduranceSports, sport):
		return DisciplineOtherEndurance
	default:
		return DisciplineUnsupported
	}
}

// IsCycling reports whether targets for the sport are expressed in power
func IsCycling(sport Sport) bool {
	return Classify(sport) == DisciplineCycling
}

// SupportsLoadEstimation reports whether TSS/IF can be estimated for the sport.
// Strength, skill and team sports are excluded.
func SupportsLoadEstimation(sport Sport) bool {
	return Classify(sport) != DisciplineUnsupported
}

// disciplineSports returns the members of a discipline bucket, or nil for buckets
// that don't share zone tables (other-endurance sports are matched by exact type only)
func disciplineSports(d Discipline) []Sport {
	switch d {
	case DisciplineCycling:
		return cyclingSports
	case DisciplineRunning:
		return runningSports
	case DisciplineSwimming:
		return swimmingSports
	default:
		return nil
	}
}
