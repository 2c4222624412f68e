// Package fitfile exports workouts as Garmin FIT workout files.
package fitfile

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/tormoder/fit"

	"icu-workouts/internal/analysis"
)

// FIT encodes custom targets with an offset: watts + 1000, bpm + 100
const (
	powerOffset = 1000
	hrOffset    = 100
)

// maxStepSeconds is the longest step whose millisecond duration fits a uint32
const maxStepSeconds = math.MaxUint32 / 1000

var (
	// ErrNoSteps is returned for workouts without a positive-duration interval
	ErrNoSteps = errors.New("workout has no steps to export")
	// ErrStepTooLong is returned for intervals FIT cannot represent
	ErrStepTooLong = errors.New("interval too long for a fit workout step")
)

// Workout is the subset of a workout a FIT file carries
type Workout struct {
	Name      string
	Sport     analysis.Sport
	Intervals []analysis.Interval
	CreatedAt time.Time
}

// Target is a resolved step target
type Target struct {
	Type fit.WktStepTarget
	Low  uint32 // watts or bpm, without the FIT offset
	High uint32
}

// Encode writes w as a FIT workout file. Each interval with a positive duration
// becomes a time-based step. Cycling steps target power when FTP and power zones
// are known; everything else targets heart rate, or is left open.
func Encode(out io.Writer, w Workout, ts analysis.ThresholdSet) error {
	file, err := Build(w, ts)
	if err != nil {
		return err
	}
	if err := fit.Encode(out, file, binary.LittleEndian); err != nil {
		return fmt.Errorf("encoding fit workout: %w", err)
	}
	return nil
}

// Build assembles the FIT file without encoding it
func Build(w Workout, ts analysis.ThresholdSet) (*fit.File, error) {
	header := fit.NewHeader(fit.V20, true)
	file, err := fit.NewFile(fit.FileTypeWorkout, header)
	if err != nil {
		return nil, fmt.Errorf("creating fit file: %w", err)
	}

	created := w.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	file.FileId.TimeCreated = created
	file.FileId.Manufacturer = fit.ManufacturerDevelopment

	workout, err := file.Workout()
	if err != nil {
		return nil, err
	}

	discipline := analysis.Classify(w.Sport)
	for _, iv := range w.Intervals {
		if iv.DurationSeconds <= 0 {
			continue
		}
		if iv.DurationSeconds > maxStepSeconds {
			return nil, fmt.Errorf("%w: %q lasts %ds", ErrStepTooLong, iv.Label, iv.DurationSeconds)
		}

		step := fit.NewWorkoutStepMsg()
		step.MessageIndex = fit.MessageIndex(len(workout.WorkoutSteps))
		step.WktStepName = iv.Label
		step.DurationType = fit.WktStepDurationTime
		step.DurationValue = uint32(iv.DurationSeconds) * 1000 // ms
		step.Intensity = stepIntensity(iv)

		target := ResolveTarget(iv.Zone, discipline, ts)
		step.TargetType = target.Type
		switch target.Type {
		case fit.WktStepTargetPower:
			step.TargetValue = 0
			step.CustomTargetValueLow = target.Low + powerOffset
			step.CustomTargetValueHigh = target.High + powerOffset
		case fit.WktStepTargetHeartRate:
			step.TargetValue = 0
			step.CustomTargetValueLow = target.Low + hrOffset
			step.CustomTargetValueHigh = target.High + hrOffset
		}

		workout.WorkoutSteps = append(workout.WorkoutSteps, step)
	}

	if len(workout.WorkoutSteps) == 0 {
		return nil, ErrNoSteps
	}

	msg := fit.NewWorkoutMsg()
	msg.WktName = w.Name
	msg.Sport = fitSport(discipline)
	msg.NumValidSteps = uint16(len(workout.WorkoutSteps))
	workout.Workout = msg

	return file, nil
}

// ResolveTarget picks the step target for a zone
func ResolveTarget(zone analysis.ZoneType, discipline analysis.Discipline, ts analysis.ThresholdSet) Target {
	if discipline == analysis.DisciplineCycling && ts.FTPWatts != nil && *ts.FTPWatts > 0 {
		ftp := *ts.FTPWatts
		if minPct, maxPct, ok := analysis.ResolveRange(zone, ts.PowerZones.InPercent(ftp), analysis.DisplayPowerFloorPct); ok {
			return Target{
				Type: fit.WktStepTargetPower,
				Low:  watts(minPct, ftp),
				High: watts(maxPct, ftp),
			}
		}
	}

	if min, max, ok := analysis.ResolveRange(zone, ts.HRZones, analysis.DisplayHRFloorBpm); ok {
		return Target{Type: fit.WktStepTargetHeartRate, Low: uint32(min), High: uint32(max)}
	}

	return Target{Type: fit.WktStepTargetOpen}
}

func watts(pct int, ftp float64) uint32 {
	return uint32(math.Round(float64(pct) / 100 * ftp))
}

func stepIntensity(iv analysis.Interval) fit.Intensity {
	label := strings.ToLower(iv.Label)
	switch {
	case strings.Contains(label, "warm"):
		return fit.IntensityWarmup
	case strings.Contains(label, "cool"):
		return fit.IntensityCooldown
	case iv.Zone == analysis.Z1:
		return fit.IntensityRest
	default:
		return fit.IntensityActive
	}
}

func fitSport(d analysis.Discipline) fit.Sport {
	switch d {
	case analysis.DisciplineCycling:
		return fit.SportCycling
	case analysis.DisciplineRunning:
		return fit.SportRunning
	case analysis.DisciplineSwimming:
		return fit.SportSwimming
	default:
		return fit.SportGeneric
	}
}
