package intervals

import (
	"time"

	"icu-workouts/internal/analysis"
)

const (
	// DateLayout is the calendar date format used in query strings and paths
	DateLayout = "2006-01-02"
	// LocalTimeLayout is how intervals.icu encodes *_local timestamps (no zone)
	LocalTimeLayout = "2006-01-02T15:04:05"
)

// Athlete is the intervals.icu athlete record
type Athlete struct {
	ID                    string         `json:"id"`
	Name                  string         `json:"name,omitempty"`
	Sex                   string         `json:"sex,omitempty"`
	City                  string         `json:"city,omitempty"`
	State                 string         `json:"state,omitempty"`
	Country               string         `json:"country,omitempty"`
	Timezone              string         `json:"timezone,omitempty"`
	MeasurementPreference string         `json:"measurement_preference,omitempty"`
	DateOfBirth           string         `json:"icu_date_of_birth,omitempty"`
	RestingHR             *float64       `json:"icu_resting_hr"`
	Weight                *float64       `json:"icu_weight"`
	SportSettings         []SportSetting `json:"sportSettings"`
}

// SportSetting holds thresholds and zone tables for a group of sport types.
// Power zones are upper boundaries in percent of FTP, HR zones in bpm.
type SportSetting struct {
	ID             int      `json:"id"`
	AthleteID      string   `json:"athlete_id,omitempty"`
	Types          []string `json:"types"`
	FTP            *int     `json:"ftp"`
	IndoorFTP      *int     `json:"indoor_ftp"`
	WPrime         *int     `json:"w_prime"`
	PMax           *int     `json:"p_max"`
	PowerZones     []int    `json:"power_zones"`
	PowerZoneNames []string `json:"power_zone_names,omitempty"`
	LTHR           *int     `json:"lthr"`
	MaxHR          *int     `json:"max_hr"`
	HRZones        []int    `json:"hr_zones"`
	HRZoneNames    []string `json:"hr_zone_names,omitempty"`
	ThresholdPace  *float64 `json:"threshold_pace"`
	PaceUnits      string   `json:"pace_units,omitempty"`
}

// Profile converts the athlete into the shape the load engine consumes
func (a *Athlete) Profile() *analysis.AthleteProfile {
	if a == nil {
		return nil
	}

	p := &analysis.AthleteProfile{
		ID:        a.ID,
		RestingHR: a.RestingHR,
	}
	for _, s := range a.SportSettings {
		types := make([]analysis.Sport, len(s.Types))
		for i, t := range s.Types {
			types[i] = analysis.Sport(t)
		}
		p.SportSettings = append(p.SportSettings, analysis.SportSetting{
			Types:      types,
			FTP:        s.FTP,
			LTHR:       s.LTHR,
			MaxHR:      s.MaxHR,
			PowerZones: append([]int(nil), s.PowerZones...),
			HRZones:    append([]int(nil), s.HRZones...),
		})
	}
	return p
}

// Activity is a completed activity
type Activity struct {
	ID                 string   `json:"id"`
	StartDateLocal     string   `json:"start_date_local"`
	Name               string   `json:"name"`
	Type               string   `json:"type"`
	Description        string   `json:"description,omitempty"`
	MovingTime         *int     `json:"moving_time"`
	ElapsedTime        *int     `json:"elapsed_time"`
	Distance           *float64 `json:"distance"`            // meters
	TotalElevationGain *float64 `json:"total_elevation_gain"` // meters
	AverageHeartrate   *float64 `json:"average_heartrate"`
	MaxHeartrate       *float64 `json:"max_heartrate"`
	AverageWatts       *float64 `json:"icu_average_watts"`
	WeightedWatts      *float64 `json:"icu_weighted_avg_watts"`
	AverageCadence     *float64 `json:"average_cadence"`
	Calories           *int     `json:"calories"`
	TrainingLoad       *int     `json:"icu_training_load"`
	Intensity          *float64 `json:"icu_intensity"`
	PowerLoad          *int     `json:"power_load"`
	HRLoad             *int     `json:"hr_load"`
	PaceLoad           *int     `json:"pace_load"`
	PerceivedExertion  *float64 `json:"perceived_exertion"`
	Trainer            *bool    `json:"trainer"`
	Commute            bool     `json:"commute"`
	Race               bool     `json:"race"`
}

// StartTime parses StartDateLocal
func (a Activity) StartTime() (time.Time, error) {
	return parseLocal(a.StartDateLocal)
}

// Load returns the training load intervals.icu computed for the activity
func (a Activity) Load() float64 {
	if a.TrainingLoad == nil {
		return 0
	}
	return float64(*a.TrainingLoad)
}

// Wellness is a single day of wellness data
type Wellness struct {
	ID           string   `json:"id"` // the date, YYYY-MM-DD
	Updated      string   `json:"updated,omitempty"`
	CTL          *float64 `json:"ctl"`
	ATL          *float64 `json:"atl"`
	CTLLoad      *float64 `json:"ctlLoad"`
	ATLLoad      *float64 `json:"atlLoad"`
	Weight       *float64 `json:"weight"`
	RestingHR    *int     `json:"restingHR"`
	HRV          *float64 `json:"hrv"`
	SleepSecs    *int     `json:"sleepSecs"`
	SleepScore   *float64 `json:"sleepScore"`
	SleepQuality *int     `json:"sleepQuality"`
}

// Event categories used by the calendar
const (
	CategoryWorkout = "WORKOUT"
	CategoryRaceA   = "RACE_A"
	CategoryRaceB   = "RACE_B"
	CategoryRaceC   = "RACE_C"
	CategoryNote    = "NOTE"
)

// Event is a calendar entry (planned workout, race, note...)
type Event struct {
	ID             int      `json:"id"`
	StartDateLocal string   `json:"start_date_local"`
	EndDateLocal   string   `json:"end_date_local,omitempty"`
	Category       string   `json:"category"`
	Name           string   `json:"name"`
	Description    string   `json:"description,omitempty"`
	Type           string   `json:"type,omitempty"`
	Indoor         bool     `json:"indoor"`
	MovingTime     *int     `json:"moving_time"`
	TrainingLoad   *int     `json:"icu_training_load"`
	Intensity      *float64 `json:"icu_intensity"`
	ATL            *float64 `json:"icu_atl"`
	CTL            *float64 `json:"icu_ctl"`
	FTP            *int     `json:"icu_ftp"`
	Target         string   `json:"target,omitempty"`
	LoadTarget     *int     `json:"load_target"`
	TimeTarget     *int     `json:"time_target"`
	Distance       *float64 `json:"distance"`
	Updated        string   `json:"updated,omitempty"`
}

// StartTime parses StartDateLocal
func (e Event) StartTime() (time.Time, error) {
	return parseLocal(e.StartDateLocal)
}

// EventRequest is the payload for creating a calendar event
type EventRequest struct {
	Category       string `json:"category"`
	StartDateLocal string `json:"start_date_local"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	Type           string `json:"type"`
}

// PlannedWorkout is a workout scheduled on a calendar day
type PlannedWorkout struct {
	Date  time.Time
	Name  string
	Notes string
	Sport analysis.Sport
}

func parseLocal(s string) (time.Time, error) {
	if len(s) == len(DateLayout) {
		return time.Parse(DateLayout, s)
	}
	t, err := time.Parse(LocalTimeLayout, s)
	if err != nil {
		return time.Parse(time.RFC3339, s)
	}
	return t, nil
}
