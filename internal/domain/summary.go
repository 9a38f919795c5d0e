package domain

import (
	"math"
	"time"
)

// Summary7d reduces up to seven consecutive daily records into one set of statistics.
// Optional statistics are nil when no day in the window supplied a value.
type Summary7d struct {
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Days        int       `json:"days"`

	TotalActiveEnergyKcal  float64 `json:"total_active_energy_kcal"`
	TotalRestingEnergyKcal float64 `json:"total_resting_energy_kcal"`
	AvgExerciseMinPerDay   float64 `json:"avg_exercise_min_per_day"`
	TotalStandHours        float64 `json:"total_stand_hours"`
	StandGoalDays          int     `json:"stand_goal_days"`
	MoveGoalDays           int     `json:"move_goal_days"`
	TotalDistanceMi        float64 `json:"total_distance_mi"`
	TotalSteps             int64   `json:"total_steps"`
	TotalFlightsClimbed    float64 `json:"total_flights_climbed"`

	HRAvg        *int     `json:"hr_avg"`
	HRMin        *int     `json:"hr_min"`
	HRMax        *int     `json:"hr_max"`
	RestingHRAvg *int     `json:"resting_hr_avg"`
	RestingHRMin *int     `json:"resting_hr_min"`
	RestingHRMax *int     `json:"resting_hr_max"`
	HRVMedianMs  *float64 `json:"hrv_median_ms"`
	WalkHRAvg    *int     `json:"walk_hr_avg"`

	WalkSpeedAvgMph      *float64 `json:"walk_speed_avg_mph"`
	StepLenAvgIn         *float64 `json:"step_len_avg_in"`
	DoubleSupportAvgPct  *float64 `json:"double_support_avg_pct"`
	AsymmetryAvgPct      *float64 `json:"asymmetry_avg_pct"`
	StairUpAvgFtPerSec   *float64 `json:"stair_up_avg_ft_per_sec"`
	StairDownAvgFtPerSec *float64 `json:"stair_down_avg_ft_per_sec"`
	PhysicalEffortAvg    *float64 `json:"physical_effort_avg"`

	EnvAudioAvgDbA *float64 `json:"env_audio_avg_dba"`
	SpO2AvgPct     *float64 `json:"spo2_avg_pct"`
	SpO2MinPct     *float64 `json:"spo2_min_pct"`
}

// Rounded returns a copy with every floating statistic rounded to two decimals.
func (s Summary7d) Rounded() Summary7d {
	out := s
	out.TotalActiveEnergyKcal = Round2(s.TotalActiveEnergyKcal)
	out.TotalRestingEnergyKcal = Round2(s.TotalRestingEnergyKcal)
	out.AvgExerciseMinPerDay = Round2(s.AvgExerciseMinPerDay)
	out.TotalStandHours = Round2(s.TotalStandHours)
	out.TotalDistanceMi = Round2(s.TotalDistanceMi)
	out.TotalFlightsClimbed = Round2(s.TotalFlightsClimbed)
	out.HRVMedianMs = round2Ptr(s.HRVMedianMs)
	out.WalkSpeedAvgMph = round2Ptr(s.WalkSpeedAvgMph)
	out.StepLenAvgIn = round2Ptr(s.StepLenAvgIn)
	out.DoubleSupportAvgPct = round2Ptr(s.DoubleSupportAvgPct)
	out.AsymmetryAvgPct = round2Ptr(s.AsymmetryAvgPct)
	out.StairUpAvgFtPerSec = round2Ptr(s.StairUpAvgFtPerSec)
	out.StairDownAvgFtPerSec = round2Ptr(s.StairDownAvgFtPerSec)
	out.PhysicalEffortAvg = round2Ptr(s.PhysicalEffortAvg)
	out.EnvAudioAvgDbA = round2Ptr(s.EnvAudioAvgDbA)
	out.SpO2AvgPct = round2Ptr(s.SpO2AvgPct)
	out.SpO2MinPct = round2Ptr(s.SpO2MinPct)
	return out
}

// Snapshot is the result of one successful upload, the unit stored in the latest slot.
type Snapshot struct {
	ID         string    `json:"snapshot_id"`
	UploadedAt time.Time `json:"uploaded_at"`
	Rows       int       `json:"rows"`
	Summary    Summary7d `json:"summary"`
}

// Round2 rounds v half away from zero to two decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func round2Ptr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := Round2(*v)
	return &r
}
