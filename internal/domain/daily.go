// Package domain defines the canonical health records and summary produced by an upload.
package domain

import "time"

// DailyRecord is one calendar date's metrics after all rows for that date were merged.
// Pointer fields are absent when no contributing row carried a value.
type DailyRecord struct {
	Date                 time.Time
	ActiveEnergyKcal     float64
	ExerciseMinutes      float64
	StandHourCount       float64
	StandMinutes         float64
	SpO2Pct              *float64
	EnvAudioDbA          *float64
	FlightsClimbed       float64
	HRMin                *int
	HRMax                *int
	HRAvg                *int
	HRVMs                *float64
	PhysicalEffort       *float64
	RestingEnergyKcal    float64
	RestingHR            *int
	StairDownFtPerSec    *float64
	StairUpFtPerSec      *float64
	Steps                int64
	DistanceMi           float64
	WalkAsymPct          *float64
	WalkDoubleSupportPct *float64
	WalkHRAvg            *int
	WalkSpeedMph         *float64
	WalkStepLenIn        *float64
}

// Day returns the calendar date y-m-d as a UTC midnight timestamp.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// CalendarDate drops any time-of-day and location from t.
func CalendarDate(t time.Time) time.Time {
	return Day(t.Date())
}
