package aggregate

import (
	"github.com/samber/lo"

	"example.com/wellness/internal/domain"
)

const (
	// StandGoalHours is the stand-hour count at which a day meets the stand goal.
	StandGoalHours = 12
	// MoveGoalKcal is the active energy at which a day meets the move goal.
	MoveGoalKcal = 500
)

// Reduce folds an ascending window of daily records into a Summary7d. Statistics over a
// field that no day supplied stay nil. Values keep full precision; see Summary7d.Rounded.
func Reduce(window []domain.DailyRecord) domain.Summary7d {
	var s domain.Summary7d
	if len(window) == 0 {
		return s
	}

	s.WindowEnd = window[len(window)-1].Date
	s.WindowStart = WindowStart(s.WindowEnd)
	s.Days = len(window)

	for _, d := range window {
		s.TotalActiveEnergyKcal += d.ActiveEnergyKcal
		s.TotalRestingEnergyKcal += d.RestingEnergyKcal
		s.TotalDistanceMi += d.DistanceMi
		s.TotalSteps += d.Steps
		s.TotalFlightsClimbed += d.FlightsClimbed
	}
	s.TotalStandHours = lo.SumBy(window, func(d domain.DailyRecord) float64 { return d.StandMinutes }) / 60
	s.AvgExerciseMinPerDay = lo.SumBy(window, func(d domain.DailyRecord) float64 { return d.ExerciseMinutes }) / float64(len(window))
	s.StandGoalDays = lo.CountBy(window, func(d domain.DailyRecord) bool { return d.StandHourCount >= StandGoalHours })
	s.MoveGoalDays = lo.CountBy(window, func(d domain.DailyRecord) bool { return d.ActiveEnergyKcal >= MoveGoalKcal })

	s.HRAvg = meanInt(present(window, func(d domain.DailyRecord) *int { return d.HRAvg }))
	s.HRMin = minOf(present(window, func(d domain.DailyRecord) *int { return d.HRMin }))
	s.HRMax = maxOf(present(window, func(d domain.DailyRecord) *int { return d.HRMax }))

	// Exports carry a single resting rate per day, so the daily value feeds avg, min and max alike.
	resting := present(window, func(d domain.DailyRecord) *int { return d.RestingHR })
	s.RestingHRAvg = meanInt(resting)
	s.RestingHRMin = minOf(resting)
	s.RestingHRMax = maxOf(resting)

	s.HRVMedianMs = median(present(window, func(d domain.DailyRecord) *float64 { return d.HRVMs }))
	s.WalkHRAvg = meanInt(present(window, func(d domain.DailyRecord) *int { return d.WalkHRAvg }))

	s.WalkSpeedAvgMph = mean(present(window, func(d domain.DailyRecord) *float64 { return d.WalkSpeedMph }))
	s.StepLenAvgIn = mean(present(window, func(d domain.DailyRecord) *float64 { return d.WalkStepLenIn }))
	s.DoubleSupportAvgPct = mean(present(window, func(d domain.DailyRecord) *float64 { return d.WalkDoubleSupportPct }))
	s.AsymmetryAvgPct = mean(present(window, func(d domain.DailyRecord) *float64 { return d.WalkAsymPct }))
	s.StairUpAvgFtPerSec = mean(present(window, func(d domain.DailyRecord) *float64 { return d.StairUpFtPerSec }))
	s.StairDownAvgFtPerSec = mean(present(window, func(d domain.DailyRecord) *float64 { return d.StairDownFtPerSec }))
	s.PhysicalEffortAvg = mean(present(window, func(d domain.DailyRecord) *float64 { return d.PhysicalEffort }))

	s.EnvAudioAvgDbA = mean(present(window, func(d domain.DailyRecord) *float64 { return d.EnvAudioDbA }))
	spo2 := present(window, func(d domain.DailyRecord) *float64 { return d.SpO2Pct })
	s.SpO2AvgPct = mean(spo2)
	s.SpO2MinPct = minOf(spo2)

	return s
}
