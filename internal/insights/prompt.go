package insights

import (
	"fmt"
	"strconv"

	"example.com/wellness/internal/domain"
)

const systemPrompt = `You are a precise, encouraging wellness coach. Use the provided 7-day summary to produce:
- 3 bullet insights: (1) activity & energy load, (2) heart & recovery, (3) gait/quality-of-movement.
- Flags if relevant: low SpO2, rising resting HR (>5 bpm vs avg), high environmental audio, prolonged low activity.
- A 7-day action plan with concrete numbers (daily step goal, exercise minutes, stand hours, hydration, sleep window).
- Non-diagnostic tone; suggest clinician only if patterns persist or are concerning.`

const userPromptFormat = `User: %s

7-day Summary (%s to %s, %d days with data):
- Active Energy (total): %.0f kcal; Resting Energy (total): %.0f kcal
- Exercise: %.1f min/day avg; Stand Hours (total): %.1f; Stand-goal days (>=12h): %d
- Move-goal days (>=500 kcal active): %d
- Distance (total): %.2f mi; Steps (total): %d; Flights climbed (total): %.0f

- HR (avg/min/max): %s / %s / %s bpm
- Resting HR (avg/min/max): %s / %s / %s bpm
- HRV (median): %s ms
- Walking HR avg: %s bpm

- Gait: Walk speed avg: %s mph; Step length avg: %s in
- Double support avg: %s%%; Asymmetry avg: %s%%
- Stairs: Up avg: %s ft/s; Down avg: %s ft/s
- Physical effort avg: %s kcal/hr·kg

- Environment: Audio avg: %s dBA
- SpO2: avg %s%%; min %s%%`

// UserPrompt renders every summary statistic, writing n/a for absent values.
func UserPrompt(s domain.Summary7d, userName string) string {
	return fmt.Sprintf(userPromptFormat,
		userName,
		s.WindowStart.Format("2006-01-02"), s.WindowEnd.Format("2006-01-02"), s.Days,
		s.TotalActiveEnergyKcal, s.TotalRestingEnergyKcal,
		s.AvgExerciseMinPerDay, s.TotalStandHours, s.StandGoalDays,
		s.MoveGoalDays,
		s.TotalDistanceMi, s.TotalSteps, s.TotalFlightsClimbed,
		intOrNA(s.HRAvg), intOrNA(s.HRMin), intOrNA(s.HRMax),
		intOrNA(s.RestingHRAvg), intOrNA(s.RestingHRMin), intOrNA(s.RestingHRMax),
		floatOrNA(s.HRVMedianMs),
		intOrNA(s.WalkHRAvg),
		floatOrNA(s.WalkSpeedAvgMph), floatOrNA(s.StepLenAvgIn),
		floatOrNA(s.DoubleSupportAvgPct), floatOrNA(s.AsymmetryAvgPct),
		floatOrNA(s.StairUpAvgFtPerSec), floatOrNA(s.StairDownAvgFtPerSec),
		floatOrNA(s.PhysicalEffortAvg),
		floatOrNA(s.EnvAudioAvgDbA),
		floatOrNA(s.SpO2AvgPct), floatOrNA(s.SpO2MinPct),
	)
}

func intOrNA(v *int) string {
	if v == nil {
		return "n/a"
	}
	return strconv.Itoa(*v)
}

func floatOrNA(v *float64) string {
	if v == nil {
		return "n/a"
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
