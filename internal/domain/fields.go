package domain

import "slices"

// Field names one canonical metric, independent of the raw CSV header text.
type Field string

const (
	FieldDate              Field = "date"
	FieldActiveEnergy      Field = "active_energy"
	FieldExerciseMinutes   Field = "exercise_minutes"
	FieldStandHour         Field = "stand_hour"
	FieldStandMinutes      Field = "stand_minutes"
	FieldSpO2              Field = "spo2"
	FieldEnvAudio          Field = "env_audio"
	FieldFlightsClimbed    Field = "flights_climbed"
	FieldHRMin             Field = "hr_min"
	FieldHRMax             Field = "hr_max"
	FieldHRAvg             Field = "hr_avg"
	FieldHRV               Field = "hrv"
	FieldPhysicalEffort    Field = "physical_effort"
	FieldRestingEnergy     Field = "resting_energy"
	FieldRestingHR         Field = "resting_hr"
	FieldStairDown         Field = "stair_down"
	FieldStairUp           Field = "stair_up"
	FieldSteps             Field = "steps"
	FieldDistance          Field = "distance"
	FieldWalkAsymmetry     Field = "walk_asymmetry"
	FieldWalkDoubleSupport Field = "walk_double_support"
	FieldWalkHRAvg         Field = "walk_hr_avg"
	FieldWalkSpeed         Field = "walk_speed"
	FieldWalkStepLength    Field = "walk_step_length"
)

// Fields lists every canonical field in resolution order.
var Fields = []Field{
	FieldDate,
	FieldActiveEnergy,
	FieldExerciseMinutes,
	FieldStandHour,
	FieldStandMinutes,
	FieldSpO2,
	FieldEnvAudio,
	FieldFlightsClimbed,
	FieldHRMin,
	FieldHRMax,
	FieldHRAvg,
	FieldHRV,
	FieldPhysicalEffort,
	FieldRestingEnergy,
	FieldRestingHR,
	FieldStairDown,
	FieldStairUp,
	FieldSteps,
	FieldDistance,
	FieldWalkAsymmetry,
	FieldWalkDoubleSupport,
	FieldWalkHRAvg,
	FieldWalkSpeed,
	FieldWalkStepLength,
}

// Optional reports whether a missing column for f is tolerated.
func (f Field) Optional() bool {
	return f == FieldPhysicalEffort
}

// Known reports whether f is one of the canonical fields.
func (f Field) Known() bool {
	return slices.Contains(Fields, f)
}
