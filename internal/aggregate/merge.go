package aggregate

import (
	"math"
	"strconv"
	"time"

	"example.com/wellness/internal/domain"
	"example.com/wellness/internal/ingest"
)

// DailySet holds exactly one merged record per calendar date.
type DailySet map[time.Time]domain.DailyRecord

// Dates returns the dates of the set in ascending order.
func (s DailySet) Dates() []time.Time {
	dates := make([]time.Time, 0, len(s))
	for d := range s {
		dates = append(dates, d)
	}
	sortDates(dates)
	return dates
}

var (
	summedFields = []domain.Field{
		domain.FieldActiveEnergy,
		domain.FieldRestingEnergy,
		domain.FieldDistance,
		domain.FieldStandMinutes,
		domain.FieldFlightsClimbed,
		domain.FieldStandHour,
	}
	rateFields = []domain.Field{
		domain.FieldExerciseMinutes,
		domain.FieldSpO2,
		domain.FieldEnvAudio,
		domain.FieldPhysicalEffort,
		domain.FieldStairUp,
		domain.FieldStairDown,
		domain.FieldWalkSpeed,
		domain.FieldWalkStepLength,
		domain.FieldWalkDoubleSupport,
		domain.FieldWalkAsymmetry,
		domain.FieldHRV,
	}
	heartRateFields = []domain.Field{
		domain.FieldHRMin,
		domain.FieldHRMax,
		domain.FieldHRAvg,
		domain.FieldRestingHR,
		domain.FieldWalkHRAvg,
	}
)

// dayAccumulator collects every value seen for one date before the merge policy is applied.
type dayAccumulator struct {
	date   time.Time
	sums   map[domain.Field]float64
	steps  int64
	floats map[domain.Field][]float64
	ints   map[domain.Field][]int
}

func newDayAccumulator(date time.Time) *dayAccumulator {
	return &dayAccumulator{
		date:   date,
		sums:   make(map[domain.Field]float64, len(summedFields)),
		floats: make(map[domain.Field][]float64, len(rateFields)),
		ints:   make(map[domain.Field][]int, len(heartRateFields)),
	}
}

func (a *dayAccumulator) add(row ingest.Row) error {
	for _, field := range summedFields {
		v, ok, err := numeric(row, field)
		if err != nil {
			return err
		}
		if ok {
			a.sums[field] += v
		}
	}

	steps, ok, err := integral(row, domain.FieldSteps)
	if err != nil {
		return err
	}
	if ok {
		total := a.steps + steps
		if total > maxExactInt || total < -maxExactInt {
			raw, _ := row.Value(domain.FieldSteps)
			return &domain.BadValueError{Field: domain.FieldSteps, Raw: raw, Line: row.Line}
		}
		a.steps = total
	}

	for _, field := range rateFields {
		v, ok, err := numeric(row, field)
		if err != nil {
			return err
		}
		if ok {
			a.floats[field] = append(a.floats[field], v)
		}
	}

	for _, field := range heartRateFields {
		v, ok, err := integral(row, field)
		if err != nil {
			return err
		}
		if ok {
			a.ints[field] = append(a.ints[field], int(v))
		}
	}
	return nil
}

func (a *dayAccumulator) record() domain.DailyRecord {
	exercise := mean(a.floats[domain.FieldExerciseMinutes])
	if exercise == nil {
		exercise = new(float64)
	}

	return domain.DailyRecord{
		Date:                 a.date,
		ActiveEnergyKcal:     a.sums[domain.FieldActiveEnergy],
		ExerciseMinutes:      *exercise,
		StandHourCount:       a.sums[domain.FieldStandHour],
		StandMinutes:         a.sums[domain.FieldStandMinutes],
		SpO2Pct:              mean(a.floats[domain.FieldSpO2]),
		EnvAudioDbA:          mean(a.floats[domain.FieldEnvAudio]),
		FlightsClimbed:       a.sums[domain.FieldFlightsClimbed],
		HRMin:                meanInt(a.ints[domain.FieldHRMin]),
		HRMax:                meanInt(a.ints[domain.FieldHRMax]),
		HRAvg:                meanInt(a.ints[domain.FieldHRAvg]),
		HRVMs:                median(a.floats[domain.FieldHRV]),
		PhysicalEffort:       mean(a.floats[domain.FieldPhysicalEffort]),
		RestingEnergyKcal:    a.sums[domain.FieldRestingEnergy],
		RestingHR:            meanInt(a.ints[domain.FieldRestingHR]),
		StairDownFtPerSec:    mean(a.floats[domain.FieldStairDown]),
		StairUpFtPerSec:      mean(a.floats[domain.FieldStairUp]),
		Steps:                a.steps,
		DistanceMi:           a.sums[domain.FieldDistance],
		WalkAsymPct:          mean(a.floats[domain.FieldWalkAsymmetry]),
		WalkDoubleSupportPct: mean(a.floats[domain.FieldWalkDoubleSupport]),
		WalkHRAvg:            meanInt(a.ints[domain.FieldWalkHRAvg]),
		WalkSpeedMph:         mean(a.floats[domain.FieldWalkSpeed]),
		WalkStepLenIn:        mean(a.floats[domain.FieldWalkStepLength]),
	}
}

// Merge groups rows by date and folds each group into one DailyRecord. Cumulative metrics
// are summed with absent cells contributing zero; rate metrics are averaged over present
// cells only; heart-rate fields are averaged and rounded; HRV takes the median. A cell that
// is not a finite number, or an integer cell beyond maxExactInt, fails the whole
// merge with *domain.BadValueError.
func Merge(rows []ingest.Row) (DailySet, error) {
	days := make(map[time.Time]*dayAccumulator)
	for _, row := range rows {
		acc, ok := days[row.Date]
		if !ok {
			acc = newDayAccumulator(row.Date)
			days[row.Date] = acc
		}
		if err := acc.add(row); err != nil {
			return nil, err
		}
	}

	set := make(DailySet, len(days))
	for date, acc := range days {
		set[date] = acc.record()
	}
	return set, nil
}

func numeric(row ingest.Row, field domain.Field) (float64, bool, error) {
	raw, ok := row.Value(field)
	if !ok {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, &domain.BadValueError{Field: field, Raw: raw, Line: row.Line}
	}
	return v, true, nil
}

// maxExactInt bounds integer cells and daily step totals so that window sums and means
// computed in float64 stay exact and never overflow.
const maxExactInt = 1 << 53

// integral rounds a numeric cell to the nearest integer, rejecting magnitudes above maxExactInt.
func integral(row ingest.Row, field domain.Field) (int64, bool, error) {
	v, ok, err := numeric(row, field)
	if err != nil || !ok {
		return 0, ok, err
	}
	r := math.Round(v)
	if math.Abs(r) > maxExactInt {
		raw, _ := row.Value(field)
		return 0, false, &domain.BadValueError{Field: field, Raw: raw, Line: row.Line}
	}
	return int64(r), true, nil
}
