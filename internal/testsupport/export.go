// Package testsupport builds Health Auto Export style CSV fixtures for tests.
package testsupport

import (
	"encoding/csv"
	"strings"

	"example.com/wellness/internal/domain"
)

// Column pairs a canonical field with the raw header text an export uses for it.
type Column struct {
	Field  domain.Field
	Header string
}

// Columns mirrors the header row of a daily metrics export.
var Columns = []Column{
	{domain.FieldDate, "Date"},
	{domain.FieldActiveEnergy, "Active Energy (kcal)"},
	{domain.FieldExerciseMinutes, "Apple Exercise Time (min)"},
	{domain.FieldStandHour, "Apple Stand Hour (count)"},
	{domain.FieldStandMinutes, "Apple Stand Time (min)"},
	{domain.FieldSpO2, "Blood Oxygen Saturation (%)"},
	{domain.FieldEnvAudio, "Environmental Audio Exposure (dBASPL)"},
	{domain.FieldFlightsClimbed, "Flights Climbed (count)"},
	{domain.FieldHRMin, "Heart Rate [Min] (count/min)"},
	{domain.FieldHRMax, "Heart Rate [Max] (count/min)"},
	{domain.FieldHRAvg, "Heart Rate [Avg] (count/min)"},
	{domain.FieldHRV, "Heart Rate Variability (ms)"},
	{domain.FieldPhysicalEffort, "Physical Effort (kcal/hr·kg)"},
	{domain.FieldRestingEnergy, "Resting Energy (kcal)"},
	{domain.FieldRestingHR, "Resting Heart Rate (count/min)"},
	{domain.FieldStairDown, "Stair Speed: Down (ft/s)"},
	{domain.FieldStairUp, "Stair Speed: Up (ft/s)"},
	{domain.FieldSteps, "Step Count (count)"},
	{domain.FieldDistance, "Walking + Running Distance (mi)"},
	{domain.FieldWalkAsymmetry, "Walking Asymmetry Percentage (%)"},
	{domain.FieldWalkDoubleSupport, "Walking Double Support Percentage (%)"},
	{domain.FieldWalkHRAvg, "Walking Heart Rate Average (count/min)"},
	{domain.FieldWalkSpeed, "Walking Speed (mi/hr)"},
	{domain.FieldWalkStepLength, "Walking Step Length (in)"},
}

// Without returns Columns minus the column for field.
func Without(field domain.Field) []Column {
	out := make([]Column, 0, len(Columns))
	for _, c := range Columns {
		if c.Field != field {
			out = append(out, c)
		}
	}
	return out
}

// Headers returns the raw header texts of columns.
func Headers(columns []Column) []string {
	out := make([]string, len(columns))
	for i, c := range columns {
		out[i] = c.Header
	}
	return out
}

// Row holds the raw cell values of one export row; missing fields render as blank cells.
type Row map[domain.Field]string

// CSV renders a header row plus rows using columns.
func CSV(columns []Column, rows ...Row) string {
	var b strings.Builder
	w := csv.NewWriter(&b)
	_ = w.Write(Headers(columns))
	for _, row := range rows {
		record := make([]string, len(columns))
		for i, c := range columns {
			record[i] = row[c.Field]
		}
		_ = w.Write(record)
	}
	w.Flush()
	return b.String()
}

// FullRow returns a row with every column populated with plausible values for date.
func FullRow(date string) Row {
	return Row{
		domain.FieldDate:              date,
		domain.FieldActiveEnergy:      "500",
		domain.FieldExerciseMinutes:   "30",
		domain.FieldStandHour:         "12",
		domain.FieldStandMinutes:      "120",
		domain.FieldSpO2:              "97",
		domain.FieldEnvAudio:          "70",
		domain.FieldFlightsClimbed:    "10",
		domain.FieldHRMin:             "55",
		domain.FieldHRMax:             "150",
		domain.FieldHRAvg:             "80",
		domain.FieldHRV:               "45",
		domain.FieldPhysicalEffort:    "2.5",
		domain.FieldRestingEnergy:     "1700",
		domain.FieldRestingHR:         "60",
		domain.FieldStairDown:         "1.5",
		domain.FieldStairUp:           "1.2",
		domain.FieldSteps:             "10000",
		domain.FieldDistance:          "4.5",
		domain.FieldWalkAsymmetry:     "1.5",
		domain.FieldWalkDoubleSupport: "28",
		domain.FieldWalkHRAvg:         "95",
		domain.FieldWalkSpeed:         "3.1",
		domain.FieldWalkStepLength:    "28",
	}
}
