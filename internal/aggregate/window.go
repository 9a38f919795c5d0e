package aggregate

import (
	"slices"
	"time"

	"example.com/wellness/internal/domain"
)

// WindowDays is the span of the trailing window, inclusive of its last date.
const WindowDays = 7

// SelectWindow returns the records dated within WindowDays of the latest date in set,
// in ascending date order. Gaps are not filled.
func SelectWindow(set DailySet) ([]domain.DailyRecord, error) {
	if len(set) == 0 {
		return nil, domain.ErrNoData
	}

	dates := set.Dates()
	from := WindowStart(dates[len(dates)-1])

	window := make([]domain.DailyRecord, 0, WindowDays)
	for _, d := range dates {
		if !d.Before(from) {
			window = append(window, set[d])
		}
	}
	return window, nil
}

// WindowStart returns the first date of the window ending at end.
func WindowStart(end time.Time) time.Time {
	return end.AddDate(0, 0, -(WindowDays - 1))
}

func sortDates(dates []time.Time) {
	slices.SortFunc(dates, func(a, b time.Time) int { return a.Compare(b) })
}
