package aggregate

import (
	"example.com/wellness/internal/domain"
	"example.com/wellness/internal/ingest"
)

// Summarize runs merge, window selection and reduction over decoded rows.
func Summarize(rows []ingest.Row) (domain.Summary7d, error) {
	set, err := Merge(rows)
	if err != nil {
		return domain.Summary7d{}, err
	}
	window, err := SelectWindow(set)
	if err != nil {
		return domain.Summary7d{}, err
	}
	return Reduce(window), nil
}
