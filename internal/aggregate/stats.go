// Package aggregate merges decoded rows into daily records, selects the trailing
// window and reduces it to a Summary7d.
package aggregate

import (
	"math"
	"slices"

	"github.com/samber/lo"
)

// mean returns the arithmetic mean of values, or nil for an empty slice.
func mean(values []float64) *float64 {
	if len(values) == 0 {
		return nil
	}
	m := lo.Sum(values) / float64(len(values))
	return &m
}

// meanInt returns the mean of values rounded to the nearest integer, or nil for an empty slice.
func meanInt(values []int) *int {
	if len(values) == 0 {
		return nil
	}
	sum := lo.SumBy(values, func(v int) float64 { return float64(v) })
	m := int(math.Round(sum / float64(len(values))))
	return &m
}

// median returns the middle value, averaging the two middle values for even lengths.
func median(values []float64) *float64 {
	n := len(values)
	if n == 0 {
		return nil
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)

	m := sorted[n/2]
	if n%2 == 0 {
		m = (sorted[n/2-1] + sorted[n/2]) / 2
	}
	return &m
}

func minOf[T int | float64](values []T) *T {
	if len(values) == 0 {
		return nil
	}
	m := lo.Min(values)
	return &m
}

func maxOf[T int | float64](values []T) *T {
	if len(values) == 0 {
		return nil
	}
	m := lo.Max(values)
	return &m
}

// present collects the non-nil values selected from items.
func present[S any, T any](items []S, pick func(S) *T) []T {
	return lo.FilterMap(items, func(item S, _ int) (T, bool) {
		v := pick(item)
		if v == nil {
			var zero T
			return zero, false
		}
		return *v, true
	})
}
