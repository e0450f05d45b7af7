package recurrence

import "time"

// Occurrence is one generated (date, kind) pair. Date carries no time
// component; it is normalised to midnight UTC.
type Occurrence struct {
	Date time.Time
	Kind Kind
}

// DateOnly truncates a timestamp to its calendar date at midnight UTC.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Generate expands the pattern set over the half-open range [from, to).
//
// The expansion is pure and deterministic: for every calendar date in the
// range, every pattern whose weekday matches emits one occurrence, ordered by
// date ascending then pattern order. A zero or negative range yields an empty
// result, never an error.
func Generate(patterns PatternSet, from, to time.Time) []Occurrence {
	from = DateOnly(from)
	to = DateOnly(to)
	if !from.Before(to) {
		return nil
	}

	var occurrences []Occurrence
	for day := from; day.Before(to); day = day.AddDate(0, 0, 1) {
		for _, p := range patterns {
			if p.Weekday == day.Weekday() {
				occurrences = append(occurrences, Occurrence{Date: day, Kind: p.Kind})
			}
		}
	}
	return occurrences
}

// LastPatternedDateBefore returns the latest date strictly before the bound
// whose weekday the pattern set covers, and false when the set is empty.
// The maintenance trigger uses this to pick a horizon probe date that the
// generator is guaranteed to have produced.
func LastPatternedDateBefore(patterns PatternSet, bound time.Time) (time.Time, bool) {
	if len(patterns) == 0 {
		return time.Time{}, false
	}
	day := DateOnly(bound).AddDate(0, 0, -1)
	for i := 0; i < 7; i++ {
		if len(patterns.KindsOn(day.Weekday())) > 0 {
			return day, true
		}
		day = day.AddDate(0, 0, -1)
	}
	return time.Time{}, false
}
