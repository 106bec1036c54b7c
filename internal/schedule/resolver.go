// Package schedule resolves recurring weekly slot labels into concrete instants.
package schedule

import "time"

// NextOccurrence returns the first instant at or after ref that falls on day at
// the start of timeRange, in ref's location. When ref is already on that
// weekday but past the start time, the occurrence moves to the following week.
func NextOccurrence(day, timeRange string, ref time.Time) (time.Time, error) {
	wd, err := ParseWeekday(day)
	if err != nil {
		return time.Time{}, err
	}
	tr, err := ParseTimeRange(timeRange)
	if err != nil {
		return time.Time{}, err
	}

	daysUntil := (int(wd) - int(ref.Weekday()) + 7) % 7
	y, m, d := ref.Date()
	occ := time.Date(y, m, d+daysUntil, tr.Start/60, tr.Start%60, 0, 0, ref.Location())
	if daysUntil == 0 && occ.Before(ref) {
		occ = time.Date(y, m, d+7, tr.Start/60, tr.Start%60, 0, 0, ref.Location())
	}
	return occ, nil
}

// IsInPast reports whether the occurrence resolved from ref lies before ref.
// Labels that cannot be resolved count as past.
func IsInPast(day, timeRange string, ref time.Time) bool {
	occ, err := NextOccurrence(day, timeRange, ref)
	if err != nil {
		return true
	}
	return occ.Before(ref)
}

// Clock supplies the current instant.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock in a fixed location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}

// FixedClock always returns the same instant.
type FixedClock time.Time

func (c FixedClock) Now() time.Time {
	return time.Time(c)
}
