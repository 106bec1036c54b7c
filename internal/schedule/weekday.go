package schedule

import (
	"strings"
	"time"

	"github.com/nekogravitycat/turf-booking-backend/internal/pkg/apperror"
)

var (
	ErrInvalidDay       = apperror.Validation("invalid day, expected a weekday name")
	ErrInvalidTimeRange = apperror.Validation("invalid time range, expected HH:MM-HH:MM")
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday parses an English weekday name, ignoring case and surrounding spaces.
func ParseWeekday(s string) (time.Weekday, error) {
	wd, ok := weekdays[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, ErrInvalidDay
	}
	return wd, nil
}

// NormalizeDay returns the lower-case storage form of a weekday name.
func NormalizeDay(s string) (string, error) {
	wd, err := ParseWeekday(s)
	if err != nil {
		return "", err
	}
	return strings.ToLower(wd.String()), nil
}

// DayOrder ranks weekdays monday first. Unknown names sort last.
func DayOrder(s string) int {
	wd, err := ParseWeekday(s)
	if err != nil {
		return 7
	}
	return (int(wd) + 6) % 7
}
