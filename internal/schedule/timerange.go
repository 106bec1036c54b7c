package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const minutesPerDay = 24 * 60

// TimeRange is a slot window within a single day, in minutes since midnight.
type TimeRange struct {
	Start int
	End   int
}

// ParseTimeRange parses labels like "09:00-10:00". The end may be "24:00".
func ParseTimeRange(s string) (TimeRange, error) {
	startStr, endStr, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return TimeRange{}, ErrInvalidTimeRange
	}
	start, err := parseClock(startStr)
	if err != nil || start >= minutesPerDay {
		return TimeRange{}, ErrInvalidTimeRange
	}
	end, err := parseClock(endStr)
	if err != nil || end <= start {
		return TimeRange{}, ErrInvalidTimeRange
	}
	return TimeRange{Start: start, End: end}, nil
}

// NormalizeTimeRange returns the canonical "HH:MM-HH:MM" form of a label.
func NormalizeTimeRange(s string) (string, error) {
	tr, err := ParseTimeRange(s)
	if err != nil {
		return "", err
	}
	return tr.String(), nil
}

func (r TimeRange) String() string {
	return fmt.Sprintf("%02d:%02d-%02d:%02d", r.Start/60, r.Start%60, r.End/60, r.End%60)
}

// Duration is the length of the window.
func (r TimeRange) Duration() time.Duration {
	return time.Duration(r.End-r.Start) * time.Minute
}

func parseClock(s string) (int, error) {
	hStr, mStr, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok {
		return 0, ErrInvalidTimeRange
	}
	h, err := strconv.Atoi(hStr)
	if err != nil || h < 0 || h > 24 {
		return 0, ErrInvalidTimeRange
	}
	m, err := strconv.Atoi(mStr)
	if err != nil || m < 0 || m > 59 || len(mStr) != 2 {
		return 0, ErrInvalidTimeRange
	}
	total := h*60 + m
	if total > minutesPerDay {
		return 0, ErrInvalidTimeRange
	}
	return total, nil
}
