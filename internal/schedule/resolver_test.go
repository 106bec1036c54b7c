package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 2025-01-13 is a Monday.
func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.January, day, hour, minute, 0, 0, time.UTC)
}

func TestNextOccurrence(t *testing.T) {
	tests := []struct {
		name string
		day  string
		tr   string
		ref  time.Time
		want time.Time
	}{
		{"later in the week", "monday", "09:00-10:00", at(15, 10, 0), at(20, 9, 0)},
		{"same day before start", "monday", "09:00-10:00", at(13, 8, 0), at(13, 9, 0)},
		{"same day after start", "monday", "09:00-10:00", at(13, 10, 0), at(20, 9, 0)},
		{"exactly at start", "monday", "09:00-10:00", at(13, 9, 0), at(13, 9, 0)},
		{"case insensitive", "MonDay", "09:00-10:00", at(15, 10, 0), at(20, 9, 0)},
		{"crosses month end", "saturday", "18:30-19:30", at(31, 12, 0), time.Date(2025, time.February, 1, 18, 30, 0, 0, time.UTC)},
		{"sunday from saturday", "sunday", "06:00-07:00", at(18, 23, 0), at(19, 6, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NextOccurrence(tt.day, tt.tr, tt.ref)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "want %s, got %s", tt.want, got)
			assert.False(t, got.Before(tt.ref))
		})
	}
}

func TestNextOccurrence_ZeroesSecondsAndKeepsLocation(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	ref := time.Date(2025, time.January, 15, 10, 11, 12, 13, loc)

	got, err := NextOccurrence("friday", "07:45-08:45", ref)
	require.NoError(t, err)

	assert.Equal(t, time.Date(2025, time.January, 17, 7, 45, 0, 0, loc), got)
	assert.Equal(t, loc, got.Location())
}

func TestNextOccurrence_InvalidInput(t *testing.T) {
	_, err := NextOccurrence("someday", "09:00-10:00", at(13, 8, 0))
	assert.ErrorIs(t, err, ErrInvalidDay)

	_, err = NextOccurrence("monday", "nine to ten", at(13, 8, 0))
	assert.ErrorIs(t, err, ErrInvalidTimeRange)
}

func TestIsInPast(t *testing.T) {
	assert.False(t, IsInPast("monday", "09:00-10:00", at(13, 10, 0)))
	assert.False(t, IsInPast("monday", "09:00-10:00", at(13, 8, 0)))
	assert.False(t, IsInPast("wednesday", "09:00-10:00", at(13, 8, 0)))

	// Unresolvable labels fail closed.
	assert.True(t, IsInPast("funday", "09:00-10:00", at(13, 8, 0)))
	assert.True(t, IsInPast("monday", "10:00-09:00", at(13, 8, 0)))
	assert.True(t, IsInPast("", "", at(13, 8, 0)))
}

func TestFixedClock(t *testing.T) {
	now := at(13, 8, 0)
	assert.Equal(t, now, FixedClock(now).Now())
}

func TestSystemClock_Location(t *testing.T) {
	loc := time.FixedZone("test", 3600)
	assert.Equal(t, loc, SystemClock{Location: loc}.Now().Location())
}
