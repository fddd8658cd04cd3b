package shiftclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
)

func TestLatestClosableDate(t *testing.T) {
	today := Date(2025, time.December, 5)
	yesterday := Date(2025, time.December, 4)
	twoDaysAgo := Date(2025, time.December, 3)

	tests := []struct {
		name   string
		minute int
		shift  domain.ShiftType
		want   time.Time
	}{
		{"day before deadline", 19*60 + 9, domain.ShiftTypeDay, yesterday},
		{"day at deadline", 19*60 + 10, domain.ShiftTypeDay, today},
		{"day late evening", 23*60 + 59, domain.ShiftTypeDay, today},
		{"day after midnight", 0, domain.ShiftTypeDay, yesterday},
		{"night before deadline", 8*60 + 9, domain.ShiftTypeNight, twoDaysAgo},
		{"night at deadline", 8*60 + 10, domain.ShiftTypeNight, yesterday},
		{"night afternoon", 15 * 60, domain.ShiftTypeNight, yesterday},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, LatestClosableDate(today, tt.minute, tt.shift, 10))
		})
	}
}

func TestDeadline(t *testing.T) {
	loc := time.FixedZone("civil", 9*3600)
	date := Date(2025, time.December, 5)

	dayDeadline := Deadline(date, domain.ShiftTypeDay, 10, loc)
	assert.True(t, dayDeadline.Equal(time.Date(2025, time.December, 5, 19, 10, 0, 0, loc)), dayDeadline)

	nightDeadline := Deadline(date, domain.ShiftTypeNight, 10, loc)
	assert.True(t, nightDeadline.Equal(time.Date(2025, time.December, 6, 8, 10, 0, 0, loc)), nightDeadline)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "19:00", FormatClock(DayShiftClose))
	assert.Equal(t, "08:00", FormatClock(NightShiftClose))
}
