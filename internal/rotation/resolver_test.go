package rotation_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/rotation"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/rotation/rotationtest"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
)

func TestResolveForTeamAnchorExample(t *testing.T) {
	cfg := rotationtest.TenDayConfig()
	anchor := shiftclock.Date(2025, time.November, 6)

	day, err := rotation.ResolveForTeam(anchor, "1조", cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftResolution{
		Date:      anchor,
		Team:      "1조",
		ShiftType: domain.ShiftTypeDay,
		IsSwap:    false,
		Roles:     domain.RoleIndices{Primary: 0, Secondary: 1, Tertiary: 2},
	}, day)

	night, err := rotation.ResolveForTeam(anchor, "4조", cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftResolution{
		Date:      anchor,
		Team:      "4조",
		ShiftType: domain.ShiftTypeNight,
		IsSwap:    true,
		Roles:     domain.RoleIndices{Primary: 1, Secondary: 0, Tertiary: 2},
	}, night)

	off, err := rotation.ResolveForTeam(anchor, "2조", cfg)
	require.NoError(t, err)
	assert.Equal(t, domain.ShiftTypeOff, off.ShiftType)
	assert.False(t, off.IsSwap)
}

func TestResolveAnchorIdentity(t *testing.T) {
	cfg := rotationtest.TenDayConfig()

	teams, err := rotation.Resolve(cfg.ValidFrom, cfg)
	require.NoError(t, err)
	assert.Equal(t, 0, teams.Index)
	assert.Equal(t, cfg.Pattern[0].Day, teams.Day)
	assert.Equal(t, cfg.Pattern[0].Night, teams.Night)
}

func TestResolveCyclePeriodicity(t *testing.T) {
	cfg := rotationtest.TenDayConfig()
	start := shiftclock.AddDays(cfg.ValidFrom, -35)

	for i := 0; i < 80; i++ {
		d := shiftclock.AddDays(start, i)
		for _, team := range rotationtest.Teams {
			a, err := rotation.ResolveForTeam(d, team, cfg)
			require.NoError(t, err)
			b, err := rotation.ResolveForTeam(shiftclock.AddDays(d, cfg.CycleLength), team, cfg)
			require.NoError(t, err)

			assert.Equal(t, a.ShiftType, b.ShiftType, "date %s team %s", shiftclock.FormatDate(d), team)
			assert.Equal(t, a.IsSwap, b.IsSwap)
			assert.Equal(t, a.Roles, b.Roles)
		}
	}
}

func TestResolveBeforeAnchor(t *testing.T) {
	cfg := rotationtest.TenDayConfig()

	tests := []struct {
		daysBefore int
		wantIndex  int
	}{
		{1, 9},
		{9, 1},
		{10, 0},
		{11, 9},
		{25, 5},
		{119013, 7}, // 1700-01-01
	}

	for _, tt := range tests {
		d := shiftclock.AddDays(cfg.ValidFrom, -tt.daysBefore)
		index, err := rotation.CycleIndex(d, cfg)
		require.NoError(t, err)
		assert.Equal(t, tt.wantIndex, index, "%d days before anchor", tt.daysBefore)

		// 与 d + k*cycle_length 的结果一致
		k := (tt.daysBefore + cfg.CycleLength - 1) / cfg.CycleLength
		shifted := shiftclock.AddDays(d, k*cfg.CycleLength)
		a, err := rotation.Resolve(d, cfg)
		require.NoError(t, err)
		b, err := rotation.Resolve(shifted, cfg)
		require.NoError(t, err)
		assert.Equal(t, b.Day, a.Day)
		assert.Equal(t, b.Night, a.Night)
	}
}

func TestCycleIndexFarFromAnchor(t *testing.T) {
	cfg := rotationtest.TenDayConfig()

	tests := []struct {
		date      time.Time
		wantIndex int
	}{
		{shiftclock.Date(1700, time.January, 1), 7},
		{shiftclock.Date(1700, time.January, 2), 8},
		{shiftclock.Date(2500, time.January, 1), 1},
	}

	for _, tt := range tests {
		index, err := rotation.CycleIndex(tt.date, cfg)
		require.NoError(t, err)
		assert.Equal(t, tt.wantIndex, index, shiftclock.FormatDate(tt.date))
	}
}

func TestResolveMissingPatternEntry(t *testing.T) {
	cfg := rotationtest.TenDayConfig()
	cfg.Pattern = cfg.Pattern[:9] // 删掉偏移量 9

	_, err := rotation.Resolve(shiftclock.AddDays(cfg.ValidFrom, 9), cfg)
	require.ErrorIs(t, err, domain.ErrPatternIndexMissing)

	// 其它偏移量不受影响
	_, err = rotation.Resolve(shiftclock.AddDays(cfg.ValidFrom, 8), cfg)
	require.NoError(t, err)
}

func TestResolveEntriesKeyedByOffset(t *testing.T) {
	cfg := rotationtest.TenDayConfig()
	// 表项顺序打乱后结果不变
	cfg.Pattern[0], cfg.Pattern[5] = cfg.Pattern[5], cfg.Pattern[0]

	teams, err := rotation.Resolve(cfg.ValidFrom, cfg)
	require.NoError(t, err)
	assert.Equal(t, "1조", teams.Day.Team)
	assert.Equal(t, "4조", teams.Night.Team)
}

func TestCycleIndexRejectsNonPositiveCycle(t *testing.T) {
	cfg := rotationtest.TenDayConfig()
	cfg.CycleLength = 0

	_, err := rotation.CycleIndex(cfg.ValidFrom, cfg)
	require.ErrorIs(t, err, domain.ErrInvalidShiftPatternConfig)
}

func TestResolveRange(t *testing.T) {
	cfg := rotationtest.TenDayConfig()
	from := cfg.ValidFrom
	to := shiftclock.AddDays(from, 3)

	results, err := rotation.ResolveRange(from, to, "1조", cfg)
	require.NoError(t, err)
	require.Len(t, results, 4)

	// 1조: 第 0 天白班，第 1 天夜班（(1+3)%4=0），第 2、3 天休息
	assert.Equal(t, domain.ShiftTypeDay, results[0].ShiftType)
	assert.Equal(t, domain.ShiftTypeNight, results[1].ShiftType)
	assert.Equal(t, domain.ShiftTypeOff, results[2].ShiftType)
	assert.Equal(t, domain.ShiftTypeOff, results[3].ShiftType)

	empty, err := rotation.ResolveRange(to, from, "1조", cfg)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestNextShift(t *testing.T) {
	d := shiftclock.Date(2025, time.December, 31)

	nextDate, nextType := rotation.NextShift(d, domain.ShiftTypeDay)
	assert.Equal(t, d, nextDate)
	assert.Equal(t, domain.ShiftTypeNight, nextType)

	nextDate, nextType = rotation.NextShift(d, domain.ShiftTypeNight)
	assert.Equal(t, shiftclock.Date(2026, time.January, 1), nextDate)
	assert.Equal(t, domain.ShiftTypeDay, nextType)
}
