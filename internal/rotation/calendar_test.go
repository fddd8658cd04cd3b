package rotation_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/rotation"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/rotation/rotationtest"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
)

// successorConfig 从 2025-12-01 起生效，两组白夜交替
func successorConfig() *domain.ShiftPatternConfig {
	return &domain.ShiftPatternConfig{
		ID:          2,
		ValidFrom:   shiftclock.Date(2025, time.December, 1),
		CycleLength: 2,
		Pattern: []domain.DailyShiftPattern{
			{Offset: 0, Day: domain.ShiftAssignment{Team: "A"}, Night: domain.ShiftAssignment{Team: "B"}},
			{Offset: 1, Day: domain.ShiftAssignment{Team: "B"}, Night: domain.ShiftAssignment{Team: "A", IsSwap: true}},
		},
	}
}

func TestActiveConfigSelection(t *testing.T) {
	first := rotationtest.TenDayConfig()
	second := successorConfig()
	configs := []*domain.ShiftPatternConfig{first, second}

	cfg, err := rotation.ActiveConfig(configs, shiftclock.Date(2025, time.November, 30))
	require.NoError(t, err)
	assert.Equal(t, first.ID, cfg.ID)

	cfg, err = rotation.ActiveConfig(configs, shiftclock.Date(2025, time.December, 1))
	require.NoError(t, err)
	assert.Equal(t, second.ID, cfg.ID)

	_, err = rotation.ActiveConfig(configs, shiftclock.Date(2025, time.November, 5))
	assert.ErrorIs(t, err, domain.ErrConfigurationMissing)

	// 已失效的配置不会被选中
	to := shiftclock.Date(2025, time.November, 10)
	first.ValidTo = &to
	_, err = rotation.ActiveConfig([]*domain.ShiftPatternConfig{first}, shiftclock.Date(2025, time.November, 11))
	assert.ErrorIs(t, err, domain.ErrConfigurationMissing)
}

func TestActiveConfigPrefersLatestCreated(t *testing.T) {
	a := rotationtest.TenDayConfig()
	b := rotationtest.TenDayConfig()
	b.ID = 7
	b.CreatedAt = a.CreatedAt.Add(time.Hour)

	cfg, err := rotation.ActiveConfig([]*domain.ShiftPatternConfig{b, a}, a.ValidFrom)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.ID)
}

func TestCalendarResolveRangeAcrossVersions(t *testing.T) {
	cal := rotation.NewCalendar(rotationtest.NewMemorySource(rotationtest.TenDayConfig(), successorConfig()))

	results, err := cal.ResolveRange(context.Background(), shiftclock.Date(2025, time.November, 29), shiftclock.Date(2025, time.December, 2), "A")
	require.NoError(t, err)
	require.Len(t, results, 4)

	assert.Equal(t, domain.ShiftTypeOff, results[0].ShiftType)
	assert.Equal(t, domain.ShiftTypeOff, results[1].ShiftType)
	assert.Equal(t, domain.ShiftTypeDay, results[2].ShiftType)
	assert.Equal(t, domain.ShiftTypeNight, results[3].ShiftType)
	assert.True(t, results[3].IsSwap)
}

func TestCalendarResolveRangeMissingConfig(t *testing.T) {
	cal := rotation.NewCalendar(rotationtest.NewMemorySource(rotationtest.TenDayConfig()))

	_, err := cal.ResolveRange(context.Background(), shiftclock.Date(2025, time.November, 4), shiftclock.Date(2025, time.November, 7), "1조")
	assert.ErrorIs(t, err, domain.ErrConfigurationMissing)
}

func TestCalendarNextOnShiftCrossesConfigBoundary(t *testing.T) {
	cal := rotation.NewCalendar(rotationtest.NewMemorySource(rotationtest.TenDayConfig(), successorConfig()))
	ctx := context.Background()

	// 11-30 夜班之后是 12-01 白班，按新配置为 A
	nextDate, nextType, next, err := cal.NextOnShift(ctx, shiftclock.Date(2025, time.November, 30), domain.ShiftTypeNight)
	require.NoError(t, err)
	assert.Equal(t, shiftclock.Date(2025, time.December, 1), nextDate)
	assert.Equal(t, domain.ShiftTypeDay, nextType)
	assert.Equal(t, "A", next.Team)

	// 同一配置内，夜班之后是 (index+1) mod cycle_length 的白班
	cfg := rotationtest.TenDayConfig()
	d := shiftclock.AddDays(cfg.ValidFrom, 9)
	_, _, next, err = cal.NextOnShift(ctx, d, domain.ShiftTypeNight)
	require.NoError(t, err)
	assert.Equal(t, cfg.Pattern[0].Day.Team, next.Team)
}

func TestCalendarAssignment(t *testing.T) {
	cfg := rotationtest.TenDayConfig()
	cal := rotation.NewCalendar(rotationtest.NewMemorySource(cfg))

	team, roles, err := cal.Assignment(context.Background(), cfg.ValidFrom, domain.ShiftTypeNight)
	require.NoError(t, err)
	assert.Equal(t, "4조", team.Team)
	assert.Equal(t, domain.RoleAssignment{Primary: "han", Secondary: "lim", Tertiary: []string{"oh"}}, roles)
}

func TestCalendarRejectsHugeRange(t *testing.T) {
	cal := rotation.NewCalendar(rotationtest.NewMemorySource(rotationtest.TenDayConfig()))
	from := shiftclock.Date(2025, time.November, 6)

	_, err := cal.ResolveRange(context.Background(), from, shiftclock.AddDays(from, rotation.MaxRangeDays), "1조")
	assert.Error(t, err)
}
