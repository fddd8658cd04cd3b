package rotation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/rotation"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/rotation/rotationtest"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(cfg *domain.ShiftPatternConfig)
	}{
		{"zero cycle", func(cfg *domain.ShiftPatternConfig) { cfg.CycleLength = 0 }},
		{"too few entries", func(cfg *domain.ShiftPatternConfig) { cfg.Pattern = cfg.Pattern[:9] }},
		{"duplicate offset", func(cfg *domain.ShiftPatternConfig) { cfg.Pattern[9].Offset = 0 }},
		{"offset out of range", func(cfg *domain.ShiftPatternConfig) { cfg.Pattern[9].Offset = 10 }},
		{"empty team", func(cfg *domain.ShiftPatternConfig) { cfg.Pattern[3].Night.Team = " " }},
		{"same team twice", func(cfg *domain.ShiftPatternConfig) { cfg.Pattern[3].Night.Team = cfg.Pattern[3].Day.Team }},
		{"valid_to before valid_from", func(cfg *domain.ShiftPatternConfig) {
			to := shiftclock.AddDays(cfg.ValidFrom, -1)
			cfg.ValidTo = &to
		}},
	}

	require.NoError(t, rotation.Validate(rotationtest.TenDayConfig()))

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := rotationtest.TenDayConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, rotation.Validate(cfg), domain.ErrInvalidShiftPatternConfig)
		})
	}
}

func TestTeams(t *testing.T) {
	assert.Equal(t, []string{"1조", "4조", "2조", "3조"}, rotation.Teams(rotationtest.TenDayConfig()))
}

func TestGenerateDefaultPattern(t *testing.T) {
	pattern := rotation.GenerateDefaultPattern(6, []string{"1조", "2조", "3조"})
	require.Len(t, pattern, 6)

	assert.Equal(t, "1조", pattern[0].Day.Team)
	assert.Equal(t, "2조", pattern[0].Night.Team)
	assert.Equal(t, "3조", pattern[5].Day.Team)
	assert.Equal(t, "1조", pattern[5].Night.Team)

	cfg := &domain.ShiftPatternConfig{
		ValidFrom:   shiftclock.Date(2026, 1, 1),
		CycleLength: 6,
		Pattern:     pattern,
	}
	assert.NoError(t, rotation.Validate(cfg))

	assert.Nil(t, rotation.GenerateDefaultPattern(6, []string{"1조"}))
}
