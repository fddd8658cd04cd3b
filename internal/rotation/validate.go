package rotation

import (
	"fmt"
	"strings"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
)

// Validate 检查配置是否可以发布：每个偏移量恰好一个表项，且每个班次都有组
func Validate(cfg *domain.ShiftPatternConfig) error {
	if cfg.CycleLength <= 0 {
		return fmt.Errorf("%w: 周期长度必须为正数", domain.ErrInvalidShiftPatternConfig)
	}

	if cfg.ValidTo != nil && cfg.ValidTo.Before(cfg.ValidFrom) {
		return fmt.Errorf("%w: 失效日期不能早于生效日期", domain.ErrInvalidShiftPatternConfig)
	}

	if len(cfg.Pattern) != cfg.CycleLength {
		return fmt.Errorf("%w: 周期长度为 %d，但提供了 %d 个表项", domain.ErrInvalidShiftPatternConfig, cfg.CycleLength, len(cfg.Pattern))
	}

	seen := make(map[int]bool, cfg.CycleLength)
	for _, p := range cfg.Pattern {
		if p.Offset < 0 || p.Offset >= cfg.CycleLength {
			return fmt.Errorf("%w: 偏移量 %d 超出范围", domain.ErrInvalidShiftPatternConfig, p.Offset)
		}
		if seen[p.Offset] {
			return fmt.Errorf("%w: 偏移量 %d 重复", domain.ErrInvalidShiftPatternConfig, p.Offset)
		}
		seen[p.Offset] = true

		day := strings.TrimSpace(p.Day.Team)
		night := strings.TrimSpace(p.Night.Team)
		if day == "" || night == "" {
			return fmt.Errorf("%w: 偏移量 %d 缺少值班组", domain.ErrInvalidShiftPatternConfig, p.Offset)
		}
		if day == night {
			return fmt.Errorf("%w: 偏移量 %d 的白班和夜班是同一个组", domain.ErrInvalidShiftPatternConfig, p.Offset)
		}
	}

	return nil
}

// Teams 返回配置中出现过的所有组名，按首次出现的顺序
func Teams(cfg *domain.ShiftPatternConfig) []string {
	seen := make(map[string]bool)
	names := make([]string, 0)
	for _, p := range cfg.Pattern {
		for _, team := range []string{p.Day.Team, p.Night.Team} {
			if !seen[team] {
				seen[team] = true
				names = append(names, team)
			}
		}
	}
	return names
}

// GenerateDefaultPattern 生成最简单的轮换：第 i 天白班为第 i 个组，夜班为下一个组
func GenerateDefaultPattern(cycleLength int, teams []string) []domain.DailyShiftPattern {
	if cycleLength <= 0 || len(teams) < 2 {
		return nil
	}

	pattern := make([]domain.DailyShiftPattern, cycleLength)
	for i := 0; i < cycleLength; i++ {
		pattern[i] = domain.DailyShiftPattern{
			Offset: i,
			Day:    domain.ShiftAssignment{Team: teams[i%len(teams)]},
			Night:  domain.ShiftAssignment{Team: teams[(i+1)%len(teams)]},
		}
	}
	return pattern
}
