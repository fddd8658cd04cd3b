package rotation

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
)

// MaxRangeDays 限制一次区间查询的天数
const MaxRangeDays = 366

type ConfigSource interface {
	// 找不到时返回 domain.ErrConfigurationMissing
	GetActiveShiftPatternConfig(ctx context.Context, date time.Time) (*domain.ShiftPatternConfig, error)
	// 返回有效期与 [from, to] 有交集的所有配置
	GetShiftPatternConfigsBetween(ctx context.Context, from, to time.Time) ([]*domain.ShiftPatternConfig, error)
}

// ActiveConfig 在给定配置中选出某日生效的那一份：
// valid_from 不晚于该日且未失效的配置中 valid_from 最晚的一份，相同时取最新创建的。
func ActiveConfig(configs []*domain.ShiftPatternConfig, date time.Time) (*domain.ShiftPatternConfig, error) {
	var active *domain.ShiftPatternConfig
	for _, cfg := range configs {
		if !cfg.Covers(date) {
			continue
		}
		if active == nil || newer(cfg, active) {
			active = cfg
		}
	}

	if active == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrConfigurationMissing, shiftclock.FormatDate(date))
	}
	return active, nil
}

func newer(a, b *domain.ShiftPatternConfig) bool {
	if !a.ValidFrom.Equal(b.ValidFrom) {
		return a.ValidFrom.After(b.ValidFrom)
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// Calendar 在版本化的配置之上解析日期，每一天都使用当天生效的配置
type Calendar struct {
	source ConfigSource
}

func NewCalendar(source ConfigSource) *Calendar {
	return &Calendar{source: source}
}

func (c *Calendar) Config(ctx context.Context, date time.Time) (*domain.ShiftPatternConfig, error) {
	return c.source.GetActiveShiftPatternConfig(ctx, shiftclock.DateOf(date))
}

func (c *Calendar) Teams(ctx context.Context, date time.Time) (domain.ShiftTeams, error) {
	cfg, err := c.Config(ctx, date)
	if err != nil {
		return domain.ShiftTeams{}, err
	}
	return Resolve(date, cfg)
}

func (c *Calendar) TeamOnShift(ctx context.Context, date time.Time, shiftType domain.ShiftType) (domain.ShiftAssignment, error) {
	teams, err := c.Teams(ctx, date)
	if err != nil {
		return domain.ShiftAssignment{}, err
	}
	return teams.Assignment(shiftType), nil
}

// NextOnShift 返回下一个班次的日期、类型和值班组。
// 夜班的下一个班次落在次日，若次日起换了配置则按新配置计算。
func (c *Calendar) NextOnShift(ctx context.Context, date time.Time, shiftType domain.ShiftType) (time.Time, domain.ShiftType, domain.ShiftAssignment, error) {
	nextDate, nextType := NextShift(date, shiftType)
	assignment, err := c.TeamOnShift(ctx, nextDate, nextType)
	if err != nil {
		return time.Time{}, "", domain.ShiftAssignment{}, err
	}
	return nextDate, nextType, assignment, nil
}

func (c *Calendar) ResolveRange(ctx context.Context, from, to time.Time, team string) ([]domain.ShiftResolution, error) {
	from, to = shiftclock.DateOf(from), shiftclock.DateOf(to)
	if to.Before(from) {
		return []domain.ShiftResolution{}, nil
	}
	if shiftclock.DaysBetween(from, to) >= MaxRangeDays {
		return nil, fmt.Errorf("查询区间不能超过 %d 天", MaxRangeDays)
	}

	configs, err := c.source.GetShiftPatternConfigsBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}

	results := make([]domain.ShiftResolution, 0, shiftclock.DaysBetween(from, to)+1)
	for d := from; !d.After(to); d = shiftclock.AddDays(d, 1) {
		cfg, err := ActiveConfig(configs, d)
		if err != nil {
			return nil, err
		}
		res, err := ResolveForTeam(d, team, cfg)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	return results, nil
}

// Assignment 返回某个班次的值班组及按职责展开的成员
func (c *Calendar) Assignment(ctx context.Context, date time.Time, shiftType domain.ShiftType) (domain.ShiftAssignment, domain.RoleAssignment, error) {
	cfg, err := c.Config(ctx, date)
	if err != nil {
		return domain.ShiftAssignment{}, domain.RoleAssignment{}, err
	}

	assignment, err := TeamOnShift(date, shiftType, cfg)
	if err != nil {
		return domain.ShiftAssignment{}, domain.RoleAssignment{}, err
	}

	return assignment, AssignMembers(cfg.Members(assignment.Team), assignment.IsSwap), nil
}

// SortConfigs 按生效日期倒序排列，用于列表展示
func SortConfigs(configs []*domain.ShiftPatternConfig) {
	sort.SliceStable(configs, func(i, j int) bool {
		return newer(configs[i], configs[j])
	})
}
