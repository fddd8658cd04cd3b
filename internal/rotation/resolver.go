// Package rotation 根据版本化的轮换配置计算任意日期的值班组。
//
// 轮换没有状态：给定锚点日期（配置的 valid_from）和周期长度，
// 任何日期的表项都可以直接算出，锚点之前的日期同样合法。
package rotation

import (
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/shiftclock"
)

// CycleIndex 返回日期在周期中的偏移量，范围为 [0, cycle_length)
func CycleIndex(date time.Time, cfg *domain.ShiftPatternConfig) (int, error) {
	if cfg.CycleLength <= 0 {
		return 0, fmt.Errorf("%w: 周期长度必须为正数", domain.ErrInvalidShiftPatternConfig)
	}

	diff := shiftclock.DaysBetween(cfg.ValidFrom, date)

	// Go 的 % 对负数返回负值，需要修正
	index := diff % cfg.CycleLength
	if index < 0 {
		index += cfg.CycleLength
	}
	return index, nil
}

func Resolve(date time.Time, cfg *domain.ShiftPatternConfig) (domain.ShiftTeams, error) {
	index, err := CycleIndex(date, cfg)
	if err != nil {
		return domain.ShiftTeams{}, err
	}

	entry, err := cfg.Entry(index)
	if err != nil {
		return domain.ShiftTeams{}, err
	}

	return domain.ShiftTeams{
		Date:  shiftclock.DateOf(date),
		Index: index,
		Day:   entry.Day,
		Night: entry.Night,
	}, nil
}

func ResolveForTeam(date time.Time, team string, cfg *domain.ShiftPatternConfig) (domain.ShiftResolution, error) {
	teams, err := Resolve(date, cfg)
	if err != nil {
		return domain.ShiftResolution{}, err
	}

	res := domain.ShiftResolution{
		Date:      teams.Date,
		Team:      team,
		ShiftType: domain.ShiftTypeOff,
	}

	switch team {
	case teams.Day.Team:
		res.ShiftType = domain.ShiftTypeDay
		res.IsSwap = teams.Day.IsSwap
	case teams.Night.Team:
		res.ShiftType = domain.ShiftTypeNight
		res.IsSwap = teams.Night.IsSwap
	}

	res.Roles = AssignRoles(res.IsSwap)
	return res, nil
}

// ResolveRange 对 [from, to] 中的每一天调用 ResolveForTeam
func ResolveRange(from, to time.Time, team string, cfg *domain.ShiftPatternConfig) ([]domain.ShiftResolution, error) {
	results := make([]domain.ShiftResolution, 0)

	for d := shiftclock.DateOf(from); !d.After(shiftclock.DateOf(to)); d = shiftclock.AddDays(d, 1) {
		res, err := ResolveForTeam(d, team, cfg)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	return results, nil
}

func TeamOnShift(date time.Time, shiftType domain.ShiftType, cfg *domain.ShiftPatternConfig) (domain.ShiftAssignment, error) {
	teams, err := Resolve(date, cfg)
	if err != nil {
		return domain.ShiftAssignment{}, err
	}
	return teams.Assignment(shiftType), nil
}

// NextShift 白班之后是同一天的夜班，夜班之后是下一天的白班。
// 在同一份配置下，后者就是 (index + 1) mod cycle_length 的白班。
func NextShift(date time.Time, shiftType domain.ShiftType) (time.Time, domain.ShiftType) {
	if shiftType == domain.ShiftTypeDay {
		return shiftclock.DateOf(date), domain.ShiftTypeNight
	}
	return shiftclock.AddDays(date, 1), domain.ShiftTypeDay
}
