package domain

import (
	"fmt"
	"time"
)

type ShiftAssignment struct {
	Team   string `json:"team"`
	IsSwap bool   `json:"isSwap"`
}

type DailyShiftPattern struct {
	Offset int             `json:"offset"`
	Day    ShiftAssignment `json:"day"`
	Night  ShiftAssignment `json:"night"`
}

type ShiftPatternConfig struct {
	ID          int64               `json:"id"`
	ValidFrom   time.Time           `json:"validFrom"`
	ValidTo     *time.Time          `json:"validTo"` // 为空表示长期有效
	CycleLength int                 `json:"cycleLength"`
	Pattern     []DailyShiftPattern `json:"pattern"`
	Roster      map[string][]string `json:"roster"` // 组名 -> 有序成员列表
	RoleLabels  []string            `json:"roleLabels"`
	Memo        string              `json:"memo"`
	CreatedBy   *int64              `json:"createdBy"`
	CreatedAt   time.Time           `json:"createdAt"`
	Version     int32               `json:"-"`
}

// Entry 按偏移量查找轮换表项，缺失说明配置损坏，不能用默认值代替
func (c *ShiftPatternConfig) Entry(offset int) (DailyShiftPattern, error) {
	for _, p := range c.Pattern {
		if p.Offset == offset {
			return p, nil
		}
	}
	return DailyShiftPattern{}, fmt.Errorf("%w: 配置 %d 缺少偏移量 %d", ErrPatternIndexMissing, c.ID, offset)
}

// Covers 判断日期是否落在配置的有效期内（两端都包含）
func (c *ShiftPatternConfig) Covers(date time.Time) bool {
	if date.Before(c.ValidFrom) {
		return false
	}
	return c.ValidTo == nil || !date.After(*c.ValidTo)
}

func (c *ShiftPatternConfig) Members(team string) []string {
	if c.Roster == nil {
		return nil
	}
	return c.Roster[team]
}
