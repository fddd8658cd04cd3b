package domain

import (
	"fmt"
	"time"
)

type ShiftType string

const (
	ShiftTypeDay   ShiftType = "day"
	ShiftTypeNight ShiftType = "night"
	ShiftTypeOff   ShiftType = "off" // 仅出现在解析结果中，工作日志只有白班和夜班
)

func ParseShiftType(s string) (ShiftType, error) {
	switch ShiftType(s) {
	case ShiftTypeDay, ShiftTypeNight:
		return ShiftType(s), nil
	default:
		return "", fmt.Errorf("无效的班次类型: %q", s)
	}
}

// RoleIndices 是职责到有序名单下标的映射，Tertiary 及其之后的成员都归入第三职责
type RoleIndices struct {
	Primary   int `json:"primary"`
	Secondary int `json:"secondary"`
	Tertiary  int `json:"tertiary"`
}

type ShiftResolution struct {
	Date      time.Time   `json:"date"`
	Team      string      `json:"team"`
	ShiftType ShiftType   `json:"shiftType"`
	IsSwap    bool        `json:"isSwap"`
	Roles     RoleIndices `json:"roleIndices"`
}

// ShiftTeams 是某一天白班与夜班的值班组
type ShiftTeams struct {
	Date  time.Time       `json:"date"`
	Index int             `json:"index"`
	Day   ShiftAssignment `json:"day"`
	Night ShiftAssignment `json:"night"`
}

func (t ShiftTeams) Assignment(shiftType ShiftType) ShiftAssignment {
	if shiftType == ShiftTypeNight {
		return t.Night
	}
	return t.Day
}

// RoleAssignment 是按职责展开后的具体成员
type RoleAssignment struct {
	Primary   string   `json:"primary"`
	Secondary string   `json:"secondary"`
	Tertiary  []string `json:"tertiary"`
}
