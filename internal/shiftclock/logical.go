package shiftclock

import (
	"time"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
)

// 以零点起的分钟数表示的班次边界
const (
	DayShiftStart = 7*60 + 30  // 07:30
	DayShiftEnd   = 18*60 + 30 // 18:30，夜班从这里开始
	MinutesPerDay = 24 * 60
)

// LogicalShift 白班为 [07:30, 18:30)，其余时间为夜班。
// 07:30 之前属于前一天的夜班。
func LogicalShift(today time.Time, hour, minute int) (time.Time, domain.ShiftType) {
	m := hour*60 + minute
	switch {
	case m < DayShiftStart:
		return AddDays(today, -1), domain.ShiftTypeNight
	case m >= DayShiftEnd:
		return DateOf(today), domain.ShiftTypeNight
	default:
		return DateOf(today), domain.ShiftTypeDay
	}
}

// SessionAwareShift 根据当前在岗组修正逻辑班次：
// 白班组在 18:30 之后尚未交班时仍视为白班，
// 前一天的夜班组在 07:30 之后尚未交班时仍视为前一天的夜班。
// teamsFor 返回某日的白班与夜班组，出错时不做修正。
func SessionAwareShift(date time.Time, slot domain.ShiftType, sessionTeam string, teamsFor func(time.Time) (domain.ShiftTeams, error)) (time.Time, domain.ShiftType) {
	if sessionTeam == "" {
		return date, slot
	}

	teams, err := teamsFor(date)
	if err != nil {
		return date, slot
	}

	switch {
	case slot == domain.ShiftTypeNight && teams.Day.Team == sessionTeam:
		return date, domain.ShiftTypeDay
	case slot == domain.ShiftTypeDay && teams.Day.Team != sessionTeam:
		// 只有前一天的夜班组才回退
		yesterday := AddDays(date, -1)
		prev, err := teamsFor(yesterday)
		if err == nil && prev.Night.Team == sessionTeam {
			return yesterday, domain.ShiftTypeNight
		}
	}

	return date, slot
}
