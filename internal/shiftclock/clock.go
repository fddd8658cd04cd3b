// Package shiftclock 负责把时刻换算成固定时区的墙上时间，并进一步换算成逻辑班次。
//
// 所有日期都用 UTC 零点的 time.Time 表示，这样日期之间的差值是精确的整数天，
// 与宿主机的本地时区无关。
package shiftclock

import (
	"time"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
)

type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// ClockFunc 允许用函数充当时钟，测试中用来固定当前时刻
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time {
	return f()
}

// CivilClock 把任意时刻换算为固定 UTC 偏移下的墙上时间，不考虑夏令时
type CivilClock struct {
	loc *time.Location
}

func NewCivilClock(offsetMinutes int) CivilClock {
	return CivilClock{
		loc: time.FixedZone("civil", offsetMinutes*60),
	}
}

func (c CivilClock) Location() *time.Location {
	if c.loc == nil {
		return time.UTC
	}
	return c.loc
}

func (c CivilClock) WallClock(t time.Time) (hour, minute int) {
	local := t.In(c.Location())
	return local.Hour(), local.Minute()
}

func (c CivilClock) MinuteOfDay(t time.Time) int {
	hour, minute := c.WallClock(t)
	return hour*60 + minute
}

// CivilDate 返回时刻在本地时区下的日历日期
func (c CivilClock) CivilDate(t time.Time) time.Time {
	return DateOf(t.In(c.Location()))
}

// LogicalShiftAt 返回时刻所属的逻辑班次日期与班次类型
func (c CivilClock) LogicalShiftAt(t time.Time) (time.Time, domain.ShiftType) {
	hour, minute := c.WallClock(t)
	return LogicalShift(c.CivilDate(t), hour, minute)
}
