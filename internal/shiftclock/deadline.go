package shiftclock

import (
	"time"

	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
)

// 班次的实际结束时刻，以逻辑日期零点起的分钟数表示。
// 白班 19:00 结束，夜班在次日 08:00 结束。
const (
	DayShiftClose   = 19 * 60
	NightShiftClose = MinutesPerDay + 8*60
)

func ShiftCloseMinute(slot domain.ShiftType) int {
	if slot == domain.ShiftTypeNight {
		return NightShiftClose
	}
	return DayShiftClose
}

// Deadline 返回某逻辑日期的班次在宽限期结束后的时刻
func Deadline(date time.Time, slot domain.ShiftType, graceMinutes int, loc *time.Location) time.Time {
	d := DateOf(date)
	midnight := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	return midnight.Add(time.Duration(ShiftCloseMinute(slot)+graceMinutes) * time.Minute)
}

// LatestClosableDate 返回截止时间已经到达的最近一个逻辑日期。
// 例如宽限期为 10 分钟时，白班在 19:10 起可以关闭当天的日志，
// 夜班在 08:10 起可以关闭前一天的日志。
func LatestClosableDate(today time.Time, minuteOfDay int, slot domain.ShiftType, graceMinutes int) time.Time {
	elapsed := minuteOfDay - (ShiftCloseMinute(slot) + graceMinutes)
	return AddDays(today, floorDiv(elapsed, MinutesPerDay))
}

// FormatClock 把零点起的分钟数格式化为 HH:MM，超过一天的部分取模
func FormatClock(minute int) string {
	m := ((minute % MinutesPerDay) + MinutesPerDay) % MinutesPerDay
	return time.Date(2000, 1, 1, m/60, m%60, 0, 0, time.UTC).Format("15:04")
}
