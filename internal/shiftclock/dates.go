package shiftclock

import "time"

const dateLayout = "2006-01-02"

func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// DateOf 取时刻在其自身时区下的年月日
func DateOf(t time.Time) time.Time {
	return Date(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, s, time.UTC)
}

func FormatDate(d time.Time) string {
	return d.Format(dateLayout)
}

func AddDays(d time.Time, n int) time.Time {
	return DateOf(d).AddDate(0, 0, n)
}

const secondsPerDay = 24 * 60 * 60

// DaysBetween 返回从 from 到 to 的带符号天数。
// time.Duration 只能表示约 292 年，这里用 Unix 秒数相减，两端都是 UTC 零点所以结果总是整天。
func DaysBetween(from, to time.Time) int {
	return int((DateOf(to).Unix() - DateOf(from).Unix()) / secondsPerDay)
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
