package timex

import "time"

const day = 24 * time.Hour

// DateOf drops the time-of-day of t as observed in t's own location and
// returns that calendar date as midnight UTC. Dates produced this way can be
// subtracted without daylight-saving surprises.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole calendar days from a to b.
// The result is negative when b is before a.
func DaysBetween(a, b time.Time) int {
	return int(DateOf(b).Sub(DateOf(a)) / day)
}

// AddDays shifts a calendar date by n days.
func AddDays(d time.Time, n int) time.Time {
	return DateOf(d).AddDate(0, 0, n)
}

// Weekday maps t to 0=Monday .. 6=Sunday.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// FormatDate renders a calendar date as YYYY-MM-DD.
func FormatDate(d time.Time) string {
	return d.Format(time.DateOnly)
}
