package clock

import "time"

// DateLayout is the layout of the calendar-day keys stored in the daily ledger.
const DateLayout = "2006-01-02"

// Midnight returns 00:00 of t's calendar day in t's location.
func Midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// DaysBetween returns the number of calendar days from `from` to `to`,
// judged in to's location. DST shifts do not affect the count.
func DaysBetween(from, to time.Time) int {
	from = from.In(to.Location())
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

// DateKey formats t's calendar day.
func DateKey(t time.Time) string {
	return t.Format(DateLayout)
}

// WeekBounds returns the ISO week containing t: Monday 00:00:00 through
// Sunday 23:59:59.999 in t's location.
func WeekBounds(t time.Time) (start, end time.Time) {
	day := Midnight(t)
	offset := (int(day.Weekday()) + 6) % 7 // Monday = 0
	start = day.AddDate(0, 0, -offset)
	end = start.AddDate(0, 0, 7).Add(-time.Millisecond)
	return start, end
}
