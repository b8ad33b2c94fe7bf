package util

import "time"

// DaysInMonth returns the number of calendar days in the given month,
// honoring leap years.
func DaysInMonth(year, month int) int {
	// Day 0 of the next month is the last day of this one
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// MonthRange returns the inclusive window covering a whole calendar month:
// first day 00:00:00 through last day 23:59:59, in UTC.
func MonthRange(year, month int) (time.Time, time.Time) {
	from := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(year, time.Month(month), DaysInMonth(year, month), 23, 59, 59, 0, time.UTC)
	return from, to
}
