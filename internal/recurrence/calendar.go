// Package recurrence projects recurring obligations onto calendar dates.
//
// Every function here is pure: the reference date is always passed in and
// nothing reads the wall clock.
package recurrence

import "time"

// IsLeapYear applies the Gregorian rule.
func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in month of year.
func DaysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ClampDueDay returns min(dueDay, DaysInMonth(year, month)).
func ClampDueDay(dueDay, year int, month time.Month) int {
	if last := DaysInMonth(year, month); dueDay > last {
		return last
	}
	return dueDay
}

// addMonths moves (year, month) by n months, rolling the year as needed.
func addMonths(year int, month time.Month, n int) (int, time.Month) {
	idx := year*12 + int(month-1) + n
	return idx / 12, time.Month(idx%12 + 1)
}
