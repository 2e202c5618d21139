package util

import (
	"fmt"
	"time"
)

var monthNames = [...]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// LastDayOfMonth returns the last calendar day of the given month
func LastDayOfMonth(year int, month time.Month) time.Time {
	// Day 0 of the next month is the last day of this one; December rolls into next year
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
}

// MonthRange returns the first and last day of a month
func MonthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, LastDayOfMonth(year, time.Month(month))
}

// QuarterMonths returns the first and last month of a quarter (1-4)
func QuarterMonths(quarter int) (int, int) {
	first := 3*(quarter-1) + 1
	return first, 3 * quarter
}

// QuarterRange returns the first and last day of a quarter. Q4 ends on December 31.
func QuarterRange(year, quarter int) (time.Time, time.Time) {
	first, last := QuarterMonths(quarter)
	start := time.Date(year, time.Month(first), 1, 0, 0, 0, 0, time.UTC)
	return start, LastDayOfMonth(year, time.Month(last))
}

// YearRange returns January 1 and December 31 of a year
func YearRange(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// QuarterOf returns the quarter (1-4) containing the given month
func QuarterOf(month time.Month) int {
	return (int(month)-1)/3 + 1
}

// NextDay returns the start of the day after t, used as an exclusive query bound
func NextDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}

// MonthLabel formats a month as "March 2025"
func MonthLabel(year, month int) string {
	if month < 1 || month > 12 {
		return fmt.Sprintf("%02d/%d", month, year)
	}
	return fmt.Sprintf("%s %d", monthNames[month-1], year)
}

// QuarterLabel formats a quarter as "Q2 2025"
func QuarterLabel(year, quarter int) string {
	return fmt.Sprintf("Q%d %d", quarter, year)
}

// CalculateActualDate returns the actual date for a target day in a given month,
// handling months with fewer days (e.g., day 31 in February returns Feb 28/29)
func CalculateActualDate(year int, month time.Month, targetDay int) time.Time {
	lastDay := LastDayOfMonth(year, month).Day()

	actualDay := targetDay
	if actualDay > lastDay {
		actualDay = lastDay
	}

	return time.Date(year, month, actualDay, 0, 0, 0, 0, time.UTC)
}

// YearSpanLabel formats an inclusive year span as "2021-2025"
func YearSpanLabel(first, last int) string {
	return fmt.Sprintf("%d-%d", first, last)
}
