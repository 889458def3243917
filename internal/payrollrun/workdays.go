package payrollrun

import "time"

// WorkingDaysInMonth counts the Monday-Friday days of a calendar month.
// Public holidays are not modeled; the company calendar is out of scope.
func WorkingDaysInMonth(month, year int) int {
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)

	count := 0
	for d := first; d.Before(next); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			count++
		}
	}
	return count
}
