package domain

import "time"

// WorkSchedule flags which days of the week are work days.
// WorkDays is indexed by time.Weekday (Sunday = 0).
type WorkSchedule struct {
	ID       string
	TenantID string
	Name     string
	WorkDays [7]bool
}

// DefaultWorkSchedule is the Monday to Friday schedule used when an employee has
// no schedule assigned.
func DefaultWorkSchedule() WorkSchedule {
	return WorkSchedule{
		Name: "default",
		WorkDays: [7]bool{
			time.Monday:    true,
			time.Tuesday:   true,
			time.Wednesday: true,
			time.Thursday:  true,
			time.Friday:    true,
		},
	}
}

// IsWorkDay reports whether the given date falls on a work day.
func (s WorkSchedule) IsWorkDay(d time.Time) bool {
	return s.WorkDays[d.Weekday()]
}

// CountWorkDays returns the number of work days in the inclusive range
// [start, end], compared at calendar-date granularity.
func (s WorkSchedule) CountWorkDays(start, end time.Time) int {
	start, end = DateOf(start), DateOf(end)
	n := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if s.IsWorkDay(d) {
			n++
		}
	}
	return n
}

// HasWorkDays reports whether at least one day is flagged.
func (s WorkSchedule) HasWorkDays() bool {
	for _, w := range s.WorkDays {
		if w {
			return true
		}
	}
	return false
}

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
