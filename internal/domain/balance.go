package domain

import "time"

// VacationBalance is the per-employee, per-year day ledger row.
// Invariant: UsedDays + PendingDays <= EarnedDays.
type VacationBalance struct {
	EmployeeID  string
	Year        int
	EarnedDays  int
	UsedDays    int
	PendingDays int
	ExpiredDays int
	UpdatedAt   time.Time
}

// Available returns the days that can still be reserved.
func (b VacationBalance) Available() int {
	return b.EarnedDays - b.UsedDays - b.PendingDays - b.ExpiredDays
}

// TenureBand maps a minimum number of full years of service to earned days.
type TenureBand struct {
	Years int `yaml:"years"`
	Days  int `yaml:"days"`
}
