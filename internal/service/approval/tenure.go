// Package approval implements the leave approval engine: the authorization
// chain resolver, the vacation balance ledger, and the request workflow state
// machine built on top of them.
package approval

import (
	"sort"
	"time"

	"hr-approvals/internal/domain"
)

// TenureTable is a monotonic step function from full years of service to
// earned vacation days. Below the first band an employee earns nothing; above
// the last band the last band applies.
type TenureTable struct {
	bands []domain.TenureBand
}

var defaultTenureBands = []domain.TenureBand{
	{Years: 1, Days: 12},
	{Years: 2, Days: 14},
	{Years: 3, Days: 16},
	{Years: 4, Days: 18},
	{Years: 5, Days: 20},
	{Years: 6, Days: 22},
	{Years: 11, Days: 24},
	{Years: 16, Days: 26},
	{Years: 21, Days: 28},
	{Years: 26, Days: 30},
	{Years: 30, Days: 32},
}

// DefaultTenureTable returns the statutory table used when no policy file
// overrides it.
func DefaultTenureTable() TenureTable {
	t, _ := NewTenureTable(defaultTenureBands)
	return t
}

// NewTenureTable validates bands and returns a table. Bands may be given in
// any order; after sorting, years must strictly increase and days must never
// decrease.
func NewTenureTable(bands []domain.TenureBand) (TenureTable, error) {
	if len(bands) == 0 {
		return TenureTable{}, domain.ErrValidation("tenure table must have at least one band")
	}
	sorted := make([]domain.TenureBand, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Years < sorted[j].Years })

	for i, b := range sorted {
		if b.Years < 1 {
			return TenureTable{}, domain.ErrValidation("tenure band years must be at least 1, got %d", b.Years)
		}
		if b.Days < 0 {
			return TenureTable{}, domain.ErrValidation("tenure band days must not be negative, got %d", b.Days)
		}
		if i == 0 {
			continue
		}
		prev := sorted[i-1]
		if b.Years == prev.Years {
			return TenureTable{}, domain.ErrValidation("duplicate tenure band for %d years", b.Years)
		}
		if b.Days < prev.Days {
			return TenureTable{}, domain.ErrValidation("tenure table is not monotonic at %d years", b.Years)
		}
	}
	return TenureTable{bands: sorted}, nil
}

// EarnedDays returns the days earned after the given full years of service.
func (t TenureTable) EarnedDays(years int) int {
	days := 0
	for _, b := range t.bands {
		if years < b.Years {
			break
		}
		days = b.Days
	}
	return days
}

// Bands returns a copy of the table's bands in ascending order.
func (t TenureTable) Bands() []domain.TenureBand {
	out := make([]domain.TenureBand, len(t.bands))
	copy(out, t.bands)
	return out
}

// FullYears returns the number of complete anniversaries between hire and
// asOf. A hire date in the future yields zero.
func FullYears(hire, asOf time.Time) int {
	hire, asOf = domain.DateOf(hire), domain.DateOf(asOf)
	if asOf.Before(hire) {
		return 0
	}
	years := asOf.Year() - hire.Year()
	anniversary := hire.AddDate(years, 0, 0)
	if asOf.Before(anniversary) {
		years--
	}
	return years
}
