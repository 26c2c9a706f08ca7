package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hr-approvals/internal/domain"
)

// Ledger maintains per-employee, per-year vacation balances.
//
// Each exported method runs in its own unit of work. The workflow, which must
// change a request and its balance together, uses the view returned by Tx
// inside its own unit of work instead.
type Ledger struct {
	employees domain.EmployeeRepository
	uow       domain.UnitOfWork
	tenure    TenureTable
	clock     domain.Clock
	logger    *slog.Logger
}

// NewLedger creates a Ledger. A nil clock uses the system clock and a nil
// logger uses slog.Default().
func NewLedger(employees domain.EmployeeRepository, uow domain.UnitOfWork, tenure TenureTable, clock domain.Clock, logger *slog.Logger) *Ledger {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		employees: employees,
		uow:       uow,
		tenure:    tenure,
		clock:     clock,
		logger:    logger.With("component", "ledger"),
	}
}

// Tx returns a ledger view bound to the repositories of a running unit of work.
func (l *Ledger) Tx(repos domain.TxRepos) *LedgerTx {
	return &LedgerTx{ledger: l, repos: repos}
}

// GetOrCreate returns the employee's balance for year, creating it from the
// tenure table if absent.
func (l *Ledger) GetOrCreate(ctx context.Context, employeeID string, year int) (*domain.VacationBalance, error) {
	emp, err := l.employee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	var out *domain.VacationBalance
	err = l.uow.Do(ctx, func(ctx context.Context, repos domain.TxRepos) error {
		b, err := l.Tx(repos).GetOrCreate(ctx, emp, year)
		out = b
		return err
	})
	return out, err
}

// Lookup returns the stored balance for year or, when the year has none yet,
// the balance GetOrCreate would seed. It never writes; stored reports which.
func (l *Ledger) Lookup(ctx context.Context, employeeID string, year int) (b *domain.VacationBalance, stored bool, err error) {
	emp, err := l.employee(ctx, employeeID)
	if err != nil {
		return nil, false, err
	}
	err = l.uow.Do(ctx, func(ctx context.Context, repos domain.TxRepos) error {
		got, err := repos.Balances.GetForUpdate(ctx, emp.ID, year)
		if err == nil {
			b, stored = got, true
			return nil
		}
		var nf *domain.NotFoundError
		if !errors.As(err, &nf) {
			return err
		}
		b = l.seed(emp, year)
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return b, stored, nil
}

// seed is the opening balance of year: earned days from tenure as of now,
// nothing used, pending or expired.
func (l *Ledger) seed(emp *domain.Employee, year int) *domain.VacationBalance {
	now := l.clock.Now()
	return &domain.VacationBalance{
		EmployeeID: emp.ID,
		Year:       year,
		EarnedDays: l.tenure.EarnedDays(FullYears(emp.HireDate, now)),
		UpdatedAt:  now,
	}
}

// Reserve holds days as pending against the year's balance, failing with
// *domain.InsufficientBalanceError if they are not available.
func (l *Ledger) Reserve(ctx context.Context, employeeID string, year, days int) (*domain.VacationBalance, error) {
	emp, err := l.employee(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	var out *domain.VacationBalance
	err = l.uow.Do(ctx, func(ctx context.Context, repos domain.TxRepos) error {
		b, err := l.Tx(repos).Reserve(ctx, emp, year, days)
		out = b
		return err
	})
	return out, err
}

// Commit moves days from pending to used.
func (l *Ledger) Commit(ctx context.Context, employeeID string, year, days int) (*domain.VacationBalance, error) {
	var out *domain.VacationBalance
	err := l.uow.Do(ctx, func(ctx context.Context, repos domain.TxRepos) error {
		b, err := l.Tx(repos).Commit(ctx, employeeID, year, days)
		out = b
		return err
	})
	return out, err
}

// Release returns pending days to the available pool.
func (l *Ledger) Release(ctx context.Context, employeeID string, year, days int) (*domain.VacationBalance, error) {
	var out *domain.VacationBalance
	err := l.uow.Do(ctx, func(ctx context.Context, repos domain.TxRepos) error {
		b, err := l.Tx(repos).Release(ctx, employeeID, year, days)
		out = b
		return err
	})
	return out, err
}

// Expire forfeits the unused remainder of a year's balance and records it as
// expired. It refuses with a ConflictError while any days are still pending,
// and returns the number of days expired.
func (l *Ledger) Expire(ctx context.Context, employeeID string, year int) (int, error) {
	emp, err := l.employee(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	expired := 0
	err = l.uow.Do(ctx, func(ctx context.Context, repos domain.TxRepos) error {
		b, err := repos.Balances.GetForUpdate(ctx, employeeID, year)
		if err != nil {
			return err
		}
		if b.PendingDays > 0 {
			return domain.ErrConflict("balance %d for employee %q still has %d pending day(s)", year, employeeID, b.PendingDays)
		}
		remainder := b.Available()
		if remainder <= 0 {
			return nil
		}
		b.ExpiredDays += remainder
		b.UpdatedAt = l.clock.Now()
		if err := repos.Balances.Update(ctx, b); err != nil {
			return fmt.Errorf("update balance: %w", err)
		}
		expired = remainder
		return repos.Audit.Insert(ctx, &domain.AuditEntry{
			ID:         domain.NewID(),
			TenantID:   emp.TenantID,
			ActorID:    "system",
			Action:     domain.AuditExpireBalance,
			EntityType: "balance",
			EntityID:   fmt.Sprintf("%s/%d", employeeID, year),
			Detail:     fmt.Sprintf("expired %d day(s)", remainder),
			CreatedAt:  b.UpdatedAt,
		})
	})
	if err != nil {
		return 0, err
	}
	if expired > 0 {
		l.logger.Info("balance expired", "employee_id", employeeID, "year", year, "days", expired)
	}
	return expired, nil
}

func (l *Ledger) employee(ctx context.Context, employeeID string) (*domain.Employee, error) {
	emp, err := l.employees.GetByID(ctx, employeeID)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return nil, &domain.EmployeeNotFoundError{EmployeeID: employeeID}
		}
		return nil, err
	}
	return emp, nil
}

// LedgerTx is a Ledger bound to one unit of work. Every method reads the
// balance row with GetForUpdate, so concurrent units of work touching the same
// (employee, year) serialize on it.
type LedgerTx struct {
	ledger *Ledger
	repos  domain.TxRepos
}

// GetOrCreate returns the locked balance row, seeding it from the tenure table
// on first access.
func (t *LedgerTx) GetOrCreate(ctx context.Context, emp *domain.Employee, year int) (*domain.VacationBalance, error) {
	b, err := t.repos.Balances.GetForUpdate(ctx, emp.ID, year)
	if err == nil {
		return b, nil
	}
	var nf *domain.NotFoundError
	if !errors.As(err, &nf) {
		return nil, err
	}

	if err := t.repos.Balances.Insert(ctx, t.ledger.seed(emp, year)); err != nil {
		return nil, fmt.Errorf("seed balance: %w", err)
	}
	// Re-read so a row inserted concurrently wins and is locked.
	return t.repos.Balances.GetForUpdate(ctx, emp.ID, year)
}

// Reserve adds days to pending if used + pending + expired + days stays
// within earned.
func (t *LedgerTx) Reserve(ctx context.Context, emp *domain.Employee, year, days int) (*domain.VacationBalance, error) {
	if days <= 0 {
		return nil, domain.ErrValidation("reservation must be at least one day, got %d", days)
	}
	b, err := t.GetOrCreate(ctx, emp, year)
	if err != nil {
		return nil, err
	}
	if b.UsedDays+b.PendingDays+b.ExpiredDays+days > b.EarnedDays {
		return nil, &domain.InsufficientBalanceError{
			EmployeeID: emp.ID,
			Year:       year,
			Requested:  days,
			Available:  b.Available(),
		}
	}
	b.PendingDays += days
	return b, t.save(ctx, b)
}

// Commit moves days from pending to used.
func (t *LedgerTx) Commit(ctx context.Context, employeeID string, year, days int) (*domain.VacationBalance, error) {
	b, err := t.pending(ctx, employeeID, year, days)
	if err != nil {
		return nil, err
	}
	b.PendingDays -= days
	b.UsedDays += days
	return b, t.save(ctx, b)
}

// Release drops days from pending without touching used.
func (t *LedgerTx) Release(ctx context.Context, employeeID string, year, days int) (*domain.VacationBalance, error) {
	b, err := t.pending(ctx, employeeID, year, days)
	if err != nil {
		return nil, err
	}
	b.PendingDays -= days
	return b, t.save(ctx, b)
}

// pending locks the row and checks that at least days are pending on it.
func (t *LedgerTx) pending(ctx context.Context, employeeID string, year, days int) (*domain.VacationBalance, error) {
	if days <= 0 {
		return nil, domain.ErrValidation("day count must be positive, got %d", days)
	}
	b, err := t.repos.Balances.GetForUpdate(ctx, employeeID, year)
	if err != nil {
		return nil, err
	}
	if b.PendingDays < days {
		return nil, domain.ErrConflict("balance %d for employee %q has %d pending day(s), cannot settle %d",
			year, employeeID, b.PendingDays, days)
	}
	return b, nil
}

func (t *LedgerTx) save(ctx context.Context, b *domain.VacationBalance) error {
	b.UpdatedAt = t.ledger.clock.Now()
	if err := t.repos.Balances.Update(ctx, b); err != nil {
		return fmt.Errorf("update balance: %w", err)
	}
	return nil
}
