package domain

import (
	"context"
	"time"
)

// EmployeeRepository provides read access to the tenant's employee directory.
// Create exists for imports and tests; the approval engine only reads.
type EmployeeRepository interface {
	Create(ctx context.Context, e *Employee) (*Employee, error)
	GetByID(ctx context.Context, id string) (*Employee, error)
	ListByTenant(ctx context.Context, tenantID string, page PageRequest) ([]Employee, int64, error)
	ListTenantIDs(ctx context.Context) ([]string, error)
}

// DepartmentRepository provides read access to departments.
type DepartmentRepository interface {
	Create(ctx context.Context, d *Department) (*Department, error)
	GetByID(ctx context.Context, id string) (*Department, error)
	ListManagedBy(ctx context.Context, managerID string) ([]Department, error)
}

// ScheduleRepository supplies employees' work-day patterns.
type ScheduleRepository interface {
	Create(ctx context.Context, s *WorkSchedule) (*WorkSchedule, error)
	// GetForEmployee returns the employee's assigned schedule or a NotFoundError
	// when none is assigned.
	GetForEmployee(ctx context.Context, employeeID string) (*WorkSchedule, error)
}

// DelegationRepository provides operations for approval delegations.
type DelegationRepository interface {
	Create(ctx context.Context, d *ApprovalDelegation) (*ApprovalDelegation, error)
	GetByID(ctx context.Context, id string) (*ApprovalDelegation, error)
	Deactivate(ctx context.Context, id string) error
	ListByDelegator(ctx context.Context, delegatorID string) ([]ApprovalDelegation, error)
	// ListActiveForDelegatee returns active delegations to delegateeID whose
	// window contains at.
	ListActiveForDelegatee(ctx context.Context, delegateeID string, at time.Time) ([]ApprovalDelegation, error)
	// ListActiveFromDelegators returns active delegations from any of the given
	// delegators whose window contains at.
	ListActiveFromDelegators(ctx context.Context, delegatorIDs []string, at time.Time) ([]ApprovalDelegation, error)
}

// BalanceRepository provides access to vacation balance rows. Implementations
// used inside a UnitOfWork must lock the row returned by GetForUpdate until the
// unit of work ends.
type BalanceRepository interface {
	GetForUpdate(ctx context.Context, employeeID string, year int) (*VacationBalance, error)
	// Insert creates the row unless one already exists for (EmployeeID, Year),
	// in which case it does nothing.
	Insert(ctx context.Context, b *VacationBalance) error
	Update(ctx context.Context, b *VacationBalance) error
	ListExpirable(ctx context.Context, tenantID string, beforeYear int) ([]VacationBalance, error)
}

// LeaveRequestRepository provides persistence for leave/incident requests.
type LeaveRequestRepository interface {
	Create(ctx context.Context, r *LeaveRequest) (*LeaveRequest, error)
	GetByID(ctx context.Context, id string) (*LeaveRequest, error)
	Update(ctx context.Context, r *LeaveRequest) error
	ListByEmployee(ctx context.Context, employeeID string, page PageRequest) ([]LeaveRequest, int64, error)
	// ListOverlapping returns non-rejected, non-cancelled requests of the
	// employee intersecting [start, end].
	ListOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]LeaveRequest, error)
}

// AuditRepository provides operations for audit log entries.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, int64, error)
}

// TxRepos groups the repositories whose writes must commit together.
type TxRepos struct {
	Balances BalanceRepository
	Requests LeaveRequestRepository
	Audit    AuditRepository
}

// UnitOfWork runs fn inside one atomic unit. If fn returns an error nothing
// written through repos is kept; otherwise every write commits together.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(ctx context.Context, repos TxRepos) error) error
}
