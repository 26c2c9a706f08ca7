package repository

import (
	"context"
	"database/sql"

	"hr-approvals/internal/db/dbstore"
	"hr-approvals/internal/db/mapper"
	"hr-approvals/internal/domain"
)

var (
	_ domain.EmployeeRepository   = (*EmployeeRepo)(nil)
	_ domain.DepartmentRepository = (*DepartmentRepo)(nil)
	_ domain.ScheduleRepository   = (*ScheduleRepo)(nil)
)

// EmployeeRepo implements domain.EmployeeRepository.
type EmployeeRepo struct {
	q *dbstore.Queries
}

// NewEmployeeRepo creates a new EmployeeRepo. Directory lookups are read-only,
// so on SQLite pass the read pool.
func NewEmployeeRepo(db *sql.DB, dialect dbstore.Dialect) *EmployeeRepo {
	return &EmployeeRepo{q: dbstore.New(db, dialect)}
}

// Create inserts an employee, assigning an ID when none is set.
func (r *EmployeeRepo) Create(ctx context.Context, e *domain.Employee) (*domain.Employee, error) {
	out := *e
	out.ID = ensureID(out.ID)
	out.CreatedAt = ensureTime(out.CreatedAt)
	if err := r.q.CreateEmployee(ctx, mapper.EmployeeToDB(&out)); err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, out.ID)
}

// GetByID returns the employee or a NotFoundError.
func (r *EmployeeRepo) GetByID(ctx context.Context, id string) (*domain.Employee, error) {
	row, err := r.q.GetEmployee(ctx, id)
	if err != nil {
		return nil, mapDBError(err)
	}
	return mapper.EmployeeFromDB(row), nil
}

// ListByTenant returns a page of the tenant's employees ordered by name.
func (r *EmployeeRepo) ListByTenant(ctx context.Context, tenantID string, page domain.PageRequest) ([]domain.Employee, int64, error) {
	total, err := r.q.CountEmployeesByTenant(ctx, tenantID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.q.ListEmployeesByTenant(ctx, dbstore.ListEmployeesByTenantParams{
		TenantID: tenantID,
		Limit:    int64(page.Limit()),
		Offset:   int64(page.Offset()),
	})
	if err != nil {
		return nil, 0, err
	}
	out := make([]domain.Employee, len(rows))
	for i, row := range rows {
		out[i] = *mapper.EmployeeFromDB(row)
	}
	return out, total, nil
}

// ListTenantIDs returns every tenant that has at least one employee.
func (r *EmployeeRepo) ListTenantIDs(ctx context.Context) ([]string, error) {
	return r.q.ListTenantIDs(ctx)
}

// DepartmentRepo implements domain.DepartmentRepository.
type DepartmentRepo struct {
	q *dbstore.Queries
}

// NewDepartmentRepo creates a new DepartmentRepo.
func NewDepartmentRepo(db *sql.DB, dialect dbstore.Dialect) *DepartmentRepo {
	return &DepartmentRepo{q: dbstore.New(db, dialect)}
}

func (r *DepartmentRepo) Create(ctx context.Context, d *domain.Department) (*domain.Department, error) {
	out := *d
	out.ID = ensureID(out.ID)
	out.CreatedAt = ensureTime(out.CreatedAt)
	if err := r.q.CreateDepartment(ctx, mapper.DepartmentToDB(&out)); err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, out.ID)
}

func (r *DepartmentRepo) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	row, err := r.q.GetDepartment(ctx, id)
	if err != nil {
		return nil, mapDBError(err)
	}
	return mapper.DepartmentFromDB(row), nil
}

func (r *DepartmentRepo) ListManagedBy(ctx context.Context, managerID string) ([]domain.Department, error) {
	rows, err := r.q.ListDepartmentsByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Department, len(rows))
	for i, row := range rows {
		out[i] = *mapper.DepartmentFromDB(row)
	}
	return out, nil
}

// ScheduleRepo implements domain.ScheduleRepository.
type ScheduleRepo struct {
	q *dbstore.Queries
}

// NewScheduleRepo creates a new ScheduleRepo.
func NewScheduleRepo(db *sql.DB, dialect dbstore.Dialect) *ScheduleRepo {
	return &ScheduleRepo{q: dbstore.New(db, dialect)}
}

func (r *ScheduleRepo) Create(ctx context.Context, s *domain.WorkSchedule) (*domain.WorkSchedule, error) {
	out := *s
	out.ID = ensureID(out.ID)
	if err := r.q.CreateWorkSchedule(ctx, mapper.WorkScheduleToDB(&out)); err != nil {
		return nil, mapDBError(err)
	}
	return &out, nil
}

func (r *ScheduleRepo) GetForEmployee(ctx context.Context, employeeID string) (*domain.WorkSchedule, error) {
	row, err := r.q.GetWorkScheduleForEmployee(ctx, employeeID)
	if err != nil {
		return nil, mapDBError(err)
	}
	return mapper.WorkScheduleFromDB(row), nil
}
