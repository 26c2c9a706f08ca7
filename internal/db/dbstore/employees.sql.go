package dbstore

import "context"

const employeeColumns = `id, tenant_id, name, supervisor_id, department_id, schedule_id, hire_date, created_at`

const createEmployee = `INSERT INTO employees (` + employeeColumns + `)
VALUES (:id, :tenant_id, :name, :supervisor_id, :department_id, :schedule_id, :hire_date, :created_at)`

func (q *Queries) CreateEmployee(ctx context.Context, e Employee) error {
	_, err := q.db.NamedExecContext(ctx, createEmployee, e)
	return err
}

const getEmployee = `SELECT ` + employeeColumns + ` FROM employees WHERE id = ?`

func (q *Queries) GetEmployee(ctx context.Context, id string) (Employee, error) {
	var e Employee
	err := q.get(ctx, &e, getEmployee, id)
	return e, err
}

const listEmployeesByTenant = `SELECT ` + employeeColumns + ` FROM employees
WHERE tenant_id = ? ORDER BY name, id LIMIT ? OFFSET ?`

type ListEmployeesByTenantParams struct {
	TenantID string
	Limit    int64
	Offset   int64
}

func (q *Queries) ListEmployeesByTenant(ctx context.Context, arg ListEmployeesByTenantParams) ([]Employee, error) {
	var items []Employee
	err := q.selectAll(ctx, &items, listEmployeesByTenant, arg.TenantID, arg.Limit, arg.Offset)
	return items, err
}

const countEmployeesByTenant = `SELECT COUNT(*) FROM employees WHERE tenant_id = ?`

func (q *Queries) CountEmployeesByTenant(ctx context.Context, tenantID string) (int64, error) {
	var n int64
	err := q.get(ctx, &n, countEmployeesByTenant, tenantID)
	return n, err
}

const listTenantIDs = `SELECT DISTINCT tenant_id FROM employees ORDER BY tenant_id`

func (q *Queries) ListTenantIDs(ctx context.Context) ([]string, error) {
	var ids []string
	err := q.selectAll(ctx, &ids, listTenantIDs)
	return ids, err
}

const departmentColumns = `id, tenant_id, name, manager_id, created_at`

const createDepartment = `INSERT INTO departments (` + departmentColumns + `)
VALUES (:id, :tenant_id, :name, :manager_id, :created_at)`

func (q *Queries) CreateDepartment(ctx context.Context, d Department) error {
	_, err := q.db.NamedExecContext(ctx, createDepartment, d)
	return err
}

const getDepartment = `SELECT ` + departmentColumns + ` FROM departments WHERE id = ?`

func (q *Queries) GetDepartment(ctx context.Context, id string) (Department, error) {
	var d Department
	err := q.get(ctx, &d, getDepartment, id)
	return d, err
}

const listDepartmentsByManager = `SELECT ` + departmentColumns + ` FROM departments WHERE manager_id = ? ORDER BY id`

func (q *Queries) ListDepartmentsByManager(ctx context.Context, managerID string) ([]Department, error) {
	var items []Department
	err := q.selectAll(ctx, &items, listDepartmentsByManager, managerID)
	return items, err
}

const createWorkSchedule = `INSERT INTO work_schedules (id, tenant_id, name, work_days)
VALUES (:id, :tenant_id, :name, :work_days)`

func (q *Queries) CreateWorkSchedule(ctx context.Context, s WorkSchedule) error {
	_, err := q.db.NamedExecContext(ctx, createWorkSchedule, s)
	return err
}

const getWorkScheduleForEmployee = `SELECT s.id, s.tenant_id, s.name, s.work_days
FROM work_schedules s JOIN employees e ON e.schedule_id = s.id
WHERE e.id = ?`

func (q *Queries) GetWorkScheduleForEmployee(ctx context.Context, employeeID string) (WorkSchedule, error) {
	var s WorkSchedule
	err := q.get(ctx, &s, getWorkScheduleForEmployee, employeeID)
	return s, err
}
