package dbstore

import "context"

const leaveRequestColumns = `id, tenant_id, employee_id, request_type, start_date, end_date, total_days, status, notes,
rejected_reason, rejected_stage, rejected_by, rejected_at,
supervisor_approved_by, supervisor_approved_at, supervisor_approval_basis,
approved_by, approved_at, cancelled_by, cancelled_at, applied_at, applied_batch,
created_by, created_at, updated_at`

const createLeaveRequest = `INSERT INTO leave_requests (` + leaveRequestColumns + `)
VALUES (:id, :tenant_id, :employee_id, :request_type, :start_date, :end_date, :total_days, :status, :notes,
:rejected_reason, :rejected_stage, :rejected_by, :rejected_at,
:supervisor_approved_by, :supervisor_approved_at, :supervisor_approval_basis,
:approved_by, :approved_at, :cancelled_by, :cancelled_at, :applied_at, :applied_batch,
:created_by, :created_at, :updated_at)`

func (q *Queries) CreateLeaveRequest(ctx context.Context, r LeaveRequest) error {
	_, err := q.db.NamedExecContext(ctx, createLeaveRequest, r)
	return err
}

const getLeaveRequest = `SELECT ` + leaveRequestColumns + ` FROM leave_requests WHERE id = ?`

// GetLeaveRequest reads one request, locking it when q is bound to a
// transaction.
func (q *Queries) GetLeaveRequest(ctx context.Context, id string) (LeaveRequest, error) {
	var r LeaveRequest
	err := q.get(ctx, &r, getLeaveRequest+q.lockClause(), id)
	return r, err
}

const updateLeaveRequest = `UPDATE leave_requests SET
status = :status, notes = :notes,
rejected_reason = :rejected_reason, rejected_stage = :rejected_stage, rejected_by = :rejected_by, rejected_at = :rejected_at,
supervisor_approved_by = :supervisor_approved_by, supervisor_approved_at = :supervisor_approved_at,
supervisor_approval_basis = :supervisor_approval_basis,
approved_by = :approved_by, approved_at = :approved_at, cancelled_by = :cancelled_by, cancelled_at = :cancelled_at,
applied_at = :applied_at, applied_batch = :applied_batch, updated_at = :updated_at
WHERE id = :id`

// UpdateLeaveRequest writes the mutable columns and returns the number of
// rows matched.
func (q *Queries) UpdateLeaveRequest(ctx context.Context, r LeaveRequest) (int64, error) {
	return rowsAffected(q.db.NamedExecContext(ctx, updateLeaveRequest, r))
}

const listLeaveRequestsByEmployee = `SELECT ` + leaveRequestColumns + ` FROM leave_requests
WHERE employee_id = ? ORDER BY start_date DESC, id LIMIT ? OFFSET ?`

type ListLeaveRequestsByEmployeeParams struct {
	EmployeeID string
	Limit      int64
	Offset     int64
}

func (q *Queries) ListLeaveRequestsByEmployee(ctx context.Context, arg ListLeaveRequestsByEmployeeParams) ([]LeaveRequest, error) {
	var items []LeaveRequest
	err := q.selectAll(ctx, &items, listLeaveRequestsByEmployee, arg.EmployeeID, arg.Limit, arg.Offset)
	return items, err
}

const countLeaveRequestsByEmployee = `SELECT COUNT(*) FROM leave_requests WHERE employee_id = ?`

func (q *Queries) CountLeaveRequestsByEmployee(ctx context.Context, employeeID string) (int64, error) {
	var n int64
	err := q.get(ctx, &n, countLeaveRequestsByEmployee, employeeID)
	return n, err
}

const listOverlappingLeaveRequests = `SELECT ` + leaveRequestColumns + ` FROM leave_requests
WHERE employee_id = ? AND status NOT IN ('REJECTED', 'CANCELLED')
  AND start_date <= ? AND end_date >= ?
ORDER BY start_date, id`

// ListOverlappingLeaveRequests takes calendar dates in the stored layout.
func (q *Queries) ListOverlappingLeaveRequests(ctx context.Context, employeeID, start, end string) ([]LeaveRequest, error) {
	var items []LeaveRequest
	err := q.selectAll(ctx, &items, listOverlappingLeaveRequests, employeeID, end, start)
	return items, err
}
