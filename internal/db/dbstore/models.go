package dbstore

import "database/sql"

// Row types carry db tags for sqlx scanning. Timestamps are UTC text; see
// mapper for the layouts.

type Employee struct {
	ID           string         `db:"id"`
	TenantID     string         `db:"tenant_id"`
	Name         string         `db:"name"`
	SupervisorID sql.NullString `db:"supervisor_id"`
	DepartmentID sql.NullString `db:"department_id"`
	ScheduleID   sql.NullString `db:"schedule_id"`
	HireDate     string         `db:"hire_date"`
	CreatedAt    string         `db:"created_at"`
}

type Department struct {
	ID        string         `db:"id"`
	TenantID  string         `db:"tenant_id"`
	Name      string         `db:"name"`
	ManagerID sql.NullString `db:"manager_id"`
	CreatedAt string         `db:"created_at"`
}

type WorkSchedule struct {
	ID       string `db:"id"`
	TenantID string `db:"tenant_id"`
	Name     string `db:"name"`
	WorkDays string `db:"work_days"`
}

type ApprovalDelegation struct {
	ID             string         `db:"id"`
	TenantID       string         `db:"tenant_id"`
	DelegatorID    string         `db:"delegator_id"`
	DelegateeID    string         `db:"delegatee_id"`
	DelegationType string         `db:"delegation_type"`
	StartDate      string         `db:"start_date"`
	EndDate        sql.NullString `db:"end_date"`
	IsActive       int64          `db:"is_active"`
	Reason         string         `db:"reason"`
	CreatedBy      string         `db:"created_by"`
	CreatedAt      string         `db:"created_at"`
}

type VacationBalance struct {
	EmployeeID  string `db:"employee_id"`
	Year        int64  `db:"year"`
	EarnedDays  int64  `db:"earned_days"`
	UsedDays    int64  `db:"used_days"`
	PendingDays int64  `db:"pending_days"`
	ExpiredDays int64  `db:"expired_days"`
	UpdatedAt   string `db:"updated_at"`
}

type LeaveRequest struct {
	ID                      string         `db:"id"`
	TenantID                string         `db:"tenant_id"`
	EmployeeID              string         `db:"employee_id"`
	RequestType             string         `db:"request_type"`
	StartDate               string         `db:"start_date"`
	EndDate                 string         `db:"end_date"`
	TotalDays               int64          `db:"total_days"`
	Status                  string         `db:"status"`
	Notes                   string         `db:"notes"`
	RejectedReason          sql.NullString `db:"rejected_reason"`
	RejectedStage           sql.NullString `db:"rejected_stage"`
	RejectedBy              sql.NullString `db:"rejected_by"`
	RejectedAt              sql.NullString `db:"rejected_at"`
	SupervisorApprovedBy    sql.NullString `db:"supervisor_approved_by"`
	SupervisorApprovedAt    sql.NullString `db:"supervisor_approved_at"`
	SupervisorApprovalBasis sql.NullString `db:"supervisor_approval_basis"`
	ApprovedBy              sql.NullString `db:"approved_by"`
	ApprovedAt              sql.NullString `db:"approved_at"`
	CancelledBy             sql.NullString `db:"cancelled_by"`
	CancelledAt             sql.NullString `db:"cancelled_at"`
	AppliedAt               sql.NullString `db:"applied_at"`
	AppliedBatch            sql.NullString `db:"applied_batch"`
	CreatedBy               string         `db:"created_by"`
	CreatedAt               string         `db:"created_at"`
	UpdatedAt               string         `db:"updated_at"`
}

type AuditLog struct {
	ID         string         `db:"id"`
	TenantID   string         `db:"tenant_id"`
	ActorID    string         `db:"actor_id"`
	Action     string         `db:"action"`
	EntityType string         `db:"entity_type"`
	EntityID   string         `db:"entity_id"`
	FromStatus sql.NullString `db:"from_status"`
	ToStatus   sql.NullString `db:"to_status"`
	Detail     string         `db:"detail"`
	CreatedAt  string         `db:"created_at"`
}
