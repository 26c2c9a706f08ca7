package domain

import "time"

// Employee is a tenant-scoped directory record. SupervisorID forms the org
// chart forest; DepartmentID links to a Department whose manager is an
// implicit approver.
type Employee struct {
	ID           string
	TenantID     string
	Name         string
	SupervisorID *string
	DepartmentID *string
	ScheduleID   *string
	HireDate     time.Time
	CreatedAt    time.Time
}

// Department is a tenant-scoped organizational unit.
type Department struct {
	ID        string
	TenantID  string
	Name      string
	ManagerID *string
	CreatedAt time.Time
}

// CreateEmployeeRequest holds parameters for registering an employee in the directory.
type CreateEmployeeRequest struct {
	TenantID     string
	Name         string
	SupervisorID *string
	DepartmentID *string
	ScheduleID   *string
	HireDate     time.Time
}

// Validate checks that the request is well-formed.
func (r *CreateEmployeeRequest) Validate() error {
	if r.TenantID == "" {
		return ErrValidation("tenant_id is required")
	}
	if r.Name == "" {
		return ErrValidation("employee name is required")
	}
	if r.HireDate.IsZero() {
		return ErrValidation("hire_date is required")
	}
	return nil
}
