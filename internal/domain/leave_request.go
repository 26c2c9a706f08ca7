package domain

import (
	"strings"
	"time"
)

// RequestStatus is the lifecycle state of a leave/incident request.
type RequestStatus string

// Request states.
const (
	StatusPending            RequestStatus = "PENDING"
	StatusSupervisorApproved RequestStatus = "SUPERVISOR_APPROVED"
	StatusApproved           RequestStatus = "APPROVED"
	StatusRejected           RequestStatus = "REJECTED"
	StatusCancelled          RequestStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition is permitted.
func (s RequestStatus) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected || s == StatusCancelled
}

// HoldsReservation reports whether a vacation request in this state still has
// days reserved as pending in the ledger.
func (s RequestStatus) HoldsReservation() bool {
	return s == StatusPending || s == StatusSupervisorApproved
}

// ApprovalStage identifies which approval step an action applies to.
type ApprovalStage string

// Approval stages.
const (
	StageSupervisor ApprovalStage = "SUPERVISOR"
	StageRH         ApprovalStage = "RH"
)

// RequestType is the leave or incident category of a request.
type RequestType string

// Request types. Only VACATION consumes the balance ledger.
const (
	RequestVacation    RequestType = "VACATION"
	RequestSickLeave   RequestType = "SICK_LEAVE"
	RequestMaternity   RequestType = "MATERNITY_LEAVE"
	RequestPaternity   RequestType = "PATERNITY_LEAVE"
	RequestBereavement RequestType = "BEREAVEMENT"
	RequestAbsence     RequestType = "ABSENCE"
	RequestPermission  RequestType = "PERMISSION"
	RequestPaidLeave   RequestType = "PAID_LEAVE"
	RequestUnpaidLeave RequestType = "UNPAID_LEAVE"
)

var requestTypes = map[RequestType]DelegationType{
	RequestVacation:    DelegationVacation,
	RequestSickLeave:   DelegationIncident,
	RequestMaternity:   DelegationIncident,
	RequestPaternity:   DelegationIncident,
	RequestBereavement: DelegationIncident,
	RequestAbsence:     DelegationIncident,
	RequestPermission:  DelegationPermission,
	RequestPaidLeave:   DelegationPermission,
	RequestUnpaidLeave: DelegationPermission,
}

// Valid reports whether t is a known request type.
func (t RequestType) Valid() bool {
	_, ok := requestTypes[t]
	return ok
}

// DelegationCategory returns the delegation type that governs approvals of t.
func (t RequestType) DelegationCategory() DelegationType {
	if c, ok := requestTypes[t]; ok {
		return c
	}
	return DelegationIncident
}

// ConsumesBalance reports whether requests of this type reserve ledger days.
func (t RequestType) ConsumesBalance() bool {
	return t == RequestVacation
}

// LeaveRequest is a leave or incident request moving through the two-stage
// approval lifecycle.
type LeaveRequest struct {
	ID         string
	TenantID   string
	EmployeeID string
	Type       RequestType
	StartDate  time.Time
	EndDate    time.Time
	TotalDays  int
	Status     RequestStatus
	Notes      string

	RejectedReason *string
	RejectedStage  *ApprovalStage
	RejectedBy     *string
	RejectedAt     *time.Time

	SupervisorApprovedBy    *string
	SupervisorApprovedAt    *time.Time
	SupervisorApprovalBasis *string

	ApprovedBy *string
	ApprovedAt *time.Time

	CancelledBy *string
	CancelledAt *time.Time

	AppliedAt    *time.Time
	AppliedBatch *string

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// BalanceYear is the ledger year a vacation request is charged to: the year
// it starts in. A request crossing New Year charges all of its work days to
// that year's balance; none are charged to the following year.
func (r LeaveRequest) BalanceYear() int {
	return r.StartDate.Year()
}

// IsApplied reports whether a downstream payroll/incident batch has consumed the request.
func (r LeaveRequest) IsApplied() bool {
	return r.AppliedAt != nil
}

// MaxRequestSpanDays bounds a single request, counted in calendar days with
// both ends included. Longer leaves are filed as consecutive requests.
const MaxRequestSpanDays = 366

// CreateLeaveRequest holds parameters for creating a leave/incident request.
type CreateLeaveRequest struct {
	EmployeeID string
	Type       RequestType
	StartDate  time.Time
	EndDate    time.Time
	Notes      string
}

// Validate checks that the request is well-formed.
func (r *CreateLeaveRequest) Validate() error {
	if r.EmployeeID == "" {
		return ErrValidation("employee_id is required")
	}
	r.Type = RequestType(strings.ToUpper(strings.TrimSpace(string(r.Type))))
	if !r.Type.Valid() {
		return ErrValidation("invalid request type %q", r.Type)
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return ErrValidation("start_date and end_date are required")
	}
	start, end := DateOf(r.StartDate), DateOf(r.EndDate)
	if end.Before(start) {
		return ErrValidation("end_date must not be before start_date")
	}
	if span := int(end.Sub(start).Hours()/24) + 1; span > MaxRequestSpanDays {
		return ErrValidation("request spans %d days, at most %d are allowed", span, MaxRequestSpanDays)
	}
	return nil
}

// SupervisorApproveRequest holds parameters for the supervisor approval step.
type SupervisorApproveRequest struct {
	RequestID          string
	SkipHierarchyCheck bool
}

// Validate checks that the request is well-formed.
func (r *SupervisorApproveRequest) Validate() error {
	if r.RequestID == "" {
		return ErrValidation("request_id is required")
	}
	return nil
}

// FinalApproveRequest holds parameters for the HR (final) approval step.
type FinalApproveRequest struct {
	RequestID string
}

// Validate checks that the request is well-formed.
func (r *FinalApproveRequest) Validate() error {
	if r.RequestID == "" {
		return ErrValidation("request_id is required")
	}
	return nil
}

// RejectRequest holds parameters for rejecting a request at a given stage.
type RejectRequest struct {
	RequestID string
	Reason    string
	Stage     ApprovalStage
}

// Validate checks that the request is well-formed.
func (r *RejectRequest) Validate() error {
	if r.RequestID == "" {
		return ErrValidation("request_id is required")
	}
	if strings.TrimSpace(r.Reason) == "" {
		return ErrValidation("a rejection reason is required")
	}
	if r.Stage != StageSupervisor && r.Stage != StageRH {
		return ErrValidation("stage must be %q or %q", StageSupervisor, StageRH)
	}
	return nil
}

// CancelRequest holds parameters for cancelling a request.
type CancelRequest struct {
	RequestID string
}

// Validate checks that the request is well-formed.
func (r *CancelRequest) Validate() error {
	if r.RequestID == "" {
		return ErrValidation("request_id is required")
	}
	return nil
}

// MarkAppliedRequest records that a processed payroll/incident batch consumed the request.
type MarkAppliedRequest struct {
	RequestID string
	BatchRef  string
}

// Validate checks that the request is well-formed.
func (r *MarkAppliedRequest) Validate() error {
	if r.RequestID == "" {
		return ErrValidation("request_id is required")
	}
	if r.BatchRef == "" {
		return ErrValidation("batch_ref is required")
	}
	return nil
}
