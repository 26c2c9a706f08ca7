package api

import (
	"strings"
	"time"

	"hr-approvals/internal/domain"
	"hr-approvals/internal/service/approval"
)

const dateLayout = time.DateOnly

// === Requests ===

// CreateLeaveRequestBody is the body of POST /v1/leave-requests.
type CreateLeaveRequestBody struct {
	EmployeeID string `json:"employee_id"`
	Type       string `json:"type"`
	StartDate  string `json:"start_date"` // YYYY-MM-DD
	EndDate    string `json:"end_date"`   // YYYY-MM-DD, inclusive
	Notes      string `json:"notes"`
}

func (b CreateLeaveRequestBody) toDomain() (domain.CreateLeaveRequest, error) {
	start, err := parseDate("start_date", b.StartDate)
	if err != nil {
		return domain.CreateLeaveRequest{}, err
	}
	end, err := parseDate("end_date", b.EndDate)
	if err != nil {
		return domain.CreateLeaveRequest{}, err
	}
	return domain.CreateLeaveRequest{
		EmployeeID: b.EmployeeID,
		Type:       domain.RequestType(b.Type),
		StartDate:  start,
		EndDate:    end,
		Notes:      b.Notes,
	}, nil
}

// SupervisorApproveBody is the optional body of the supervisor approval route.
type SupervisorApproveBody struct {
	SkipHierarchyCheck bool `json:"skip_hierarchy_check"`
}

// RejectBody is the body of the reject route.
type RejectBody struct {
	Reason string `json:"reason"`
	Stage  string `json:"stage"` // SUPERVISOR or RH
}

// MarkAppliedBody is the body of the mark-applied route.
type MarkAppliedBody struct {
	BatchRef string `json:"batch_ref"`
}

// CreateDelegationBody is the body of POST /v1/delegations.
type CreateDelegationBody struct {
	DelegatorID    string  `json:"delegator_id"`
	DelegateeID    string  `json:"delegatee_id"`
	DelegationType string  `json:"delegation_type"`
	StartDate      string  `json:"start_date"` // RFC 3339 or YYYY-MM-DD
	EndDate        *string `json:"end_date,omitempty"`
	Reason         string  `json:"reason"`
}

func (b CreateDelegationBody) toDomain() (domain.CreateDelegationRequest, error) {
	start, err := parseInstant("start_date", b.StartDate)
	if err != nil {
		return domain.CreateDelegationRequest{}, err
	}
	req := domain.CreateDelegationRequest{
		DelegatorID:    b.DelegatorID,
		DelegateeID:    b.DelegateeID,
		DelegationType: domain.DelegationType(strings.ToUpper(strings.TrimSpace(b.DelegationType))),
		StartDate:      start,
		Reason:         b.Reason,
	}
	if b.EndDate != nil && *b.EndDate != "" {
		end, err := parseInstant("end_date", *b.EndDate)
		if err != nil {
			return domain.CreateDelegationRequest{}, err
		}
		req.EndDate = &end
	}
	return req, nil
}

func parseDate(field, s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, domain.ErrValidation("%s is required", field)
	}
	t, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, domain.ErrValidation("%s must be YYYY-MM-DD", field)
	}
	return t, nil
}

func parseInstant(field, s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return parseDate(field, s)
}

// === Responses ===

// LeaveRequestResponse is the JSON form of a leave request.
type LeaveRequestResponse struct {
	ID                      string     `json:"id"`
	TenantID                string     `json:"tenant_id"`
	EmployeeID              string     `json:"employee_id"`
	Type                    string     `json:"type"`
	StartDate               string     `json:"start_date"`
	EndDate                 string     `json:"end_date"`
	TotalDays               int        `json:"total_days"`
	Status                  string     `json:"status"`
	Notes                   string     `json:"notes,omitempty"`
	RejectedReason          *string    `json:"rejected_reason,omitempty"`
	RejectedStage           *string    `json:"rejected_stage,omitempty"`
	RejectedBy              *string    `json:"rejected_by,omitempty"`
	RejectedAt              *time.Time `json:"rejected_at,omitempty"`
	SupervisorApprovedBy    *string    `json:"supervisor_approved_by,omitempty"`
	SupervisorApprovedAt    *time.Time `json:"supervisor_approved_at,omitempty"`
	SupervisorApprovalBasis *string    `json:"supervisor_approval_basis,omitempty"`
	ApprovedBy              *string    `json:"approved_by,omitempty"`
	ApprovedAt              *time.Time `json:"approved_at,omitempty"`
	CancelledBy             *string    `json:"cancelled_by,omitempty"`
	CancelledAt             *time.Time `json:"cancelled_at,omitempty"`
	AppliedAt               *time.Time `json:"applied_at,omitempty"`
	AppliedBatch            *string    `json:"applied_batch,omitempty"`
	CreatedBy               string     `json:"created_by"`
	CreatedAt               time.Time  `json:"created_at"`
	UpdatedAt               time.Time  `json:"updated_at"`
}

func leaveRequestToAPI(lr domain.LeaveRequest) LeaveRequestResponse {
	out := LeaveRequestResponse{
		ID:                      lr.ID,
		TenantID:                lr.TenantID,
		EmployeeID:              lr.EmployeeID,
		Type:                    string(lr.Type),
		StartDate:               lr.StartDate.Format(dateLayout),
		EndDate:                 lr.EndDate.Format(dateLayout),
		TotalDays:               lr.TotalDays,
		Status:                  string(lr.Status),
		Notes:                   lr.Notes,
		RejectedReason:          lr.RejectedReason,
		RejectedBy:              lr.RejectedBy,
		RejectedAt:              lr.RejectedAt,
		SupervisorApprovedBy:    lr.SupervisorApprovedBy,
		SupervisorApprovedAt:    lr.SupervisorApprovedAt,
		SupervisorApprovalBasis: lr.SupervisorApprovalBasis,
		ApprovedBy:              lr.ApprovedBy,
		ApprovedAt:              lr.ApprovedAt,
		CancelledBy:             lr.CancelledBy,
		CancelledAt:             lr.CancelledAt,
		AppliedAt:               lr.AppliedAt,
		AppliedBatch:            lr.AppliedBatch,
		CreatedBy:               lr.CreatedBy,
		CreatedAt:               lr.CreatedAt,
		UpdatedAt:               lr.UpdatedAt,
	}
	if lr.RejectedStage != nil {
		s := string(*lr.RejectedStage)
		out.RejectedStage = &s
	}
	return out
}

// TransitionResponse wraps the request after a workflow transition.
type TransitionResponse struct {
	Action  string               `json:"action"`
	From    string               `json:"from,omitempty"`
	Request LeaveRequestResponse `json:"request"`
}

func transitionToAPI(ev *domain.TransitionEvent) TransitionResponse {
	return TransitionResponse{
		Action:  ev.Action,
		From:    string(ev.From),
		Request: leaveRequestToAPI(ev.Request),
	}
}

// LeaveRequestList is a page of leave requests.
type LeaveRequestList struct {
	Data          []LeaveRequestResponse `json:"data"`
	NextPageToken string                 `json:"next_page_token,omitempty"`
}

// ApproverResponse is one entry of the approvers enumeration.
type ApproverResponse struct {
	EmployeeID     string `json:"employee_id"`
	Name           string `json:"name,omitempty"`
	Basis          string `json:"basis"`
	Level          int    `json:"level"`
	DelegatorID    string `json:"delegator_id,omitempty"`
	DelegatorName  string `json:"delegator_name,omitempty"`
	DelegationType string `json:"delegation_type,omitempty"`
}

func approversToAPI(list []approval.Approver) []ApproverResponse {
	out := make([]ApproverResponse, len(list))
	for i, a := range list {
		out[i] = ApproverResponse{
			EmployeeID:     a.EmployeeID,
			Name:           a.Name,
			Basis:          string(a.Basis),
			Level:          a.Level,
			DelegatorID:    a.DelegatorID,
			DelegatorName:  a.DelegatorName,
			DelegationType: string(a.DelegationType),
		}
	}
	return out
}

// BalanceResponse is the JSON form of a vacation balance. Provisional marks a
// year with no stored row yet: the figures are the opening balance the first
// reservation would create.
type BalanceResponse struct {
	EmployeeID  string `json:"employee_id"`
	Year        int    `json:"year"`
	EarnedDays  int    `json:"earned_days"`
	UsedDays    int    `json:"used_days"`
	PendingDays int    `json:"pending_days"`
	ExpiredDays int    `json:"expired_days"`
	Available   int    `json:"available_days"`
	Provisional bool   `json:"provisional,omitempty"`
}

func balanceToAPI(b domain.VacationBalance) BalanceResponse {
	return BalanceResponse{
		EmployeeID:  b.EmployeeID,
		Year:        b.Year,
		EarnedDays:  b.EarnedDays,
		UsedDays:    b.UsedDays,
		PendingDays: b.PendingDays,
		ExpiredDays: b.ExpiredDays,
		Available:   b.Available(),
	}
}

// DelegationResponse is the JSON form of an approval delegation.
type DelegationResponse struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenant_id"`
	DelegatorID    string     `json:"delegator_id"`
	DelegateeID    string     `json:"delegatee_id"`
	DelegationType string     `json:"delegation_type"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	IsActive       bool       `json:"is_active"`
	Reason         string     `json:"reason,omitempty"`
	CreatedBy      string     `json:"created_by"`
	CreatedAt      time.Time  `json:"created_at"`
}

func delegationToAPI(d domain.ApprovalDelegation) DelegationResponse {
	return DelegationResponse{
		ID:             d.ID,
		TenantID:       d.TenantID,
		DelegatorID:    d.DelegatorID,
		DelegateeID:    d.DelegateeID,
		DelegationType: string(d.DelegationType),
		StartDate:      d.StartDate,
		EndDate:        d.EndDate,
		IsActive:       d.IsActive,
		Reason:         d.Reason,
		CreatedBy:      d.CreatedBy,
		CreatedAt:      d.CreatedAt,
	}
}

// AuditEntryResponse is the JSON form of an audit log record.
type AuditEntryResponse struct {
	ID         string    `json:"id"`
	TenantID   string    `json:"tenant_id"`
	ActorID    string    `json:"actor_id"`
	Action     string    `json:"action"`
	EntityType string    `json:"entity_type"`
	EntityID   string    `json:"entity_id"`
	FromStatus *string   `json:"from_status,omitempty"`
	ToStatus   *string   `json:"to_status,omitempty"`
	Detail     string    `json:"detail,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func auditEntryToAPI(e domain.AuditEntry) AuditEntryResponse {
	return AuditEntryResponse{
		ID:         e.ID,
		TenantID:   e.TenantID,
		ActorID:    e.ActorID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		FromStatus: e.FromStatus,
		ToStatus:   e.ToStatus,
		Detail:     e.Detail,
		CreatedAt:  e.CreatedAt,
	}
}
