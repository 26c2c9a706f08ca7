package domain

import "time"

// Audit actions recorded by the approval engine.
const (
	AuditCreateRequest     = "CREATE_REQUEST"
	AuditSupervisorApprove = "SUPERVISOR_APPROVE"
	AuditFinalApprove      = "FINAL_APPROVE"
	AuditReject            = "REJECT"
	AuditCancel            = "CANCEL"
	AuditMarkApplied       = "MARK_APPLIED"
	AuditCreateDelegation  = "CREATE_DELEGATION"
	AuditRevokeDelegation  = "REVOKE_DELEGATION"
	AuditExpireBalance     = "EXPIRE_BALANCE"
)

// AuditEntry represents a single audit log record.
type AuditEntry struct {
	ID         string
	TenantID   string
	ActorID    string
	Action     string
	EntityType string // "leave_request", "delegation", "balance"
	EntityID   string
	FromStatus *string
	ToStatus   *string
	Detail     string
	CreatedAt  time.Time
}

// AuditFilter holds filter parameters for querying audit logs.
type AuditFilter struct {
	TenantID *string
	EntityID *string
	ActorID  *string
	Action   *string
	Since    *time.Time
	Page     PageRequest
}
