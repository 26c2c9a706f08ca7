package domain

import "time"

// DelegationType scopes which request categories a delegation covers.
type DelegationType string

// Delegation types.
const (
	DelegationAll        DelegationType = "ALL"
	DelegationVacation   DelegationType = "VACATION"
	DelegationIncident   DelegationType = "INCIDENT"
	DelegationPermission DelegationType = "PERMISSION"
)

// Valid reports whether t is a known delegation type.
func (t DelegationType) Valid() bool {
	switch t {
	case DelegationAll, DelegationVacation, DelegationIncident, DelegationPermission:
		return true
	}
	return false
}

// ApprovalDelegation grants DelegateeID the approval authority of DelegatorID
// over the half-open window [StartDate, EndDate). A nil EndDate is open-ended.
type ApprovalDelegation struct {
	ID             string
	TenantID       string
	DelegatorID    string
	DelegateeID    string
	DelegationType DelegationType
	StartDate      time.Time
	EndDate        *time.Time
	IsActive       bool
	Reason         string
	CreatedBy      string
	CreatedAt      time.Time
}

// ActiveAt reports whether the delegation is active and at falls inside its window.
func (d ApprovalDelegation) ActiveAt(at time.Time) bool {
	if !d.IsActive {
		return false
	}
	if at.Before(d.StartDate) {
		return false
	}
	if d.EndDate != nil && !at.Before(*d.EndDate) {
		return false
	}
	return true
}

// Covers reports whether the delegation applies to the requested type.
// An ALL delegation covers every type; otherwise the types must match.
func (d ApprovalDelegation) Covers(t DelegationType) bool {
	return d.DelegationType == DelegationAll || d.DelegationType == t
}

// CreateDelegationRequest holds parameters for creating a delegation.
type CreateDelegationRequest struct {
	DelegatorID    string
	DelegateeID    string
	DelegationType DelegationType
	StartDate      time.Time
	EndDate        *time.Time
	Reason         string
}

// Validate checks that the request is well-formed.
func (r *CreateDelegationRequest) Validate() error {
	if r.DelegatorID == "" {
		return ErrValidation("delegator_id is required")
	}
	if r.DelegateeID == "" {
		return ErrValidation("delegatee_id is required")
	}
	if r.DelegatorID == r.DelegateeID {
		return ErrValidation("an employee cannot delegate to themselves")
	}
	if r.DelegationType == "" {
		r.DelegationType = DelegationAll
	}
	if !r.DelegationType.Valid() {
		return ErrValidation("invalid delegation_type %q", r.DelegationType)
	}
	if r.StartDate.IsZero() {
		return ErrValidation("start_date is required")
	}
	if r.EndDate != nil && !r.EndDate.After(r.StartDate) {
		return ErrValidation("end_date must be after start_date")
	}
	return nil
}
