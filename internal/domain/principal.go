package domain

// Principal is the authenticated caller as supplied by the authentication layer.
// RawRole may be a legacy alias; it is normalized by the role catalog, never here.
type Principal struct {
	Subject    string  // token subject, used for audit when EmployeeID is nil
	RawRole    string  // role string exactly as issued
	TenantID   *string // nil only for the super-principal
	EmployeeID *string // link to an Employee for self-service and approvals
}

// ActorID returns the identity recorded in audit fields for this principal:
// the linked employee when present, otherwise the token subject.
func (p Principal) ActorID() string {
	if p.EmployeeID != nil && *p.EmployeeID != "" {
		return *p.EmployeeID
	}
	return p.Subject
}

// Tenant returns the tenant id or the empty string for an unscoped principal.
func (p Principal) Tenant() string {
	if p.TenantID == nil {
		return ""
	}
	return *p.TenantID
}

// IsEmployee reports whether the principal is linked to the given employee.
func (p Principal) IsEmployee(employeeID string) bool {
	return p.EmployeeID != nil && *p.EmployeeID == employeeID
}
