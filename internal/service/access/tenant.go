package access

import (
	"hr-approvals/internal/domain"
)

// ScopeDecision is the tenant boundary derived from a principal: either
// unrestricted (super-principal only) or bound to exactly one tenant.
type ScopeDecision struct {
	unrestricted bool
	tenantID     string
}

// Unrestricted returns the scope of the super-principal.
func Unrestricted() ScopeDecision { return ScopeDecision{unrestricted: true} }

// BoundTo returns a scope limited to tenantID.
func BoundTo(tenantID string) ScopeDecision { return ScopeDecision{tenantID: tenantID} }

// IsUnrestricted reports whether the scope is exempt from tenant isolation.
func (d ScopeDecision) IsUnrestricted() bool { return d.unrestricted }

// TenantID returns the bound tenant, empty for an unrestricted scope.
func (d ScopeDecision) TenantID() string { return d.tenantID }

// TenantDecision is the outcome of a tenant check.
type TenantDecision struct {
	Allowed bool
	Reason  string

	scope            ScopeDecision
	resourceTenantID string
}

// Err converts a denial into a *domain.CrossTenantAccessError; nil when allowed.
func (d TenantDecision) Err() error {
	if d.Allowed {
		return nil
	}
	return &domain.CrossTenantAccessError{
		PrincipalTenantID: d.scope.tenantID,
		ResourceTenantID:  d.resourceTenantID,
	}
}

const (
	reasonUnrestricted  = "unrestricted principal"
	reasonSameTenant    = "same tenant"
	reasonCrossTenant   = "cross-tenant access"
	reasonUnboundTenant = "principal has no tenant"
	reasonNoPayload     = "payload carries no tenant"
)

// TenantScope derives tenant boundaries from principals. It is a pure decision
// function with no side effects.
type TenantScope struct {
	roles *RoleCatalog
}

// NewTenantScope creates a TenantScope backed by the role catalog.
func NewTenantScope(roles *RoleCatalog) *TenantScope {
	return &TenantScope{roles: roles}
}

// Resolve returns Unrestricted only when the principal's normalized role is the
// top system role and it carries no tenant id. Every other principal is bound
// to its tenant, including a misconfigured one with no tenant, which is then
// bound to the empty tenant and denied everything.
func (s *TenantScope) Resolve(p domain.Principal) ScopeDecision {
	if p.TenantID == nil && s.roles.Normalize(p.RawRole) == domain.RoleSuperAdmin {
		return Unrestricted()
	}
	return BoundTo(p.Tenant())
}

// AuthorizeResourceTenant allows an unrestricted scope always and a bound
// scope only for resources of its own tenant.
func (s *TenantScope) AuthorizeResourceTenant(scope ScopeDecision, resourceTenantID string) TenantDecision {
	d := TenantDecision{scope: scope, resourceTenantID: resourceTenantID}
	switch {
	case scope.unrestricted:
		d.Allowed, d.Reason = true, reasonUnrestricted
	case scope.tenantID == "":
		d.Reason = reasonUnboundTenant
	case scope.tenantID == resourceTenantID:
		d.Allowed, d.Reason = true, reasonSameTenant
	default:
		d.Reason = reasonCrossTenant
	}
	return d
}

// AuthorizePayloadTenant checks an explicit tenant id carried by a mutation
// payload. A payload naming the principal's own tenant is a no-op match and is
// allowed; any other tenant is denied for a bound scope.
func (s *TenantScope) AuthorizePayloadTenant(scope ScopeDecision, payloadTenantID *string) TenantDecision {
	if payloadTenantID == nil || *payloadTenantID == "" {
		return TenantDecision{Allowed: true, Reason: reasonNoPayload, scope: scope}
	}
	return s.AuthorizeResourceTenant(scope, *payloadTenantID)
}

// Check resolves the principal's scope and authorizes the resource tenant in
// one step, returning a *domain.CrossTenantAccessError on denial.
func (s *TenantScope) Check(p domain.Principal, resourceTenantID string) error {
	return s.AuthorizeResourceTenant(s.Resolve(p), resourceTenantID).Err()
}
