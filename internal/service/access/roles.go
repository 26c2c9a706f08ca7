// Package access decides who a principal is allowed to act as: the role
// catalog (aliases and inheritance) and tenant scoping.
package access

import (
	"strings"

	"hr-approvals/internal/domain"
)

// Role sets used by call sites.
var (
	// HRTier is satisfied by HR administrators and every role above them.
	HRTier = []string{string(domain.RoleHRAdmin)}
	// ApproverTier is satisfied by supervisors and every role above them.
	ApproverTier = []string{string(domain.RoleSupervisor)}
	// EmployeeTier is satisfied by every canonical role that includes self-service.
	EmployeeTier = []string{string(domain.RoleEmployee)}
	// ReviewerTier may read requests of other employees in the tenant.
	ReviewerTier = []string{string(domain.RoleSupervisor), string(domain.RoleAuditor), string(domain.RolePayrollAdmin)}
	// PayrollTier may mark approved requests as applied to a processed batch.
	PayrollTier = []string{string(domain.RolePayrollAdmin), string(domain.RoleHRAdmin)}
)

var defaultAliases = map[string]domain.Role{
	"superadmin":       domain.RoleSuperAdmin,
	"super_admin":      domain.RoleSuperAdmin,
	"super-admin":      domain.RoleSuperAdmin,
	"sysadmin":         domain.RoleSuperAdmin,
	"system_admin":     domain.RoleSuperAdmin,
	"root":             domain.RoleSuperAdmin,
	"admin":            domain.RoleCompanyAdmin,
	"company_admin":    domain.RoleCompanyAdmin,
	"administrador":    domain.RoleCompanyAdmin,
	"admin_empresa":    domain.RoleCompanyAdmin,
	"owner":            domain.RoleCompanyAdmin,
	"rh":               domain.RoleHRAdmin,
	"hr":               domain.RoleHRAdmin,
	"recursos_humanos": domain.RoleHRAdmin,
	"human_resources":  domain.RoleHRAdmin,
	"hr_manager":       domain.RoleHRAdmin,
	"nomina":           domain.RolePayrollAdmin,
	"payroll":          domain.RolePayrollAdmin,
	"contador":         domain.RolePayrollAdmin,
	"accountant":       domain.RolePayrollAdmin,
	"supervisor":       domain.RoleSupervisor,
	"jefe":             domain.RoleSupervisor,
	"manager":          domain.RoleSupervisor,
	"gerente":          domain.RoleSupervisor,
	"auditor":          domain.RoleAuditor,
	"viewer":           domain.RoleAuditor,
	"readonly":         domain.RoleAuditor,
	"empleado":         domain.RoleEmployee,
	"employee":         domain.RoleEmployee,
	"colaborador":      domain.RoleEmployee,
	"user":             domain.RoleEmployee,
}

// defaultInheritance lists, per role, the roles whose permissions it
// implicitly holds. The graph must stay acyclic.
var defaultInheritance = map[domain.Role][]domain.Role{
	domain.RoleSuperAdmin:   {domain.RoleCompanyAdmin},
	domain.RoleCompanyAdmin: {domain.RoleHRAdmin, domain.RolePayrollAdmin, domain.RoleAuditor},
	domain.RoleHRAdmin:      {domain.RoleSupervisor},
	domain.RolePayrollAdmin: {domain.RoleEmployee},
	domain.RoleSupervisor:   {domain.RoleEmployee},
	domain.RoleAuditor:      {domain.RoleEmployee},
}

// RoleCatalog maps raw role strings onto canonical roles and answers
// role-requirement checks. It is immutable after construction and safe for
// concurrent use.
type RoleCatalog struct {
	aliases   map[string]domain.Role
	effective map[domain.Role][]domain.Role
}

// NewRoleCatalog builds a catalog from the built-in alias table plus any extra
// aliases (alias -> canonical role name). Extra aliases pointing at a
// non-canonical role are ignored.
func NewRoleCatalog(extraAliases map[string]string) *RoleCatalog {
	aliases := make(map[string]domain.Role, len(defaultAliases)+len(extraAliases))
	for k, v := range defaultAliases {
		aliases[k] = v
	}
	for k, v := range extraAliases {
		role := domain.Role(strings.ToUpper(strings.TrimSpace(v)))
		if !role.IsCanonical() {
			continue
		}
		aliases[strings.ToLower(strings.TrimSpace(k))] = role
	}

	effective := make(map[domain.Role][]domain.Role, len(domain.CanonicalRoles))
	for _, r := range domain.CanonicalRoles {
		effective[r] = closure(r, defaultInheritance)
	}
	return &RoleCatalog{aliases: aliases, effective: effective}
}

// closure walks the inheritance graph breadth-first from root and returns root
// followed by every reachable role.
func closure(root domain.Role, graph map[domain.Role][]domain.Role) []domain.Role {
	visited := map[domain.Role]bool{root: true}
	out := []domain.Role{root}
	queue := []domain.Role{root}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, next := range graph[current] {
			if !visited[next] {
				visited[next] = true
				out = append(out, next)
				queue = append(queue, next)
			}
		}
	}
	return out
}

// Normalize maps a raw role string to its canonical role. Matching is
// case-insensitive. Unrecognized input is returned unchanged, so
// Normalize(Normalize(x)) == Normalize(x) for every x.
func (c *RoleCatalog) Normalize(raw string) domain.Role {
	trimmed := strings.TrimSpace(raw)
	if r := domain.Role(strings.ToUpper(trimmed)); r.IsCanonical() {
		return r
	}
	if r, ok := c.aliases[strings.ToLower(trimmed)]; ok {
		return r
	}
	return domain.Role(raw)
}

// EffectiveRoles returns the role itself plus every role it transitively
// inherits. A non-canonical role yields only itself.
func (c *RoleCatalog) EffectiveRoles(role domain.Role) []domain.Role {
	if eff, ok := c.effective[role]; ok {
		out := make([]domain.Role, len(eff))
		copy(out, eff)
		return out
	}
	return []domain.Role{role}
}

// Satisfies reports whether the actual role meets any role in required.
//
// A match is the normalized actual role or any role it inherits being listed
// in required. For call sites that still pass legacy role names, the raw
// actual string appearing literally in required also matches.
func (c *RoleCatalog) Satisfies(required []string, actualRaw string) bool {
	if len(required) == 0 {
		return false
	}
	set := make(map[string]bool, len(required))
	for _, r := range required {
		set[r] = true
	}
	if set[actualRaw] {
		return true
	}
	for _, r := range c.EffectiveRoles(c.Normalize(actualRaw)) {
		if set[string(r)] {
			return true
		}
	}
	return false
}

// IsHR reports whether the raw role belongs to the HR tier or above.
func (c *RoleCatalog) IsHR(actualRaw string) bool {
	return c.Satisfies(HRTier, actualRaw)
}
