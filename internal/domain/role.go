package domain

// Role is a canonical role name from the closed role enumeration.
type Role string

// Canonical roles.
const (
	RoleSuperAdmin   Role = "SUPER_ADMIN"
	RoleCompanyAdmin Role = "COMPANY_ADMIN"
	RoleHRAdmin      Role = "HR_ADMIN"
	RolePayrollAdmin Role = "PAYROLL_ADMIN"
	RoleSupervisor   Role = "SUPERVISOR"
	RoleAuditor      Role = "AUDITOR"
	RoleEmployee     Role = "EMPLOYEE"
)

// CanonicalRoles lists every canonical role in declaration order.
var CanonicalRoles = []Role{
	RoleSuperAdmin,
	RoleCompanyAdmin,
	RoleHRAdmin,
	RolePayrollAdmin,
	RoleSupervisor,
	RoleAuditor,
	RoleEmployee,
}

// IsCanonical reports whether r is a member of the closed role enumeration.
func (r Role) IsCanonical() bool {
	for _, c := range CanonicalRoles {
		if r == c {
			return true
		}
	}
	return false
}
