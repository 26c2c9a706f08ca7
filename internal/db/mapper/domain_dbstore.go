package mapper

import (
	"database/sql"
	"strings"
	"time"

	"hr-approvals/internal/db/dbstore"
	"hr-approvals/internal/domain"
)

// Stored layouts. Both are fixed width so text comparison orders them.
const (
	timeLayout = "2006-01-02T15:04:05.000000000Z"
	dateLayout = "2006-01-02"
)

// FormatTime renders t in the stored timestamp layout (UTC).
func FormatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// FormatDate renders the calendar date of t in the stored date layout.
func FormatDate(t time.Time) string {
	return domain.DateOf(t).Format(dateLayout)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeLayout, s)
	return t
}

func parseDate(s string) time.Time {
	t, _ := time.Parse(dateLayout, s)
	return t
}

func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func ptrStr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: FormatTime(*t), Valid: true}
}

func ptrTime(ns sql.NullString) *time.Time {
	if !ns.Valid {
		return nil
	}
	t := parseTime(ns.String)
	return &t
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// NullStrFromPtr converts a *string to sql.NullString.
func NullStrFromPtr(s *string) sql.NullString {
	return nullStr(s)
}

// NullTimeFromPtr converts a *time.Time to its stored nullable form.
func NullTimeFromPtr(t *time.Time) sql.NullString {
	return nullTime(t)
}

// --- Employee ---

func EmployeeToDB(e *domain.Employee) dbstore.Employee {
	return dbstore.Employee{
		ID:           e.ID,
		TenantID:     e.TenantID,
		Name:         e.Name,
		SupervisorID: nullStr(e.SupervisorID),
		DepartmentID: nullStr(e.DepartmentID),
		ScheduleID:   nullStr(e.ScheduleID),
		HireDate:     FormatDate(e.HireDate),
		CreatedAt:    FormatTime(e.CreatedAt),
	}
}

func EmployeeFromDB(e dbstore.Employee) *domain.Employee {
	return &domain.Employee{
		ID:           e.ID,
		TenantID:     e.TenantID,
		Name:         e.Name,
		SupervisorID: ptrStr(e.SupervisorID),
		DepartmentID: ptrStr(e.DepartmentID),
		ScheduleID:   ptrStr(e.ScheduleID),
		HireDate:     parseDate(e.HireDate),
		CreatedAt:    parseTime(e.CreatedAt),
	}
}

// --- Department ---

func DepartmentToDB(d *domain.Department) dbstore.Department {
	return dbstore.Department{
		ID:        d.ID,
		TenantID:  d.TenantID,
		Name:      d.Name,
		ManagerID: nullStr(d.ManagerID),
		CreatedAt: FormatTime(d.CreatedAt),
	}
}

func DepartmentFromDB(d dbstore.Department) *domain.Department {
	return &domain.Department{
		ID:        d.ID,
		TenantID:  d.TenantID,
		Name:      d.Name,
		ManagerID: ptrStr(d.ManagerID),
		CreatedAt: parseTime(d.CreatedAt),
	}
}

// --- WorkSchedule ---

// WorkDaysToDB encodes the weekday flags as seven '0'/'1' characters, Sunday first.
func WorkDaysToDB(days [7]bool) string {
	var b strings.Builder
	for _, d := range days {
		if d {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

// WorkDaysFromDB decodes WorkDaysToDB output. Characters other than '1' and
// positions past the seventh are ignored.
func WorkDaysFromDB(s string) [7]bool {
	var days [7]bool
	for i := 0; i < len(s) && i < len(days); i++ {
		days[i] = s[i] == '1'
	}
	return days
}

func WorkScheduleToDB(s *domain.WorkSchedule) dbstore.WorkSchedule {
	return dbstore.WorkSchedule{
		ID:       s.ID,
		TenantID: s.TenantID,
		Name:     s.Name,
		WorkDays: WorkDaysToDB(s.WorkDays),
	}
}

func WorkScheduleFromDB(s dbstore.WorkSchedule) *domain.WorkSchedule {
	return &domain.WorkSchedule{
		ID:       s.ID,
		TenantID: s.TenantID,
		Name:     s.Name,
		WorkDays: WorkDaysFromDB(s.WorkDays),
	}
}

// --- ApprovalDelegation ---

func DelegationToDB(d *domain.ApprovalDelegation) dbstore.ApprovalDelegation {
	return dbstore.ApprovalDelegation{
		ID:             d.ID,
		TenantID:       d.TenantID,
		DelegatorID:    d.DelegatorID,
		DelegateeID:    d.DelegateeID,
		DelegationType: string(d.DelegationType),
		StartDate:      FormatTime(d.StartDate),
		EndDate:        nullTime(d.EndDate),
		IsActive:       boolToInt(d.IsActive),
		Reason:         d.Reason,
		CreatedBy:      d.CreatedBy,
		CreatedAt:      FormatTime(d.CreatedAt),
	}
}

func DelegationFromDB(d dbstore.ApprovalDelegation) *domain.ApprovalDelegation {
	return &domain.ApprovalDelegation{
		ID:             d.ID,
		TenantID:       d.TenantID,
		DelegatorID:    d.DelegatorID,
		DelegateeID:    d.DelegateeID,
		DelegationType: domain.DelegationType(d.DelegationType),
		StartDate:      parseTime(d.StartDate),
		EndDate:        ptrTime(d.EndDate),
		IsActive:       d.IsActive != 0,
		Reason:         d.Reason,
		CreatedBy:      d.CreatedBy,
		CreatedAt:      parseTime(d.CreatedAt),
	}
}

func DelegationsFromDB(rows []dbstore.ApprovalDelegation) []domain.ApprovalDelegation {
	out := make([]domain.ApprovalDelegation, len(rows))
	for i, r := range rows {
		out[i] = *DelegationFromDB(r)
	}
	return out
}

// --- VacationBalance ---

func BalanceToDB(b *domain.VacationBalance) dbstore.VacationBalance {
	return dbstore.VacationBalance{
		EmployeeID:  b.EmployeeID,
		Year:        int64(b.Year),
		EarnedDays:  int64(b.EarnedDays),
		UsedDays:    int64(b.UsedDays),
		PendingDays: int64(b.PendingDays),
		ExpiredDays: int64(b.ExpiredDays),
		UpdatedAt:   FormatTime(b.UpdatedAt),
	}
}

func BalanceFromDB(b dbstore.VacationBalance) *domain.VacationBalance {
	return &domain.VacationBalance{
		EmployeeID:  b.EmployeeID,
		Year:        int(b.Year),
		EarnedDays:  int(b.EarnedDays),
		UsedDays:    int(b.UsedDays),
		PendingDays: int(b.PendingDays),
		ExpiredDays: int(b.ExpiredDays),
		UpdatedAt:   parseTime(b.UpdatedAt),
	}
}

// --- LeaveRequest ---

func LeaveRequestToDB(r *domain.LeaveRequest) dbstore.LeaveRequest {
	var stage sql.NullString
	if r.RejectedStage != nil {
		stage = sql.NullString{String: string(*r.RejectedStage), Valid: true}
	}
	return dbstore.LeaveRequest{
		ID:                      r.ID,
		TenantID:                r.TenantID,
		EmployeeID:              r.EmployeeID,
		RequestType:             string(r.Type),
		StartDate:               FormatDate(r.StartDate),
		EndDate:                 FormatDate(r.EndDate),
		TotalDays:               int64(r.TotalDays),
		Status:                  string(r.Status),
		Notes:                   r.Notes,
		RejectedReason:          nullStr(r.RejectedReason),
		RejectedStage:           stage,
		RejectedBy:              nullStr(r.RejectedBy),
		RejectedAt:              nullTime(r.RejectedAt),
		SupervisorApprovedBy:    nullStr(r.SupervisorApprovedBy),
		SupervisorApprovedAt:    nullTime(r.SupervisorApprovedAt),
		SupervisorApprovalBasis: nullStr(r.SupervisorApprovalBasis),
		ApprovedBy:              nullStr(r.ApprovedBy),
		ApprovedAt:              nullTime(r.ApprovedAt),
		CancelledBy:             nullStr(r.CancelledBy),
		CancelledAt:             nullTime(r.CancelledAt),
		AppliedAt:               nullTime(r.AppliedAt),
		AppliedBatch:            nullStr(r.AppliedBatch),
		CreatedBy:               r.CreatedBy,
		CreatedAt:               FormatTime(r.CreatedAt),
		UpdatedAt:               FormatTime(r.UpdatedAt),
	}
}

func LeaveRequestFromDB(r dbstore.LeaveRequest) *domain.LeaveRequest {
	var stage *domain.ApprovalStage
	if r.RejectedStage.Valid {
		s := domain.ApprovalStage(r.RejectedStage.String)
		stage = &s
	}
	return &domain.LeaveRequest{
		ID:                      r.ID,
		TenantID:                r.TenantID,
		EmployeeID:              r.EmployeeID,
		Type:                    domain.RequestType(r.RequestType),
		StartDate:               parseDate(r.StartDate),
		EndDate:                 parseDate(r.EndDate),
		TotalDays:               int(r.TotalDays),
		Status:                  domain.RequestStatus(r.Status),
		Notes:                   r.Notes,
		RejectedReason:          ptrStr(r.RejectedReason),
		RejectedStage:           stage,
		RejectedBy:              ptrStr(r.RejectedBy),
		RejectedAt:              ptrTime(r.RejectedAt),
		SupervisorApprovedBy:    ptrStr(r.SupervisorApprovedBy),
		SupervisorApprovedAt:    ptrTime(r.SupervisorApprovedAt),
		SupervisorApprovalBasis: ptrStr(r.SupervisorApprovalBasis),
		ApprovedBy:              ptrStr(r.ApprovedBy),
		ApprovedAt:              ptrTime(r.ApprovedAt),
		CancelledBy:             ptrStr(r.CancelledBy),
		CancelledAt:             ptrTime(r.CancelledAt),
		AppliedAt:               ptrTime(r.AppliedAt),
		AppliedBatch:            ptrStr(r.AppliedBatch),
		CreatedBy:               r.CreatedBy,
		CreatedAt:               parseTime(r.CreatedAt),
		UpdatedAt:               parseTime(r.UpdatedAt),
	}
}

// --- AuditEntry ---

func AuditEntryToDB(e *domain.AuditEntry) dbstore.AuditLog {
	return dbstore.AuditLog{
		ID:         e.ID,
		TenantID:   e.TenantID,
		ActorID:    e.ActorID,
		Action:     e.Action,
		EntityType: e.EntityType,
		EntityID:   e.EntityID,
		FromStatus: nullStr(e.FromStatus),
		ToStatus:   nullStr(e.ToStatus),
		Detail:     e.Detail,
		CreatedAt:  FormatTime(e.CreatedAt),
	}
}

func AuditEntryFromDB(a dbstore.AuditLog) *domain.AuditEntry {
	return &domain.AuditEntry{
		ID:         a.ID,
		TenantID:   a.TenantID,
		ActorID:    a.ActorID,
		Action:     a.Action,
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		FromStatus: ptrStr(a.FromStatus),
		ToStatus:   ptrStr(a.ToStatus),
		Detail:     a.Detail,
		CreatedAt:  parseTime(a.CreatedAt),
	}
}

// AuditFilterToDB converts a domain audit filter to its stored form.
func AuditFilterToDB(f domain.AuditFilter) dbstore.AuditLogFilter {
	out := dbstore.AuditLogFilter{
		TenantID: nullStr(f.TenantID),
		EntityID: nullStr(f.EntityID),
		ActorID:  nullStr(f.ActorID),
		Action:   nullStr(f.Action),
	}
	if f.Since != nil {
		out.Since = sql.NullString{String: FormatTime(*f.Since), Valid: true}
	}
	return out
}
