package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"hr-approvals/internal/domain"
)

type balanceKey struct {
	employeeID string
	year       int
}

// MemStore is an in-memory implementation of every repository plus a
// UnitOfWork. Units of work are serialized and rolled back on error, which is
// enough to exercise the workflow's atomicity guarantees without a database.
type MemStore struct {
	txMu sync.Mutex // serializes units of work
	mu   sync.Mutex // guards the maps below

	employees   map[string]domain.Employee
	departments map[string]domain.Department
	schedules   map[string]domain.WorkSchedule
	delegations map[string]domain.ApprovalDelegation
	balances    map[balanceKey]domain.VacationBalance
	requests    map[string]domain.LeaveRequest
	audit       []domain.AuditEntry

	// AuditInsertErr, when set, is returned by every audit insert. Useful to
	// force a unit of work to fail after the request and ledger writes.
	AuditInsertErr error
}

// NewMemStore returns an empty MemStore.
func NewMemStore() *MemStore {
	return &MemStore{
		employees:   make(map[string]domain.Employee),
		departments: make(map[string]domain.Department),
		schedules:   make(map[string]domain.WorkSchedule),
		delegations: make(map[string]domain.ApprovalDelegation),
		balances:    make(map[balanceKey]domain.VacationBalance),
		requests:    make(map[string]domain.LeaveRequest),
	}
}

// Employees returns the employee repository view.
func (s *MemStore) Employees() domain.EmployeeRepository { return memEmployees{s} }

// Departments returns the department repository view.
func (s *MemStore) Departments() domain.DepartmentRepository { return memDepartments{s} }

// Schedules returns the schedule repository view.
func (s *MemStore) Schedules() domain.ScheduleRepository { return memSchedules{s} }

// Delegations returns the delegation repository view.
func (s *MemStore) Delegations() domain.DelegationRepository { return memDelegations{s} }

// Balances returns the balance repository view.
func (s *MemStore) Balances() domain.BalanceRepository { return memBalances{s} }

// Requests returns the leave request repository view.
func (s *MemStore) Requests() domain.LeaveRequestRepository { return memRequests{s} }

// Audit returns the audit repository view.
func (s *MemStore) Audit() domain.AuditRepository { return memAudit{s} }

// Do implements domain.UnitOfWork.
func (s *MemStore) Do(ctx context.Context, fn func(ctx context.Context, repos domain.TxRepos) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	s.mu.Lock()
	balances := make(map[balanceKey]domain.VacationBalance, len(s.balances))
	for k, v := range s.balances {
		balances[k] = v
	}
	requests := make(map[string]domain.LeaveRequest, len(s.requests))
	for k, v := range s.requests {
		requests[k] = v
	}
	auditLen := len(s.audit)
	s.mu.Unlock()

	err := fn(ctx, domain.TxRepos{Balances: s.Balances(), Requests: s.Requests(), Audit: s.Audit()})
	if err != nil {
		s.mu.Lock()
		s.balances = balances
		s.requests = requests
		s.audit = s.audit[:auditLen]
		s.mu.Unlock()
	}
	return err
}

// AuditEntries returns a copy of every recorded audit entry.
func (s *MemStore) AuditEntries() []domain.AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.AuditEntry, len(s.audit))
	copy(out, s.audit)
	return out
}

// Balance returns the stored balance row, if any.
func (s *MemStore) Balance(employeeID string, year int) (domain.VacationBalance, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.balances[balanceKey{employeeID, year}]
	return b, ok
}

// === Employees ===

type memEmployees struct{ s *MemStore }

func (r memEmployees) Create(_ context.Context, e *domain.Employee) (*domain.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := *e
	if out.ID == "" {
		out.ID = domain.NewID()
	}
	if _, ok := r.s.employees[out.ID]; ok {
		return nil, domain.ErrConflict("employee %q already exists", out.ID)
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	r.s.employees[out.ID] = out
	return &out, nil
}

func (r memEmployees) GetByID(_ context.Context, id string) (*domain.Employee, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[id]
	if !ok {
		return nil, domain.ErrNotFound("employee %q not found", id)
	}
	return &e, nil
}

func (r memEmployees) ListByTenant(_ context.Context, tenantID string, page domain.PageRequest) ([]domain.Employee, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []domain.Employee
	for _, e := range r.s.employees {
		if e.TenantID == tenantID {
			all = append(all, e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return paginate(all, page), int64(len(all)), nil
}

func (r memEmployees) ListTenantIDs(_ context.Context) ([]string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	seen := map[string]bool{}
	var out []string
	for _, e := range r.s.employees {
		if !seen[e.TenantID] {
			seen[e.TenantID] = true
			out = append(out, e.TenantID)
		}
	}
	sort.Strings(out)
	return out, nil
}

// === Departments ===

type memDepartments struct{ s *MemStore }

func (r memDepartments) Create(_ context.Context, d *domain.Department) (*domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := *d
	if out.ID == "" {
		out.ID = domain.NewID()
	}
	r.s.departments[out.ID] = out
	return &out, nil
}

func (r memDepartments) GetByID(_ context.Context, id string) (*domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.departments[id]
	if !ok {
		return nil, domain.ErrNotFound("department %q not found", id)
	}
	return &d, nil
}

func (r memDepartments) ListManagedBy(_ context.Context, managerID string) ([]domain.Department, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.Department
	for _, d := range r.s.departments {
		if d.ManagerID != nil && *d.ManagerID == managerID {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// === Schedules ===

type memSchedules struct{ s *MemStore }

func (r memSchedules) Create(_ context.Context, ws *domain.WorkSchedule) (*domain.WorkSchedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := *ws
	if out.ID == "" {
		out.ID = domain.NewID()
	}
	r.s.schedules[out.ID] = out
	return &out, nil
}

func (r memSchedules) GetForEmployee(_ context.Context, employeeID string) (*domain.WorkSchedule, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.employees[employeeID]
	if !ok || e.ScheduleID == nil {
		return nil, domain.ErrNotFound("no schedule assigned to employee %q", employeeID)
	}
	ws, ok := r.s.schedules[*e.ScheduleID]
	if !ok {
		return nil, domain.ErrNotFound("schedule %q not found", *e.ScheduleID)
	}
	return &ws, nil
}

// === Delegations ===

type memDelegations struct{ s *MemStore }

func (r memDelegations) Create(_ context.Context, d *domain.ApprovalDelegation) (*domain.ApprovalDelegation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := *d
	if out.ID == "" {
		out.ID = domain.NewID()
	}
	if out.CreatedAt.IsZero() {
		out.CreatedAt = time.Now().UTC()
	}
	r.s.delegations[out.ID] = out
	return &out, nil
}

func (r memDelegations) GetByID(_ context.Context, id string) (*domain.ApprovalDelegation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.delegations[id]
	if !ok {
		return nil, domain.ErrNotFound("delegation %q not found", id)
	}
	return &d, nil
}

func (r memDelegations) Deactivate(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.delegations[id]
	if !ok {
		return domain.ErrNotFound("delegation %q not found", id)
	}
	d.IsActive = false
	r.s.delegations[id] = d
	return nil
}

func (r memDelegations) ListByDelegator(_ context.Context, delegatorID string) ([]domain.ApprovalDelegation, error) {
	return r.filter(func(d domain.ApprovalDelegation) bool { return d.DelegatorID == delegatorID }), nil
}

func (r memDelegations) ListActiveForDelegatee(_ context.Context, delegateeID string, at time.Time) ([]domain.ApprovalDelegation, error) {
	return r.filter(func(d domain.ApprovalDelegation) bool {
		return d.DelegateeID == delegateeID && d.ActiveAt(at)
	}), nil
}

func (r memDelegations) ListActiveFromDelegators(_ context.Context, delegatorIDs []string, at time.Time) ([]domain.ApprovalDelegation, error) {
	ids := make(map[string]bool, len(delegatorIDs))
	for _, id := range delegatorIDs {
		ids[id] = true
	}
	return r.filter(func(d domain.ApprovalDelegation) bool {
		return ids[d.DelegatorID] && d.ActiveAt(at)
	}), nil
}

func (r memDelegations) filter(keep func(domain.ApprovalDelegation) bool) []domain.ApprovalDelegation {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.ApprovalDelegation
	for _, d := range r.s.delegations {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// === Balances ===

type memBalances struct{ s *MemStore }

func (r memBalances) GetForUpdate(_ context.Context, employeeID string, year int) (*domain.VacationBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.balances[balanceKey{employeeID, year}]
	if !ok {
		return nil, domain.ErrNotFound("no balance for employee %q in %d", employeeID, year)
	}
	return &b, nil
}

func (r memBalances) Insert(_ context.Context, b *domain.VacationBalance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := balanceKey{b.EmployeeID, b.Year}
	if _, ok := r.s.balances[k]; !ok {
		r.s.balances[k] = *b
	}
	return nil
}

func (r memBalances) Update(_ context.Context, b *domain.VacationBalance) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	k := balanceKey{b.EmployeeID, b.Year}
	if _, ok := r.s.balances[k]; !ok {
		return domain.ErrNotFound("no balance for employee %q in %d", b.EmployeeID, b.Year)
	}
	r.s.balances[k] = *b
	return nil
}

func (r memBalances) ListExpirable(_ context.Context, tenantID string, beforeYear int) ([]domain.VacationBalance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.VacationBalance
	for k, b := range r.s.balances {
		e, ok := r.s.employees[k.employeeID]
		if !ok || e.TenantID != tenantID || b.Year >= beforeYear {
			continue
		}
		if b.Available() > 0 {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].EmployeeID != out[j].EmployeeID {
			return out[i].EmployeeID < out[j].EmployeeID
		}
		return out[i].Year < out[j].Year
	})
	return out, nil
}

// === Leave requests ===

type memRequests struct{ s *MemStore }

func (r memRequests) Create(_ context.Context, lr *domain.LeaveRequest) (*domain.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := *lr
	if out.ID == "" {
		out.ID = domain.NewID()
	}
	if _, ok := r.s.requests[out.ID]; ok {
		return nil, domain.ErrConflict("leave request %q already exists", out.ID)
	}
	r.s.requests[out.ID] = out
	return &out, nil
}

func (r memRequests) GetByID(_ context.Context, id string) (*domain.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	lr, ok := r.s.requests[id]
	if !ok {
		return nil, domain.ErrNotFound("leave request %q not found", id)
	}
	return &lr, nil
}

func (r memRequests) Update(_ context.Context, lr *domain.LeaveRequest) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.requests[lr.ID]; !ok {
		return domain.ErrNotFound("leave request %q not found", lr.ID)
	}
	r.s.requests[lr.ID] = *lr
	return nil
}

func (r memRequests) ListByEmployee(_ context.Context, employeeID string, page domain.PageRequest) ([]domain.LeaveRequest, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []domain.LeaveRequest
	for _, lr := range r.s.requests {
		if lr.EmployeeID == employeeID {
			all = append(all, lr)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].StartDate.After(all[j].StartDate) })
	return paginate(all, page), int64(len(all)), nil
}

func (r memRequests) ListOverlapping(_ context.Context, employeeID string, start, end time.Time) ([]domain.LeaveRequest, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []domain.LeaveRequest
	for _, lr := range r.s.requests {
		if lr.EmployeeID != employeeID {
			continue
		}
		if lr.Status == domain.StatusRejected || lr.Status == domain.StatusCancelled {
			continue
		}
		if lr.StartDate.After(end) || lr.EndDate.Before(start) {
			continue
		}
		out = append(out, lr)
	}
	return out, nil
}

// === Audit ===

type memAudit struct{ s *MemStore }

func (r memAudit) Insert(_ context.Context, e *domain.AuditEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.AuditInsertErr != nil {
		return r.s.AuditInsertErr
	}
	if e.ID == "" {
		e.ID = domain.NewID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	r.s.audit = append(r.s.audit, *e)
	return nil
}

func (r memAudit) List(_ context.Context, f domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var all []domain.AuditEntry
	for _, e := range r.s.audit {
		if f.TenantID != nil && e.TenantID != *f.TenantID {
			continue
		}
		if f.EntityID != nil && e.EntityID != *f.EntityID {
			continue
		}
		if f.ActorID != nil && e.ActorID != *f.ActorID {
			continue
		}
		if f.Action != nil && e.Action != *f.Action {
			continue
		}
		if f.Since != nil && e.CreatedAt.Before(*f.Since) {
			continue
		}
		all = append(all, e)
	}
	return paginate(all, f.Page), int64(len(all)), nil
}

func paginate[T any](all []T, page domain.PageRequest) []T {
	off := page.Offset()
	if off >= len(all) {
		return nil
	}
	end := off + page.Limit()
	if end > len(all) {
		end = len(all)
	}
	return all[off:end]
}

var (
	_ domain.EmployeeRepository     = memEmployees{}
	_ domain.DepartmentRepository   = memDepartments{}
	_ domain.ScheduleRepository     = memSchedules{}
	_ domain.DelegationRepository   = memDelegations{}
	_ domain.BalanceRepository      = memBalances{}
	_ domain.LeaveRequestRepository = memRequests{}
	_ domain.AuditRepository        = memAudit{}
	_ domain.UnitOfWork             = (*MemStore)(nil)
)

// MustEmployee seeds an employee and panics on failure.
func (s *MemStore) MustEmployee(e domain.Employee) domain.Employee {
	out, err := s.Employees().Create(context.Background(), &e)
	if err != nil {
		panic(fmt.Sprintf("seed employee %s: %v", e.ID, err))
	}
	return *out
}
