package approval

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"hr-approvals/internal/domain"
	"hr-approvals/internal/service/access"
	"hr-approvals/internal/testutil"
)

// Monday.
var testNow = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fixture is a small org chart in tenant t1:
//
//	ceo
//	 └─ s2
//	     └─ s1
//	         └─ emp (department d1, managed by dm)
//
// plus an HR employee, a spare employee usable as delegate, and an employee
// of tenant t2.
type fixture struct {
	store    *testutil.MemStore
	clock    *testutil.FixedClock
	roles    *access.RoleCatalog
	tenants  *access.TenantScope
	resolver *ChainResolver
	ledger   *Ledger
	workflow *Workflow
	deleg    *DelegationService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := testutil.NewMemStore()
	clock := testutil.NewFixedClock(testNow)

	hired := date(2015, 1, 1)
	store.MustEmployee(domain.Employee{ID: "ceo", TenantID: "t1", Name: "Carla CEO", HireDate: hired})
	store.MustEmployee(domain.Employee{ID: "s2", TenantID: "t1", Name: "Sam Second", SupervisorID: testutil.Ptr("ceo"), HireDate: hired})
	store.MustEmployee(domain.Employee{ID: "s1", TenantID: "t1", Name: "Sue First", SupervisorID: testutil.Ptr("s2"), HireDate: hired})
	store.MustEmployee(domain.Employee{ID: "dm", TenantID: "t1", Name: "Dan Manager", HireDate: hired})
	store.MustEmployee(domain.Employee{
		ID: "emp", TenantID: "t1", Name: "Eve Employee",
		SupervisorID: testutil.Ptr("s1"), DepartmentID: testutil.Ptr("d1"),
		HireDate: date(2020, 1, 15),
	})
	store.MustEmployee(domain.Employee{ID: "hr1", TenantID: "t1", Name: "Hana HR", HireDate: hired})
	store.MustEmployee(domain.Employee{ID: "del", TenantID: "t1", Name: "Dee Delegate", HireDate: hired})
	store.MustEmployee(domain.Employee{ID: "x1", TenantID: "t2", Name: "Xavier Other", HireDate: hired})

	_, err := store.Departments().Create(context.Background(), &domain.Department{ID: "d1", TenantID: "t1", Name: "Ops", ManagerID: testutil.Ptr("dm")})
	require.NoError(t, err)

	roles := access.NewRoleCatalog(nil)
	tenants := access.NewTenantScope(roles)
	resolver := NewChainResolver(store.Employees(), store.Departments(), store.Delegations(), clock, DefaultMaxChainDepth, discardLogger())
	ledger := NewLedger(store.Employees(), store, DefaultTenureTable(), clock, discardLogger())
	wf := NewWorkflow(WorkflowDeps{
		Roles:     roles,
		Tenants:   tenants,
		Resolver:  resolver,
		Ledger:    ledger,
		Employees: store.Employees(),
		Schedules: store.Schedules(),
		Requests:  store.Requests(),
		UoW:       store,
		Clock:     clock,
		Logger:    discardLogger(),
	})
	deleg := NewDelegationService(store.Delegations(), store.Employees(), store.Audit(), roles, tenants, clock, discardLogger())

	return &fixture{
		store:    store,
		clock:    clock,
		roles:    roles,
		tenants:  tenants,
		resolver: resolver,
		ledger:   ledger,
		workflow: wf,
		deleg:    deleg,
	}
}

func (f *fixture) delegate(t *testing.T, from, to string, typ domain.DelegationType, start time.Time, end *time.Time) domain.ApprovalDelegation {
	t.Helper()
	d, err := f.store.Delegations().Create(context.Background(), &domain.ApprovalDelegation{
		TenantID:       "t1",
		DelegatorID:    from,
		DelegateeID:    to,
		DelegationType: typ,
		StartDate:      start,
		EndDate:        end,
		IsActive:       true,
		CreatedAt:      f.clock.Now(),
	})
	require.NoError(t, err)
	return *d
}

func (f *fixture) seedBalance(t *testing.T, employeeID string, year, earned, used int) {
	t.Helper()
	require.NoError(t, f.store.Balances().Insert(context.Background(), &domain.VacationBalance{
		EmployeeID: employeeID, Year: year, EarnedDays: earned, UsedDays: used,
	}))
}

// createVacation files a Monday-to-Wednesday vacation (3 work days) for emp.
func (f *fixture) createVacation(t *testing.T) *domain.LeaveRequest {
	t.Helper()
	ev, err := f.workflow.Create(context.Background(), employeeP(), domain.CreateLeaveRequest{
		EmployeeID: "emp",
		Type:       domain.RequestVacation,
		StartDate:  date(2025, 3, 17),
		EndDate:    date(2025, 3, 19),
	})
	require.NoError(t, err)
	return &ev.Request
}

func employeeP() domain.Principal   { return testutil.Principal("empleado", "t1", "emp") }
func supervisorP() domain.Principal { return testutil.Principal("SUPERVISOR", "t1", "s1") }
func hrP() domain.Principal         { return testutil.Principal("rh", "t1", "hr1") }
