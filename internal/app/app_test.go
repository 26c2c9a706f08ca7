package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-approvals/internal/config"
	"hr-approvals/internal/db"
	"hr-approvals/internal/db/dbstore"
	"hr-approvals/internal/domain"
	"hr-approvals/internal/service/approval"
	"hr-approvals/internal/testutil"
)

const directoryYAML = `
schedules:
  - id: six-day
    tenant_id: t1
    name: six day week
    work_days: [MON, TUE, WED, THU, FRI, SAT]
departments:
  - id: d1
    tenant_id: t1
    name: Operations
    manager_id: ceo
employees:
  - id: ceo
    tenant_id: t1
    name: Carla
    hire_date: "2010-02-01"
  - id: s1
    tenant_id: t1
    name: Sam
    supervisor_id: ceo
    department_id: d1
    hire_date: "2012-06-01"
  - id: emp
    tenant_id: t1
    name: Eve
    supervisor_id: s1
    department_id: d1
    hire_date: "2015-01-01"
  - id: shift
    tenant_id: t1
    name: Sol
    supervisor_id: s1
    schedule_id: six-day
    hire_date: "2020-09-01"
`

func testPools(t *testing.T) *db.Pools {
	t.Helper()
	w, r := db.OpenTestSQLite(t)
	return &db.Pools{Write: w, Read: r, Dialect: dbstore.DialectSQLite}
}

func testConfig() *config.Config {
	return &config.Config{
		ChainMaxDepth:         5,
		BalanceCarryoverYears: 1,
		ExpirySchedule:        "@daily",
	}
}

func importDirectory(t *testing.T, pools *db.Pools) *ImportResult {
	t.Helper()
	f, err := ParseDirectory(strings.NewReader(directoryYAML))
	require.NoError(t, err)
	res, err := NewDirectoryImporter(pools, nil).Import(context.Background(), f)
	require.NoError(t, err)
	return res
}

func TestParseDirectory_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown key", "employees:\n  - id: e1\n    tenant_id: t1\n    name: E\n    hire_date: \"2020-01-01\"\n    salary: 10\n", "decode directory"},
		{"missing tenant", "employees:\n  - id: e1\n    name: E\n    hire_date: \"2020-01-01\"\n", "employees[0]"},
		{"bad hire date", "employees:\n  - id: e1\n    tenant_id: t1\n    name: E\n    hire_date: 01/02/2020\n", "hire_date"},
		{"bad work day", "schedules:\n  - id: s\n    tenant_id: t1\n    work_days: [MON, FUNDAY]\n", "unknown work day"},
		{"department without name", "departments:\n  - id: d\n    tenant_id: t1\n", "departments[0]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDirectory(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseDirectory_Empty(t *testing.T) {
	f, err := ParseDirectory(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, f.Employees)
}

func TestParseWorkDays(t *testing.T) {
	days, err := parseWorkDays([]string{"monday", " Sat "})
	require.NoError(t, err)
	assert.Equal(t, [7]bool{time.Monday: true, time.Saturday: true}, days)

	def, err := parseWorkDays(nil)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultWorkSchedule().WorkDays, def)
}

func TestDirectoryImporter_Idempotent(t *testing.T) {
	pools := testPools(t)

	first := importDirectory(t, pools)
	assert.Equal(t, 1, first.Schedules)
	assert.Equal(t, 1, first.Departments)
	assert.Equal(t, 4, first.Employees)
	assert.Equal(t, 0, first.Skipped)

	second := importDirectory(t, pools)
	assert.Equal(t, 0, second.Employees)
	assert.Equal(t, 6, second.Skipped)
}

func TestDirectoryImporter_ImportFile(t *testing.T) {
	pools := testPools(t)
	path := filepath.Join(t.TempDir(), "directory.yaml")
	require.NoError(t, os.WriteFile(path, []byte(directoryYAML), 0o600))

	res, err := NewDirectoryImporter(pools, nil).ImportFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Employees)

	_, err = NewDirectoryImporter(pools, nil).ImportFile(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestNew_RequiresConfigAndPools(t *testing.T) {
	_, err := New(Deps{})
	require.Error(t, err)
}

func TestNew_WiresApprovalEngine(t *testing.T) {
	pools := testPools(t)
	importDirectory(t, pools)
	clock := testutil.NewFixedClock(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	a, err := New(Deps{Cfg: testConfig(), Pools: pools, Clock: clock})
	require.NoError(t, err)
	ctx := context.Background()

	approvers, err := a.Resolver.ApproversForEmployee(ctx, "emp", domain.DelegationAll)
	require.NoError(t, err)
	require.Len(t, approvers, 2)
	assert.Equal(t, "s1", approvers[0].EmployeeID)
	assert.Equal(t, approval.BasisDirectSupervisor, approvers[0].Basis)
	assert.Equal(t, "ceo", approvers[1].EmployeeID)

	ws, err := a.Repos.Schedules.GetForEmployee(ctx, "shift")
	require.NoError(t, err)
	assert.True(t, ws.WorkDays[time.Saturday])

	// Monday 17th to Wednesday 19th March 2025.
	ev, err := a.Workflow.Create(ctx, testutil.Principal("EMPLOYEE", "t1", "emp"), domain.CreateLeaveRequest{
		EmployeeID: "emp",
		Type:       domain.RequestVacation,
		StartDate:  time.Date(2025, 3, 17, 0, 0, 0, 0, time.UTC),
		EndDate:    time.Date(2025, 3, 19, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, ev.Request.Status)
	assert.Equal(t, 3, ev.Request.TotalDays)

	b, err := a.Ledger.GetOrCreate(ctx, "emp", 2025)
	require.NoError(t, err)
	assert.Equal(t, 3, b.PendingDays)

	assert.NotNil(t, a.Scheduler(testConfig(), nil))
	off := testConfig()
	off.ExpirySchedule = "off"
	assert.Nil(t, a.Scheduler(off, nil))
}

func TestNew_PolicyFile(t *testing.T) {
	pools := testPools(t)
	path := filepath.Join(t.TempDir(), "policy.yaml")
	require.NoError(t, os.WriteFile(path, []byte("role_aliases:\n  jefe: SUPERVISOR\n"), 0o600))

	cfg := testConfig()
	cfg.PolicyFile = path
	a, err := New(Deps{Cfg: cfg, Pools: pools})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleSupervisor, a.Roles.Normalize("jefe"))

	cfg.PolicyFile = filepath.Join(t.TempDir(), "missing.yaml")
	_, err = New(Deps{Cfg: cfg, Pools: pools})
	require.Error(t, err)
}

func TestNewAuthenticator(t *testing.T) {
	ctx := context.Background()

	a, err := NewAuthenticator(ctx, config.AuthConfig{JWTSecret: "test-secret"}, nil)
	require.NoError(t, err)
	require.NotNil(t, a)

	// A discovery endpoint that does not answer makes startup fail.
	idp := httptest.NewServer(http.NotFoundHandler())
	defer idp.Close()
	_, err = NewAuthenticator(ctx, config.AuthConfig{IssuerURL: idp.URL}, nil)
	require.Error(t, err)
}
