package approval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-approvals/internal/domain"
	"hr-approvals/internal/testutil"
)

func TestWorkflow_Create_ComputesWorkDays(t *testing.T) {
	f := newFixture(t)

	req := f.createVacation(t)
	assert.Equal(t, domain.StatusPending, req.Status)
	assert.Equal(t, 3, req.TotalDays)
	assert.Equal(t, "t1", req.TenantID)
	assert.Equal(t, "emp", req.CreatedBy)

	b, ok := f.store.Balance("emp", 2025)
	require.True(t, ok)
	assert.Equal(t, 3, b.PendingDays)
	assert.Equal(t, 20, b.EarnedDays)

	entries := f.store.AuditEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, domain.AuditCreateRequest, entries[0].Action)
	assert.Equal(t, req.ID, entries[0].EntityID)
}

func TestWorkflow_Create_UsesAssignedSchedule(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	// Monday, Wednesday, Saturday.
	ws, err := f.store.Schedules().Create(ctx, &domain.WorkSchedule{TenantID: "t1", Name: "mixed", WorkDays: [7]bool{1: true, 3: true, 6: true}})
	require.NoError(t, err)
	f.store.MustEmployee(domain.Employee{ID: "shift", TenantID: "t1", ScheduleID: &ws.ID, HireDate: date(2010, 1, 1)})

	ev, err := f.workflow.Create(ctx, testutil.Principal("empleado", "t1", "shift"), domain.CreateLeaveRequest{
		EmployeeID: "shift",
		Type:       domain.RequestVacation,
		StartDate:  date(2025, 3, 17), // Monday
		EndDate:    date(2025, 3, 23), // Sunday
	})
	require.NoError(t, err)
	assert.Equal(t, 3, ev.Request.TotalDays)
}

func TestWorkflow_Create_NoWorkDays(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.Create(context.Background(), employeeP(), domain.CreateLeaveRequest{
		EmployeeID: "emp",
		Type:       domain.RequestVacation,
		StartDate:  date(2025, 3, 15), // Saturday
		EndDate:    date(2025, 3, 16),
	})
	var ve *domain.ValidationError
	assert.ErrorAs(t, err, &ve)
}

func TestWorkflow_Create_SpanLimit(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.Create(context.Background(), employeeP(), domain.CreateLeaveRequest{
		EmployeeID: "emp",
		Type:       domain.RequestUnpaidLeave,
		StartDate:  date(2025, 3, 17),
		EndDate:    date(2027, 3, 17),
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, f.store.AuditEntries())
}

func TestWorkflow_Create_NewYearChargesStartYear(t *testing.T) {
	f := newFixture(t)

	ev, err := f.workflow.Create(context.Background(), employeeP(), domain.CreateLeaveRequest{
		EmployeeID: "emp",
		Type:       domain.RequestVacation,
		StartDate:  date(2024, 12, 30),
		EndDate:    date(2025, 1, 2),
	})
	require.NoError(t, err)
	assert.Equal(t, 4, ev.Request.TotalDays)

	b, ok := f.store.Balance("emp", 2024)
	require.True(t, ok)
	assert.Equal(t, 4, b.PendingDays)
	_, ok = f.store.Balance("emp", 2025)
	assert.False(t, ok)
}

func TestWorkflow_Create_InsufficientBalancePersistsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.seedBalance(t, "emp", 2025, 12, 10)

	_, err := f.workflow.Create(ctx, employeeP(), domain.CreateLeaveRequest{
		EmployeeID: "emp",
		Type:       domain.RequestVacation,
		StartDate:  date(2025, 3, 17),
		EndDate:    date(2025, 3, 21), // 5 work days
	})
	var ib *domain.InsufficientBalanceError
	require.ErrorAs(t, err, &ib)

	requests, total, err := f.store.Requests().ListByEmployee(ctx, "emp", domain.PageRequest{})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, requests)
	assert.Empty(t, f.store.AuditEntries())

	b, _ := f.store.Balance("emp", 2025)
	assert.Zero(t, b.PendingDays)
	assert.Equal(t, 10, b.UsedDays)
}

func TestWorkflow_Create_NonVacationSkipsLedger(t *testing.T) {
	f := newFixture(t)

	ev, err := f.workflow.Create(context.Background(), employeeP(), domain.CreateLeaveRequest{
		EmployeeID: "emp",
		Type:       "sick_leave",
		StartDate:  date(2025, 3, 17),
		EndDate:    date(2025, 3, 18),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RequestSickLeave, ev.Request.Type)

	_, ok := f.store.Balance("emp", 2025)
	assert.False(t, ok)
}

func TestWorkflow_Create_Overlap(t *testing.T) {
	f := newFixture(t)
	f.createVacation(t)

	_, err := f.workflow.Create(context.Background(), employeeP(), domain.CreateLeaveRequest{
		EmployeeID: "emp",
		Type:       domain.RequestPermission,
		StartDate:  date(2025, 3, 19),
		EndDate:    date(2025, 3, 20),
	})
	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)
}

func TestWorkflow_Create_Permissions(t *testing.T) {
	f := newFixture(t)
	req := domain.CreateLeaveRequest{
		EmployeeID: "emp",
		Type:       domain.RequestVacation,
		StartDate:  date(2025, 3, 17),
		EndDate:    date(2025, 3, 17),
	}

	_, err := f.workflow.Create(context.Background(), testutil.Principal("empleado", "t1", "del"), req)
	var ad *domain.AccessDeniedError
	require.ErrorAs(t, err, &ad)

	_, err = f.workflow.Create(context.Background(), testutil.Principal("rh", "t2", "x1"), req)
	var ct *domain.CrossTenantAccessError
	require.ErrorAs(t, err, &ct)

	_, err = f.workflow.Create(context.Background(), hrP(), req)
	require.NoError(t, err)

	req.EmployeeID = "ghost"
	_, err = f.workflow.Create(context.Background(), hrP(), req)
	var nf *domain.EmployeeNotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestWorkflow_SupervisorThenHRApproval(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.createVacation(t)

	ev, err := f.workflow.SupervisorApprove(ctx, supervisorP(), domain.SupervisorApproveRequest{RequestID: req.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, ev.From)
	assert.Equal(t, domain.StatusSupervisorApproved, ev.Request.Status)
	require.NotNil(t, ev.Request.SupervisorApprovedBy)
	assert.Equal(t, "s1", *ev.Request.SupervisorApprovedBy)
	assert.Equal(t, ReasonDirectSupervisor, *ev.Request.SupervisorApprovalBasis)

	ev, err = f.workflow.FinalApprove(ctx, hrP(), domain.FinalApproveRequest{RequestID: req.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSupervisorApproved, ev.From)
	assert.Equal(t, domain.StatusApproved, ev.Request.Status)
	assert.Equal(t, "hr1", *ev.Request.ApprovedBy)

	b, _ := f.store.Balance("emp", 2025)
	assert.Zero(t, b.PendingDays)
	assert.Equal(t, 3, b.UsedDays)

	actions := []string{}
	for _, e := range f.store.AuditEntries() {
		actions = append(actions, e.Action)
	}
	assert.Equal(t, []string{domain.AuditCreateRequest, domain.AuditSupervisorApprove, domain.AuditFinalApprove}, actions)
}

func TestWorkflow_RHRejectReleasesReservation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.createVacation(t)
	_, err := f.workflow.SupervisorApprove(ctx, supervisorP(), domain.SupervisorApproveRequest{RequestID: req.ID})
	require.NoError(t, err)

	ev, err := f.workflow.Reject(ctx, hrP(), domain.RejectRequest{RequestID: req.ID, Reason: "peak season", Stage: domain.StageRH})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, ev.Request.Status)
	assert.Equal(t, domain.StageRH, *ev.Request.RejectedStage)
	assert.Equal(t, "peak season", *ev.Request.RejectedReason)

	b, _ := f.store.Balance("emp", 2025)
	assert.Zero(t, b.PendingDays)
	assert.Zero(t, b.UsedDays)
}

func TestWorkflow_Reject_StageRules(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.createVacation(t)

	var ist *domain.InvalidStateTransitionError
	_, err := f.workflow.Reject(ctx, hrP(), domain.RejectRequest{RequestID: req.ID, Reason: "x", Stage: domain.StageRH})
	require.ErrorAs(t, err, &ist)

	_, err = f.workflow.Reject(ctx, testutil.Principal("SUPERVISOR", "t1", "del"), domain.RejectRequest{RequestID: req.ID, Reason: "x", Stage: domain.StageSupervisor})
	var na *domain.NotAuthorizedToApproveError
	require.ErrorAs(t, err, &na)

	_, err = f.workflow.SupervisorApprove(ctx, supervisorP(), domain.SupervisorApproveRequest{RequestID: req.ID})
	require.NoError(t, err)

	_, err = f.workflow.Reject(ctx, supervisorP(), domain.RejectRequest{RequestID: req.ID, Reason: "x", Stage: domain.StageRH})
	require.ErrorAs(t, err, &na)

	_, err = f.workflow.Reject(ctx, supervisorP(), domain.RejectRequest{RequestID: req.ID, Reason: "x", Stage: domain.StageSupervisor})
	require.ErrorAs(t, err, &ist)
}

func TestWorkflow_SupervisorReject(t *testing.T) {
	f := newFixture(t)
	req := f.createVacation(t)

	ev, err := f.workflow.Reject(context.Background(), supervisorP(), domain.RejectRequest{RequestID: req.ID, Reason: "short staffed", Stage: domain.StageSupervisor})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRejected, ev.Request.Status)
	assert.Equal(t, "s1", *ev.Request.RejectedBy)

	b, _ := f.store.Balance("emp", 2025)
	assert.Zero(t, b.PendingDays)
}

func TestWorkflow_SupervisorApprove_OnlyFromPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.createVacation(t)
	_, err := f.workflow.SupervisorApprove(ctx, supervisorP(), domain.SupervisorApproveRequest{RequestID: req.ID})
	require.NoError(t, err)

	_, err = f.workflow.SupervisorApprove(ctx, supervisorP(), domain.SupervisorApproveRequest{RequestID: req.ID})
	var ist *domain.InvalidStateTransitionError
	require.ErrorAs(t, err, &ist)
	assert.Contains(t, ist.Error(), "only pending requests can be supervisor-approved")
	assert.Equal(t, domain.StatusSupervisorApproved, ist.From)
}

func TestWorkflow_SupervisorApprove_Authorization(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		principal domain.Principal
		skip      bool
		wantErr   bool
		basis     string
	}{
		{"grand-supervisor", testutil.Principal("SUPERVISOR", "t1", "s2"), false, false, "supervisor chain, level 2"},
		{"department manager", testutil.Principal("jefe", "t1", "dm"), false, false, ReasonDepartmentManager},
		{"delegate", testutil.Principal("empleado", "t1", "del"), false, false, "delegation on behalf of Sam Second (s2)"},
		{"hr skipping hierarchy", hrP(), true, false, basisHRSkip},
		{"hr without skip is not in chain", hrP(), false, true, ""},
		{"non-hr skip flag is ignored", testutil.Principal("SUPERVISOR", "t1", "hr1"), true, true, ""},
		{"employee approving self", testutil.Principal("rh", "t1", "emp"), true, true, ""},
		{"principal without employee link", testutil.Principal("SUPERVISOR", "t1", ""), false, true, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t)
			f.delegate(t, "s2", "del", domain.DelegationVacation, testNow.AddDate(0, 0, -1), nil)
			req := f.createVacation(t)

			ev, err := f.workflow.SupervisorApprove(ctx, tc.principal, domain.SupervisorApproveRequest{RequestID: req.ID, SkipHierarchyCheck: tc.skip})
			if tc.wantErr {
				var na *domain.NotAuthorizedToApproveError
				require.ErrorAs(t, err, &na)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.basis, *ev.Request.SupervisorApprovalBasis)
		})
	}
}

func TestWorkflow_FinalApprove_CompatibilityPath(t *testing.T) {
	f := newFixture(t)
	req := f.createVacation(t)

	ev, err := f.workflow.FinalApprove(context.Background(), hrP(), domain.FinalApproveRequest{RequestID: req.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusApproved, ev.Request.Status)
	assert.Equal(t, "hr1", *ev.Request.SupervisorApprovedBy)
	assert.Equal(t, basisSynthesized, *ev.Request.SupervisorApprovalBasis)
	assert.Equal(t, "hr1", *ev.Request.ApprovedBy)

	entries := f.store.AuditEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, domain.AuditSupervisorApprove, entries[1].Action)
	assert.Equal(t, string(domain.StatusSupervisorApproved), *entries[1].ToStatus)
	assert.Equal(t, domain.AuditFinalApprove, entries[2].Action)

	b, _ := f.store.Balance("emp", 2025)
	assert.Equal(t, 3, b.UsedDays)
	assert.Zero(t, b.PendingDays)
}

func TestWorkflow_FinalApprove_RequiresHR(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.createVacation(t)
	_, err := f.workflow.SupervisorApprove(ctx, supervisorP(), domain.SupervisorApproveRequest{RequestID: req.ID})
	require.NoError(t, err)

	_, err = f.workflow.FinalApprove(ctx, testutil.Principal("SUPERVISOR", "t1", "s2"), domain.FinalApproveRequest{RequestID: req.ID})
	var na *domain.NotAuthorizedToApproveError
	require.ErrorAs(t, err, &na)

	_, err = f.workflow.FinalApprove(ctx, testutil.Principal("COMPANY_ADMIN", "t1", "ceo"), domain.FinalApproveRequest{RequestID: req.ID})
	require.NoError(t, err)
}

func TestWorkflow_TerminalStatesAreFinal(t *testing.T) {
	ctx := context.Background()

	finish := map[domain.RequestStatus]func(f *fixture, id string) error{
		domain.StatusApproved: func(f *fixture, id string) error {
			_, err := f.workflow.FinalApprove(ctx, hrP(), domain.FinalApproveRequest{RequestID: id})
			return err
		},
		domain.StatusRejected: func(f *fixture, id string) error {
			_, err := f.workflow.Reject(ctx, supervisorP(), domain.RejectRequest{RequestID: id, Reason: "no", Stage: domain.StageSupervisor})
			return err
		},
		domain.StatusCancelled: func(f *fixture, id string) error {
			_, err := f.workflow.Cancel(ctx, employeeP(), domain.CancelRequest{RequestID: id})
			return err
		},
	}

	for status, run := range finish {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(t)
			req := f.createVacation(t)
			require.NoError(t, run(f, req.ID))
			before, _ := f.store.Balance("emp", 2025)

			attempts := []error{}
			_, err := f.workflow.SupervisorApprove(ctx, supervisorP(), domain.SupervisorApproveRequest{RequestID: req.ID})
			attempts = append(attempts, err)
			_, err = f.workflow.FinalApprove(ctx, hrP(), domain.FinalApproveRequest{RequestID: req.ID})
			attempts = append(attempts, err)
			_, err = f.workflow.Reject(ctx, hrP(), domain.RejectRequest{RequestID: req.ID, Reason: "x", Stage: domain.StageSupervisor})
			attempts = append(attempts, err)
			_, err = f.workflow.Reject(ctx, hrP(), domain.RejectRequest{RequestID: req.ID, Reason: "x", Stage: domain.StageRH})
			attempts = append(attempts, err)
			_, err = f.workflow.Cancel(ctx, employeeP(), domain.CancelRequest{RequestID: req.ID})
			attempts = append(attempts, err)

			for i, err := range attempts {
				var ist *domain.InvalidStateTransitionError
				assert.ErrorAs(t, err, &ist, "attempt %d", i)
			}
			got, err := f.store.Requests().GetByID(ctx, req.ID)
			require.NoError(t, err)
			assert.Equal(t, status, got.Status)
			after, _ := f.store.Balance("emp", 2025)
			assert.Equal(t, before, after)
		})
	}
}

func TestWorkflow_Cancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.createVacation(t)

	_, err := f.workflow.Cancel(ctx, supervisorP(), domain.CancelRequest{RequestID: req.ID})
	var ad *domain.AccessDeniedError
	require.ErrorAs(t, err, &ad)

	ev, err := f.workflow.Cancel(ctx, employeeP(), domain.CancelRequest{RequestID: req.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, ev.Request.Status)
	assert.Equal(t, "emp", *ev.Request.CancelledBy)

	b, _ := f.store.Balance("emp", 2025)
	assert.Zero(t, b.PendingDays)
}

func TestWorkflow_MarkAppliedBlocksCancel(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.createVacation(t)
	_, err := f.workflow.FinalApprove(ctx, hrP(), domain.FinalApproveRequest{RequestID: req.ID})
	require.NoError(t, err)

	payroll := testutil.Principal("nomina", "t1", "")
	ev, err := f.workflow.MarkApplied(ctx, payroll, domain.MarkAppliedRequest{RequestID: req.ID, BatchRef: "2025-03-A"})
	require.NoError(t, err)
	assert.True(t, ev.Request.IsApplied())
	assert.Equal(t, domain.StatusApproved, ev.Request.Status)

	_, err = f.workflow.MarkApplied(ctx, payroll, domain.MarkAppliedRequest{RequestID: req.ID, BatchRef: "2025-03-B"})
	var ce *domain.ConflictError
	require.ErrorAs(t, err, &ce)

	_, err = f.workflow.Cancel(ctx, hrP(), domain.CancelRequest{RequestID: req.ID})
	var ist *domain.InvalidStateTransitionError
	require.ErrorAs(t, err, &ist)
	assert.Contains(t, ist.Error(), "applied")
}

func TestWorkflow_MarkApplied_RequiresApproved(t *testing.T) {
	f := newFixture(t)
	req := f.createVacation(t)

	_, err := f.workflow.MarkApplied(context.Background(), testutil.Principal("PAYROLL_ADMIN", "t1", ""), domain.MarkAppliedRequest{RequestID: req.ID, BatchRef: "b"})
	var ist *domain.InvalidStateTransitionError
	require.ErrorAs(t, err, &ist)

	_, err = f.workflow.MarkApplied(context.Background(), supervisorP(), domain.MarkAppliedRequest{RequestID: req.ID, BatchRef: "b"})
	var ad *domain.AccessDeniedError
	require.ErrorAs(t, err, &ad)
}

func TestWorkflow_TransitionAndLedgerAreAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.createVacation(t)
	_, err := f.workflow.SupervisorApprove(ctx, supervisorP(), domain.SupervisorApproveRequest{RequestID: req.ID})
	require.NoError(t, err)

	f.store.AuditInsertErr = errors.New("disk full")
	_, err = f.workflow.FinalApprove(ctx, hrP(), domain.FinalApproveRequest{RequestID: req.ID})
	require.Error(t, err)

	got, err := f.store.Requests().GetByID(ctx, req.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSupervisorApproved, got.Status)
	b, _ := f.store.Balance("emp", 2025)
	assert.Equal(t, 3, b.PendingDays)
	assert.Zero(t, b.UsedDays)

	f.store.AuditInsertErr = nil
	_, err = f.workflow.FinalApprove(ctx, hrP(), domain.FinalApproveRequest{RequestID: req.ID})
	require.NoError(t, err)
	b, _ = f.store.Balance("emp", 2025)
	assert.Equal(t, 3, b.UsedDays)
}

func TestWorkflow_TenantIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.createVacation(t)
	outsider := testutil.Principal("rh", "t2", "x1")

	var ct *domain.CrossTenantAccessError
	_, err := f.workflow.Get(ctx, outsider, req.ID)
	require.ErrorAs(t, err, &ct)
	_, err = f.workflow.FinalApprove(ctx, outsider, domain.FinalApproveRequest{RequestID: req.ID})
	require.ErrorAs(t, err, &ct)
	_, err = f.workflow.Cancel(ctx, outsider, domain.CancelRequest{RequestID: req.ID})
	require.ErrorAs(t, err, &ct)

	got, err := f.workflow.Get(ctx, testutil.Principal("SUPER_ADMIN", "", ""), req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.ID, got.ID)
}

func TestWorkflow_RequestNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.workflow.SupervisorApprove(context.Background(), supervisorP(), domain.SupervisorApproveRequest{RequestID: "missing"})
	var nf *domain.RequestNotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "missing", nf.RequestID)
}

func TestWorkflow_GetAndList(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := f.createVacation(t)

	_, err := f.workflow.Get(ctx, employeeP(), req.ID)
	require.NoError(t, err)
	_, err = f.workflow.Get(ctx, supervisorP(), req.ID)
	require.NoError(t, err)
	_, err = f.workflow.Get(ctx, testutil.Principal("empleado", "t1", "del"), req.ID)
	var ad *domain.AccessDeniedError
	require.ErrorAs(t, err, &ad)

	list, total, err := f.workflow.ListForEmployee(ctx, employeeP(), "emp", domain.PageRequest{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, req.ID, list[0].ID)
}
