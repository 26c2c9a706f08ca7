package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-approvals/internal/domain"
)

func day(d int) time.Time {
	return time.Date(2025, 3, d, 0, 0, 0, 0, time.UTC)
}

func createRequest(t *testing.T, r *repos, start, end time.Time, status domain.RequestStatus) *domain.LeaveRequest {
	t.Helper()
	lr, err := r.requests.Create(context.Background(), &domain.LeaveRequest{
		TenantID:   "t1",
		EmployeeID: "e1",
		Type:       domain.RequestVacation,
		StartDate:  start,
		EndDate:    end,
		TotalDays:  int(end.Sub(start).Hours()/24) + 1,
		Status:     status,
		CreatedBy:  "e1",
		CreatedAt:  testNow,
	})
	require.NoError(t, err)
	return lr
}

func TestLeaveRequestRepo_CreateGetUpdate(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	seedEmployee(t, r, domain.Employee{ID: "e1", TenantID: "t1"})

	lr := createRequest(t, r, day(17), day(19), domain.StatusPending)
	assert.NotEmpty(t, lr.ID)
	assert.Equal(t, day(17), lr.StartDate)
	assert.Equal(t, 3, lr.TotalDays)
	assert.True(t, lr.UpdatedAt.Equal(testNow))
	assert.Nil(t, lr.SupervisorApprovedBy)

	at := testNow.Add(time.Hour)
	lr.Status = domain.StatusSupervisorApproved
	lr.SupervisorApprovedBy = ptr("s1")
	lr.SupervisorApprovedAt = &at
	lr.SupervisorApprovalBasis = ptr("direct supervisor")
	lr.UpdatedAt = at
	require.NoError(t, r.requests.Update(ctx, lr))

	got, err := r.requests.GetByID(ctx, lr.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSupervisorApproved, got.Status)
	require.NotNil(t, got.SupervisorApprovedBy)
	assert.Equal(t, "s1", *got.SupervisorApprovedBy)
	require.NotNil(t, got.SupervisorApprovedAt)
	assert.True(t, got.SupervisorApprovedAt.Equal(at))
	assert.Equal(t, "direct supervisor", *got.SupervisorApprovalBasis)
	assert.True(t, got.CreatedAt.Equal(testNow))

	_, err = r.requests.GetByID(ctx, "missing")
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	require.ErrorAs(t, r.requests.Update(ctx, &domain.LeaveRequest{ID: "missing", Status: domain.StatusPending}), &nf)
}

func TestLeaveRequestRepo_ListByEmployee(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	seedEmployee(t, r, domain.Employee{ID: "e1", TenantID: "t1"})
	createRequest(t, r, day(3), day(4), domain.StatusApproved)
	createRequest(t, r, day(17), day(19), domain.StatusPending)
	createRequest(t, r, day(10), day(10), domain.StatusRejected)

	list, total, err := r.requests.ListByEmployee(ctx, "e1", domain.PageRequest{MaxResults: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	require.Len(t, list, 2)
	assert.Equal(t, day(17), list[0].StartDate)
	assert.Equal(t, day(10), list[1].StartDate)
}

func TestLeaveRequestRepo_ListOverlapping(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	seedEmployee(t, r, domain.Employee{ID: "e1", TenantID: "t1"})
	pending := createRequest(t, r, day(17), day(19), domain.StatusPending)
	createRequest(t, r, day(18), day(18), domain.StatusRejected)
	createRequest(t, r, day(19), day(20), domain.StatusCancelled)

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"inside", day(18), day(18), 1},
		{"touches first day", day(14), day(17), 1},
		{"touches last day", day(19), day(21), 1},
		{"covers", day(1), day(31), 1},
		{"before", day(10), day(16), 0},
		{"after", day(20), day(21), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.requests.ListOverlapping(ctx, "e1", tc.start, tc.end)
			require.NoError(t, err)
			require.Len(t, got, tc.want)
			if tc.want > 0 {
				assert.Equal(t, pending.ID, got[0].ID)
			}
		})
	}
}
