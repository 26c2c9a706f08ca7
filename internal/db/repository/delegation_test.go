package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hr-approvals/internal/domain"
)

func setupDelegations(t *testing.T) *repos {
	t.Helper()
	r := setupRepos(t)
	for _, id := range []string{"s1", "s2", "del", "other"} {
		seedEmployee(t, r, domain.Employee{ID: id, TenantID: "t1"})
	}
	return r
}

func createDelegation(t *testing.T, r *repos, from, to string, typ domain.DelegationType, start time.Time, end *time.Time) *domain.ApprovalDelegation {
	t.Helper()
	d, err := r.delegations.Create(context.Background(), &domain.ApprovalDelegation{
		TenantID: "t1", DelegatorID: from, DelegateeID: to, DelegationType: typ,
		StartDate: start, EndDate: end, IsActive: true, CreatedBy: from, CreatedAt: start,
	})
	require.NoError(t, err)
	return d
}

func TestDelegationRepo_CreateAndGet(t *testing.T) {
	r := setupDelegations(t)
	end := testNow.AddDate(0, 0, 7)
	d := createDelegation(t, r, "s1", "del", domain.DelegationVacation, testNow, &end)

	assert.NotEmpty(t, d.ID)
	assert.True(t, d.IsActive)
	assert.Equal(t, domain.DelegationVacation, d.DelegationType)
	require.NotNil(t, d.EndDate)
	assert.True(t, d.EndDate.Equal(end))
	assert.True(t, d.StartDate.Equal(testNow))
}

func TestDelegationRepo_ActiveWindowIsHalfOpen(t *testing.T) {
	r := setupDelegations(t)
	ctx := context.Background()
	start := testNow.AddDate(0, 0, -3)
	createDelegation(t, r, "s1", "del", domain.DelegationAll, start, ptr(testNow))

	tests := []struct {
		name string
		at   time.Time
		want int
	}{
		{"before start", start.Add(-time.Nanosecond), 0},
		{"at start", start, 1},
		{"just before end", testNow.Add(-time.Nanosecond), 1},
		{"at end", testNow, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := r.delegations.ListActiveForDelegatee(ctx, "del", tc.at)
			require.NoError(t, err)
			assert.Len(t, got, tc.want)
			for _, d := range got {
				assert.True(t, d.ActiveAt(tc.at))
			}
		})
	}
}

func TestDelegationRepo_ListActiveFromDelegators(t *testing.T) {
	r := setupDelegations(t)
	ctx := context.Background()
	yesterday := testNow.AddDate(0, 0, -1)
	createDelegation(t, r, "s1", "del", domain.DelegationAll, yesterday, nil)
	createDelegation(t, r, "s2", "del", domain.DelegationIncident, yesterday.Add(time.Hour), nil)
	createDelegation(t, r, "other", "del", domain.DelegationAll, yesterday, nil)
	future := createDelegation(t, r, "s1", "other", domain.DelegationAll, testNow.AddDate(0, 0, 1), nil)

	got, err := r.delegations.ListActiveFromDelegators(ctx, []string{"s1", "s2"}, testNow)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "s1", got[0].DelegatorID)
	assert.Equal(t, "s2", got[1].DelegatorID)
	for _, d := range got {
		assert.NotEqual(t, future.ID, d.ID)
	}

	none, err := r.delegations.ListActiveFromDelegators(ctx, nil, testNow)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestDelegationRepo_Deactivate(t *testing.T) {
	r := setupDelegations(t)
	ctx := context.Background()
	d := createDelegation(t, r, "s1", "del", domain.DelegationAll, testNow.AddDate(0, 0, -1), nil)

	require.NoError(t, r.delegations.Deactivate(ctx, d.ID))

	got, err := r.delegations.GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	active, err := r.delegations.ListActiveForDelegatee(ctx, "del", testNow)
	require.NoError(t, err)
	assert.Empty(t, active)

	all, err := r.delegations.ListByDelegator(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, all, 1)

	var nf *domain.NotFoundError
	require.ErrorAs(t, r.delegations.Deactivate(ctx, "missing"), &nf)
}

func TestDelegationRepo_SchemaRejectsBadRows(t *testing.T) {
	r := setupDelegations(t)
	ctx := context.Background()

	_, err := r.delegations.Create(ctx, &domain.ApprovalDelegation{
		TenantID: "t1", DelegatorID: "s1", DelegateeID: "ghost", DelegationType: domain.DelegationAll,
		StartDate: testNow, IsActive: true, CreatedBy: "s1",
	})
	var ve *domain.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = r.delegations.Create(ctx, &domain.ApprovalDelegation{
		TenantID: "t1", DelegatorID: "s1", DelegateeID: "del", DelegationType: "PAYROLL",
		StartDate: testNow, IsActive: true, CreatedBy: "s1",
	})
	require.Error(t, err)
}
