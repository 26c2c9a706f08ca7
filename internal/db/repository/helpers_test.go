package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	internaldb "hr-approvals/internal/db"
	"hr-approvals/internal/db/dbstore"
	"hr-approvals/internal/domain"
)

var testNow = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

type repos struct {
	writeDB     *sql.DB
	employees   *EmployeeRepo
	departments *DepartmentRepo
	schedules   *ScheduleRepo
	delegations *DelegationRepo
	balances    *BalanceRepo
	requests    *LeaveRequestRepo
	audit       *AuditRepo
	store       *Store
}

func setupRepos(t *testing.T) *repos {
	t.Helper()
	writeDB, readDB := internaldb.OpenTestSQLite(t)
	d := dbstore.DialectSQLite
	return &repos{
		writeDB:     writeDB,
		employees:   NewEmployeeRepo(readDB, d),
		departments: NewDepartmentRepo(readDB, d),
		schedules:   NewScheduleRepo(writeDB, d),
		delegations: NewDelegationRepo(writeDB, d),
		balances:    NewBalanceRepo(writeDB, d),
		requests:    NewLeaveRequestRepo(writeDB, d),
		audit:       NewAuditRepo(writeDB, d),
		store:       NewStore(writeDB, d, slog.New(slog.DiscardHandler)),
	}
}

// seedEmployee inserts through the write pool; the employee repo is bound to
// the read pool.
func seedEmployee(t *testing.T, r *repos, e domain.Employee) {
	t.Helper()
	if e.HireDate.IsZero() {
		e.HireDate = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if e.Name == "" {
		e.Name = e.ID
	}
	_, err := NewEmployeeRepo(r.writeDB, dbstore.DialectSQLite).Create(context.Background(), &e)
	require.NoError(t, err)
}

func ptr[T any](v T) *T { return &v }
