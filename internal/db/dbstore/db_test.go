package dbstore

import (
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDialectBindStyle(t *testing.T) {
	stmt := `SELECT id FROM leave_requests WHERE employee_id = ? AND status IN (?, ?)`

	assert.Equal(t, sqlx.DOLLAR, sqlx.BindType(string(DialectPostgres)))
	assert.Equal(t, sqlx.QUESTION, sqlx.BindType(string(DialectSQLite)))

	pg := New(nil, DialectPostgres)
	assert.Equal(t, `SELECT id FROM leave_requests WHERE employee_id = $1 AND status IN ($2, $3)`, pg.db.Rebind(stmt))
	assert.Equal(t, stmt, New(nil, DialectSQLite).db.Rebind(stmt))
}

func TestDelegatorListExpansion(t *testing.T) {
	stmt, args, err := sqlx.In(listActiveDelegationsFromDelegators, []string{"s1", "s2"}, "2025-03-10", "2025-03-10")
	require.NoError(t, err)
	assert.Contains(t, stmt, "delegator_id IN (?, ?)")
	assert.Equal(t, []interface{}{"s1", "s2", "2025-03-10", "2025-03-10"}, args)
}

func TestLockClause(t *testing.T) {
	assert.Empty(t, New(nil, DialectPostgres).lockClause())
	assert.Equal(t, " FOR UPDATE", (&Queries{dialect: DialectPostgres, inTx: true}).lockClause())
	assert.Empty(t, (&Queries{dialect: DialectSQLite, inTx: true}).lockClause())
}

func TestAuditLogFilter_Where(t *testing.T) {
	where, args := AuditLogFilter{}.where()
	assert.Empty(t, where)
	assert.Empty(t, args)

	f := AuditLogFilter{}
	f.TenantID.String, f.TenantID.Valid = "t1", true
	f.Action.String, f.Action.Valid = "REJECT", true
	where, args = f.where()
	assert.Equal(t, " WHERE tenant_id = ? AND action = ?", where)
	assert.Equal(t, []interface{}{"t1", "REJECT"}, args)
}
