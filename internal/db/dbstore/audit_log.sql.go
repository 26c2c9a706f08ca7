package dbstore

import (
	"context"
	"database/sql"
	"strings"
)

const auditColumns = `id, tenant_id, actor_id, action, entity_type, entity_id, from_status, to_status, detail, created_at`

const insertAuditLog = `INSERT INTO audit_log (` + auditColumns + `)
VALUES (:id, :tenant_id, :actor_id, :action, :entity_type, :entity_id, :from_status, :to_status, :detail, :created_at)`

func (q *Queries) InsertAuditLog(ctx context.Context, a AuditLog) error {
	_, err := q.db.NamedExecContext(ctx, insertAuditLog, a)
	return err
}

// AuditLogFilter narrows audit queries. Invalid (null) fields are not applied.
type AuditLogFilter struct {
	TenantID sql.NullString
	EntityID sql.NullString
	ActorID  sql.NullString
	Action   sql.NullString
	Since    sql.NullString
}

func (f AuditLogFilter) where() (string, []interface{}) {
	var (
		conds []string
		args  []interface{}
	)
	add := func(cond string, v sql.NullString) {
		if v.Valid {
			conds = append(conds, cond)
			args = append(args, v.String)
		}
	}
	add("tenant_id = ?", f.TenantID)
	add("entity_id = ?", f.EntityID)
	add("actor_id = ?", f.ActorID)
	add("action = ?", f.Action)
	add("created_at >= ?", f.Since)
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type ListAuditLogsParams struct {
	Filter AuditLogFilter
	Limit  int64
	Offset int64
}

func (q *Queries) ListAuditLogs(ctx context.Context, arg ListAuditLogsParams) ([]AuditLog, error) {
	where, args := arg.Filter.where()
	stmt := `SELECT ` + auditColumns + ` FROM audit_log` + where + ` ORDER BY created_at, id LIMIT ? OFFSET ?`
	var items []AuditLog
	err := q.selectAll(ctx, &items, stmt, append(args, arg.Limit, arg.Offset)...)
	return items, err
}

func (q *Queries) CountAuditLogs(ctx context.Context, filter AuditLogFilter) (int64, error) {
	where, args := filter.where()
	var n int64
	err := q.get(ctx, &n, `SELECT COUNT(*) FROM audit_log`+where, args...)
	return n, err
}
