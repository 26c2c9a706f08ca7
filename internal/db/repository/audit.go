package repository

import (
	"context"
	"database/sql"

	"hr-approvals/internal/db/dbstore"
	"hr-approvals/internal/db/mapper"
	"hr-approvals/internal/domain"
)

var _ domain.AuditRepository = (*AuditRepo)(nil)

// AuditRepo implements domain.AuditRepository. The log is append-only.
type AuditRepo struct {
	q *dbstore.Queries
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(db *sql.DB, dialect dbstore.Dialect) *AuditRepo {
	return &AuditRepo{q: dbstore.New(db, dialect)}
}

func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	out := *e
	out.ID = ensureID(out.ID)
	out.CreatedAt = ensureTime(out.CreatedAt)
	return mapDBError(r.q.InsertAuditLog(ctx, mapper.AuditEntryToDB(&out)))
}

// List returns matching entries oldest first with the total match count.
func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, int64, error) {
	f := mapper.AuditFilterToDB(filter)

	total, err := r.q.CountAuditLogs(ctx, f)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.q.ListAuditLogs(ctx, dbstore.ListAuditLogsParams{
		Filter: f,
		Limit:  int64(filter.Page.Limit()),
		Offset: int64(filter.Page.Offset()),
	})
	if err != nil {
		return nil, 0, err
	}

	entries := make([]domain.AuditEntry, len(rows))
	for i, row := range rows {
		entries[i] = *mapper.AuditEntryFromDB(row)
	}
	return entries, total, nil
}
