package repository

import (
	"context"
	"database/sql"

	"hr-approvals/internal/db/dbstore"
	"hr-approvals/internal/db/mapper"
	"hr-approvals/internal/domain"
)

var _ domain.BalanceRepository = (*BalanceRepo)(nil)

// BalanceRepo implements domain.BalanceRepository. Writes should go through
// Store.Do; the standalone repo serves listings.
type BalanceRepo struct {
	q *dbstore.Queries
}

// NewBalanceRepo creates a new BalanceRepo.
func NewBalanceRepo(db *sql.DB, dialect dbstore.Dialect) *BalanceRepo {
	return &BalanceRepo{q: dbstore.New(db, dialect)}
}

func (r *BalanceRepo) GetForUpdate(ctx context.Context, employeeID string, year int) (*domain.VacationBalance, error) {
	row, err := r.q.GetBalanceForUpdate(ctx, employeeID, int64(year))
	if err != nil {
		return nil, mapDBError(err)
	}
	return mapper.BalanceFromDB(row), nil
}

func (r *BalanceRepo) Insert(ctx context.Context, b *domain.VacationBalance) error {
	out := *b
	out.UpdatedAt = ensureTime(out.UpdatedAt)
	return mapDBError(r.q.InsertBalance(ctx, mapper.BalanceToDB(&out)))
}

func (r *BalanceRepo) Update(ctx context.Context, b *domain.VacationBalance) error {
	n, err := r.q.UpdateBalance(ctx, mapper.BalanceToDB(b))
	if err != nil {
		return mapDBError(err)
	}
	if n == 0 {
		return domain.ErrNotFound("balance %s/%d not found", b.EmployeeID, b.Year)
	}
	return nil
}

func (r *BalanceRepo) ListExpirable(ctx context.Context, tenantID string, beforeYear int) ([]domain.VacationBalance, error) {
	rows, err := r.q.ListExpirableBalances(ctx, tenantID, int64(beforeYear))
	if err != nil {
		return nil, err
	}
	out := make([]domain.VacationBalance, len(rows))
	for i, row := range rows {
		out[i] = *mapper.BalanceFromDB(row)
	}
	return out, nil
}
