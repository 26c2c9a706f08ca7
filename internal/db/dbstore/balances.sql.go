package dbstore

import "context"

const balanceColumns = `employee_id, year, earned_days, used_days, pending_days, expired_days, updated_at`

const getBalance = `SELECT ` + balanceColumns + ` FROM vacation_balances WHERE employee_id = ? AND year = ?`

// GetBalanceForUpdate reads one balance row, locking it when q is bound to a
// transaction.
func (q *Queries) GetBalanceForUpdate(ctx context.Context, employeeID string, year int64) (VacationBalance, error) {
	var b VacationBalance
	err := q.get(ctx, &b, getBalance+q.lockClause(), employeeID, year)
	return b, err
}

const insertBalance = `INSERT INTO vacation_balances (` + balanceColumns + `)
VALUES (:employee_id, :year, :earned_days, :used_days, :pending_days, :expired_days, :updated_at)
ON CONFLICT (employee_id, year) DO NOTHING`

func (q *Queries) InsertBalance(ctx context.Context, b VacationBalance) error {
	_, err := q.db.NamedExecContext(ctx, insertBalance, b)
	return err
}

const updateBalance = `UPDATE vacation_balances
SET earned_days = :earned_days, used_days = :used_days, pending_days = :pending_days,
    expired_days = :expired_days, updated_at = :updated_at
WHERE employee_id = :employee_id AND year = :year`

// UpdateBalance returns the number of rows matched.
func (q *Queries) UpdateBalance(ctx context.Context, b VacationBalance) (int64, error) {
	return rowsAffected(q.db.NamedExecContext(ctx, updateBalance, b))
}

const listExpirableBalances = `SELECT b.employee_id, b.year, b.earned_days, b.used_days, b.pending_days, b.expired_days, b.updated_at
FROM vacation_balances b JOIN employees e ON e.id = b.employee_id
WHERE e.tenant_id = ? AND b.year < ?
  AND b.earned_days - b.used_days - b.pending_days - b.expired_days > 0
ORDER BY b.employee_id, b.year`

func (q *Queries) ListExpirableBalances(ctx context.Context, tenantID string, beforeYear int64) ([]VacationBalance, error) {
	var items []VacationBalance
	err := q.selectAll(ctx, &items, listExpirableBalances, tenantID, beforeYear)
	return items, err
}
