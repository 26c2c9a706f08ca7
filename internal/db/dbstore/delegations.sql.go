package dbstore

import (
	"context"

	"github.com/jmoiron/sqlx"
)

const delegationColumns = `id, tenant_id, delegator_id, delegatee_id, delegation_type, start_date, end_date, is_active, reason, created_by, created_at`

const createDelegation = `INSERT INTO approval_delegations (` + delegationColumns + `)
VALUES (:id, :tenant_id, :delegator_id, :delegatee_id, :delegation_type, :start_date, :end_date, :is_active, :reason, :created_by, :created_at)`

func (q *Queries) CreateDelegation(ctx context.Context, d ApprovalDelegation) error {
	_, err := q.db.NamedExecContext(ctx, createDelegation, d)
	return err
}

const getDelegation = `SELECT ` + delegationColumns + ` FROM approval_delegations WHERE id = ?`

func (q *Queries) GetDelegation(ctx context.Context, id string) (ApprovalDelegation, error) {
	var d ApprovalDelegation
	err := q.get(ctx, &d, getDelegation, id)
	return d, err
}

const deactivateDelegation = `UPDATE approval_delegations SET is_active = 0 WHERE id = ?`

// DeactivateDelegation returns the number of rows matched.
func (q *Queries) DeactivateDelegation(ctx context.Context, id string) (int64, error) {
	return rowsAffected(q.exec(ctx, deactivateDelegation, id))
}

const listDelegationsByDelegator = `SELECT ` + delegationColumns + ` FROM approval_delegations
WHERE delegator_id = ? ORDER BY created_at, id`

func (q *Queries) ListDelegationsByDelegator(ctx context.Context, delegatorID string) ([]ApprovalDelegation, error) {
	var items []ApprovalDelegation
	err := q.selectAll(ctx, &items, listDelegationsByDelegator, delegatorID)
	return items, err
}

// activeWindow selects active rows whose [start_date, end_date) contains the
// bound instant. The instant is bound twice.
const activeWindow = `is_active = 1 AND start_date <= ? AND (end_date IS NULL OR end_date > ?)`

const listActiveDelegationsForDelegatee = `SELECT ` + delegationColumns + ` FROM approval_delegations
WHERE delegatee_id = ? AND ` + activeWindow + ` ORDER BY created_at, id`

func (q *Queries) ListActiveDelegationsForDelegatee(ctx context.Context, delegateeID, at string) ([]ApprovalDelegation, error) {
	var items []ApprovalDelegation
	err := q.selectAll(ctx, &items, listActiveDelegationsForDelegatee, delegateeID, at, at)
	return items, err
}

const listActiveDelegationsFromDelegators = `SELECT ` + delegationColumns + ` FROM approval_delegations
WHERE delegator_id IN (?) AND ` + activeWindow + ` ORDER BY created_at, id`

func (q *Queries) ListActiveDelegationsFromDelegators(ctx context.Context, delegatorIDs []string, at string) ([]ApprovalDelegation, error) {
	if len(delegatorIDs) == 0 {
		return nil, nil
	}
	stmt, args, err := sqlx.In(listActiveDelegationsFromDelegators, delegatorIDs, at, at)
	if err != nil {
		return nil, err
	}
	var items []ApprovalDelegation
	err = q.selectAll(ctx, &items, stmt, args...)
	return items, err
}
