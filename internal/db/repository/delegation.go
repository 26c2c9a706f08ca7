package repository

import (
	"context"
	"database/sql"
	"time"

	"hr-approvals/internal/db/dbstore"
	"hr-approvals/internal/db/mapper"
	"hr-approvals/internal/domain"
)

var _ domain.DelegationRepository = (*DelegationRepo)(nil)

// DelegationRepo implements domain.DelegationRepository.
type DelegationRepo struct {
	q *dbstore.Queries
}

// NewDelegationRepo creates a new DelegationRepo.
func NewDelegationRepo(db *sql.DB, dialect dbstore.Dialect) *DelegationRepo {
	return &DelegationRepo{q: dbstore.New(db, dialect)}
}

func (r *DelegationRepo) Create(ctx context.Context, d *domain.ApprovalDelegation) (*domain.ApprovalDelegation, error) {
	out := *d
	out.ID = ensureID(out.ID)
	out.CreatedAt = ensureTime(out.CreatedAt)
	if err := r.q.CreateDelegation(ctx, mapper.DelegationToDB(&out)); err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, out.ID)
}

func (r *DelegationRepo) GetByID(ctx context.Context, id string) (*domain.ApprovalDelegation, error) {
	row, err := r.q.GetDelegation(ctx, id)
	if err != nil {
		return nil, mapDBError(err)
	}
	return mapper.DelegationFromDB(row), nil
}

func (r *DelegationRepo) Deactivate(ctx context.Context, id string) error {
	n, err := r.q.DeactivateDelegation(ctx, id)
	if err != nil {
		return mapDBError(err)
	}
	if n == 0 {
		return domain.ErrNotFound("delegation %q not found", id)
	}
	return nil
}

func (r *DelegationRepo) ListByDelegator(ctx context.Context, delegatorID string) ([]domain.ApprovalDelegation, error) {
	rows, err := r.q.ListDelegationsByDelegator(ctx, delegatorID)
	if err != nil {
		return nil, err
	}
	return mapper.DelegationsFromDB(rows), nil
}

func (r *DelegationRepo) ListActiveForDelegatee(ctx context.Context, delegateeID string, at time.Time) ([]domain.ApprovalDelegation, error) {
	rows, err := r.q.ListActiveDelegationsForDelegatee(ctx, delegateeID, mapper.FormatTime(at))
	if err != nil {
		return nil, err
	}
	return mapper.DelegationsFromDB(rows), nil
}

func (r *DelegationRepo) ListActiveFromDelegators(ctx context.Context, delegatorIDs []string, at time.Time) ([]domain.ApprovalDelegation, error) {
	rows, err := r.q.ListActiveDelegationsFromDelegators(ctx, delegatorIDs, mapper.FormatTime(at))
	if err != nil {
		return nil, err
	}
	return mapper.DelegationsFromDB(rows), nil
}
