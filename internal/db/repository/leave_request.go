package repository

import (
	"context"
	"database/sql"
	"time"

	"hr-approvals/internal/db/dbstore"
	"hr-approvals/internal/db/mapper"
	"hr-approvals/internal/domain"
)

var _ domain.LeaveRequestRepository = (*LeaveRequestRepo)(nil)

// LeaveRequestRepo implements domain.LeaveRequestRepository.
type LeaveRequestRepo struct {
	q *dbstore.Queries
}

// NewLeaveRequestRepo creates a new LeaveRequestRepo.
func NewLeaveRequestRepo(db *sql.DB, dialect dbstore.Dialect) *LeaveRequestRepo {
	return &LeaveRequestRepo{q: dbstore.New(db, dialect)}
}

func (r *LeaveRequestRepo) Create(ctx context.Context, lr *domain.LeaveRequest) (*domain.LeaveRequest, error) {
	out := *lr
	out.ID = ensureID(out.ID)
	out.CreatedAt = ensureTime(out.CreatedAt)
	if out.UpdatedAt.IsZero() {
		out.UpdatedAt = out.CreatedAt
	}
	if err := r.q.CreateLeaveRequest(ctx, mapper.LeaveRequestToDB(&out)); err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, out.ID)
}

// GetByID returns the request. Inside Store.Do the row stays locked until the
// unit of work ends.
func (r *LeaveRequestRepo) GetByID(ctx context.Context, id string) (*domain.LeaveRequest, error) {
	row, err := r.q.GetLeaveRequest(ctx, id)
	if err != nil {
		return nil, mapDBError(err)
	}
	return mapper.LeaveRequestFromDB(row), nil
}

func (r *LeaveRequestRepo) Update(ctx context.Context, lr *domain.LeaveRequest) error {
	n, err := r.q.UpdateLeaveRequest(ctx, mapper.LeaveRequestToDB(lr))
	if err != nil {
		return mapDBError(err)
	}
	if n == 0 {
		return domain.ErrNotFound("leave request %q not found", lr.ID)
	}
	return nil
}

func (r *LeaveRequestRepo) ListByEmployee(ctx context.Context, employeeID string, page domain.PageRequest) ([]domain.LeaveRequest, int64, error) {
	total, err := r.q.CountLeaveRequestsByEmployee(ctx, employeeID)
	if err != nil {
		return nil, 0, err
	}
	rows, err := r.q.ListLeaveRequestsByEmployee(ctx, dbstore.ListLeaveRequestsByEmployeeParams{
		EmployeeID: employeeID,
		Limit:      int64(page.Limit()),
		Offset:     int64(page.Offset()),
	})
	if err != nil {
		return nil, 0, err
	}
	return leaveRequestsFromDB(rows), total, nil
}

func (r *LeaveRequestRepo) ListOverlapping(ctx context.Context, employeeID string, start, end time.Time) ([]domain.LeaveRequest, error) {
	rows, err := r.q.ListOverlappingLeaveRequests(ctx, employeeID, mapper.FormatDate(start), mapper.FormatDate(end))
	if err != nil {
		return nil, err
	}
	return leaveRequestsFromDB(rows), nil
}

func leaveRequestsFromDB(rows []dbstore.LeaveRequest) []domain.LeaveRequest {
	out := make([]domain.LeaveRequest, len(rows))
	for i, row := range rows {
		out[i] = *mapper.LeaveRequestFromDB(row)
	}
	return out
}
