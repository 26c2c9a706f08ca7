package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hr-approvals/internal/domain"
	"hr-approvals/internal/service/access"
)

// DelegationService manages approval delegations. Whether a delegation confers
// authority is decided by the ChainResolver at approval time, so a delegation
// from someone who is not (yet) an approver may be created; it simply grants
// nothing until its delegator is a natural approver.
type DelegationService struct {
	delegations domain.DelegationRepository
	employees   domain.EmployeeRepository
	audit       domain.AuditRepository
	roles       *access.RoleCatalog
	tenants     *access.TenantScope
	clock       domain.Clock
	logger      *slog.Logger
}

// NewDelegationService creates a DelegationService.
func NewDelegationService(
	delegations domain.DelegationRepository,
	employees domain.EmployeeRepository,
	audit domain.AuditRepository,
	roles *access.RoleCatalog,
	tenants *access.TenantScope,
	clock domain.Clock,
	logger *slog.Logger,
) *DelegationService {
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &DelegationService{
		delegations: delegations,
		employees:   employees,
		audit:       audit,
		roles:       roles,
		tenants:     tenants,
		clock:       clock,
		logger:      logger.With("component", "delegations"),
	}
}

// Create grants the delegator's approval authority to the delegatee. The
// delegator or the HR tier may create it; both parties must share a tenant.
func (s *DelegationService) Create(ctx context.Context, p domain.Principal, req domain.CreateDelegationRequest) (*domain.ApprovalDelegation, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	delegator, err := s.employee(ctx, req.DelegatorID)
	if err != nil {
		return nil, err
	}
	if err := s.tenants.Check(p, delegator.TenantID); err != nil {
		return nil, err
	}
	if !p.IsEmployee(delegator.ID) && !s.roles.IsHR(p.RawRole) {
		return nil, domain.ErrAccessDenied("delegations may only be created by the delegator or by HR")
	}
	delegatee, err := s.employee(ctx, req.DelegateeID)
	if err != nil {
		return nil, err
	}
	if delegatee.TenantID != delegator.TenantID {
		return nil, &domain.CrossTenantAccessError{PrincipalTenantID: delegator.TenantID, ResourceTenantID: delegatee.TenantID}
	}

	now := s.clock.Now()
	d, err := s.delegations.Create(ctx, &domain.ApprovalDelegation{
		ID:             domain.NewID(),
		TenantID:       delegator.TenantID,
		DelegatorID:    delegator.ID,
		DelegateeID:    delegatee.ID,
		DelegationType: req.DelegationType,
		StartDate:      req.StartDate,
		EndDate:        req.EndDate,
		IsActive:       true,
		Reason:         req.Reason,
		CreatedBy:      p.ActorID(),
		CreatedAt:      now,
	})
	if err != nil {
		return nil, fmt.Errorf("create delegation: %w", err)
	}
	s.record(ctx, d, domain.AuditCreateDelegation, p, fmt.Sprintf("%s to %s (%s)", d.DelegatorID, d.DelegateeID, d.DelegationType))
	s.logger.Info("delegation created",
		"delegation_id", d.ID,
		"delegator_id", d.DelegatorID,
		"delegatee_id", d.DelegateeID,
		"type", d.DelegationType,
		"actor", p.ActorID(),
	)
	return d, nil
}

// Revoke deactivates a delegation. Revoking an inactive delegation is a no-op.
func (s *DelegationService) Revoke(ctx context.Context, p domain.Principal, id string) error {
	d, err := s.delegations.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.tenants.Check(p, d.TenantID); err != nil {
		return err
	}
	if !p.IsEmployee(d.DelegatorID) && !s.roles.IsHR(p.RawRole) {
		return domain.ErrAccessDenied("delegations may only be revoked by the delegator or by HR")
	}
	if !d.IsActive {
		return nil
	}
	if err := s.delegations.Deactivate(ctx, id); err != nil {
		return fmt.Errorf("deactivate delegation: %w", err)
	}
	s.record(ctx, d, domain.AuditRevokeDelegation, p, "revoked")
	s.logger.Info("delegation revoked", "delegation_id", id, "actor", p.ActorID())
	return nil
}

// ListByDelegator returns every delegation, active or not, granted by the employee.
func (s *DelegationService) ListByDelegator(ctx context.Context, p domain.Principal, delegatorID string) ([]domain.ApprovalDelegation, error) {
	delegator, err := s.employee(ctx, delegatorID)
	if err != nil {
		return nil, err
	}
	if err := s.tenants.Check(p, delegator.TenantID); err != nil {
		return nil, err
	}
	if !p.IsEmployee(delegator.ID) && !s.roles.Satisfies(access.ReviewerTier, p.RawRole) {
		return nil, domain.ErrAccessDenied("not allowed to view delegations of this employee")
	}
	return s.delegations.ListByDelegator(ctx, delegator.ID)
}

func (s *DelegationService) record(ctx context.Context, d *domain.ApprovalDelegation, action string, p domain.Principal, detail string) {
	err := s.audit.Insert(ctx, &domain.AuditEntry{
		ID:         domain.NewID(),
		TenantID:   d.TenantID,
		ActorID:    p.ActorID(),
		Action:     action,
		EntityType: "delegation",
		EntityID:   d.ID,
		Detail:     detail,
		CreatedAt:  s.clock.Now(),
	})
	if err != nil {
		s.logger.Error("audit insert failed", "delegation_id", d.ID, "action", action, "error", err)
	}
}

func (s *DelegationService) employee(ctx context.Context, id string) (*domain.Employee, error) {
	emp, err := s.employees.GetByID(ctx, id)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return nil, &domain.EmployeeNotFoundError{EmployeeID: id}
		}
		return nil, err
	}
	return emp, nil
}
