package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"hr-approvals/internal/domain"
	"hr-approvals/internal/service/access"
)

// Workflow action names, used in transition events and error details.
const (
	ActionCreate            = "create"
	ActionSupervisorApprove = "supervisor_approve"
	ActionFinalApprove      = "final_approve"
	ActionReject            = "reject"
	ActionCancel            = "cancel"
	ActionMarkApplied       = "mark_applied"
)

const (
	basisHRSkip      = "hierarchy check skipped by HR tier"
	basisSynthesized = "synthesized by HR final approval"
)

// WorkflowDeps holds the collaborators of a Workflow.
type WorkflowDeps struct {
	Roles     *access.RoleCatalog
	Tenants   *access.TenantScope
	Resolver  *ChainResolver
	Ledger    *Ledger
	Employees domain.EmployeeRepository
	Schedules domain.ScheduleRepository
	Requests  domain.LeaveRequestRepository
	UoW       domain.UnitOfWork
	Clock     domain.Clock
	Logger    *slog.Logger
}

// Workflow drives leave requests through
// PENDING -> SUPERVISOR_APPROVED -> APPROVED, with REJECTED and CANCELLED as
// failure exits. Every transition, its ledger movement, and its audit entry
// commit in one unit of work.
//
// Transition methods return the event describing what happened. Delivering it
// to a domain.Notifier is the caller's job.
type Workflow struct {
	roles     *access.RoleCatalog
	tenants   *access.TenantScope
	resolver  *ChainResolver
	ledger    *Ledger
	employees domain.EmployeeRepository
	schedules domain.ScheduleRepository
	requests  domain.LeaveRequestRepository
	uow       domain.UnitOfWork
	clock     domain.Clock
	logger    *slog.Logger
}

// NewWorkflow creates a Workflow.
func NewWorkflow(d WorkflowDeps) *Workflow {
	if d.Clock == nil {
		d.Clock = domain.SystemClock{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Workflow{
		roles:     d.Roles,
		tenants:   d.Tenants,
		resolver:  d.Resolver,
		ledger:    d.Ledger,
		employees: d.Employees,
		schedules: d.Schedules,
		requests:  d.Requests,
		uow:       d.UoW,
		clock:     d.Clock,
		logger:    d.Logger.With("component", "workflow"),
	}
}

// Create files a new PENDING request. The day count comes from the employee's
// work schedule (Monday to Friday when none is assigned). VACATION requests
// reserve their days in the same unit of work that stores the request, so a
// failed reservation leaves nothing behind.
func (w *Workflow) Create(ctx context.Context, p domain.Principal, req domain.CreateLeaveRequest) (*domain.TransitionEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	emp, err := w.employee(ctx, req.EmployeeID)
	if err != nil {
		return nil, err
	}
	if err := w.tenants.Check(p, emp.TenantID); err != nil {
		return nil, err
	}
	if !p.IsEmployee(emp.ID) && !w.roles.IsHR(p.RawRole) {
		return nil, domain.ErrAccessDenied("requests may only be filed by the employee or by HR")
	}

	schedule, err := w.schedule(ctx, emp.ID)
	if err != nil {
		return nil, err
	}
	total := schedule.CountWorkDays(req.StartDate, req.EndDate)
	if total == 0 {
		return nil, domain.ErrValidation("the requested period contains no work days")
	}

	now := w.clock.Now()
	lr := &domain.LeaveRequest{
		ID:         domain.NewID(),
		TenantID:   emp.TenantID,
		EmployeeID: emp.ID,
		Type:       req.Type,
		StartDate:  domain.DateOf(req.StartDate),
		EndDate:    domain.DateOf(req.EndDate),
		TotalDays:  total,
		Status:     domain.StatusPending,
		Notes:      req.Notes,
		CreatedBy:  p.ActorID(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	var created *domain.LeaveRequest
	err = w.uow.Do(ctx, func(ctx context.Context, repos domain.TxRepos) error {
		overlapping, err := repos.Requests.ListOverlapping(ctx, emp.ID, lr.StartDate, lr.EndDate)
		if err != nil {
			return fmt.Errorf("check overlapping requests: %w", err)
		}
		if len(overlapping) > 0 {
			return domain.ErrConflict("request overlaps existing request %s (%s)", overlapping[0].ID, overlapping[0].Status)
		}
		if lr.Type.ConsumesBalance() {
			if _, err := w.ledger.Tx(repos).Reserve(ctx, emp, lr.BalanceYear(), total); err != nil {
				return err
			}
		}
		created, err = repos.Requests.Create(ctx, lr)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		return w.audit(ctx, repos, created, domain.AuditCreateRequest, p.ActorID(), "", fmt.Sprintf("%s, %d day(s)", created.Type, created.TotalDays))
	})
	if err != nil {
		w.logFailure(ActionCreate, lr, p, err)
		return nil, err
	}

	w.logger.Info("leave request created",
		"request_id", created.ID,
		"employee_id", created.EmployeeID,
		"type", created.Type,
		"days", created.TotalDays,
		"actor", p.ActorID(),
	)
	return w.event(ActionCreate, "", created, p), nil
}

// SupervisorApprove moves a PENDING request to SUPERVISOR_APPROVED. The actor
// must pass the chain resolver for the request's category unless the request
// asks to skip the hierarchy check and the actor holds the HR tier.
func (w *Workflow) SupervisorApprove(ctx context.Context, p domain.Principal, req domain.SupervisorApproveRequest) (*domain.TransitionEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	lr, err := w.load(ctx, p, req.RequestID)
	if err != nil {
		return nil, err
	}
	if lr.Status != domain.StatusPending {
		return nil, w.notPending(lr.Status)
	}
	if err := w.denySelf(p, lr); err != nil {
		return nil, err
	}

	basis := basisHRSkip
	if !req.SkipHierarchyCheck || !w.roles.IsHR(p.RawRole) {
		dec, err := w.checkChain(ctx, p, lr)
		if err != nil {
			return nil, err
		}
		basis = dec.Describe()
	}

	return w.apply(ctx, p, lr.ID, ActionSupervisorApprove, func(ctx context.Context, repos domain.TxRepos, lr *domain.LeaveRequest, now time.Time) (string, error) {
		if lr.Status != domain.StatusPending {
			return "", w.notPending(lr.Status)
		}
		markSupervisorApproved(lr, p.ActorID(), basis, now)
		return basis, nil
	})
}

// FinalApprove moves a SUPERVISOR_APPROVED request to APPROVED and commits its
// reserved days. Only the HR tier may give final approval. An HR actor may
// also approve a PENDING request directly; the supervisor step is then
// recorded as performed by the same actor before the final step.
func (w *Workflow) FinalApprove(ctx context.Context, p domain.Principal, req domain.FinalApproveRequest) (*domain.TransitionEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	lr, err := w.load(ctx, p, req.RequestID)
	if err != nil {
		return nil, err
	}
	if err := w.finalApprovable(lr.Status); err != nil {
		return nil, err
	}
	if !w.roles.IsHR(p.RawRole) {
		w.logger.Warn("final approval denied", "request_id", lr.ID, "actor", p.ActorID(), "role", p.RawRole)
		return nil, &domain.NotAuthorizedToApproveError{
			ActorID:    p.ActorID(),
			EmployeeID: lr.EmployeeID,
			Message:    "only HR may give final approval",
		}
	}
	if err := w.denySelf(p, lr); err != nil {
		return nil, err
	}

	return w.apply(ctx, p, lr.ID, ActionFinalApprove, func(ctx context.Context, repos domain.TxRepos, lr *domain.LeaveRequest, now time.Time) (string, error) {
		if err := w.finalApprovable(lr.Status); err != nil {
			return "", err
		}
		detail := "final approval"
		if lr.Status == domain.StatusPending {
			markSupervisorApproved(lr, p.ActorID(), basisSynthesized, now)
			if err := w.audit(ctx, repos, lr, domain.AuditSupervisorApprove, p.ActorID(), domain.StatusPending, basisSynthesized); err != nil {
				return "", err
			}
			detail = "final approval with synthesized supervisor step"
		}
		if lr.Type.ConsumesBalance() {
			if _, err := w.ledger.Tx(repos).Commit(ctx, lr.EmployeeID, lr.BalanceYear(), lr.TotalDays); err != nil {
				return "", err
			}
		}
		actor := p.ActorID()
		lr.Status = domain.StatusApproved
		lr.ApprovedBy = &actor
		lr.ApprovedAt = &now
		return detail, nil
	})
}

// Reject moves a request to REJECTED at the given stage and releases any
// reserved days. The SUPERVISOR stage applies to PENDING requests and accepts
// any approver of the employee or the HR tier; the RH stage applies to
// SUPERVISOR_APPROVED requests and accepts only the HR tier.
func (w *Workflow) Reject(ctx context.Context, p domain.Principal, req domain.RejectRequest) (*domain.TransitionEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	lr, err := w.load(ctx, p, req.RequestID)
	if err != nil {
		return nil, err
	}
	if err := rejectable(lr.Status, req.Stage); err != nil {
		return nil, err
	}
	if err := w.denySelf(p, lr); err != nil {
		return nil, err
	}

	switch {
	case w.roles.IsHR(p.RawRole):
	case req.Stage == domain.StageRH:
		return nil, &domain.NotAuthorizedToApproveError{
			ActorID:    p.ActorID(),
			EmployeeID: lr.EmployeeID,
			Message:    "only HR may reject at the RH stage",
		}
	default:
		if _, err := w.checkChain(ctx, p, lr); err != nil {
			return nil, err
		}
	}

	return w.apply(ctx, p, lr.ID, ActionReject, func(ctx context.Context, repos domain.TxRepos, lr *domain.LeaveRequest, now time.Time) (string, error) {
		if err := rejectable(lr.Status, req.Stage); err != nil {
			return "", err
		}
		if lr.Type.ConsumesBalance() {
			if _, err := w.ledger.Tx(repos).Release(ctx, lr.EmployeeID, lr.BalanceYear(), lr.TotalDays); err != nil {
				return "", err
			}
		}
		actor, reason, stage := p.ActorID(), req.Reason, req.Stage
		lr.Status = domain.StatusRejected
		lr.RejectedBy = &actor
		lr.RejectedAt = &now
		lr.RejectedReason = &reason
		lr.RejectedStage = &stage
		return fmt.Sprintf("rejected at %s stage: %s", stage, reason), nil
	})
}

// Cancel withdraws a PENDING request and releases any reserved days. Only the
// employee or the HR tier may cancel, and never once the request has been
// applied to a processed batch.
func (w *Workflow) Cancel(ctx context.Context, p domain.Principal, req domain.CancelRequest) (*domain.TransitionEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	lr, err := w.load(ctx, p, req.RequestID)
	if err != nil {
		return nil, err
	}
	if err := cancellable(lr); err != nil {
		return nil, err
	}
	if !p.IsEmployee(lr.EmployeeID) && !w.roles.IsHR(p.RawRole) {
		return nil, domain.ErrAccessDenied("requests may only be cancelled by the employee or by HR")
	}

	return w.apply(ctx, p, lr.ID, ActionCancel, func(ctx context.Context, repos domain.TxRepos, lr *domain.LeaveRequest, now time.Time) (string, error) {
		if err := cancellable(lr); err != nil {
			return "", err
		}
		if lr.Type.ConsumesBalance() {
			if _, err := w.ledger.Tx(repos).Release(ctx, lr.EmployeeID, lr.BalanceYear(), lr.TotalDays); err != nil {
				return "", err
			}
		}
		actor := p.ActorID()
		lr.Status = domain.StatusCancelled
		lr.CancelledBy = &actor
		lr.CancelledAt = &now
		return "cancelled", nil
	})
}

// MarkApplied records that an APPROVED request was consumed by a processed
// payroll or incident batch. The request can no longer be cancelled after this.
func (w *Workflow) MarkApplied(ctx context.Context, p domain.Principal, req domain.MarkAppliedRequest) (*domain.TransitionEvent, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	lr, err := w.load(ctx, p, req.RequestID)
	if err != nil {
		return nil, err
	}
	if !w.roles.Satisfies(access.PayrollTier, p.RawRole) {
		return nil, domain.ErrAccessDenied("only payroll or HR may mark requests as applied")
	}

	check := func(lr *domain.LeaveRequest) error {
		if lr.Status != domain.StatusApproved {
			return domain.ErrInvalidTransition(lr.Status, ActionMarkApplied, "only approved requests can be applied, request is %s", lr.Status)
		}
		if lr.IsApplied() {
			return domain.ErrConflict("request was already applied in batch %s", *lr.AppliedBatch)
		}
		return nil
	}
	if err := check(lr); err != nil {
		return nil, err
	}

	return w.apply(ctx, p, lr.ID, ActionMarkApplied, func(_ context.Context, _ domain.TxRepos, lr *domain.LeaveRequest, now time.Time) (string, error) {
		if err := check(lr); err != nil {
			return "", err
		}
		batch := req.BatchRef
		lr.AppliedAt = &now
		lr.AppliedBatch = &batch
		return "applied in batch " + batch, nil
	})
}

// Get returns a request visible to the principal: their own, or any request of
// their tenant for reviewer roles.
func (w *Workflow) Get(ctx context.Context, p domain.Principal, id string) (*domain.LeaveRequest, error) {
	lr, err := w.load(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if !p.IsEmployee(lr.EmployeeID) && !w.roles.Satisfies(access.ReviewerTier, p.RawRole) {
		return nil, domain.ErrAccessDenied("not allowed to view this request")
	}
	return lr, nil
}

// ListForEmployee returns the employee's requests, newest first.
func (w *Workflow) ListForEmployee(ctx context.Context, p domain.Principal, employeeID string, page domain.PageRequest) ([]domain.LeaveRequest, int64, error) {
	emp, err := w.employee(ctx, employeeID)
	if err != nil {
		return nil, 0, err
	}
	if err := w.tenants.Check(p, emp.TenantID); err != nil {
		return nil, 0, err
	}
	if !p.IsEmployee(emp.ID) && !w.roles.Satisfies(access.ReviewerTier, p.RawRole) {
		return nil, 0, domain.ErrAccessDenied("not allowed to view requests of this employee")
	}
	return w.requests.ListByEmployee(ctx, emp.ID, page)
}

// mutation changes lr in place inside a unit of work and returns the audit
// detail for the transition.
type mutation func(ctx context.Context, repos domain.TxRepos, lr *domain.LeaveRequest, now time.Time) (string, error)

// apply re-reads the request inside a unit of work, runs mutate, and persists
// the request together with its audit entry.
func (w *Workflow) apply(ctx context.Context, p domain.Principal, id, action string, mutate mutation) (*domain.TransitionEvent, error) {
	var (
		updated *domain.LeaveRequest
		from    domain.RequestStatus
	)
	err := w.uow.Do(ctx, func(ctx context.Context, repos domain.TxRepos) error {
		lr, err := repos.Requests.GetByID(ctx, id)
		if err != nil {
			return requestErr(id, err)
		}
		from = lr.Status
		now := w.clock.Now()
		detail, err := mutate(ctx, repos, lr, now)
		if err != nil {
			return err
		}
		lr.UpdatedAt = now
		if err := repos.Requests.Update(ctx, lr); err != nil {
			return fmt.Errorf("update request: %w", err)
		}
		updated = lr
		return w.audit(ctx, repos, lr, auditAction(action), p.ActorID(), from, detail)
	})
	if err != nil {
		w.logFailure(action, &domain.LeaveRequest{ID: id, Status: from}, p, err)
		return nil, err
	}

	w.logger.Info("leave request transitioned",
		"request_id", updated.ID,
		"employee_id", updated.EmployeeID,
		"action", action,
		"actor", p.ActorID(),
		"from", from,
		"to", updated.Status,
	)
	return w.event(action, from, updated, p), nil
}

func (w *Workflow) audit(ctx context.Context, repos domain.TxRepos, lr *domain.LeaveRequest, action, actorID string, from domain.RequestStatus, detail string) error {
	to := string(lr.Status)
	e := &domain.AuditEntry{
		ID:         domain.NewID(),
		TenantID:   lr.TenantID,
		ActorID:    actorID,
		Action:     action,
		EntityType: "leave_request",
		EntityID:   lr.ID,
		ToStatus:   &to,
		Detail:     detail,
		CreatedAt:  w.clock.Now(),
	}
	if from != "" {
		f := string(from)
		e.FromStatus = &f
	}
	if err := repos.Audit.Insert(ctx, e); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

func (w *Workflow) event(action string, from domain.RequestStatus, lr *domain.LeaveRequest, p domain.Principal) *domain.TransitionEvent {
	return &domain.TransitionEvent{
		Action:     action,
		From:       from,
		Request:    *lr,
		ActorID:    p.ActorID(),
		OccurredAt: lr.UpdatedAt,
	}
}

// load fetches a request outside any unit of work and enforces tenant scope.
func (w *Workflow) load(ctx context.Context, p domain.Principal, id string) (*domain.LeaveRequest, error) {
	lr, err := w.requests.GetByID(ctx, id)
	if err != nil {
		return nil, requestErr(id, err)
	}
	if err := w.tenants.Check(p, lr.TenantID); err != nil {
		w.logger.Warn("cross-tenant request access", "request_id", id, "actor", p.ActorID(), "tenant", p.Tenant())
		return nil, err
	}
	return lr, nil
}

func (w *Workflow) employee(ctx context.Context, id string) (*domain.Employee, error) {
	emp, err := w.employees.GetByID(ctx, id)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return nil, &domain.EmployeeNotFoundError{EmployeeID: id}
		}
		return nil, err
	}
	return emp, nil
}

func (w *Workflow) schedule(ctx context.Context, employeeID string) (domain.WorkSchedule, error) {
	s, err := w.schedules.GetForEmployee(ctx, employeeID)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return domain.DefaultWorkSchedule(), nil
		}
		return domain.WorkSchedule{}, fmt.Errorf("load work schedule: %w", err)
	}
	return *s, nil
}

func (w *Workflow) checkChain(ctx context.Context, p domain.Principal, lr *domain.LeaveRequest) (Decision, error) {
	actor := ""
	if p.EmployeeID != nil {
		actor = *p.EmployeeID
	}
	dec, err := w.resolver.CanApprove(ctx, actor, lr.EmployeeID, lr.Type.DelegationCategory())
	if err != nil {
		return Decision{}, err
	}
	if !dec.Allowed {
		w.logger.Warn("approval denied",
			"request_id", lr.ID,
			"employee_id", lr.EmployeeID,
			"actor", p.ActorID(),
			"reason", dec.Reason,
		)
		return Decision{}, domain.ErrNotAuthorizedToApprove(p.ActorID(), lr.EmployeeID)
	}
	return dec, nil
}

func (w *Workflow) denySelf(p domain.Principal, lr *domain.LeaveRequest) error {
	if p.IsEmployee(lr.EmployeeID) {
		return &domain.NotAuthorizedToApproveError{
			ActorID:    p.ActorID(),
			EmployeeID: lr.EmployeeID,
			Message:    "cannot approve or reject your own request",
		}
	}
	return nil
}

func (w *Workflow) notPending(s domain.RequestStatus) error {
	return domain.ErrInvalidTransition(s, ActionSupervisorApprove, "only pending requests can be supervisor-approved, request is %s", s)
}

func (w *Workflow) finalApprovable(s domain.RequestStatus) error {
	if s == domain.StatusSupervisorApproved || s == domain.StatusPending {
		return nil
	}
	return domain.ErrInvalidTransition(s, ActionFinalApprove, "only supervisor-approved requests can be given final approval, request is %s", s)
}

func (w *Workflow) logFailure(action string, lr *domain.LeaveRequest, p domain.Principal, err error) {
	var (
		transition *domain.InvalidStateTransitionError
		balance    *domain.InsufficientBalanceError
		conflict   *domain.ConflictError
		validation *domain.ValidationError
		notFound   *domain.RequestNotFoundError
	)
	switch {
	case errors.As(err, &transition), errors.As(err, &balance), errors.As(err, &conflict),
		errors.As(err, &validation), errors.As(err, &notFound):
		w.logger.Warn("leave request action refused", "action", action, "request_id", lr.ID, "actor", p.ActorID(), "error", err)
	default:
		w.logger.Error("leave request action failed", "action", action, "request_id", lr.ID, "actor", p.ActorID(), "error", err)
	}
}

func rejectable(s domain.RequestStatus, stage domain.ApprovalStage) error {
	switch {
	case s == domain.StatusPending && stage == domain.StageSupervisor:
		return nil
	case s == domain.StatusSupervisorApproved && stage == domain.StageRH:
		return nil
	case s.IsTerminal():
		return domain.ErrInvalidTransition(s, ActionReject, "request is already %s", s)
	default:
		return domain.ErrInvalidTransition(s, ActionReject, "a %s request cannot be rejected at the %s stage", s, stage)
	}
}

func cancellable(lr *domain.LeaveRequest) error {
	if lr.IsApplied() {
		return domain.ErrInvalidTransition(lr.Status, ActionCancel, "request was applied to a processed batch and can no longer be cancelled")
	}
	if lr.Status != domain.StatusPending {
		return domain.ErrInvalidTransition(lr.Status, ActionCancel, "only pending requests can be cancelled, request is %s", lr.Status)
	}
	return nil
}

func markSupervisorApproved(lr *domain.LeaveRequest, actor, basis string, now time.Time) {
	lr.Status = domain.StatusSupervisorApproved
	lr.SupervisorApprovedBy = &actor
	lr.SupervisorApprovedAt = &now
	lr.SupervisorApprovalBasis = &basis
}

func requestErr(id string, err error) error {
	var nf *domain.NotFoundError
	if errors.As(err, &nf) {
		return &domain.RequestNotFoundError{RequestID: id}
	}
	return err
}

func auditAction(action string) string {
	switch action {
	case ActionSupervisorApprove:
		return domain.AuditSupervisorApprove
	case ActionFinalApprove:
		return domain.AuditFinalApprove
	case ActionReject:
		return domain.AuditReject
	case ActionCancel:
		return domain.AuditCancel
	case ActionMarkApplied:
		return domain.AuditMarkApplied
	}
	return domain.AuditCreateRequest
}
