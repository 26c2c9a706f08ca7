// Package api exposes the approval engine over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"hr-approvals/internal/domain"
	"hr-approvals/internal/middleware"
	"hr-approvals/internal/service/access"
	"hr-approvals/internal/service/approval"
)

// Deps holds the services the HTTP handlers call.
type Deps struct {
	Workflow    *approval.Workflow
	Resolver    *approval.ChainResolver
	Ledger      *approval.Ledger
	Delegations *approval.DelegationService
	Roles       *access.RoleCatalog
	Tenants     *access.TenantScope
	Employees   domain.EmployeeRepository
	Audit       domain.AuditRepository
	Notifier    domain.Notifier // nil disables notifications
	Logger      *slog.Logger
}

// Handler serves the /v1 API.
type Handler struct {
	workflow    *approval.Workflow
	resolver    *approval.ChainResolver
	ledger      *approval.Ledger
	delegations *approval.DelegationService
	roles       *access.RoleCatalog
	tenants     *access.TenantScope
	employees   domain.EmployeeRepository
	audit       domain.AuditRepository
	notifier    domain.Notifier
	logger      *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(d Deps) *Handler {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Handler{
		workflow:    d.Workflow,
		resolver:    d.Resolver,
		ledger:      d.Ledger,
		delegations: d.Delegations,
		roles:       d.Roles,
		tenants:     d.Tenants,
		employees:   d.Employees,
		audit:       d.Audit,
		notifier:    d.Notifier,
		logger:      d.Logger.With("component", "api"),
	}
}

var errNoPrincipal = errors.New("no authenticated principal")

func principalFrom(r *http.Request) (domain.Principal, error) {
	p, ok := domain.PrincipalFromContext(r.Context())
	if !ok {
		return domain.Principal{}, errNoPrincipal
	}
	return p, nil
}

// notify delivers a committed transition. Delivery failures are logged and
// never undo the transition.
func (h *Handler) notify(ctx context.Context, ev *domain.TransitionEvent) {
	if h.notifier == nil || ev == nil {
		return
	}
	if err := h.notifier.Notify(ctx, *ev); err != nil {
		h.logger.Warn("notification failed",
			"request_id", ev.Request.ID,
			"action", ev.Action,
			"http_request_id", middleware.RequestIDFromContext(ctx),
			"error", err)
	}
}

// visibleEmployee loads an employee the principal may read: themselves, or
// anyone in their tenant for reviewer roles.
func (h *Handler) visibleEmployee(ctx context.Context, p domain.Principal, id string) (*domain.Employee, error) {
	emp, err := h.employees.GetByID(ctx, id)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return nil, &domain.EmployeeNotFoundError{EmployeeID: id}
		}
		return nil, err
	}
	if err := h.tenants.Check(p, emp.TenantID); err != nil {
		return nil, err
	}
	if !p.IsEmployee(emp.ID) && !h.roles.Satisfies(access.ReviewerTier, p.RawRole) {
		return nil, domain.ErrAccessDenied("not allowed to view employee %s", id)
	}
	return emp, nil
}
