package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hr-approvals/internal/domain"
)

// DefaultMaxChainDepth bounds the supervisor walk when no depth is configured.
const DefaultMaxChainDepth = 5

// Basis names the rule that made an actor an approver.
type Basis string

// Approval bases, in the order the resolver checks them.
const (
	BasisDirectSupervisor  Basis = "direct_supervisor"
	BasisSupervisorChain   Basis = "supervisor_chain"
	BasisDepartmentManager Basis = "department_manager"
	BasisDelegation        Basis = "delegation"
)

// Decision reasons.
const (
	ReasonDirectSupervisor  = "direct supervisor"
	ReasonSupervisorChain   = "supervisor chain"
	ReasonDepartmentManager = "department manager"
	ReasonDelegation        = "delegation"
	ReasonNotAuthorized     = "not authorized"
	ReasonSelfApproval      = "cannot approve own request"
	ReasonNoActor           = "actor is not linked to an employee"
)

// Decision is the outcome of a point check.
type Decision struct {
	Allowed bool
	Reason  string
	Basis   Basis
	// Level is the supervisor-chain distance of the approver whose authority
	// applies (1 = direct supervisor); zero for department headship.
	Level         int
	DelegatorID   string
	DelegatorName string
}

// Describe renders the decision for audit trails.
func (d Decision) Describe() string {
	switch d.Basis {
	case BasisDelegation:
		if d.DelegatorName != "" {
			return fmt.Sprintf("%s on behalf of %s (%s)", ReasonDelegation, d.DelegatorName, d.DelegatorID)
		}
		return fmt.Sprintf("%s on behalf of %s", ReasonDelegation, d.DelegatorID)
	case BasisSupervisorChain:
		return fmt.Sprintf("%s, level %d", d.Reason, d.Level)
	}
	return d.Reason
}

// Approver is one entry of the enumeration returned by ApproversForEmployee.
type Approver struct {
	EmployeeID    string
	Name          string
	Basis         Basis
	Level         int
	DelegatorID   string
	DelegatorName string
	// DelegationType is the type of the grant a delegate holds; empty for
	// natural approvers.
	DelegationType domain.DelegationType
}

// AnyType asks ApproversForEmployee for delegates of every delegation type.
const AnyType domain.DelegationType = ""

// naturalApprover is an approver by org structure alone.
type naturalApprover struct {
	id    string
	name  string
	basis Basis
	level int
}

// ChainResolver answers whether one employee may approve requests of another.
// It only reads the directory and delegations, so it needs no locking.
type ChainResolver struct {
	employees   domain.EmployeeRepository
	departments domain.DepartmentRepository
	delegations domain.DelegationRepository
	clock       domain.Clock
	maxDepth    int
	logger      *slog.Logger
}

// NewChainResolver creates a ChainResolver. maxDepth <= 0 uses
// DefaultMaxChainDepth.
func NewChainResolver(
	employees domain.EmployeeRepository,
	departments domain.DepartmentRepository,
	delegations domain.DelegationRepository,
	clock domain.Clock,
	maxDepth int,
	logger *slog.Logger,
) *ChainResolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxChainDepth
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ChainResolver{
		employees:   employees,
		departments: departments,
		delegations: delegations,
		clock:       clock,
		maxDepth:    maxDepth,
		logger:      logger.With("component", "chain_resolver"),
	}
}

// MaxDepth returns the configured supervisor walk bound.
func (r *ChainResolver) MaxDepth() int { return r.maxDepth }

// CanApprove reports whether actorID may approve requests of targetID whose
// category is t. Checks run in order: direct supervisor, supervisor chain,
// department manager, delegation from any natural approver. The first match
// wins. A denial is a Decision, not an error; errors are reserved for a
// missing target or a failing repository.
func (r *ChainResolver) CanApprove(ctx context.Context, actorID, targetID string, t domain.DelegationType) (Decision, error) {
	if actorID == "" {
		return Decision{Reason: ReasonNoActor}, nil
	}
	if actorID == targetID {
		return Decision{Reason: ReasonSelfApproval}, nil
	}

	target, err := r.target(ctx, targetID)
	if err != nil {
		return Decision{}, err
	}
	chain, head, err := r.naturalApprovers(ctx, target)
	if err != nil {
		return Decision{}, err
	}

	for _, n := range chain {
		if n.id != actorID {
			continue
		}
		if n.basis == BasisDirectSupervisor {
			return Decision{Allowed: true, Reason: ReasonDirectSupervisor, Basis: n.basis, Level: n.level}, nil
		}
		return Decision{Allowed: true, Reason: ReasonSupervisorChain, Basis: n.basis, Level: n.level}, nil
	}

	if target.DepartmentID != nil {
		managed, err := r.departments.ListManagedBy(ctx, actorID)
		if err != nil {
			return Decision{}, fmt.Errorf("list departments managed by %q: %w", actorID, err)
		}
		for _, d := range managed {
			if d.ID == *target.DepartmentID && d.TenantID == target.TenantID {
				return Decision{Allowed: true, Reason: ReasonDepartmentManager, Basis: BasisDepartmentManager}, nil
			}
		}
	}

	natural := chain
	if head != nil {
		natural = append(natural, *head)
	}
	if len(natural) == 0 {
		return Decision{Reason: ReasonNotAuthorized}, nil
	}

	grants, err := r.delegations.ListActiveForDelegatee(ctx, actorID, r.clock.Now())
	if err != nil {
		return Decision{}, fmt.Errorf("list delegations to %q: %w", actorID, err)
	}
	for _, n := range natural {
		for _, g := range grants {
			if g.DelegatorID == n.id && g.TenantID == target.TenantID && g.Covers(t) {
				return Decision{
					Allowed:       true,
					Reason:        ReasonDelegation,
					Basis:         BasisDelegation,
					Level:         n.level,
					DelegatorID:   n.id,
					DelegatorName: n.name,
				}, nil
			}
		}
	}
	return Decision{Reason: ReasonNotAuthorized}, nil
}

// ApproversForEmployee enumerates everyone CanApprove would allow for requests
// of targetID in category t: the supervisor chain with levels, the department
// manager, and the active delegates of any of them. Each identity appears once,
// under the first rule that admits it, and the target never appears. With
// AnyType every active delegate is listed, each tagged with the type of the
// grant that admitted it.
func (r *ChainResolver) ApproversForEmployee(ctx context.Context, targetID string, t domain.DelegationType) ([]Approver, error) {
	target, err := r.target(ctx, targetID)
	if err != nil {
		return nil, err
	}
	chain, head, err := r.naturalApprovers(ctx, target)
	if err != nil {
		return nil, err
	}

	natural := chain
	if head != nil {
		natural = append(natural, *head)
	}

	seen := map[string]bool{target.ID: true}
	out := make([]Approver, 0, len(natural))
	for _, n := range natural {
		if seen[n.id] {
			continue
		}
		seen[n.id] = true
		out = append(out, Approver{EmployeeID: n.id, Name: n.name, Basis: n.basis, Level: n.level})
	}
	if len(natural) == 0 {
		return out, nil
	}

	ids := make([]string, len(natural))
	for i, n := range natural {
		ids[i] = n.id
	}
	grants, err := r.delegations.ListActiveFromDelegators(ctx, ids, r.clock.Now())
	if err != nil {
		return nil, fmt.Errorf("list delegations: %w", err)
	}
	for _, n := range natural {
		for _, g := range grants {
			if g.DelegatorID != n.id || g.TenantID != target.TenantID || seen[g.DelegateeID] {
				continue
			}
			if t != AnyType && !g.Covers(t) {
				continue
			}
			seen[g.DelegateeID] = true
			a := Approver{
				EmployeeID:     g.DelegateeID,
				Basis:          BasisDelegation,
				Level:          n.level,
				DelegatorID:    n.id,
				DelegatorName:  n.name,
				DelegationType: g.DelegationType,
			}
			if e, err := r.employees.GetByID(ctx, g.DelegateeID); err == nil {
				a.Name = e.Name
			}
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *ChainResolver) target(ctx context.Context, id string) (*domain.Employee, error) {
	e, err := r.employees.GetByID(ctx, id)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return nil, &domain.EmployeeNotFoundError{EmployeeID: id}
		}
		return nil, err
	}
	return e, nil
}

// naturalApprovers walks the supervisor chain of target up to maxDepth and
// resolves its department manager. The walk stops at a missing supervisor, a
// supervisor in another tenant, or a revisited node. The department manager is
// returned separately, and only when not already in the chain.
func (r *ChainResolver) naturalApprovers(ctx context.Context, target *domain.Employee) ([]naturalApprover, *naturalApprover, error) {
	var chain []naturalApprover
	visited := map[string]bool{target.ID: true}
	current := target
	for level := 1; level <= r.maxDepth; level++ {
		if current.SupervisorID == nil || *current.SupervisorID == "" {
			break
		}
		id := *current.SupervisorID
		if visited[id] {
			r.logger.Warn("supervisor cycle detected", "employee_id", target.ID, "revisited", id, "level", level)
			break
		}
		visited[id] = true

		sup, err := r.employees.GetByID(ctx, id)
		if err != nil {
			var nf *domain.NotFoundError
			if errors.As(err, &nf) {
				r.logger.Warn("dangling supervisor reference", "employee_id", current.ID, "supervisor_id", id)
				break
			}
			return nil, nil, fmt.Errorf("load supervisor %q: %w", id, err)
		}
		if sup.TenantID != target.TenantID {
			r.logger.Warn("supervisor chain crosses tenants", "employee_id", current.ID, "supervisor_id", id)
			break
		}

		basis := BasisSupervisorChain
		if level == 1 {
			basis = BasisDirectSupervisor
		}
		chain = append(chain, naturalApprover{id: sup.ID, name: sup.Name, basis: basis, level: level})
		current = sup
	}

	if target.DepartmentID == nil {
		return chain, nil, nil
	}
	dept, err := r.departments.GetByID(ctx, *target.DepartmentID)
	if err != nil {
		var nf *domain.NotFoundError
		if errors.As(err, &nf) {
			return chain, nil, nil
		}
		return nil, nil, fmt.Errorf("load department %q: %w", *target.DepartmentID, err)
	}
	if dept.TenantID != target.TenantID || dept.ManagerID == nil || *dept.ManagerID == "" || *dept.ManagerID == target.ID {
		return chain, nil, nil
	}
	for _, n := range chain {
		if n.id == *dept.ManagerID {
			return chain, nil, nil
		}
	}
	head := &naturalApprover{id: *dept.ManagerID, basis: BasisDepartmentManager}
	if m, err := r.employees.GetByID(ctx, head.id); err == nil {
		head.name = m.Name
	}
	return chain, head, nil
}
