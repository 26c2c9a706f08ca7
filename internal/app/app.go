// Package app provides application-level wiring and dependency injection
// for the approval engine.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"hr-approvals/internal/api"
	"hr-approvals/internal/config"
	"hr-approvals/internal/db"
	"hr-approvals/internal/db/repository"
	"hr-approvals/internal/domain"
	"hr-approvals/internal/middleware"
	"hr-approvals/internal/service/access"
	"hr-approvals/internal/service/approval"
)

// Deps holds the external dependencies that main() must provide.
type Deps struct {
	Cfg    *config.Config
	Pools  *db.Pools
	Logger *slog.Logger
	Clock  domain.Clock // nil uses the system clock
}

// Repos groups the repositories of an opened store. Directory reads go to the
// read pool; everything that writes goes to the write pool.
type Repos struct {
	Employees   *repository.EmployeeRepo
	Departments *repository.DepartmentRepo
	Schedules   *repository.ScheduleRepo
	Delegations *repository.DelegationRepo
	Balances    *repository.BalanceRepo
	Requests    *repository.LeaveRequestRepo
	Audit       *repository.AuditRepo
	Store       *repository.Store
}

// NewRepos builds the repositories over pools.
func NewRepos(pools *db.Pools, logger *slog.Logger) Repos {
	d := pools.Dialect
	return Repos{
		Employees:   repository.NewEmployeeRepo(pools.Read, d),
		Departments: repository.NewDepartmentRepo(pools.Read, d),
		Schedules:   repository.NewScheduleRepo(pools.Read, d),
		Delegations: repository.NewDelegationRepo(pools.Write, d),
		Balances:    repository.NewBalanceRepo(pools.Read, d),
		Requests:    repository.NewLeaveRequestRepo(pools.Read, d),
		Audit:       repository.NewAuditRepo(pools.Write, d),
		Store:       repository.NewStore(pools.Write, d, logger.With("component", "store")),
	}
}

// App holds the fully-wired approval engine.
type App struct {
	Repos       Repos
	Policy      *config.Policy
	Roles       *access.RoleCatalog
	Tenants     *access.TenantScope
	Resolver    *approval.ChainResolver
	Ledger      *approval.Ledger
	Workflow    *approval.Workflow
	Delegations *approval.DelegationService
	Expiry      *approval.ExpiryJob
	Handler     *api.Handler
}

// New wires repositories and services from the provided deps.
func New(deps Deps) (*App, error) {
	if deps.Cfg == nil || deps.Pools == nil {
		return nil, errors.New("app: config and pools are required")
	}
	cfg := deps.Cfg
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := deps.Clock
	if clock == nil {
		clock = domain.SystemClock{}
	}

	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, err
	}
	tenure := approval.DefaultTenureTable()
	if len(policy.Tenure) > 0 {
		tenure, err = approval.NewTenureTable(policy.Tenure)
		if err != nil {
			return nil, fmt.Errorf("policy tenure table: %w", err)
		}
	}

	repos := NewRepos(deps.Pools, logger)

	// === Access ===
	roles := access.NewRoleCatalog(policy.RoleAliases)
	tenants := access.NewTenantScope(roles)

	// === Approval engine ===
	resolver := approval.NewChainResolver(repos.Employees, repos.Departments, repos.Delegations, clock, cfg.ChainMaxDepth, logger)
	ledger := approval.NewLedger(repos.Employees, repos.Store, tenure, clock, logger)
	workflow := approval.NewWorkflow(approval.WorkflowDeps{
		Roles:     roles,
		Tenants:   tenants,
		Resolver:  resolver,
		Ledger:    ledger,
		Employees: repos.Employees,
		Schedules: repos.Schedules,
		Requests:  repos.Requests,
		UoW:       repos.Store,
		Clock:     clock,
		Logger:    logger,
	})
	delegations := approval.NewDelegationService(repos.Delegations, repos.Employees, repos.Audit, roles, tenants, clock, logger)
	expiry := approval.NewExpiryJob(repos.Employees, repos.Balances, ledger, cfg.BalanceCarryoverYears, clock, logger)

	handler := api.NewHandler(api.Deps{
		Workflow:    workflow,
		Resolver:    resolver,
		Ledger:      ledger,
		Delegations: delegations,
		Roles:       roles,
		Tenants:     tenants,
		Employees:   repos.Employees,
		Audit:       repos.Audit,
		Notifier:    api.NewLogNotifier(logger),
		Logger:      logger,
	})

	return &App{
		Repos:       repos,
		Policy:      policy,
		Roles:       roles,
		Tenants:     tenants,
		Resolver:    resolver,
		Ledger:      ledger,
		Workflow:    workflow,
		Delegations: delegations,
		Expiry:      expiry,
		Handler:     handler,
	}, nil
}

// Scheduler returns the cron scheduler for the balance expiry job, or nil
// when the schedule is "off".
func (a *App) Scheduler(cfg *config.Config, logger *slog.Logger) *approval.ExpiryScheduler {
	if !cfg.ExpiryEnabled() {
		return nil
	}
	return approval.NewExpiryScheduler(a.Expiry, cfg.ExpirySchedule, logger)
}

// NewAuthenticator builds the bearer-token authenticator from auth config:
// HS256 when a shared secret is set, plus OIDC discovery or a JWKS endpoint
// when an identity provider is configured.
func NewAuthenticator(ctx context.Context, auth config.AuthConfig, logger *slog.Logger) (*middleware.Authenticator, error) {
	var validators []middleware.JWTValidator
	if auth.JWTSecret != "" {
		v, err := middleware.NewHS256Validator(auth.JWTSecret, auth.Audience)
		if err != nil {
			return nil, err
		}
		validators = append(validators, v)
	}
	switch {
	case auth.JWKSURL != "":
		v, err := middleware.NewOIDCValidatorFromJWKS(ctx, auth.JWKSURL, auth.IssuerURL, auth.Audience)
		if err != nil {
			return nil, err
		}
		validators = append(validators, v)
	case auth.IssuerURL != "":
		v, err := middleware.NewOIDCValidator(ctx, auth.IssuerURL, auth.Audience)
		if err != nil {
			return nil, err
		}
		validators = append(validators, v)
	}

	claims := middleware.ClaimNames{Role: auth.RoleClaim, Tenant: auth.TenantClaim, Employee: auth.EmployeeClaim}
	return middleware.NewAuthenticator(claims, logger, validators...), nil
}
