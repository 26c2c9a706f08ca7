package approval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"hr-approvals/internal/domain"
)

// DefaultCarryoverYears is how many past years keep their unused days.
const DefaultCarryoverYears = 1

const expiryParallelism = 8

// ExpiryReport summarizes one expiry run.
type ExpiryReport struct {
	BeforeYear int
	Balances   int // rows whose remainder was expired
	Days       int // total days expired
	Skipped    int // rows left alone because days were still pending
}

// ExpiryJob forfeits unused vacation days of years outside the carry-over
// window, across every tenant.
type ExpiryJob struct {
	employees domain.EmployeeRepository
	balances  domain.BalanceRepository
	ledger    *Ledger
	carryover int
	clock     domain.Clock
	logger    *slog.Logger
}

// NewExpiryJob creates an ExpiryJob. carryover < 0 uses DefaultCarryoverYears.
func NewExpiryJob(employees domain.EmployeeRepository, balances domain.BalanceRepository, ledger *Ledger, carryover int, clock domain.Clock, logger *slog.Logger) *ExpiryJob {
	if carryover < 0 {
		carryover = DefaultCarryoverYears
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpiryJob{
		employees: employees,
		balances:  balances,
		ledger:    ledger,
		carryover: carryover,
		clock:     clock,
		logger:    logger.With("component", "balance_expiry"),
	}
}

// Cutoff returns the first year still inside the carry-over window. Balances
// of earlier years are expired.
func (j *ExpiryJob) Cutoff() int {
	return j.clock.Now().Year() - j.carryover
}

// Run expires every balance older than beforeYear that still has days left.
// Balances with pending reservations are skipped and retried on the next run.
func (j *ExpiryJob) Run(ctx context.Context, beforeYear int) (ExpiryReport, error) {
	report := ExpiryReport{BeforeYear: beforeYear}

	tenants, err := j.employees.ListTenantIDs(ctx)
	if err != nil {
		return report, fmt.Errorf("list tenants: %w", err)
	}

	var mu sync.Mutex
	for _, tenantID := range tenants {
		rows, err := j.balances.ListExpirable(ctx, tenantID, beforeYear)
		if err != nil {
			return report, fmt.Errorf("list expirable balances for tenant %q: %w", tenantID, err)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(expiryParallelism)
		for _, b := range rows {
			g.Go(func() error {
				days, err := j.ledger.Expire(gctx, b.EmployeeID, b.Year)
				mu.Lock()
				defer mu.Unlock()
				var conflict *domain.ConflictError
				switch {
				case errors.As(err, &conflict):
					report.Skipped++
					j.logger.Info("balance has pending days, skipped", "employee_id", b.EmployeeID, "year", b.Year)
					return nil
				case err != nil:
					return fmt.Errorf("expire %s/%d: %w", b.EmployeeID, b.Year, err)
				}
				if days > 0 {
					report.Balances++
					report.Days += days
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return report, err
		}
	}

	j.logger.Info("balance expiry finished",
		"before_year", beforeYear,
		"balances", report.Balances,
		"days", report.Days,
		"skipped", report.Skipped,
	)
	return report, nil
}

// ExpiryScheduler runs an ExpiryJob on a cron schedule.
type ExpiryScheduler struct {
	cron     *cron.Cron
	job      *ExpiryJob
	schedule string
	logger   *slog.Logger
}

// NewExpiryScheduler creates a scheduler for job. schedule accepts standard
// five-field cron expressions and descriptors such as "@daily".
func NewExpiryScheduler(job *ExpiryJob, schedule string, logger *slog.Logger) *ExpiryScheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExpiryScheduler{
		cron:     cron.New(),
		job:      job,
		schedule: schedule,
		logger:   logger.With("component", "expiry_scheduler"),
	}
}

// Start registers the job and starts the cron scheduler. Runs use ctx, so
// cancelling it aborts an in-flight run.
func (s *ExpiryScheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		if _, err := s.job.Run(ctx, s.job.Cutoff()); err != nil {
			s.logger.Warn("scheduled balance expiry failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid expiry schedule %q: %w", s.schedule, err)
	}
	s.cron.Start()
	s.logger.Info("expiry scheduler started", "schedule", s.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running job to finish.
func (s *ExpiryScheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("expiry scheduler stopped")
}

// Entries returns the number of registered cron entries.
func (s *ExpiryScheduler) Entries() int {
	return len(s.cron.Entries())
}
