package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"hr-approvals/internal/db/dbstore"
	"hr-approvals/internal/domain"
)

var _ domain.UnitOfWork = (*Store)(nil)

// Store runs units of work in a database transaction on the write pool.
type Store struct {
	db     *sqlx.DB
	q      *dbstore.Queries
	logger *slog.Logger
}

// NewStore creates a Store on the write pool.
func NewStore(db *sql.DB, dialect dbstore.Dialect, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: dbstore.Wrap(db, dialect), q: dbstore.New(db, dialect), logger: logger}
}

// Do runs fn in one transaction. fn's error, or a failed commit, rolls back
// every write made through repos.
func (s *Store) Do(ctx context.Context, fn func(ctx context.Context, repos domain.TxRepos) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			s.logger.Warn("rollback failed", "error", rbErr)
		}
	}()

	qtx := s.q.WithTx(tx)
	repos := domain.TxRepos{
		Balances: &BalanceRepo{q: qtx},
		Requests: &LeaveRequestRepo{q: qtx},
		Audit:    &AuditRepo{q: qtx},
	}
	if err := fn(ctx, repos); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
